package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersFlags(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	require.NotNil(t, cmd.PersistentFlags().Lookup("provider"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("silence-threshold-db"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("min-silence"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("ffmpeg"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("ffprobe"))
	require.Equal(t, "auto", cmd.PersistentFlags().Lookup("provider").DefValue)
	require.Equal(t, "-50", cmd.PersistentFlags().Lookup("silence-threshold-db").DefValue)
	require.Equal(t, "500ms", cmd.PersistentFlags().Lookup("min-silence").DefValue)

	require.NotNil(t, cmd.Flags().Lookup("workers"))
	require.Equal(t, "4", cmd.Flags().Lookup("workers").DefValue)
	require.NotNil(t, cmd.Flags().Lookup("dry-run"))
	require.NotNil(t, cmd.Flags().Lookup("normalize"))
	require.NotNil(t, cmd.Flags().Lookup("channels"))
	require.Equal(t, "1", cmd.Flags().Lookup("channels").DefValue)
	require.Equal(t, "44100", cmd.Flags().Lookup("sample-rate").DefValue)
	require.Equal(t, "16", cmd.Flags().Lookup("sample-size").DefValue)
	require.NotNil(t, cmd.Flags().Lookup("transcribe"))
	require.NotNil(t, cmd.Flags().Lookup("transcribe-cmd"))
}

func TestRootHelpParsesSuccessfully(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)
	require.Contains(t, out.String(), "inspect")
	require.Contains(t, out.String(), "version")
	require.Contains(t, out.String(), "trailing silence")
}

func TestRootRequiresArguments(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "requires at least")
}

func TestTrimOptionsRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	app := &appState{provider: "sox"}
	_, err := app.trimOptions()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown provider")
}

func TestTrimOptionsCarriesDetectionSettings(t *testing.T) {
	t.Parallel()

	app := &appState{
		provider:    "ffmpeg",
		thresholdDB: -42,
		channels:    2,
		sampleRate:  48000,
		sampleBits:  24,
		normalize:   true,
		dryRun:      true,
	}

	opts, err := app.trimOptions()
	require.NoError(t, err)
	require.Equal(t, -42.0, opts.ThresholdDB)
	require.True(t, opts.Normalize)
	require.True(t, opts.DryRun)
	require.Equal(t, 2, opts.NormalizeOpts.Channels)
	require.Equal(t, 48000, opts.NormalizeOpts.SampleRate)
	require.Equal(t, 24, opts.NormalizeOpts.SampleBits)
}
