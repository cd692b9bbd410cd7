package main

import (
	"errors"
	"testing"

	"github.com/mfriedel/voxtrim/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestShouldPrintUsageHint(t *testing.T) {
	t.Parallel()

	require.True(t, shouldPrintUsageHint(errors.New("unknown command \"bad\" for \"voxtrim\"")))
	require.True(t, shouldPrintUsageHint(errors.New("unknown flag: --oops")))
	require.True(t, shouldPrintUsageHint(errors.New("requires at least 1 arg(s), only received 0")))
	require.False(t, shouldPrintUsageHint(errors.New("probe in.mp4: exit status 1")))
	require.False(t, shouldPrintUsageHint(nil))
}

func TestHelpHintTarget(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCmd()
	require.Equal(t, "voxtrim", helpHintTarget(root, []string{"--badflag"}))
	require.Equal(t, "voxtrim", helpHintTarget(root, []string{"badcmd"}))
	require.Equal(t, "voxtrim inspect", helpHintTarget(root, []string{"inspect"}))
	require.Equal(t, "voxtrim inspect", helpHintTarget(root, []string{"inspect", "--provider", "wav"}))
}
