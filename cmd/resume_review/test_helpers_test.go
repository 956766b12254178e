package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// runCommand parses args into cmd's flags and runs it in-process, returning
// everything it wrote. Flags are reset to their defaults before parsing and
// again afterwards since the commands bind package-level variables.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	// Keep local state out of the user's environment
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RABBITMQ_URL", "")

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
		resetFlags(cmd)
	})

	resetFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		return out.String(), err
	}
	if err := cmd.ValidateRequiredFlags(); err != nil {
		return out.String(), err
	}
	if err := cmd.ValidateFlagGroups(); err != nil {
		return out.String(), err
	}
	err := cmd.RunE(cmd, cmd.Flags().Args())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

// writeJobFile writes a job posting to a temp file
func writeJobFile(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

const (
	validRolesPath = "../../testdata/valid/roles.json"
	noisyRolesPath = "../../internal/experience/testdata/roles.json"
)
