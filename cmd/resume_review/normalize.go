package main

import (
	"fmt"
	"time"

	"github.com/jonathan/resume-review/internal/experience"
	"github.com/jonathan/resume-review/internal/observability"
	"github.com/jonathan/resume-review/internal/types"
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize a roles file",
	Long:  "Validates a roles JSON file, strips import noise from bullets, removes duplicate roles, and orders roles most recent first.",
	RunE:  runNormalize,
}

var (
	normalizeIn  string
	normalizeOut string
)

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeIn, "in", "i", "", "Path to input roles JSON file (required)")
	normalizeCmd.Flags().StringVarP(&normalizeOut, "out", "o", "", "Path to output roles JSON file (default: stdout)")

	if err := normalizeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	roles, err := loadRoles(normalizeIn)
	if err != nil {
		return err
	}

	normalized := experience.NormalizeRoles(roles, time.Now())
	if err := writeJSON(cmd, normalizeOut, types.RoleSet{Roles: normalized}); err != nil {
		return err
	}

	if normalizeOut != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Normalized %d roles (%d in input)\n", len(normalized), len(roles))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", normalizeOut)
		if verbose {
			observability.NewPrinter(cmd.OutOrStdout()).PrintRoles(normalized)
		}
	}
	return nil
}
