package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newCheckCmd() *cobra.Command {
	var exitOnUnchanged bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check once and print 'changed' or 'unchanged'",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.openMonitor(cmd.Context())
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			changed, err := m.HasChanged(cmd.Context())
			if err != nil {
				return err
			}

			if changed {
				fmt.Fprintln(cmd.OutOrStdout(), "changed")
				a.exitCode = exitOK
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "unchanged")
			if exitOnUnchanged {
				a.exitCode = exitUnchanged
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitOnUnchanged, "exit-code", false, fmt.Sprintf("Exit with status %d when the resource is unchanged", exitUnchanged))
	return cmd
}

func (a *app) newLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Print the resource's current ETag without recording it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.openMonitor(cmd.Context())
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			tag, err := m.FetchLatestIdentifier(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tag)
			return nil
		},
	}
}

func (a *app) newStoredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stored",
		Short: "Print the last recorded ETag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.openMonitor(cmd.Context())
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			tag, err := m.FetchStoredIdentifier(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tag)
			return nil
		},
	}
}
