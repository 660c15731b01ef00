package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	serverAddr string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "graphrunctl",
		Short:         "graphrunctl submits graphs to a graphrun server and tails their execution",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.serverAddr, "server", "http://localhost:8080", "graphrun server base URL")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
