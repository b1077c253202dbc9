package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tecelaria/varsearch/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "varsearchd",
		Short: "Variant search daemon and CLI",
		Long:  "Variant search daemon for running the API server and loading catalog fixtures",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.SeedCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
