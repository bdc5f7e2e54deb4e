package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "avian",
		Short:         "Flight log server with session based sign in",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read outside production")

	rootCmd.AddCommand(
		serveCmd(&envFile),
		migrateCmd(&envFile),
		userCmd(&envFile),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
