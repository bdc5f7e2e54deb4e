package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"avian/cmd/internal/app"
	"avian/cmd/internal/db/migrate"

	"github.com/spf13/cobra"
)

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Serve(*envFile)
		},
	}
}

func migrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(migrate.Up), string(migrate.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := migrate.ParseDirection(args[0])
			if err != nil {
				return err
			}
			cfg, err := app.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			if err := migrate.Run(cfg.DatabaseURL, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", dir)
			return nil
		},
	}
}

func userCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(userAddCmd(envFile))
	return cmd
}

func userAddCmd(envFile *string) *cobra.Command {
	var pw string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account",
		Long:  "Create an account. The password is read from --password or, when omitted, the first line of stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pw == "" {
				var err error
				if pw, err = readPassword(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			cfg, err := app.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			if cfg.UserBackend != app.BackendPostgres {
				return fmt.Errorf("user add needs the postgres user backend, have %q", cfg.UserBackend)
			}
			log := app.NewLogger(cfg.LogLevel, cfg.LogFormat)

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.AddUser(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&pw, "password", "", "account password (prefer stdin)")
	return cmd
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is empty")
	}
	return line, nil
}
