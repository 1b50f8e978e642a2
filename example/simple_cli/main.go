// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/z5labs/confstack"
	"github.com/z5labs/confstack/maskslog"

	"github.com/spf13/cobra"
)

type databaseConfig struct {
	Host     string `config:"host"`
	Password string `config:"password"`
}

type config struct {
	Database databaseConfig `config:"database"`
	Timeout  time.Duration  `config:"timeout"`
}

func main() {
	cmd := buildCmd()

	err := cmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "simple_cli",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := confstack.Read(
				confstack.Map{
					"database": map[string]any{
						"host": "localhost",
					},
					"timeout": "30s",
				},
				confstack.Optional(confstack.FromYaml(confstack.RenderTextTemplate(
					confstack.NewFileReader(os.DirFS("."), "config.yaml"),
					confstack.TemplateFunc("env", os.Getenv),
				))),
				confstack.FromEnv(confstack.EnvPrefix("SIMPLE_CLI_")),
				confstack.FromFlags(cmd.Flags()),
			)
			if err != nil {
				return err
			}

			var cfg config
			err = m.Unmarshal(&cfg)
			if err != nil {
				return err
			}

			log := slog.New(maskslog.NewHandler(
				slog.NewJSONHandler(os.Stdout, nil),
				"database.password",
			))
			log.Info("loaded config", slog.Any("config", m))

			fmt.Printf("connecting to %s with timeout %s\n", cfg.Database.Host, cfg.Timeout)
			return nil
		},
	}

	cmd.Flags().String("database.host", "localhost", "database host to connect to")
	cmd.Flags().String("database.password", "", "database password")
	cmd.Flags().Duration("timeout", 30*time.Second, "connect timeout")
	return cmd
}
