// Package main provides the entry point for the gateway with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/allisson/authgate/cmd/app/commands"
	"github.com/allisson/authgate/internal/config"
)

const version = "1.0.0"

// flagFields maps command-line flag names to the config leaf fields they
// override. Every flag here is also settable via the config file and the
// AUTHGATE_* environment (which wins over the flag).
var flagFields = map[string]string{
	"server-address":         "server.address",
	"server-port":            "server.port",
	"store-uri":              "store.uri",
	"directory-uri":          "directory.uri",
	"directory-user":         "directory.user",
	"directory-pass":         "directory.pass",
	"directory-base-dn":      "directory.base_dn",
	"directory-user-pattern": "directory.user_pattern",
	"token-ttl":              "token.ttl",
	"log-level":              "log.level",
}

// configFlags builds the shared flag set for commands that resolve
// configuration. Flag values are collected as raw strings so the config
// package owns all parsing and error reporting.
func configFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML config file (falls back to " + config.ConfigFileEnv + ")",
		},
	}

	usages := map[string]string{
		"server-address":         "Host address the HTTP server binds to",
		"server-port":            "Port the HTTP server listens on",
		"store-uri":              "Token store (Redis) connection URI",
		"directory-uri":          "Directory (LDAP) server URI",
		"directory-user":         "Directory service bind user",
		"directory-pass":         "Directory service bind password",
		"directory-base-dn":      "Directory base distinguished name",
		"directory-user-pattern": "Bind DN template with the %USER% placeholder",
		"token-ttl":              "Token time to live in seconds",
		"log-level":              "Log level (debug, info, warn, error)",
	}

	names := make([]string, 0, len(flagFields))
	for name := range flagFields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		flags = append(flags, &cli.StringFlag{
			Name:  name,
			Usage: usages[name],
		})
	}

	return flags
}

// resolveConfig layers defaults, the config file, set flags and the
// environment into the effective configuration.
func resolveConfig(cmd *cli.Command) (*config.Config, error) {
	overrides := make(map[string]string)
	for name, field := range flagFields {
		if cmd.IsSet(name) {
			overrides[field] = cmd.String(name)
		}
	}

	return config.Resolve(config.Options{
		FilePath:  cmd.String("config"),
		Overrides: overrides,
	})
}

func main() {
	cmd := &cli.Command{
		Name:    "authgate",
		Usage:   "HTTP authentication gateway backed by LDAP and Redis",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Flags: configFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := resolveConfig(cmd)
					if err != nil {
						return err
					}
					return commands.RunServer(ctx, cfg, version)
				},
			},
			{
				Name:  "show-config",
				Usage: "Print the resolved configuration as YAML",
				Flags: configFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := resolveConfig(cmd)
					if err != nil {
						return err
					}
					return commands.RunShowConfig(cfg, os.Stdout)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
