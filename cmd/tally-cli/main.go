package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tallyhq/tally/client"
)

// Build-time variables set via ldflags.
var (
	version   = "1.0.0"
	commit    = ""
	buildDate = ""
)

const defaultURL = "http://localhost:3000"

var (
	apiClient      *client.Client
	flagURL        string
	flagActorID    string
	flagActorEmail string
	flagFmt        string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("tally version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("tally version %s-dev", version)
}

type configFile struct {
	URL           string                   `yaml:"url"`
	ActorID       string                   `yaml:"actor_id"`
	ActorEmail    string                   `yaml:"actor_email"`
	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

type configProfile struct {
	URL        string `yaml:"url"`
	ActorID    string `yaml:"actor_id"`
	ActorEmail string `yaml:"actor_email"`
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Tally CLI: manage items, roles and users and read the audit log",
		Version: versionString(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagFmt != "json" && flagFmt != "table" && flagFmt != "quiet" {
				return fmt.Errorf("unknown --format %q (want json|table|quiet)", flagFmt)
			}
			resolveConfig()
			apiClient = client.New(flagURL, client.WithActor(flagActorID, flagActorEmail))
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "Tally server URL (env: TALLY_URL)")
	rootCmd.PersistentFlags().StringVar(&flagActorID, "actor-id", "", "Actor id recorded in the audit log (env: TALLY_ACTOR_ID)")
	rootCmd.PersistentFlags().StringVar(&flagActorEmail, "actor-email", "", "Actor email recorded in the audit log (env: TALLY_ACTOR_EMAIL)")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")

	rootCmd.AddCommand(newItemCmd())
	rootCmd.AddCommand(newRoleCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newAuditCmd())
	rootCmd.AddCommand(newHealthCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfig() {
	// Flag takes precedence, then env, then config file.
	if flagURL == defaultURL {
		if v := os.Getenv("TALLY_URL"); v != "" {
			flagURL = v
		}
	}
	if flagActorID == "" {
		flagActorID = os.Getenv("TALLY_ACTOR_ID")
	}
	if flagActorEmail == "" {
		flagActorEmail = os.Getenv("TALLY_ACTOR_EMAIL")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	data, err := os.ReadFile(filepath.Join(home, ".tally", "config.yaml"))
	if err != nil {
		return
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return
	}

	resolved := configProfile{URL: cfg.URL, ActorID: cfg.ActorID, ActorEmail: cfg.ActorEmail}
	if cfg.Profiles != nil {
		name := cfg.ActiveProfile
		if name == "" {
			name = "default"
		}
		if p, ok := cfg.Profiles[name]; ok {
			if p.URL != "" {
				resolved.URL = p.URL
			}
			if p.ActorID != "" {
				resolved.ActorID = p.ActorID
			}
			if p.ActorEmail != "" {
				resolved.ActorEmail = p.ActorEmail
			}
		}
	}
	if flagURL == defaultURL && resolved.URL != "" {
		flagURL = resolved.URL
	}
	if flagActorID == "" {
		flagActorID = resolved.ActorID
	}
	if flagActorEmail == "" {
		flagActorEmail = resolved.ActorEmail
	}
}
