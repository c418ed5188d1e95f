// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface (CLI) for the TerraDesk
// console using the Cobra library. It defines the root command,
// subcommands (login, logout, export, version), flags, and the main
// entry point for execution.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/config"
	"github.com/terradesk/terradesk/internal/i18n"
	"github.com/terradesk/terradesk/internal/logging"
	"github.com/terradesk/terradesk/internal/session"
	"github.com/terradesk/terradesk/internal/statestore"
	"github.com/terradesk/terradesk/internal/tui"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)
var cfgFile string
var verbose bool
var showVersionFlag bool

var appConfig config.Config

// SetVersion lets the main package hand over the linker-set version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// setupDefaultServices loads configuration and initializes i18n and logging.
// It runs as PersistentPreRunE, so every subcommand sees a loaded config.
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	explicitPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := map[string]any{
		"api.base_url":        "http://localhost:8080/api",
		"api.timeout_seconds": 15,
		"state.type":          "sqlite",
		"state.dsn":           statestore.DefaultDSN(),
		"language":            "en",
		"theme":               "dark",
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, explicitPath)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// First run, or the config file was deleted. Create a default one.
		if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
			log.Warnf("could not write default config file: %v", writeErr)
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Empty values in a hand-edited config file fall back to the defaults.
	if appConfig.API.BaseURL == "" {
		appConfig.API.BaseURL = defaults["api.base_url"].(string)
	}
	if appConfig.API.TimeoutSeconds <= 0 {
		appConfig.API.TimeoutSeconds = defaults["api.timeout_seconds"].(int)
	}
	if appConfig.State.Type == "" {
		appConfig.State.Type = defaults["state.type"].(string)
	}
	if appConfig.State.DSN == "" {
		appConfig.State.DSN = defaults["state.dsn"].(string)
	}
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
	}

	if verbose || appConfig.Debug {
		logging.SetDebug(true)
	}

	i18n.Init(appConfig.Language)
	tui.SetTheme(appConfig.Theme)

	return nil
}

// buildDeps opens the state store and wires the API client and session guard
// together. The returned cleanup closes the store.
func buildDeps() (tui.Deps, func(), error) {
	store, err := statestore.New(appConfig.State.Type, appConfig.State.DSN)
	if err != nil {
		return tui.Deps{}, nil, fmt.Errorf("open state store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logging.Warnf("closing state store: %v", err)
		}
	}

	// Persisted UI preferences win over the config file.
	if lang, err := store.Language(); err == nil && lang != "" {
		i18n.SetLang(lang)
	}
	if theme, err := store.Theme(); err == nil && theme != "" {
		tui.SetTheme(theme)
	}

	client, err := api.NewClient(api.Config{
		BaseURL:            appConfig.API.BaseURL,
		Timeout:            time.Duration(appConfig.API.TimeoutSeconds) * time.Second,
		InsecureSkipVerify: appConfig.API.InsecureSkipVerify,
	}, nil)
	if err != nil {
		cleanup()
		return tui.Deps{}, nil, err
	}

	guard := session.NewGuard(store)
	client.SetTokenSource(guard)
	client.OnInvalidate(guard.HandleInvalidation)

	return tui.Deps{Client: client, Guard: guard, Store: store}, cleanup, nil
}

// Execute runs the CLI entrypoint. The root main package should call this
// function and handle process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if cmd.Flags().Changed("config") {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return nil, fmt.Errorf("could not read --config flag: %w", err)
		}
		if path == "" {
			return nil, nil
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
		}
		return &path, nil
	}
	return nil, nil
}

// NewRootCmd creates and configures a new root cobra command. This function
// is used for the main application as well as fresh instances for isolated
// testing.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terradesk",
		Short: "TerraDesk is a terminal console for administering a geospatial 3D platform.",
		Long: `TerraDesk manages the users, groups, geographic zones and model catalog
of a TerraDesk server from the terminal. All state lives on the server;
this console is a thin, fast front end over its REST API.

Running without a subcommand will launch the interactive console.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				v, c, d := resolveBuildVersion(nil)
				composite := v
				if c != "" && c != "dev" {
					composite = composite + " (" + c + ")"
				}
				if d != "" {
					composite = composite + " built: " + d
				}
				fmt.Printf("%s\n", composite)
				os.Exit(0)
			}
			return setupDefaultServices(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()
			return tui.Run(deps)
		},
	}

	v, c, d := resolveBuildVersion(nil)
	composite := v
	if c != "" && c != "dev" {
		composite = composite + " (" + c + ")"
	}
	if d != "" {
		composite = composite + " built: " + d
	}
	cmd.Version = composite

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `Console language ("en", "de")`)
	cmd.PersistentFlags().String("api.base_url", "", "Base URL of the TerraDesk REST API")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			fmt.Printf("version: %s\n", v)
			fmt.Printf("commit: %s\n", c)
			if d != "" {
				fmt.Printf("built: %s\n", d)
			}
		},
	}

	cmd.AddCommand(
		loginCmd,
		logoutCmd,
		exportCmd,
		versionCmd,
	)

	return cmd
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime. This helper is separated to make unit testing straightforward.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := version
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	var ok bool
	if info == nil {
		if infoLocal, found := debug.ReadBuildInfo(); found {
			info = infoLocal
			ok = true
		}
	} else {
		ok = true
	}

	if ok && info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}
