// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

// Package cli provides the command-line interface for katax.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/LOPIN6FARRIER/katax-cli/internal/config"
)

// Global flags
var (
	cfgFile    string
	projectDir string
	verbose    bool
	quiet      bool
)

// Output writers and filesystem used by the commands. PersistentPreRun
// points the writers at the running command's streams.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	fsys   afero.Fs  = afero.NewOsFs()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "katax",
	Short: "Express + TypeScript API scaffolding tool",
	Long: `katax scaffolds Express/TypeScript REST API projects and keeps the
router aggregation file in sync with the endpoint modules you add.

Example:
  katax init my-api --database postgresql   # Scaffold a new project
  katax add endpoint users                  # Generate an endpoint and register it
  katax remove endpoint users --purge       # Unregister and delete an endpoint
  katax routes                              # List registered routes
  katax check --fix                         # Register modules missing from the router
  katax deploy up                           # Build and (re)start with PM2`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupOutput,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: katax.yaml in the project directory)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "project root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(deployCmd)
}

func setupOutput(cmd *cobra.Command, _ []string) error {
	stdout = cmd.OutOrStdout()
	stderr = cmd.ErrOrStderr()

	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return nil
}

// project is a loaded katax project.
type project struct {
	Root string
	Cfg  *config.Config
}

func (p *project) path(rel string) string {
	return config.Resolve(p.Root, rel)
}

func (p *project) apiDir() string {
	return p.path(p.Cfg.Paths.API)
}

func (p *project) routerFile() string {
	return p.path(p.Cfg.Paths.Router)
}

// loadProject resolves the project root and loads its configuration.
func loadProject() (*project, error) {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to determine project root: %w", err)
	}

	var cfg *config.Config
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromPath(root)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	printVerbose("Project root: %s", root)
	return &project{Root: root, Cfg: cfg}, nil
}

// printInfo prints a message if not in quiet mode.
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

// printError prints an error message.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
}
