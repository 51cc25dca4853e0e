// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/LOPIN6FARRIER/katax-cli/internal/config"
	"github.com/LOPIN6FARRIER/katax-cli/internal/generator"
	"github.com/LOPIN6FARRIER/katax-cli/internal/naming"
)

const defaultConfigFile = "katax.yaml"

var (
	initDatabase    string
	initValidator   string
	initPort        int
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Scaffold a new Express + TypeScript API project",
	Long: `Scaffold a new Express + TypeScript API project and write katax.yaml.

With a name, the project is created in a new directory of that name under
--dir. Without one, the project directory itself is scaffolded and the
name is taken from an existing package.json or the directory name.

Example:
  katax init my-api                         # PostgreSQL + zod defaults
  katax init my-api --database mongodb      # MongoDB repositories
  katax init --validator none --port 8080   # Scaffold the current directory
  katax init my-api --interactive           # Prompt for each option`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initDatabase, "database", "", "database: "+strings.Join(config.SupportedDatabases, ", ")+" (default: postgresql)")
	initCmd.Flags().StringVar(&initValidator, "validator", "", "request validator: "+strings.Join(config.SupportedValidators, ", ")+" (default: zod)")
	initCmd.Flags().IntVar(&initPort, "port", 0, "HTTP port (default: 3000)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "interactive mode with prompts")
}

func runInit(cmd *cobra.Command, args []string) error {
	base, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("failed to determine project root: %w", err)
	}

	cfg := config.Default()
	root := base
	if len(args) == 1 {
		cfg.Project.Name = args[0]
		root = filepath.Join(base, naming.KebabCase(args[0]))
	} else {
		cfg.Project.Name = detectProjectName(root)
	}

	if initDatabase != "" {
		cfg.Project.Database = initDatabase
	}
	if initValidator != "" {
		cfg.Project.Validator = initValidator
	}
	if initPort != 0 {
		cfg.Project.Port = initPort
	}

	if initInteractive {
		if isTerminal() {
			cfg, err = interactiveInit(cfg, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("interactive init failed: %w", err)
			}
		} else {
			printVerbose("stdin is not a terminal, skipping prompts")
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Project.Database == "none" {
		cfg.Generation.Repository = false
	}

	configPath := filepath.Join(root, defaultConfigFile)
	if exists, _ := afero.Exists(fsys, configPath); exists && !initForce {
		return fmt.Errorf("config file %s already exists, use --force to overwrite", configPath)
	}

	w := generator.NewWriter(fsys, nil)
	written, err := w.ScaffoldProject(root, generator.ProjectOptions{
		Options: generator.Options{
			Database:  cfg.Project.Database,
			Validator: cfg.Project.Validator,
		},
		Name:       cfg.Project.Name,
		Port:       cfg.Project.Port,
		RouterFile: cfg.Paths.Router,
	}, initForce)
	if err != nil {
		return err
	}

	if err := afero.WriteFile(fsys, configPath, []byte(buildConfigYAML(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	written = append(written, configPath)

	for _, path := range written {
		printVerbose("  created %s", relTo(root, path))
	}
	printInfo("Created project %s in %s", cfg.Project.Name, root)
	printInfo("Database: %s, validator: %s, port: %d", cfg.Project.Database, cfg.Project.Validator, cfg.Project.Port)
	printInfo("")
	printInfo("Next steps:")
	if root != base {
		printInfo("  cd %s", relTo(base, root))
	}
	printInfo("  npm install")
	printInfo("  katax add endpoint users")
	printInfo("  npm run dev")

	return nil
}

// detectProjectName reads the name from package.json, falling back to the
// directory name.
func detectProjectName(root string) string {
	data, err := afero.ReadFile(fsys, filepath.Join(root, "package.json"))
	if err == nil {
		var pkg struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(data, &pkg) == nil && pkg.Name != "" {
			return pkg.Name
		}
	}

	name := naming.KebabCase(filepath.Base(root))
	if name == "" {
		return config.Default().Project.Name
	}
	return name
}

// isTerminal checks if stdin is a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// interactiveInit prompts the user for configuration options.
func interactiveInit(cfg *config.Config, in io.Reader) (*config.Config, error) {
	reader := bufio.NewReader(in)

	cfg.Project.Name = prompt(reader, "Project name", cfg.Project.Name)
	cfg.Project.Database = prompt(reader, "Database ("+strings.Join(config.SupportedDatabases, "/")+")", cfg.Project.Database)
	cfg.Project.Validator = prompt(reader, "Validator ("+strings.Join(config.SupportedValidators, "/")+")", cfg.Project.Validator)

	port := prompt(reader, "Port", strconv.Itoa(cfg.Project.Port))
	n, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q", port)
	}
	cfg.Project.Port = n

	return cfg, nil
}

// prompt prints a question with its default and returns the trimmed answer,
// or def when the answer is empty.
func prompt(reader *bufio.Reader, label, def string) string {
	fmt.Fprintf(stdout, "%s [%s]: ", label, def)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def
	}
	return answer
}

// buildConfigYAML builds a YAML config with a header comment.
func buildConfigYAML(cfg *config.Config) string {
	data, _ := yaml.Marshal(cfg)

	header := `# katax configuration file
# Paths are relative to this file. Run "katax check" to verify the router.

`
	return header + string(data)
}

func relTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
