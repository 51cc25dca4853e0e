// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

// Package config provides configuration loading and validation for katax.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the katax project configuration.
type Config struct {
	// Project contains project-wide settings chosen at init time
	Project ProjectConfig `mapstructure:"project" yaml:"project" json:"project"`

	// Paths locates the source tree, API directory and router aggregation file
	Paths PathsConfig `mapstructure:"paths" yaml:"paths" json:"paths"`

	// Source contains endpoint module discovery configuration
	Source SourceConfig `mapstructure:"source" yaml:"source" json:"source"`

	// Generation contains endpoint generation defaults
	Generation GenerationConfig `mapstructure:"generation" yaml:"generation" json:"generation"`

	// Deploy contains PM2 deployment configuration
	Deploy DeployConfig `mapstructure:"deploy" yaml:"deploy" json:"deploy"`

	// Watch contains file watching configuration
	Watch WatchConfig `mapstructure:"watch" yaml:"watch" json:"watch"`
}

// ProjectConfig contains project-wide settings.
type ProjectConfig struct {
	// Name is the npm package name
	Name string `mapstructure:"name" yaml:"name" json:"name"`

	// Database selects the repository flavour (postgresql, mysql, mongodb, none)
	Database string `mapstructure:"database" yaml:"database" json:"database"`

	// Validator selects the request validation library (zod, none)
	Validator string `mapstructure:"validator" yaml:"validator" json:"validator"`

	// Port is the HTTP port the generated server listens on
	Port int `mapstructure:"port" yaml:"port" json:"port"`
}

// PathsConfig contains project-relative paths.
type PathsConfig struct {
	Src    string `mapstructure:"src" yaml:"src" json:"src"`
	API    string `mapstructure:"api" yaml:"api" json:"api"`
	Router string `mapstructure:"router" yaml:"router" json:"router"`
}

// SourceConfig contains endpoint module discovery configuration.
type SourceConfig struct {
	// Include is a list of glob patterns, relative to the API directory, to include
	Include []string `mapstructure:"include" yaml:"include" json:"include"`

	// Exclude is a list of glob patterns to exclude
	Exclude []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
}

// GenerationConfig contains endpoint generation defaults.
type GenerationConfig struct {
	// Methods are the HTTP methods generated when none are given
	Methods []string `mapstructure:"methods" yaml:"methods" json:"methods"`

	// Repository enables the repository artifact by default
	Repository bool `mapstructure:"repository" yaml:"repository" json:"repository"`

	// Force overwrites existing artifacts
	Force bool `mapstructure:"force" yaml:"force" json:"force"`
}

// DeployConfig contains PM2 deployment configuration.
type DeployConfig struct {
	// AppName is the PM2 process name
	AppName string `mapstructure:"appName" yaml:"appName" json:"appName"`

	// Script is the compiled entry point PM2 runs
	Script string `mapstructure:"script" yaml:"script" json:"script"`

	// Instances is a number or "max"
	Instances string `mapstructure:"instances" yaml:"instances" json:"instances"`

	// ExecMode is fork or cluster
	ExecMode string `mapstructure:"execMode" yaml:"execMode" json:"execMode"`

	// Env is the environment passed to pm2 --env
	Env string `mapstructure:"env" yaml:"env" json:"env"`

	// EcosystemFile is the generated PM2 ecosystem file name
	EcosystemFile string `mapstructure:"ecosystemFile" yaml:"ecosystemFile" json:"ecosystemFile"`

	// Branch is pulled before deploying when Pull is set
	Branch string `mapstructure:"branch" yaml:"branch" json:"branch"`
	Pull   bool   `mapstructure:"pull" yaml:"pull" json:"pull"`

	InstallCommand string `mapstructure:"installCommand" yaml:"installCommand" json:"installCommand"`
	BuildCommand   string `mapstructure:"buildCommand" yaml:"buildCommand" json:"buildCommand"`

	// Port overrides project.port in the deployed environment
	Port int `mapstructure:"port" yaml:"port" json:"port"`

	// MaxMemory is PM2's max_memory_restart (e.g. "512M")
	MaxMemory string `mapstructure:"maxMemory" yaml:"maxMemory" json:"maxMemory"`
}

// WatchConfig contains file watching configuration.
type WatchConfig struct {
	// Debounce is the debounce duration in milliseconds
	Debounce int `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

// configFileNames is the list of config file names to search for (in order).
var configFileNames = []string{
	"katax.yaml",
	"katax.json",
	".katax.yaml",
}

// SupportedDatabases is the list of repository flavours.
var SupportedDatabases = []string{
	"postgresql",
	"mysql",
	"mongodb",
	"none",
}

// SupportedValidators is the list of validation libraries.
var SupportedValidators = []string{
	"zod",
	"none",
}

var supportedExecModes = []string{
	"fork",
	"cluster",
}

// ErrConfigNotFound is returned when no config file is found.
var ErrConfigNotFound = errors.New("config file not found")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("config validation errors:\n")
	for _, err := range e {
		sb.WriteString("  - ")
		sb.WriteString(err.Field)
		sb.WriteString(": ")
		sb.WriteString(err.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

var (
	defaultMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}
	defaultInclude = []string{"**/*.routes.ts"}
	defaultExclude = []string{
		"node_modules/**",
		"dist/**",
		"**/*.test.ts",
		"**/*.spec.ts",
		"**/__tests__/**",
	}
)

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			Name:      "api",
			Database:  "postgresql",
			Validator: "zod",
			Port:      3000,
		},
		Paths: PathsConfig{
			Src:    "src",
			API:    "src/api",
			Router: "src/api/routes.ts",
		},
		Source: SourceConfig{
			Include: append([]string(nil), defaultInclude...),
			Exclude: append([]string(nil), defaultExclude...),
		},
		Generation: GenerationConfig{
			Methods:    append([]string(nil), defaultMethods...),
			Repository: true,
		},
		Deploy: DeployConfig{
			Script:         "dist/index.js",
			Instances:      "1",
			ExecMode:       "fork",
			Env:            "production",
			EcosystemFile:  "ecosystem.config.cjs",
			Branch:         "main",
			InstallCommand: "npm ci",
			BuildCommand:   "npm run build",
			MaxMemory:      "512M",
		},
		Watch: WatchConfig{
			Debounce: 300,
		},
	}
}

// Load loads the configuration from a file.
// It searches the working directory for config files in the following order:
// 1. katax.yaml
// 2. katax.json
// 3. .katax.yaml
//
// If configPath is provided, it will use that path instead.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		found := false
		for _, name := range configFileNames {
			if _, err := os.Stat(name); err == nil {
				v.SetConfigFile(name)
				found = true
				break
			}
		}
		if !found {
			return Default(), nil
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadFromPath loads the configuration from a specific directory.
func LoadFromPath(dir string) (*Config, error) {
	if path := FindConfigFile(dir); path != "" {
		return Load(path)
	}
	return Default(), nil
}

// FindConfigFile returns the first config file present in dir, or "".
func FindConfigFile(dir string) string {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// setDefaults sets the default values for viper.
func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("project.name", def.Project.Name)
	v.SetDefault("project.database", def.Project.Database)
	v.SetDefault("project.validator", def.Project.Validator)
	v.SetDefault("project.port", def.Project.Port)
	v.SetDefault("paths.src", def.Paths.Src)
	v.SetDefault("paths.api", def.Paths.API)
	v.SetDefault("paths.router", def.Paths.Router)
	v.SetDefault("source.include", def.Source.Include)
	v.SetDefault("source.exclude", def.Source.Exclude)
	v.SetDefault("generation.methods", def.Generation.Methods)
	v.SetDefault("generation.repository", def.Generation.Repository)
	v.SetDefault("generation.force", def.Generation.Force)
	v.SetDefault("deploy.script", def.Deploy.Script)
	v.SetDefault("deploy.instances", def.Deploy.Instances)
	v.SetDefault("deploy.execMode", def.Deploy.ExecMode)
	v.SetDefault("deploy.env", def.Deploy.Env)
	v.SetDefault("deploy.ecosystemFile", def.Deploy.EcosystemFile)
	v.SetDefault("deploy.branch", def.Deploy.Branch)
	v.SetDefault("deploy.pull", def.Deploy.Pull)
	v.SetDefault("deploy.installCommand", def.Deploy.InstallCommand)
	v.SetDefault("deploy.buildCommand", def.Deploy.BuildCommand)
	v.SetDefault("deploy.maxMemory", def.Deploy.MaxMemory)
	v.SetDefault("watch.debounce", def.Watch.Debounce)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Project.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "project.name",
			Message: "name is required",
		})
	}

	if c.Project.Database != "" && !contains(SupportedDatabases, c.Project.Database) {
		errs = append(errs, ValidationError{
			Field:   "project.database",
			Message: fmt.Sprintf("unsupported database %q, must be one of: %s", c.Project.Database, strings.Join(SupportedDatabases, ", ")),
		})
	}

	if c.Project.Validator != "" && !contains(SupportedValidators, c.Project.Validator) {
		errs = append(errs, ValidationError{
			Field:   "project.validator",
			Message: fmt.Sprintf("unsupported validator %q, must be one of: %s", c.Project.Validator, strings.Join(SupportedValidators, ", ")),
		})
	}

	if c.Project.Port < 0 || c.Project.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "project.port",
			Message: "port must be between 0 and 65535",
		})
	}

	if c.Paths.Router == "" {
		errs = append(errs, ValidationError{
			Field:   "paths.router",
			Message: "router file is required",
		})
	} else if filepath.Ext(c.Paths.Router) != ".ts" {
		errs = append(errs, ValidationError{
			Field:   "paths.router",
			Message: fmt.Sprintf("router file %q must be a .ts file", c.Paths.Router),
		})
	}

	if c.Paths.API == "" {
		errs = append(errs, ValidationError{
			Field:   "paths.api",
			Message: "api directory is required",
		})
	}

	if c.Deploy.ExecMode != "" && !contains(supportedExecModes, c.Deploy.ExecMode) {
		errs = append(errs, ValidationError{
			Field:   "deploy.execMode",
			Message: fmt.Sprintf("unsupported exec mode %q, must be one of: %s", c.Deploy.ExecMode, strings.Join(supportedExecModes, ", ")),
		})
	}

	if c.Deploy.Port < 0 || c.Deploy.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "deploy.port",
			Message: "port must be between 0 and 65535",
		})
	}

	if c.Watch.Debounce < 0 {
		errs = append(errs, ValidationError{
			Field:   "watch.debounce",
			Message: "debounce must be non-negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// AppName returns the PM2 process name, falling back to the project name.
func (c *Config) AppName() string {
	if c.Deploy.AppName != "" {
		return c.Deploy.AppName
	}
	return c.Project.Name
}

// Resolve returns p joined to root unless it is already absolute.
func Resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
