// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "api", cfg.Project.Name)
	assert.Equal(t, "postgresql", cfg.Project.Database)
	assert.Equal(t, "zod", cfg.Project.Validator)
	assert.Equal(t, 3000, cfg.Project.Port)
	assert.Equal(t, "src/api", cfg.Paths.API)
	assert.Equal(t, "src/api/routes.ts", cfg.Paths.Router)
	assert.Equal(t, []string{"**/*.routes.ts"}, cfg.Source.Include)
	assert.True(t, cfg.Generation.Repository)
	assert.Len(t, cfg.Generation.Methods, 5)
	assert.Equal(t, "ecosystem.config.cjs", cfg.Deploy.EcosystemFile)
	assert.Equal(t, "fork", cfg.Deploy.ExecMode)
	assert.Equal(t, 300, cfg.Watch.Debounce)
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalDir)

	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "api", cfg.Project.Name)
	assert.Equal(t, "src/api/routes.ts", cfg.Paths.Router)
}

func TestLoad_YAMLConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalDir)

	configContent := `
project:
  name: shop-api
  database: mongodb
  port: 8080
paths:
  api: src/modules
  router: src/modules/index.ts
deploy:
  appName: shop
  instances: 4
  execMode: cluster
  pull: true
`
	err = os.WriteFile(filepath.Join(tmpDir, "katax.yaml"), []byte(configContent), 0644)
	require.NoError(t, err)

	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "shop-api", cfg.Project.Name)
	assert.Equal(t, "mongodb", cfg.Project.Database)
	assert.Equal(t, "zod", cfg.Project.Validator)
	assert.Equal(t, 8080, cfg.Project.Port)
	assert.Equal(t, "src/modules", cfg.Paths.API)
	assert.Equal(t, "src/modules/index.ts", cfg.Paths.Router)
	assert.Equal(t, "shop", cfg.Deploy.AppName)
	assert.Equal(t, "4", cfg.Deploy.Instances)
	assert.Equal(t, "cluster", cfg.Deploy.ExecMode)
	assert.True(t, cfg.Deploy.Pull)
	assert.Equal(t, "npm ci", cfg.Deploy.InstallCommand)
}

func TestLoad_JSONConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalDir)

	configContent := `{
  "project": {
    "name": "json-api",
    "database": "mysql"
  },
  "watch": {
    "debounce": 50
  }
}`
	err = os.WriteFile(filepath.Join(tmpDir, "katax.json"), []byte(configContent), 0644)
	require.NoError(t, err)

	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "json-api", cfg.Project.Name)
	assert.Equal(t, "mysql", cfg.Project.Database)
	assert.Equal(t, 50, cfg.Watch.Debounce)
}

func TestLoad_DotPrefixedConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalDir)

	err = os.WriteFile(filepath.Join(tmpDir, ".katax.yaml"), []byte("project:\n  name: hidden\n"), 0644)
	require.NoError(t, err)

	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "hidden", cfg.Project.Name)
}

func TestLoad_ExplicitConfigPath(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "custom-config.yaml")
	err := os.WriteFile(configPath, []byte("project:\n  name: custom\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "custom", cfg.Project.Name)
}

func TestLoad_MalformedFile(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "katax.yaml")
	err := os.WriteFile(configPath, []byte("project: [unclosed\n"), 0644)
	require.NoError(t, err)

	_, err = Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_ConfigFilePriority(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalDir)

	err = os.WriteFile(filepath.Join(tmpDir, "katax.yaml"), []byte("project:\n  name: first\n"), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(tmpDir, ".katax.yaml"), []byte("project:\n  name: second\n"), 0644)
	require.NoError(t, err)

	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "first", cfg.Project.Name)
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_SingleField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing name", func(c *Config) { c.Project.Name = "" }, "project.name"},
		{"bad database", func(c *Config) { c.Project.Database = "oracle" }, "project.database"},
		{"bad validator", func(c *Config) { c.Project.Validator = "joi" }, "project.validator"},
		{"bad port", func(c *Config) { c.Project.Port = 70000 }, "project.port"},
		{"missing router", func(c *Config) { c.Paths.Router = "" }, "paths.router"},
		{"router not ts", func(c *Config) { c.Paths.Router = "src/api/routes.js" }, "paths.router"},
		{"missing api dir", func(c *Config) { c.Paths.API = "" }, "paths.api"},
		{"bad exec mode", func(c *Config) { c.Deploy.ExecMode = "daemon" }, "deploy.execMode"},
		{"bad deploy port", func(c *Config) { c.Deploy.Port = -1 }, "deploy.port"},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -1 }, "watch.debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var valErrs ValidationErrors
			require.ErrorAs(t, err, &valErrs)
			assert.Len(t, valErrs, 1)
			assert.Equal(t, tt.field, valErrs[0].Field)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Project.Database = "oracle"
	cfg.Project.Validator = "joi"
	cfg.Deploy.ExecMode = "daemon"

	err := cfg.Validate()
	require.Error(t, err)

	var valErrs ValidationErrors
	require.ErrorAs(t, err, &valErrs)
	assert.Len(t, valErrs, 3)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Field:   "project.database",
		Message: "unsupported database",
	}
	assert.Contains(t, err.Error(), "project.database")
	assert.Contains(t, err.Error(), "unsupported database")
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "field1", Message: "error1"},
		{Field: "field2", Message: "error2"},
	}
	errStr := errs.Error()
	assert.Contains(t, errStr, "field1")
	assert.Contains(t, errStr, "error1")
	assert.Contains(t, errStr, "field2")
	assert.Contains(t, errStr, "error2")
}

func TestValidationErrors_ErrorEmpty(t *testing.T) {
	errs := ValidationErrors{}
	assert.Equal(t, "no validation errors", errs.Error())
}

func TestValidationErrors_ErrorSingle(t *testing.T) {
	errs := ValidationErrors{
		{Field: "field1", Message: "error1"},
	}
	assert.Contains(t, errs.Error(), "config validation error")
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()

	err := os.WriteFile(filepath.Join(tmpDir, "katax.yaml"), []byte("project:\n  name: from-dir\n"), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "from-dir", cfg.Project.Name)
	assert.Equal(t, filepath.Join(tmpDir, "katax.yaml"), FindConfigFile(tmpDir))
}

func TestLoadFromPath_NoConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadFromPath(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "api", cfg.Project.Name)
	assert.Empty(t, FindConfigFile(tmpDir))
}

func TestAppName(t *testing.T) {
	cfg := Default()
	cfg.Project.Name = "shop"
	assert.Equal(t, "shop", cfg.AppName())

	cfg.Deploy.AppName = "shop-prod"
	assert.Equal(t, "shop-prod", cfg.AppName())
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("/p", "src/api"), Resolve("/p", "src/api"))
	assert.Equal(t, "/abs/routes.ts", Resolve("/p", "/abs/routes.ts"))
}
