// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LOPIN6FARRIER/katax-cli/internal/config"
)

func TestInit_ScaffoldsProject(t *testing.T) {
	base := t.TempDir()

	output, err := executeCommand(rootCmd, "init", "my-api", "-C", base, "--database", "mysql", "--port", "8080")
	require.NoError(t, err)
	assert.Contains(t, output, "Created project my-api")
	assert.Contains(t, output, "cd my-api")

	root := filepath.Join(base, "my-api")
	for _, f := range []string{
		"package.json",
		"tsconfig.json",
		".gitignore",
		".env.example",
		"katax.yaml",
		filepath.Join("src", "index.ts"),
		filepath.Join("src", "app.ts"),
		filepath.Join("src", "api", "routes.ts"),
		filepath.Join("src", "database", "connection.ts"),
	} {
		assert.FileExists(t, filepath.Join(root, f))
	}

	yamlContent := readFile(t, filepath.Join(root, "katax.yaml"))
	assert.True(t, strings.HasPrefix(yamlContent, "# katax configuration file"))

	cfg, err := config.LoadFromPath(root)
	require.NoError(t, err)
	assert.Equal(t, "my-api", cfg.Project.Name)
	assert.Equal(t, "mysql", cfg.Project.Database)
	assert.Equal(t, 8080, cfg.Project.Port)
	assert.NoError(t, cfg.Validate())
}

func TestInit_CurrentDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "Billing Service")
	require.NoError(t, os.MkdirAll(base, 0o755))

	_, err := executeCommand(rootCmd, "init", "-C", base, "--database", "none")
	require.NoError(t, err)

	cfg, err := config.LoadFromPath(base)
	require.NoError(t, err)
	assert.Equal(t, "billing-service", cfg.Project.Name)
	assert.Equal(t, "none", cfg.Project.Database)
	assert.False(t, cfg.Generation.Repository)
	assert.NoFileExists(t, filepath.Join(base, "src", "database", "connection.ts"))
}

func TestInit_RefusesExistingConfig(t *testing.T) {
	base := t.TempDir()

	_, err := executeCommand(rootCmd, "init", "shop", "-C", base)
	require.NoError(t, err)

	_, err = executeCommand(rootCmd, "init", "shop", "-C", base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = executeCommand(rootCmd, "init", "shop", "-C", base, "--force")
	require.NoError(t, err)
}

func TestInit_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown database", []string{"--database", "oracle"}},
		{"unknown validator", []string{"--validator", "joi"}},
		{"too many args", []string{"extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			args := append([]string{"init", "shop", "-C", base}, tt.args...)
			_, err := executeCommand(rootCmd, args...)
			require.Error(t, err)
			assert.NoFileExists(t, filepath.Join(base, "shop", "package.json"))
		})
	}
}

func TestDetectProjectName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name": "storefront"}`), 0o644))
	assert.Equal(t, "storefront", detectProjectName(dir))

	dir = filepath.Join(t.TempDir(), "orderService")
	assert.Equal(t, "order-service", detectProjectName(dir))
}

func TestInteractiveInit(t *testing.T) {
	resetFlags()
	stdout = new(strings.Builder)
	t.Cleanup(func() { stdout = os.Stdout })

	in := strings.NewReader("inventory\nmongodb\n\n4000\n")
	cfg, err := interactiveInit(config.Default(), in)
	require.NoError(t, err)

	assert.Equal(t, "inventory", cfg.Project.Name)
	assert.Equal(t, "mongodb", cfg.Project.Database)
	assert.Equal(t, "zod", cfg.Project.Validator)
	assert.Equal(t, 4000, cfg.Project.Port)
}

func TestInteractiveInit_InvalidPort(t *testing.T) {
	stdout = new(strings.Builder)
	t.Cleanup(func() { stdout = os.Stdout })

	_, err := interactiveInit(config.Default(), strings.NewReader("\n\n\nabc\n"))
	require.Error(t, err)
}

func TestPrompt(t *testing.T) {
	out := new(strings.Builder)
	stdout = out
	t.Cleanup(func() { stdout = os.Stdout })

	reader := bufio.NewReader(strings.NewReader("  value  \n\n"))
	assert.Equal(t, "value", prompt(reader, "Name", "def"))
	assert.Equal(t, "def", prompt(reader, "Name", "def"))
	assert.Equal(t, "def", prompt(reader, "Name", "def"))
	assert.Contains(t, out.String(), "Name [def]: ")
}

func TestBuildConfigYAML(t *testing.T) {
	cfg := config.Default()
	cfg.Project.Name = "shop"

	out := buildConfigYAML(cfg)
	assert.True(t, strings.HasPrefix(out, "# katax configuration file\n"))
	assert.Contains(t, out, "name: shop")
	assert.Contains(t, out, "router: src/api/routes.ts")
}
