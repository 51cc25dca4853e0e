// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

// Package deploy renders PM2 ecosystem files and runs PM2 deployment plans.
package deploy

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/spf13/afero"

	"github.com/LOPIN6FARRIER/katax-cli/internal/config"
	"github.com/LOPIN6FARRIER/katax-cli/internal/generator"
)

//go:embed templates/ecosystem.config.cjs.tmpl
var templateFS embed.FS

var ecosystemTemplate = template.Must(template.ParseFS(templateFS, "templates/ecosystem.config.cjs.tmpl"))

// Settings are the resolved deployment settings for one project.
type Settings struct {
	AppName       string
	Script        string
	Instances     string
	ExecMode      string
	Env           string
	MaxMemory     string
	Port          int
	EcosystemFile string
	Branch        string
	Pull          bool
	Install       string
	Build         string
}

// FromConfig resolves deployment settings from the project configuration.
func FromConfig(cfg *config.Config) Settings {
	port := cfg.Deploy.Port
	if port == 0 {
		port = cfg.Project.Port
	}
	return Settings{
		AppName:       cfg.AppName(),
		Script:        cfg.Deploy.Script,
		Instances:     cfg.Deploy.Instances,
		ExecMode:      cfg.Deploy.ExecMode,
		Env:           cfg.Deploy.Env,
		MaxMemory:     cfg.Deploy.MaxMemory,
		Port:          port,
		EcosystemFile: cfg.Deploy.EcosystemFile,
		Branch:        cfg.Deploy.Branch,
		Pull:          cfg.Deploy.Pull,
		Install:       cfg.Deploy.InstallCommand,
		Build:         cfg.Deploy.BuildCommand,
	}
}

// InstancesLiteral renders Instances as a JavaScript literal.
func (s Settings) InstancesLiteral() string {
	if s.Instances == "" {
		return "1"
	}
	if n, err := strconv.Atoi(s.Instances); err == nil {
		return strconv.Itoa(n)
	}
	return "'max'"
}

// Validate checks the settings can be rendered and deployed.
func (s Settings) Validate() error {
	if s.AppName == "" {
		return fmt.Errorf("deploy app name is required")
	}
	if s.Script == "" {
		return fmt.Errorf("deploy script is required")
	}
	if s.Env == "" {
		return fmt.Errorf("deploy env is required")
	}
	if s.EcosystemFile == "" {
		return fmt.Errorf("deploy ecosystem file is required")
	}
	if _, err := splitCommand(s.Install); err != nil {
		return fmt.Errorf("deploy install: %w", err)
	}
	if _, err := splitCommand(s.Build); err != nil {
		return fmt.Errorf("deploy build: %w", err)
	}
	if s.Instances != "" && s.Instances != "max" {
		n, err := strconv.Atoi(s.Instances)
		if err != nil || n < 1 {
			return fmt.Errorf("deploy instances must be a positive number or \"max\", got %q", s.Instances)
		}
	}
	return nil
}

// RenderEcosystem renders the PM2 ecosystem.config.cjs content.
func RenderEcosystem(s Settings) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := ecosystemTemplate.Execute(&buf, s); err != nil {
		return nil, fmt.Errorf("failed to render ecosystem file: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteEcosystem writes the ecosystem file under root and returns its path.
func WriteEcosystem(fs afero.Fs, root string, s Settings, force bool) (string, error) {
	content, err := RenderEcosystem(s)
	if err != nil {
		return "", err
	}

	path := config.Resolve(root, s.EcosystemFile)
	w := generator.NewWriter(fs, nil)
	if _, err := w.WriteFiles([]generator.File{{Kind: "ecosystem", Path: filepath.Clean(path), Content: content}}, force); err != nil {
		return "", err
	}
	return path, nil
}
