// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Config holds scanner configuration.
type Config struct {
	// BasePath is the API directory to scan (defaults to current directory)
	BasePath string

	// IncludePatterns are glob patterns for files to include (e.g., "**/*.routes.ts")
	IncludePatterns []string

	// ExcludePatterns are glob patterns for files to exclude (e.g., "node_modules/**")
	ExcludePatterns []string

	// Fs is the filesystem to scan; the OS filesystem when nil
	Fs afero.Fs
}

// Scanner discovers route modules in a project.
type Scanner struct {
	config Config
}

// New creates a new Scanner with the given configuration.
func New(config Config) *Scanner {
	if config.BasePath == "" {
		config.BasePath = "."
	}
	if len(config.IncludePatterns) == 0 {
		config.IncludePatterns = []string{"**/*" + RouteModuleSuffix}
	}
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}

	return &Scanner{
		config: config,
	}
}

// Scan discovers all route modules under the base path, sorted by RelPath.
// A missing base path yields no modules.
func (s *Scanner) Scan() ([]RouteModule, error) {
	basePath, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	info, err := s.config.Fs.Stat(basePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", basePath)
	}

	var modules []RouteModule
	err = afero.Walk(s.config.Fs, basePath, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip inaccessible paths
			return nil
		}

		relPath, relErr := filepath.Rel(basePath, filePath)
		if relErr != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if s.shouldExcludeDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.shouldInclude(relPath) {
			modules = append(modules, RouteModule{
				Path:    filePath,
				RelPath: relPath,
				Name:    ModuleName(filePath),
				ModTime: info.ModTime(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(modules, func(i, j int) bool {
		return modules[i].RelPath < modules[j].RelPath
	})
	return modules, nil
}

// Matches reports whether an absolute file path would be picked up by Scan.
func (s *Scanner) Matches(filePath string) bool {
	basePath, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return false
	}
	relPath, err := filepath.Rel(basePath, filePath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	for dir := filepath.ToSlash(filepath.Dir(relPath)); dir != "." && dir != "/"; dir = filepath.ToSlash(filepath.Dir(dir)) {
		if s.shouldExcludeDir(dir) {
			return false
		}
	}
	return s.shouldInclude(relPath)
}

// shouldInclude checks a slash-separated relative path against the patterns.
func (s *Scanner) shouldInclude(relPath string) bool {
	if !IsRouteModule(relPath) {
		return false
	}

	if s.matchesPatterns(relPath, s.config.ExcludePatterns) {
		return false
	}

	return s.matchesPatterns(relPath, s.config.IncludePatterns)
}

// shouldExcludeDir checks if a directory should be excluded.
func (s *Scanner) shouldExcludeDir(relPath string) bool {
	if relPath == "" || relPath == "." {
		return false
	}

	for _, pattern := range s.config.ExcludePatterns {
		// "node_modules" matches "node_modules/**"
		dirPattern := strings.TrimSuffix(pattern, "/**")
		dirPattern = strings.TrimSuffix(dirPattern, "/*")

		if relPath == dirPattern {
			return true
		}

		matched, _ := doublestar.Match(pattern, relPath+"/dummy"+RouteModuleSuffix)
		if matched && strings.HasSuffix(pattern, "/**") {
			return true
		}
	}

	return false
}

// matchesPatterns checks if a path matches any of the given patterns.
func (s *Scanner) matchesPatterns(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			// Invalid pattern, skip
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// Dirs lists root and every directory below it that Scan would descend
// into. root must be the base path or inside it.
func (s *Scanner) Dirs(root string) ([]string, error) {
	basePath, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	var dirs []string
	err = afero.Walk(s.config.Fs, root, func(dirPath string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		relPath, relErr := filepath.Rel(basePath, dirPath)
		if relErr == nil && s.shouldExcludeDir(filepath.ToSlash(relPath)) {
			return filepath.SkipDir
		}
		dirs = append(dirs, dirPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	return dirs, nil
}
