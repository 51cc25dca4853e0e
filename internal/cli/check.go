// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LOPIN6FARRIER/katax-cli/internal/routesync"
)

// Exit codes for check command
const (
	ExitCodeMatch      = 0 // Router matches the endpoint modules
	ExitCodeDifference = 1 // Router is out of sync
	ExitCodeCheckError = 2 // Error during analysis
)

// osExit is replaced in tests.
var osExit = os.Exit

var (
	checkFix    bool
	checkPrune  bool
	checkIgnore []string
	checkCI     bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the router file against the endpoint modules on disk",
	Long: `Check compares the *.routes.ts modules under the API directory with the
router aggregation file.

A module is missing when it exists on disk but is not imported and mounted.
An import is orphaned when the module it points at no longer exists.

Exit codes (with --ci):
  0  Router is in sync
  1  Router is out of sync
  2  Error during analysis

Example:
  katax check                       # Report drift
  katax check --fix                 # Register missing modules
  katax check --fix --prune         # Also remove orphaned imports
  katax check --ci                  # CI mode with exit codes
  katax check --ignore "legacy*"    # Ignore modules by name`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkFix, "fix", false, "register missing modules in the router")
	checkCmd.Flags().BoolVar(&checkPrune, "prune", false, "with --fix, remove orphaned imports and their routes")
	checkCmd.Flags().StringSliceVar(&checkIgnore, "ignore", nil, "module names or bindings to ignore")
	checkCmd.Flags().BoolVar(&checkCI, "ci", false, "CI mode: use exit codes for status")
}

func runCheck(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		if checkCI {
			printError("%v", err)
			osExit(ExitCodeCheckError)
		}
		return err
	}

	printVerbose("Check configuration:")
	printVerbose("  API dir: %s", p.apiDir())
	printVerbose("  Router: %s", p.routerFile())
	printVerbose("  Include: %s", strings.Join(p.Cfg.Source.Include, ", "))
	if len(checkIgnore) > 0 {
		printVerbose("  Ignored: %s", strings.Join(checkIgnore, ", "))
	}

	checker := routesync.NewChecker(fsys, p.Cfg.Source.Include, p.Cfg.Source.Exclude)
	report, err := checker.Check(p.apiDir(), p.routerFile())
	if err != nil {
		if checkCI {
			printError("%v", err)
			osExit(ExitCodeCheckError)
		}
		return fmt.Errorf("failed to check router: %w", err)
	}
	report = applyIgnorePatterns(report, checkIgnore)

	printReport(p, report)

	if report.InSync() {
		printInfo("Router is in sync with %d endpoint module(s)", len(report.Mounted))
		if checkCI {
			osExit(ExitCodeMatch)
		}
		return nil
	}

	if checkFix {
		result, err := checker.Fix(report, checkPrune)
		printFixResult(result)
		if err != nil {
			if checkCI {
				printError("%v", err)
				osExit(ExitCodeCheckError)
			}
			return err
		}
		if !checkPrune && len(report.Orphaned) > 0 {
			printInfo("Run 'katax check --fix --prune' to remove orphaned imports")
		}
		if len(result.Skipped) == 0 && (checkPrune || len(report.Orphaned) == 0) {
			if checkCI {
				osExit(ExitCodeMatch)
			}
			return nil
		}
	} else {
		printInfo("Run 'katax check --fix' to register missing modules")
	}

	if checkCI {
		osExit(ExitCodeDifference)
	}
	return fmt.Errorf("router is out of sync")
}

func printReport(p *project, report *routesync.Report) {
	ok := color.New(color.FgGreen).SprintFunc()
	missing := color.New(color.FgYellow).SprintFunc()
	orphan := color.New(color.FgRed).SprintFunc()

	for _, m := range report.Mounted {
		printVerbose("  %s %s -> %s", ok("✓"), m.RoutePath, m.Binding)
	}
	for _, m := range report.Missing {
		note := "not registered"
		if m.Imported {
			note = "imported but not mounted"
		}
		printInfo("  %s %s (%s) %s", missing("+"), m.Module.Name, relTo(p.Root, m.Module.Path), note)
	}
	for _, o := range report.Orphaned {
		printInfo("  %s %s from %s (line %d) source missing", orphan("-"), o.Binding, o.ModulePath, o.Line)
	}
}

func printFixResult(result *routesync.FixResult) {
	if result == nil {
		return
	}
	for _, name := range result.Registered {
		printInfo("Registered %s", name)
	}
	for _, binding := range result.Removed {
		printInfo("Removed %s", binding)
	}
	for _, name := range result.Skipped {
		printInfo("Skipped %s: its route path is already mounted by another router", name)
	}
}

// applyIgnorePatterns drops missing modules and orphans whose name matches
// one of patterns.
func applyIgnorePatterns(report *routesync.Report, patterns []string) *routesync.Report {
	if len(patterns) == 0 {
		return report
	}

	filtered := &routesync.Report{
		RouterFile: report.RouterFile,
		APIDir:     report.APIDir,
		Mounted:    report.Mounted,
	}
	for _, m := range report.Missing {
		if !matchesAnyPattern(m.Module.Name, patterns) {
			filtered.Missing = append(filtered.Missing, m)
		}
	}
	for _, o := range report.Orphaned {
		if !matchesAnyPattern(o.Binding, patterns) {
			filtered.Orphaned = append(filtered.Orphaned, o)
		}
	}
	return filtered
}

// matchesAnyPattern checks if a string matches any of the given patterns.
func matchesAnyPattern(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(pattern, "*") || strings.Contains(pattern, "?") {
			if matched, _ := path.Match(pattern, s); matched {
				return true
			}
		} else if s == pattern {
			return true
		}
	}
	return false
}
