// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/LOPIN6FARRIER/katax-cli/internal/routesync"
	"github.com/LOPIN6FARRIER/katax-cli/internal/scanner"
)

var (
	watchDebounce int
	watchPrune    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Register new endpoint modules as they appear",
	Long: `Watch the API directory and keep the router aggregation file in sync.

When a *.routes.ts module is created it is imported and mounted in the
router. With --prune, imports of deleted modules are removed as well.
Changes are batched for the debounce interval before the router is updated.

Example:
  katax watch                   # Register new modules
  katax watch --prune           # Also drop deleted modules
  katax watch --debounce 1000   # Wait 1s after the last change`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchDebounce, "debounce", 0, "debounce duration in milliseconds (default: watch.debounce)")
	watchCmd.Flags().BoolVar(&watchPrune, "prune", false, "remove imports of deleted modules")
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if watchDebounce > 0 {
		p.Cfg.Watch.Debounce = watchDebounce
	}

	s := &watchSession{
		project:  p,
		checker:  routesync.NewChecker(fsys, p.Cfg.Source.Include, p.Cfg.Source.Exclude),
		prune:    watchPrune,
		debounce: time.Duration(p.Cfg.Watch.Debounce) * time.Millisecond,
	}

	printVerbose("Watch configuration:")
	printVerbose("  Debounce: %s", s.debounce)
	printVerbose("  Prune: %t", s.prune)

	if err := s.sync(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := s.addTree(watcher, p.apiDir()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printInfo("Watching %s", relTo(p.Root, p.apiDir()))
	printInfo("Press Ctrl+C to stop")

	return s.run(ctx, watcher)
}

// watchSession reconciles the router after batches of file events.
type watchSession struct {
	project  *project
	checker  *routesync.Checker
	prune    bool
	debounce time.Duration
}

func (s *watchSession) run(ctx context.Context, watcher *fsnotify.Watcher) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := fsys.Stat(ev.Name); err == nil && info.IsDir() {
					if err := s.addTree(watcher, ev.Name); err != nil {
						log.Warn().Err(err).Str("dir", ev.Name).Msg("failed to watch directory")
					}
				}
			}
			if !s.relevant(ev) {
				continue
			}
			log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("change detected")

			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := s.sync(); err != nil {
				printError("%v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}

// relevant reports whether ev can change the router's sync state.
func (s *watchSession) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if filepath.Clean(ev.Name) == filepath.Clean(s.project.routerFile()) {
		return true
	}
	if ev.Has(fsnotify.Remove | fsnotify.Rename) {
		return true
	}
	return s.moduleScanner().Matches(ev.Name)
}

func (s *watchSession) moduleScanner() *scanner.Scanner {
	return scanner.New(scanner.Config{
		BasePath:        s.project.apiDir(),
		IncludePatterns: s.project.Cfg.Source.Include,
		ExcludePatterns: s.project.Cfg.Source.Exclude,
		Fs:              fsys,
	})
}

// sync checks the router and fixes what it can.
func (s *watchSession) sync() error {
	p := s.project
	report, err := s.checker.Check(p.apiDir(), p.routerFile())
	if err != nil {
		return fmt.Errorf("failed to check router: %w", err)
	}
	if report.InSync() || (!s.prune && len(report.Missing) == 0) {
		return nil
	}

	result, err := s.checker.Fix(report, s.prune)
	printFixResult(result)
	return err
}

// addTree watches dir and its subdirectories, skipping excluded ones.
func (s *watchSession) addTree(watcher *fsnotify.Watcher, dir string) error {
	dirs, err := s.moduleScanner().Dirs(dir)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("failed to watch %s: %w", d, err)
		}
		log.Debug().Str("dir", d).Msg("watching")
	}
	return nil
}
