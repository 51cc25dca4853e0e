// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/rs/zerolog/log"
)

// ErrPM2NotFound is returned when the pm2 binary is not on PATH.
var ErrPM2NotFound = errors.New("pm2 not found in PATH (install it with: npm install -g pm2)")

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// Step is one command of a plan.
type Step struct {
	Name     string
	Command  string
	Args     []string
	Optional bool
}

// String returns the step as a shell-like command line. Arguments holding
// whitespace or quotes are single-quoted.
func (s Step) String() string {
	words := make([]string, 0, len(s.Args)+1)
	for _, w := range append([]string{s.Command}, s.Args...) {
		words = append(words, shellQuote(w))
	}
	return strings.Join(words, " ")
}

func shellQuote(w string) string {
	if w != "" && !strings.ContainsAny(w, " \t\n'\"\\$`") {
		return w
	}
	return "'" + strings.ReplaceAll(w, "'", `'\''`) + "'"
}

// StepError reports the step a plan stopped at.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Step.Name, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Plan is an ordered list of commands run in Dir.
type Plan struct {
	Dir   string
	Steps []Step
}

// Runner runs one external command.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run runs name with args in dir and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	log.Debug().
		Str("dir", dir).
		Str("command", name).
		Strs("args", args).
		Msg("running command")

	return cmd.Run()
}

// Execute runs the steps in order. It stops at the first failing required
// step and returns a *StepError; failing optional steps are logged and skipped.
func (p *Plan) Execute(ctx context.Context, runner Runner) error {
	for _, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: step, Err: err}
		}

		log.Info().Str("step", step.Name).Msg(step.String())

		if err := runner.Run(ctx, p.Dir, step.Command, step.Args...); err != nil {
			if step.Optional && ctx.Err() == nil {
				log.Warn().Err(err).Str("step", step.Name).Msg("optional step failed")
				continue
			}
			return &StepError{Step: step, Err: err}
		}
	}
	return nil
}

// CheckPM2 returns ErrPM2NotFound when pm2 is not installed.
func CheckPM2() error {
	if _, err := lookPath("pm2"); err != nil {
		return ErrPM2NotFound
	}
	return nil
}

// RequiresPM2 reports whether any step runs pm2.
func (p *Plan) RequiresPM2() bool {
	for _, s := range p.Steps {
		if s.Command == "pm2" {
			return true
		}
	}
	return false
}

// splitCommand splits a configured command line into words with shell
// quoting rules. Variables and pipelines are not expanded.
func splitCommand(commandLine string) ([]string, error) {
	words, err := shellwords.Parse(commandLine)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", commandLine, err)
	}
	return words, nil
}

// shellStep returns no step for an empty or unparsable command line;
// Settings.Validate rejects the latter before a plan is built.
func shellStep(name, commandLine string) (Step, bool) {
	words, err := splitCommand(commandLine)
	if err != nil || len(words) == 0 {
		return Step{}, false
	}
	return Step{Name: name, Command: words[0], Args: words[1:]}, true
}

// UpPlan builds and (re)starts the app: optional git pull, install, build,
// pm2 startOrReload, pm2 save.
func UpPlan(dir string, s Settings) *Plan {
	p := &Plan{Dir: dir}

	if s.Pull {
		branch := s.Branch
		if branch == "" {
			branch = "main"
		}
		p.Steps = append(p.Steps, Step{Name: "pull", Command: "git", Args: []string{"pull", "origin", branch}})
	}
	if step, ok := shellStep("install", s.Install); ok {
		p.Steps = append(p.Steps, step)
	}
	if step, ok := shellStep("build", s.Build); ok {
		p.Steps = append(p.Steps, step)
	}

	p.Steps = append(p.Steps,
		Step{Name: "start", Command: "pm2", Args: []string{"startOrReload", s.EcosystemFile, "--env", s.Env}},
		Step{Name: "save", Command: "pm2", Args: []string{"save"}, Optional: true},
	)
	return p
}

// StatusPlan describes the app's PM2 process.
func StatusPlan(dir string, s Settings) *Plan {
	return &Plan{Dir: dir, Steps: []Step{
		{Name: "status", Command: "pm2", Args: []string{"describe", s.AppName}},
	}}
}

// LogsPlan prints the last lines of the app's logs without streaming.
func LogsPlan(dir string, s Settings, lines int) *Plan {
	if lines <= 0 {
		lines = 100
	}
	return &Plan{Dir: dir, Steps: []Step{
		{Name: "logs", Command: "pm2", Args: []string{"logs", s.AppName, "--lines", strconv.Itoa(lines), "--nostream"}},
	}}
}

// StopPlan stops the app.
func StopPlan(dir string, s Settings) *Plan {
	return &Plan{Dir: dir, Steps: []Step{
		{Name: "stop", Command: "pm2", Args: []string{"stop", s.AppName}},
		{Name: "save", Command: "pm2", Args: []string{"save"}, Optional: true},
	}}
}

// RestartPlan restarts the app with a refreshed environment.
func RestartPlan(dir string, s Settings) *Plan {
	return &Plan{Dir: dir, Steps: []Step{
		{Name: "restart", Command: "pm2", Args: []string{"restart", s.AppName, "--update-env"}},
	}}
}
