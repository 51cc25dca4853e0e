// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/LOPIN6FARRIER/katax-cli/internal/config"
	"github.com/LOPIN6FARRIER/katax-cli/internal/deploy"
)

var (
	deployDryRun bool
	deployForce  bool
	deployLines  int
)

// newRunner and checkPM2 are replaced in tests.
var (
	newRunner = func(stdout, stderr io.Writer) deploy.Runner {
		return &deploy.ExecRunner{Stdout: stdout, Stderr: stderr}
	}
	checkPM2 = deploy.CheckPM2
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the project with PM2",
	Long: `Build and run the project under PM2 using the deploy section of katax.yaml.

Example:
  katax deploy setup            # Write ecosystem.config.cjs
  katax deploy up               # Pull, install, build and (re)start
  katax deploy up --dry-run     # Print the commands only
  katax deploy logs --lines 50`,
}

var deploySetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write the PM2 ecosystem file",
	Args:  cobra.NoArgs,
	RunE:  runDeploySetup,
}

var deployUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Install, build and start or reload the app",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeployPlan(cmd, deploy.UpPlan)
	},
}

var deployStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the app's PM2 process",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeployPlan(cmd, deploy.StatusPlan)
	},
}

var deployLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print recent app logs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeployPlan(cmd, func(dir string, s deploy.Settings) *deploy.Plan {
			return deploy.LogsPlan(dir, s, deployLines)
		})
	},
}

var deployStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the app",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeployPlan(cmd, deploy.StopPlan)
	},
}

var deployRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the app with a refreshed environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeployPlan(cmd, deploy.RestartPlan)
	},
}

func init() {
	deployCmd.PersistentFlags().BoolVar(&deployDryRun, "dry-run", false, "print what would run without running it")
	deploySetupCmd.Flags().BoolVar(&deployForce, "force", false, "overwrite an existing ecosystem file")
	deployLogsCmd.Flags().IntVarP(&deployLines, "lines", "n", 100, "number of log lines")

	deployCmd.AddCommand(deploySetupCmd, deployUpCmd, deployStatusCmd, deployLogsCmd, deployStopCmd, deployRestartCmd)
}

func runDeploySetup(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	s := deploy.FromConfig(p.Cfg)

	if deployDryRun {
		content, err := deploy.RenderEcosystem(s)
		if err != nil {
			return err
		}
		printInfo("Would write %s:", s.EcosystemFile)
		fmt.Fprint(cmd.OutOrStdout(), string(content))
		return nil
	}

	path, err := deploy.WriteEcosystem(fsys, p.Root, s, deployForce)
	if err != nil {
		return err
	}
	printInfo("Created %s", relTo(p.Root, path))
	printInfo("Run 'katax deploy up' to start %s", s.AppName)
	return nil
}

func runDeployPlan(cmd *cobra.Command, build func(dir string, s deploy.Settings) *deploy.Plan) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	s := deploy.FromConfig(p.Cfg)
	if err := s.Validate(); err != nil {
		return err
	}

	plan := build(p.Root, s)
	printVerbose("Deploy plan for %s in %s", s.AppName, p.Root)

	if deployDryRun {
		for i, step := range plan.Steps {
			suffix := ""
			if step.Optional {
				suffix = " (optional)"
			}
			printInfo("%d. %s%s", i+1, step, suffix)
		}
		return nil
	}

	if plan.RequiresPM2() {
		if err := checkPM2(); err != nil {
			return err
		}
	}

	if cmd.Name() == "up" {
		if err := ensureEcosystem(p, s); err != nil {
			return err
		}
	}

	runner := newRunner(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err := plan.Execute(cmd.Context(), runner); err != nil {
		return fmt.Errorf("deploy %s failed: %w", cmd.Name(), err)
	}
	printInfo("deploy %s complete", cmd.Name())
	return nil
}

// ensureEcosystem writes the ecosystem file when it does not exist yet.
func ensureEcosystem(p *project, s deploy.Settings) error {
	exists, err := afero.Exists(fsys, config.Resolve(p.Root, s.EcosystemFile))
	if err != nil || exists {
		return err
	}
	path, err := deploy.WriteEcosystem(fsys, p.Root, s, false)
	if err != nil {
		return err
	}
	printInfo("Created %s", relTo(p.Root, path))
	return nil
}
