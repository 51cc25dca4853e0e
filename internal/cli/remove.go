// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LOPIN6FARRIER/katax-cli/internal/generator"
	"github.com/LOPIN6FARRIER/katax-cli/internal/naming"
	"github.com/LOPIN6FARRIER/katax-cli/internal/routerupdate"
)

var (
	removePurge  bool
	removeDryRun bool
)

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a resource from the project",
}

var removeEndpointCmd = &cobra.Command{
	Use:     "endpoint <name>",
	Aliases: []string{"ep"},
	Short:   "Unregister an endpoint from the router",
	Long: `Remove the import of an endpoint's router and every registration that
mounts it from the router aggregation file. With --purge the endpoint
directory is deleted as well.

Example:
  katax remove endpoint users
  katax remove endpoint users --purge
  katax remove endpoint users --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runRemoveEndpoint,
}

func init() {
	removeEndpointCmd.Flags().BoolVar(&removePurge, "purge", false, "also delete the endpoint directory")
	removeEndpointCmd.Flags().BoolVar(&removeDryRun, "dry-run", false, "show the router diff without writing")

	removeCmd.AddCommand(removeEndpointCmd)
}

func runRemoveEndpoint(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	binding := naming.RouterBinding(args[0])
	if !naming.IsIdentifier(binding) {
		return fmt.Errorf("invalid endpoint name %q", args[0])
	}
	u := routerupdate.New(fsys)

	if removeDryRun {
		before, after, err := u.PreviewRemove(p.routerFile(), binding)
		if err != nil {
			return err
		}
		if d := lineDiff(relTo(p.Root, p.routerFile()), before, after, 2); d != "" {
			fmt.Fprint(cmd.OutOrStdout(), d)
		} else {
			printInfo("%s is not referenced by the router", binding)
		}
		if removePurge {
			printInfo("  would delete %s", relTo(p.Root, filepath.Join(p.apiDir(), naming.EndpointDir(args[0]))))
		}
		return nil
	}

	exists, err := u.ImportExists(p.routerFile(), binding)
	if err != nil {
		return err
	}
	if err := u.RemoveRoute(p.routerFile(), binding); err != nil {
		return err
	}
	if exists {
		printInfo("Unregistered %s from %s", binding, relTo(p.Root, p.routerFile()))
	} else {
		printInfo("%s was not imported by %s", binding, relTo(p.Root, p.routerFile()))
	}

	if removePurge {
		dir, err := generator.NewWriter(fsys, nil).RemoveEndpoint(p.apiDir(), args[0])
		if err != nil {
			return err
		}
		printInfo("Deleted %s", relTo(p.Root, dir))
	}
	return nil
}
