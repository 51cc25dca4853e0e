// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LOPIN6FARRIER/katax-cli/internal/generator"
	"github.com/LOPIN6FARRIER/katax-cli/internal/naming"
	"github.com/LOPIN6FARRIER/katax-cli/internal/routerupdate"
	"github.com/LOPIN6FARRIER/katax-cli/internal/scanner"
	"github.com/LOPIN6FARRIER/katax-cli/pkg/types"
)

var (
	addPath         string
	addMethods      string
	addFields       string
	addNoRepository bool
	addForce        bool
	addDryRun       bool
	addInteractive  bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a resource to the project",
}

var addEndpointCmd = &cobra.Command{
	Use:   "endpoint <name>",
	Short: "Generate an endpoint and register it in the router",
	Long: `Generate the types, validator, repository, controller, handler and
routes files of an endpoint under the API directory, then import and mount
its router in the router aggregation file.

The router is only changed for what is missing: an endpoint that is
already imported and mounted is left alone.

Example:
  katax add endpoint users
  katax add endpoint users --fields "name:string:required,email:email,age:number"
  katax add endpoint order-items --methods get,post --path /orders/items
  katax add endpoint users --dry-run      # Show files and router diff only`,
	Args: cobra.ExactArgs(1),
	RunE: runAddEndpoint,
}

func init() {
	addEndpointCmd.Flags().StringVar(&addPath, "path", "", "mount path in the router (default: /<kebab-name>)")
	addEndpointCmd.Flags().StringVarP(&addMethods, "methods", "m", "", "comma-separated HTTP methods (default: generation.methods)")
	addEndpointCmd.Flags().StringVarP(&addFields, "fields", "f", "", "comma-separated fields, name[:type[:required]]")
	addEndpointCmd.Flags().BoolVar(&addNoRepository, "no-repository", false, "skip the repository file")
	addEndpointCmd.Flags().BoolVar(&addForce, "force", false, "overwrite existing files")
	addEndpointCmd.Flags().BoolVar(&addDryRun, "dry-run", false, "show what would change without writing")
	addEndpointCmd.Flags().BoolVarP(&addInteractive, "interactive", "i", false, "interactive mode with prompts")

	addCmd.AddCommand(addEndpointCmd)
}

func runAddEndpoint(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	methods := addMethods
	if methods == "" {
		methods = strings.Join(p.Cfg.Generation.Methods, ",")
	}

	if addInteractive {
		if isTerminal() {
			reader := bufio.NewReader(cmd.InOrStdin())
			addPath = prompt(reader, "Route path", defaultString(addPath, naming.RoutePath(args[0])))
			methods = prompt(reader, "Methods", methods)
			addFields = prompt(reader, "Fields (name:type[:required],...)", addFields)
		} else {
			printVerbose("stdin is not a terminal, skipping prompts")
		}
	}

	ep, err := buildEndpoint(args[0], addPath, methods, addFields, p.Cfg.Generation.Repository && !addNoRepository)
	if err != nil {
		return err
	}

	opts := generator.Options{
		Database:  p.Cfg.Project.Database,
		Validator: p.Cfg.Project.Validator,
	}
	req := routeRequest(p, ep)
	printVerbose("Router: %s", p.routerFile())
	printVerbose("Binding: %s from %s at %s", req.RouterBindingName, req.ImportModulePath, req.RoutePath)

	w := generator.NewWriter(fsys, nil)
	u := routerupdate.New(fsys)

	if addDryRun {
		return previewAdd(cmd.OutOrStdout(), p, w, u, ep, opts, req)
	}

	written, err := w.WriteEndpoint(p.apiDir(), ep, generator.WriteOptions{
		Options: opts,
		Force:   addForce || p.Cfg.Generation.Force,
	})
	for _, path := range written {
		printInfo("  created %s", relTo(p.Root, path))
	}
	if err != nil {
		return err
	}

	registered, err := registerEndpoint(u, p.routerFile(), req)
	if err != nil {
		return fmt.Errorf("generated files were kept but the router was not updated: %w", err)
	}
	if registered {
		printInfo("Registered %s at %s in %s", req.RouterBindingName, req.RoutePath, relTo(p.Root, p.routerFile()))
	} else {
		printInfo("%s is already registered in %s", req.RouterBindingName, relTo(p.Root, p.routerFile()))
	}

	printInfo("Endpoint %s ready", ep.Name)
	return nil
}

// registerEndpoint adds only the halves of req missing from the router and
// reports whether the file changed.
func registerEndpoint(u *routerupdate.Updater, routerFile string, req routerupdate.Request) (bool, error) {
	importExists, err := u.ImportExists(routerFile, req.RouterBindingName)
	if err != nil {
		return false, err
	}
	routeExists, err := u.RouteExists(routerFile, req.RoutePath)
	if err != nil {
		return false, err
	}

	switch {
	case importExists && routeExists:
		return false, nil
	case !importExists && !routeExists:
		return true, u.AddRoute(routerFile, req)
	default:
		return u.EnsureRoute(routerFile, req)
	}
}

func previewAdd(out io.Writer, p *project, w *generator.Writer, u *routerupdate.Updater, ep *types.Endpoint, opts generator.Options, req routerupdate.Request) error {
	files, err := w.RenderEndpoint(p.apiDir(), ep, opts)
	if err != nil {
		return err
	}
	for _, f := range files {
		printInfo("  would create %s (%d bytes)", relTo(p.Root, f.Path), len(f.Content))
	}

	before, after, err := u.PreviewEnsure(p.routerFile(), req)
	if err != nil {
		return err
	}
	if d := lineDiff(relTo(p.Root, p.routerFile()), before, after, 2); d != "" {
		fmt.Fprint(out, d)
	} else {
		printInfo("%s is already registered", req.RouterBindingName)
	}
	return nil
}

// buildEndpoint assembles an endpoint from command-line values.
func buildEndpoint(name, path, methods, fields string, repository bool) (*types.Endpoint, error) {
	ms, err := types.ParseMethods(methods)
	if err != nil {
		return nil, err
	}
	fieldList, err := types.ParseFields(fields)
	if err != nil {
		return nil, err
	}

	ep := &types.Endpoint{
		Name:       name,
		Path:       defaultString(path, naming.RoutePath(name)),
		Methods:    ms,
		Fields:     fieldList,
		Repository: repository,
	}
	if err := ep.Validate(); err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	return ep, nil
}

// routeRequest builds the router update for ep, importing its routes module
// relative to the router file.
func routeRequest(p *project, ep *types.Endpoint) routerupdate.Request {
	req := routerupdate.NewRequest(ep.Name, ep.Path)
	module := scanner.RouteModule{
		Path: filepath.Join(p.apiDir(), naming.EndpointDir(ep.Name), naming.ArtifactFile(ep.Name, "routes")),
	}
	req.ImportModulePath = module.ImportPath(filepath.Dir(p.routerFile()))
	return req
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
