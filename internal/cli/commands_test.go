// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LOPIN6FARRIER/katax-cli/internal/config"
	"github.com/LOPIN6FARRIER/katax-cli/internal/deploy"
	"github.com/LOPIN6FARRIER/katax-cli/internal/routesync"
	"github.com/LOPIN6FARRIER/katax-cli/internal/scanner"
)

func TestAddEndpoint(t *testing.T) {
	root := newProject(t)

	output, err := executeCommand(rootCmd, "add", "endpoint", "users", "-C", root,
		"--fields", "name:string:required,email:email,age:number")
	require.NoError(t, err)
	assert.Contains(t, output, "Registered usersRouter at /users")

	for _, kind := range []string{"types", "validator", "repository", "controller", "handler", "routes"} {
		assert.FileExists(t, filepath.Join(root, "src", "api", "users", "users."+kind+".ts"))
	}

	router := readFile(t, routerOf(root))
	assert.Contains(t, router, "import usersRouter from './users/users.routes.js';")
	assert.Contains(t, router, "router.use('/users', usersRouter);")
}

func TestAddEndpoint_RouterLeftAloneWhenRegistered(t *testing.T) {
	root := newProject(t)

	_, err := executeCommand(rootCmd, "add", "endpoint", "users", "-C", root)
	require.NoError(t, err)
	before := readFile(t, routerOf(root))

	output, err := executeCommand(rootCmd, "add", "endpoint", "users", "-C", root, "--force")
	require.NoError(t, err)
	assert.Contains(t, output, "already registered")
	assert.Equal(t, before, readFile(t, routerOf(root)))
}

func TestAddEndpoint_RefusesExistingFiles(t *testing.T) {
	root := newProject(t)

	_, err := executeCommand(rootCmd, "add", "endpoint", "users", "-C", root)
	require.NoError(t, err)

	_, err = executeCommand(rootCmd, "add", "endpoint", "users", "-C", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddEndpoint_CustomPathAndMethods(t *testing.T) {
	root := newProject(t)

	_, err := executeCommand(rootCmd, "add", "endpoint", "order-items", "-C", root,
		"--path", "/orders/items", "--methods", "get,post", "--no-repository")
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(root, "src", "api", "order-items", "order-items.repository.ts"))
	router := readFile(t, routerOf(root))
	assert.Contains(t, router, "import orderItemsRouter from './order-items/order-items.routes.js';")
	assert.Contains(t, router, "router.use('/orders/items', orderItemsRouter);")
}

func TestAddEndpoint_InvalidInput(t *testing.T) {
	root := newProject(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown method", []string{"--methods", "get,fetch"}, "unknown method"},
		{"bad field type", []string{"--fields", "age:int"}, "age"},
		{"relative path", []string{"--path", "users"}, "must start with '/'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"add", "endpoint", "users", "-C", root}, tt.args...)
			_, err := executeCommand(rootCmd, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAddEndpoint_RouterFailureKeepsFiles(t *testing.T) {
	root := newProject(t)
	broken := "const router = Router(;\n"
	require.NoError(t, os.WriteFile(routerOf(root), []byte(broken), 0o644))

	_, err := executeCommand(rootCmd, "add", "endpoint", "users", "-C", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generated files were kept")
	assert.Contains(t, err.Error(), routerOf(root))

	assert.FileExists(t, filepath.Join(root, "src", "api", "users", "users.routes.ts"))
	assert.Equal(t, broken, readFile(t, routerOf(root)))
}

func TestAddEndpoint_DryRun(t *testing.T) {
	root := newProject(t)
	before := readFile(t, routerOf(root))

	output, err := executeCommand(rootCmd, "add", "endpoint", "users", "-C", root, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, output, "would create src/api/users/users.routes.ts")
	assert.Contains(t, output, "+import usersRouter from './users/users.routes.js';")
	assert.Contains(t, output, "+router.use('/users', usersRouter);")
	assert.NoDirExists(t, filepath.Join(root, "src", "api", "users"))
	assert.Equal(t, before, readFile(t, routerOf(root)))
}

func TestRemoveEndpoint(t *testing.T) {
	root := newProject(t)
	original := readFile(t, routerOf(root))

	_, err := executeCommand(rootCmd, "add", "endpoint", "users", "-C", root)
	require.NoError(t, err)

	output, err := executeCommand(rootCmd, "remove", "endpoint", "users", "-C", root, "--purge")
	require.NoError(t, err)
	assert.Contains(t, output, "Unregistered usersRouter")

	assert.Equal(t, original, readFile(t, routerOf(root)))
	assert.NoDirExists(t, filepath.Join(root, "src", "api", "users"))
}

func TestRemoveEndpoint_DryRun(t *testing.T) {
	root := newProject(t)
	_, err := executeCommand(rootCmd, "add", "endpoint", "users", "-C", root)
	require.NoError(t, err)
	before := readFile(t, routerOf(root))

	output, err := executeCommand(rootCmd, "remove", "endpoint", "users", "-C", root, "--dry-run", "--purge")
	require.NoError(t, err)
	assert.Contains(t, output, "-import usersRouter from './users/users.routes.js';")
	assert.Contains(t, output, "would delete src/api/users")

	assert.Equal(t, before, readFile(t, routerOf(root)))
	assert.DirExists(t, filepath.Join(root, "src", "api", "users"))
}

func TestRemoveEndpoint_NotImported(t *testing.T) {
	root := newProject(t)

	output, err := executeCommand(rootCmd, "remove", "endpoint", "ghosts", "-C", root)
	require.NoError(t, err)
	assert.Contains(t, output, "ghostsRouter was not imported")
}

func TestRoutesCommand(t *testing.T) {
	root := newProject(t)

	output, err := executeCommand(rootCmd, "routes", "-C", root)
	require.NoError(t, err)
	assert.Contains(t, output, "No routes registered")

	_, err = executeCommand(rootCmd, "add", "endpoint", "users", "-C", root)
	require.NoError(t, err)

	output, err = executeCommand(rootCmd, "routes", "-C", root)
	require.NoError(t, err)
	assert.Contains(t, output, "/users")
	assert.Contains(t, output, "usersRouter")
	assert.Contains(t, output, "./users/users.routes.js")
	assert.Contains(t, output, "Total: 1")
}

func TestCheckCommand(t *testing.T) {
	root := newProject(t)
	_, err := executeCommand(rootCmd, "add", "endpoint", "users", "-C", root)
	require.NoError(t, err)

	_, err = executeCommand(rootCmd, "check", "-C", root)
	require.NoError(t, err)

	module := filepath.Join(root, "src", "api", "products", "products.routes.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(module), 0o755))
	require.NoError(t, os.WriteFile(module, []byte("export default router;\n"), 0o644))

	output, err := executeCommand(rootCmd, "check", "-C", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of sync")
	assert.Contains(t, output, "products")
	assert.Contains(t, output, "katax check --fix")

	output, err = executeCommand(rootCmd, "check", "-C", root, "--fix")
	require.NoError(t, err)
	assert.Contains(t, output, "Registered products")
	assert.Contains(t, readFile(t, routerOf(root)), "router.use('/products', productsRouter);")
}

func TestCheckCommand_Prune(t *testing.T) {
	root := newProject(t)
	_, err := executeCommand(rootCmd, "add", "endpoint", "users", "-C", root)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "src", "api", "users")))

	_, err = executeCommand(rootCmd, "check", "-C", root, "--fix")
	require.Error(t, err)

	output, err := executeCommand(rootCmd, "check", "-C", root, "--fix", "--prune")
	require.NoError(t, err)
	assert.Contains(t, output, "Removed usersRouter")
	assert.NotContains(t, readFile(t, routerOf(root)), "usersRouter")
}

func TestCheckCommand_CIExitCodes(t *testing.T) {
	var code = -1
	osExit = func(c int) { code = c }
	t.Cleanup(func() { osExit = os.Exit })

	root := newProject(t)

	_, _ = executeCommand(rootCmd, "check", "-C", root, "--ci")
	assert.Equal(t, ExitCodeMatch, code)

	module := filepath.Join(root, "src", "api", "products", "products.routes.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(module), 0o755))
	require.NoError(t, os.WriteFile(module, []byte("export default router;\n"), 0o644))

	_, _ = executeCommand(rootCmd, "check", "-C", root, "--ci")
	assert.Equal(t, ExitCodeDifference, code)

	require.NoError(t, os.WriteFile(routerOf(root), []byte("const router = Router(;\n"), 0o644))
	_, _ = executeCommand(rootCmd, "check", "-C", root, "--ci")
	assert.Equal(t, ExitCodeCheckError, code)
}

func TestApplyIgnorePatterns(t *testing.T) {
	report := &routesync.Report{
		Missing: []routesync.Missing{
			{Module: scanner.RouteModule{Name: "users"}},
			{Module: scanner.RouteModule{Name: "legacy-orders"}},
		},
		Orphaned: []routesync.Orphan{
			{Binding: "legacyRouter"},
		},
	}

	assert.Same(t, report, applyIgnorePatterns(report, nil))

	filtered := applyIgnorePatterns(report, []string{"legacy*"})
	require.Len(t, filtered.Missing, 1)
	assert.Equal(t, "users", filtered.Missing[0].Module.Name)
	assert.Empty(t, filtered.Orphaned)
	assert.False(t, filtered.InSync())
}

func TestMatchesAnyPattern(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		patterns []string
		expected bool
	}{
		{"exact match", "users", []string{"users"}, true},
		{"no match", "users", []string{"orders"}, false},
		{"prefix wildcard", "legacyRouter", []string{"legacy*"}, true},
		{"suffix wildcard", "ordersRouter", []string{"*Router"}, true},
		{"single char", "v1", []string{"v?"}, true},
		{"empty patterns", "users", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchesAnyPattern(tt.s, tt.patterns))
		})
	}
}

func TestLineDiff(t *testing.T) {
	before := "a\nb\nc\nd\ne\nf\ng\n"
	after := "a\nb\nc\nX\nd\ne\nf\ng\n"

	out := lineDiff("routes.ts", []byte(before), []byte(after), 1)
	assert.Contains(t, out, "--- routes.ts")
	assert.Contains(t, out, "+X\n")
	assert.Contains(t, out, " c\n")
	assert.Contains(t, out, " d\n")
	assert.Contains(t, out, "@@")
	assert.NotContains(t, out, " a\n")

	assert.Empty(t, lineDiff("routes.ts", []byte(before), []byte(before), 1))
}

func TestBuildEndpoint(t *testing.T) {
	ep, err := buildEndpoint("order-items", "", "get,post", "name:string:required", true)
	require.NoError(t, err)
	assert.Equal(t, "/order-items", ep.Path)
	assert.Len(t, ep.Methods, 2)
	require.Len(t, ep.Fields, 1)
	assert.True(t, ep.Fields[0].Required)
	assert.True(t, ep.Repository)

	_, err = buildEndpoint("", "", "", "", false)
	require.Error(t, err)
}

func TestRouteRequest_NestedRouter(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.API = "src/modules"
	cfg.Paths.Router = "src/routes/index.ts"
	p := &project{Root: "/app", Cfg: cfg}

	ep, err := buildEndpoint("users", "", "", "", false)
	require.NoError(t, err)

	req := routeRequest(p, ep)
	assert.Equal(t, "usersRouter", req.RouterBindingName)
	assert.Equal(t, "../modules/users/users.routes.js", req.ImportModulePath)
	assert.Equal(t, "/users", req.RoutePath)
}

func TestWatchSession(t *testing.T) {
	root := newProject(t)
	cfg, err := config.LoadFromPath(root)
	require.NoError(t, err)
	p := &project{Root: root, Cfg: cfg}

	s := &watchSession{
		project: p,
		checker: routesync.NewChecker(fsys, cfg.Source.Include, cfg.Source.Exclude),
		prune:   true,
	}

	module := filepath.Join(p.apiDir(), "orders", "orders.routes.ts")
	assert.True(t, s.relevant(fsnotify.Event{Name: module, Op: fsnotify.Create}))
	assert.True(t, s.relevant(fsnotify.Event{Name: p.routerFile(), Op: fsnotify.Write}))
	assert.True(t, s.relevant(fsnotify.Event{Name: filepath.Join(p.apiDir(), "orders"), Op: fsnotify.Remove}))
	assert.False(t, s.relevant(fsnotify.Event{Name: filepath.Join(p.apiDir(), "orders", "orders.handler.ts"), Op: fsnotify.Write}))
	assert.False(t, s.relevant(fsnotify.Event{Name: module, Op: fsnotify.Chmod}))
	assert.False(t, s.relevant(fsnotify.Event{Name: filepath.Join(p.apiDir(), "node_modules", "x", "x.routes.ts"), Op: fsnotify.Create}))

	require.NoError(t, os.MkdirAll(filepath.Dir(module), 0o755))
	require.NoError(t, os.WriteFile(module, []byte("export default router;\n"), 0o644))

	require.NoError(t, s.sync())
	assert.Contains(t, readFile(t, p.routerFile()), "router.use('/orders', ordersRouter);")

	require.NoError(t, os.RemoveAll(filepath.Dir(module)))
	require.NoError(t, s.sync())
	assert.NotContains(t, readFile(t, p.routerFile()), "ordersRouter")
}

func TestWatchSession_RunStopsOnCancel(t *testing.T) {
	root := newProject(t)
	cfg, err := config.LoadFromPath(root)
	require.NoError(t, err)

	s := &watchSession{
		project: &project{Root: root, Cfg: cfg},
		checker: routesync.NewChecker(fsys, cfg.Source.Include, cfg.Source.Exclude),
	}

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()
	require.NoError(t, s.addTree(watcher, s.project.apiDir()))
	assert.Contains(t, watcher.WatchList(), s.project.apiDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.run(ctx, watcher))
}

type fakeRunner struct {
	calls []string
	fail  string
}

func (f *fakeRunner) Run(_ context.Context, _ string, name string, args ...string) error {
	line := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, line)
	if f.fail != "" && strings.HasPrefix(line, f.fail) {
		return errors.New("exit status 1")
	}
	return nil
}

func stubDeploy(t *testing.T, runner *fakeRunner, pm2 error) {
	t.Helper()
	newRunner = func(_, _ io.Writer) deploy.Runner { return runner }
	checkPM2 = func() error { return pm2 }
	t.Cleanup(func() {
		newRunner = func(stdout, stderr io.Writer) deploy.Runner {
			return &deploy.ExecRunner{Stdout: stdout, Stderr: stderr}
		}
		checkPM2 = deploy.CheckPM2
	})
}

func TestDeploySetup(t *testing.T) {
	root := newProject(t)

	output, err := executeCommand(rootCmd, "deploy", "setup", "-C", root, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, output, "name: 'shop'")
	assert.NoFileExists(t, filepath.Join(root, "ecosystem.config.cjs"))

	_, err = executeCommand(rootCmd, "deploy", "setup", "-C", root)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "ecosystem.config.cjs"))

	_, err = executeCommand(rootCmd, "deploy", "setup", "-C", root)
	require.Error(t, err)

	_, err = executeCommand(rootCmd, "deploy", "setup", "-C", root, "--force")
	require.NoError(t, err)
}

func TestDeployUp_DryRun(t *testing.T) {
	root := newProject(t)

	output, err := executeCommand(rootCmd, "deploy", "up", "-C", root, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, output, "1. npm ci")
	assert.Contains(t, output, "2. npm run build")
	assert.Contains(t, output, "3. pm2 startOrReload ecosystem.config.cjs --env production")
	assert.Contains(t, output, "4. pm2 save (optional)")
}

func TestDeployUp_RunsPlan(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{}
	stubDeploy(t, runner, nil)

	_, err := executeCommand(rootCmd, "deploy", "up", "-C", root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"npm ci",
		"npm run build",
		"pm2 startOrReload ecosystem.config.cjs --env production",
		"pm2 save",
	}, runner.calls)
	assert.FileExists(t, filepath.Join(root, "ecosystem.config.cjs"))
}

func TestDeploy_StopsAtFailingStep(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{fail: "npm run build"}
	stubDeploy(t, runner, nil)

	_, err := executeCommand(rootCmd, "deploy", "up", "-C", root)
	require.Error(t, err)

	var stepErr *deploy.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "build", stepErr.Step.Name)
	assert.Len(t, runner.calls, 2)
}

func TestDeploy_RequiresPM2(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{}
	stubDeploy(t, runner, deploy.ErrPM2NotFound)

	_, err := executeCommand(rootCmd, "deploy", "status", "-C", root)
	require.ErrorIs(t, err, deploy.ErrPM2NotFound)
	assert.Empty(t, runner.calls)
}

func TestDeployLogs(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{}
	stubDeploy(t, runner, nil)

	_, err := executeCommand(rootCmd, "deploy", "logs", "-C", root, "--lines", "20")
	require.NoError(t, err)
	assert.Equal(t, []string{"pm2 logs shop --lines 20 --nostream"}, runner.calls)
}
