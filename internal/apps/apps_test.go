package apps

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/atlanticdynamic/cartlaunch/internal/config"
	"github.com/atlanticdynamic/cartlaunch/internal/environ"
	"github.com/atlanticdynamic/cartlaunch/internal/hostguard"
	"github.com/atlanticdynamic/cartlaunch/internal/testutil"
	"github.com/robbyt/go-fsm/v2/transitions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []config.AppType{config.AppTypeEcho, config.AppTypeExec, config.AppTypeProcess}, Types())
	for _, typ := range config.AppTypes {
		assert.Contains(t, Types(), typ)
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := New(nil)
		require.ErrorIs(t, err, ErrNilConfig)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := New(&config.App{Type: "fastcgi"})
		require.ErrorIs(t, err, ErrUnknownAppType)
	})

	t.Run("builds each type", func(t *testing.T) {
		cfg := config.Default()

		app, err := New(&cfg.App)
		require.NoError(t, err)
		assert.IsType(t, &Exec{}, app)

		cfg.App.Type = config.AppTypeProcess
		app, err = New(&cfg.App)
		require.NoError(t, err)
		assert.IsType(t, &Process{}, app)

		cfg.App.Type = config.AppTypeEcho
		cfg.App.Listen = testutil.GetRandomListeningAddr(t)
		app, err = New(&cfg.App, WithAllowedHosts("*"))
		require.NoError(t, err)
		assert.IsType(t, &Echo{}, app)
	})

	t.Run("placeholders expand against the environment", func(t *testing.T) {
		t.Setenv("CARTLAUNCH_APPS_PY", "python3.12")

		cfg := config.Default()
		cfg.App.Command = "${CARTLAUNCH_APPS_PY}"
		cfg.App.Args = []string{"-m", "${CARTLAUNCH_APPS_MODULE:shopping_cart_python.main}"}

		app, err := New(&cfg.App)
		require.NoError(t, err)
		execApp := app.(*Exec)
		assert.Equal(t, "python3.12", execApp.command)
		assert.Equal(t, []string{"-m", "shopping_cart_python.main"}, execApp.args)
	})

	t.Run("undefined placeholder", func(t *testing.T) {
		t.Setenv("CARTLAUNCH_APPS_UNSET", "")
		require.NoError(t, os.Unsetenv("CARTLAUNCH_APPS_UNSET"))

		cfg := config.Default()
		cfg.App.Args = []string{"${CARTLAUNCH_APPS_UNSET}"}

		_, err := New(&cfg.App)
		require.ErrorIs(t, err, ErrExpandCommand)
		require.ErrorIs(t, err, environ.ErrUndefinedVar)
	})

	t.Run("command expands to nothing", func(t *testing.T) {
		cfg := config.Default()
		cfg.App.Command = "${CARTLAUNCH_APPS_EMPTY:}"

		_, err := New(&cfg.App)
		require.ErrorIs(t, err, ErrEmptyCommand)
	})
}

func TestExec(t *testing.T) {
	newExec := func(t *testing.T, command string, fn ExecFunc) *Exec {
		t.Helper()
		cfg := config.Default()
		cfg.App.Command = command
		cfg.App.Args = []string{"shopping_cart_python/main.py"}
		cfg.App.Env = map[string]string{"CARTLAUNCH_EXEC_EXTRA": "1"}

		app, err := New(&cfg.App, WithExecFunc(fn))
		require.NoError(t, err)
		return app.(*Exec)
	}

	t.Run("hands off with the configured environment", func(t *testing.T) {
		t.Setenv(environ.AllowedHostsKey, "*")

		var gotPath string
		var gotArgv, gotEnv []string
		app := newExec(t, "sh", func(argv0 string, argv []string, envv []string) error {
			gotPath, gotArgv, gotEnv = argv0, argv, envv
			return nil
		})

		require.NoError(t, app.Run(t.Context()))
		assert.NotEmpty(t, gotPath)
		assert.Equal(t, []string{"sh", "shopping_cart_python/main.py"}, gotArgv)
		assert.Contains(t, gotEnv, environ.AllowedHostsKey+"=*")
		assert.Contains(t, gotEnv, "CARTLAUNCH_EXEC_EXTRA=1")
		assert.Equal(t, "apps.Exec[sh]", app.String())
		assert.NotPanics(t, app.Stop)
	})

	t.Run("missing command", func(t *testing.T) {
		called := false
		app := newExec(t, "cartlaunch-no-such-command", func(string, []string, []string) error {
			called = true
			return nil
		})

		err := app.Run(t.Context())
		require.ErrorIs(t, err, ErrCommandNotFound)
		assert.False(t, called)
	})

	t.Run("exec failure", func(t *testing.T) {
		app := newExec(t, "sh", func(string, []string, []string) error {
			return errors.New("permission denied")
		})

		err := app.Run(t.Context())
		require.ErrorIs(t, err, ErrStartFailed)
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("canceled context", func(t *testing.T) {
		app := newExec(t, "sh", func(string, []string, []string) error {
			t.Fatal("exec must not run after cancellation")
			return nil
		})

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		require.ErrorIs(t, app.Run(ctx), context.Canceled)
	})
}

func newProcess(t *testing.T, stdout io.Writer, args ...string) *Process {
	t.Helper()
	cfg := config.Default()
	cfg.App.Type = config.AppTypeProcess
	cfg.App.Command = "sh"
	cfg.App.Args = args
	cfg.App.StopTimeout = config.FromDuration(2 * time.Second)
	cfg.App.Env = map[string]string{"CARTLAUNCH_PROCESS_EXTRA": "extra"}

	app, err := New(&cfg.App, WithStdio(nil, stdout, io.Discard))
	require.NoError(t, err)
	return app.(*Process)
}

func TestProcess(t *testing.T) {
	t.Run("child sees the environment", func(t *testing.T) {
		t.Setenv(environ.AllowedHostsKey, "example.com")

		out := &testutil.ThreadSafeBuffer{}
		app := newProcess(t, out, "-c", `printf '%s|%s' "$STARLETTE_ALLOWED_HOSTS" "$CARTLAUNCH_PROCESS_EXTRA"`)

		assert.Equal(t, -1, app.ExitCode())
		assert.Equal(t, transitions.StatusNew, app.GetState())
		require.NoError(t, app.Run(t.Context()))
		assert.Equal(t, "example.com|extra", out.String())
		assert.Equal(t, 0, app.ExitCode())
		assert.Equal(t, transitions.StatusStopped, app.GetState())
	})

	t.Run("finished process can run again", func(t *testing.T) {
		app := newProcess(t, io.Discard, "-c", "true")
		require.NoError(t, app.Run(t.Context()))
		require.NoError(t, app.Run(t.Context()))
		assert.Equal(t, transitions.StatusStopped, app.GetState())
	})

	t.Run("non-zero exit is reported", func(t *testing.T) {
		app := newProcess(t, io.Discard, "-c", "exit 3")

		err := app.Run(t.Context())
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 3, exitErr.ExitCode())
		assert.Equal(t, 3, app.ExitCode())
	})

	t.Run("missing command", func(t *testing.T) {
		cfg := config.Default()
		cfg.App.Type = config.AppTypeProcess
		cfg.App.Command = "cartlaunch-no-such-command"

		app, err := New(&cfg.App)
		require.NoError(t, err)
		require.ErrorIs(t, app.Run(t.Context()), ErrCommandNotFound)
		assert.Equal(t, transitions.StatusError, app.(*Process).GetState())
	})

	t.Run("stop terminates the child", func(t *testing.T) {
		app := newProcess(t, io.Discard, "-c", "exec sleep 30")

		errCh := make(chan error, 1)
		go func() { errCh <- app.Run(t.Context()) }()

		require.Eventually(t, app.IsRunning, 5*time.Second, 10*time.Millisecond)

		// give the child a moment to exec into sleep
		time.Sleep(100 * time.Millisecond)
		app.Stop()

		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("process did not stop")
		}
		assert.Equal(t, 143, app.ExitCode(), "SIGTERM is reported as 128+15")
		assert.Equal(t, transitions.StatusStopped, app.GetState())
	})

	t.Run("exit code after stop is reported", func(t *testing.T) {
		app := newProcess(t, io.Discard, "-c", `trap 'kill $!; exit 5' TERM; sleep 30 >/dev/null 2>&1 & wait`)

		errCh := make(chan error, 1)
		go func() { errCh <- app.Run(t.Context()) }()
		require.Eventually(t, app.IsRunning, 5*time.Second, 10*time.Millisecond)

		// give the shell a moment to install the trap
		time.Sleep(100 * time.Millisecond)
		app.Stop()

		select {
		case err := <-errCh:
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 5, exitErr.ExitCode())
		case <-time.After(10 * time.Second):
			t.Fatal("process did not stop")
		}
		assert.Equal(t, 5, app.ExitCode())
	})

	t.Run("cancelled context keeps the exit code", func(t *testing.T) {
		app := newProcess(t, io.Discard, "-c", `trap 'kill $!; exit 6' TERM; sleep 30 >/dev/null 2>&1 & wait`)

		ctx, cancel := context.WithCancel(t.Context())
		errCh := make(chan error, 1)
		go func() { errCh <- app.Run(ctx) }()
		require.Eventually(t, app.IsRunning, 5*time.Second, 10*time.Millisecond)

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 6, exitErr.ExitCode())
		case <-time.After(10 * time.Second):
			t.Fatal("process did not stop")
		}
	})

	t.Run("second run is rejected while running", func(t *testing.T) {
		app := newProcess(t, io.Discard, "-c", "exec sleep 30")

		errCh := make(chan error, 1)
		go func() { errCh <- app.Run(t.Context()) }()
		require.Eventually(t, app.IsRunning, 5*time.Second, 10*time.Millisecond)

		require.ErrorIs(t, app.Run(t.Context()), ErrAlreadyRunning)

		app.Stop()
		require.NoError(t, <-errCh)
	})

	t.Run("stop before run is safe", func(t *testing.T) {
		app := newProcess(t, io.Discard, "-c", "true")
		assert.NotPanics(t, app.Stop)
	})
}

func TestEcho(t *testing.T) {
	addr := testutil.GetRandomListeningAddr(t)

	cfg := config.Default()
	cfg.App.Type = config.AppTypeEcho
	cfg.App.Listen = addr
	cfg.App.Response = "cart launcher ok"

	app, err := New(&cfg.App, WithAllowedHosts("cart.example.com"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- app.Run(ctx) }()

	get := func(host string) (int, string, error) {
		req, err := http.NewRequest(http.MethodGet, "http://"+addr+"/", nil)
		if err != nil {
			return 0, "", err
		}
		req.Host = host
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return 0, "", err
		}
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body), err
	}

	require.Eventually(t, func() bool {
		_, _, err := get("cart.example.com")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond, "echo server never became ready")

	status, body, err := get("cart.example.com:443")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cart launcher ok", body)

	status, body, err = get("internal.render.local")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMisdirectedRequest, status)
	assert.NotContains(t, body, "cart launcher ok")

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			assert.True(t, errors.Is(err, context.Canceled), "unexpected error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("echo server did not stop")
	}
}

func TestEcho_InvalidAllowList(t *testing.T) {
	cfg := config.Default()
	cfg.App.Type = config.AppTypeEcho

	_, err := New(&cfg.App, WithAllowedHosts("cart.*.com"))
	require.ErrorIs(t, err, ErrStartFailed)
}

func TestEcho_AllowList(t *testing.T) {
	newEcho := func(t *testing.T, opts ...Option) (*Echo, error) {
		t.Helper()
		cfg := config.Default()
		cfg.App.Type = config.AppTypeEcho
		cfg.App.Listen = testutil.GetRandomListeningAddr(t)
		app, err := New(&cfg.App, opts...)
		if err != nil {
			return nil, err
		}
		return app.(*Echo), nil
	}

	t.Run("unset variable falls back to the default", func(t *testing.T) {
		t.Setenv(environ.AllowedHostsKey, "")
		require.NoError(t, os.Unsetenv(environ.AllowedHostsKey))

		echo, err := newEcho(t)
		require.NoError(t, err)
		assert.True(t, echo.guard.AllowsAll())
	})

	t.Run("exported empty variable is not replaced by the default", func(t *testing.T) {
		t.Setenv(environ.AllowedHostsKey, "")

		_, err := newEcho(t)
		require.ErrorIs(t, err, ErrStartFailed)
		require.ErrorIs(t, err, hostguard.ErrEmptyAllowList)
	})

	t.Run("empty option is not replaced by the default", func(t *testing.T) {
		_, err := newEcho(t, WithAllowedHosts(""))
		require.ErrorIs(t, err, hostguard.ErrEmptyAllowList)
	})
}

func TestEcho_UsesEnvironment(t *testing.T) {
	t.Setenv(environ.AllowedHostsKey, "only.example.com")

	cfg := config.Default()
	cfg.App.Type = config.AppTypeEcho
	cfg.App.Listen = testutil.GetRandomListeningAddr(t)

	app, err := New(&cfg.App)
	require.NoError(t, err)
	echo := app.(*Echo)
	assert.False(t, echo.guard.AllowsAll())
	assert.True(t, echo.guard.Allowed("only.example.com"))
	assert.Equal(t, "apps.Echo["+cfg.App.Listen+"]", echo.String())
}
