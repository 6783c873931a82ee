package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/tsload/internal/adapters/cache"
	"go.trai.ch/tsload/internal/adapters/compiler/compilertest"
	"go.trai.ch/tsload/internal/adapters/compiler/engine"
	"go.trai.ch/tsload/internal/adapters/telemetry"
	"go.trai.ch/tsload/internal/app"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports/mocks"
	"go.trai.ch/tsload/internal/engine/selector"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"tsload": func() {
			os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, provideComponents))
		},
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata",
		Setup: setupScript,
	})
}

// setupScript installs the test TypeScript bundle where the default
// configuration looks for it and pins selection to the embedded engine.
func setupScript(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")
	env.Setenv("TSLOAD_DISABLE_NATIVE", "1")
	env.Setenv("TSLOAD_DISABLE_PROCESS", "1")

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)

	bundle := filepath.Join(env.WorkDir, filepath.FromSlash(domain.DefaultBundle))
	if err := os.MkdirAll(filepath.Dir(bundle), 0o750); err != nil {
		return err
	}
	return os.WriteFile(bundle, []byte(compilertest.Bundle), 0o600)
}

func newComponents(t *testing.T) (*app.Components, *mocks.MockConfigLoader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)

	loader := mocks.NewMockConfigLoader(ctrl)
	log := mocks.NewMockLogger(ctrl)
	selectors := selector.NewFactory(selector.NewRegistry(), log, telemetry.NewNoOpTracer(), engine.NewBackend())
	a := app.New(loader, cache.NewFactory(log), selectors, mocks.NewMockWatcherFactory(ctrl), log, telemetry.NewNoOpTracer())

	return &app.Components{App: a, Logger: log}, loader, log
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	components, _, _ := newComponents(t)
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), provider)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "tsload version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run logs the error and returns 1 when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	components, loader, log := newComponents(t)
	loader.EXPECT().Load(gomock.Any(), "").Return(nil, domain.ErrConfigParseFailed)
	log.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrConfigParseFailed)
	})

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"compile", "a.ts"}, new(bytes.Buffer), new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}
