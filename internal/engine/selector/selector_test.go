package selector_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tsload/internal/adapters/telemetry"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/tsload/internal/core/ports/mocks"
	"go.trai.ch/tsload/internal/engine/selector"
	"go.uber.org/mock/gomock"
)

var errUnavailable = errors.New("not here")

func newBackend(ctrl *gomock.Controller, kind domain.BackendKind, available error) *mocks.MockBackend {
	b := mocks.NewMockBackend(ctrl)
	b.EXPECT().Kind().Return(kind).AnyTimes()
	b.EXPECT().Available(gomock.Any(), gomock.Any()).Return(available).AnyTimes()
	return b
}

func newCompiler(ctrl *gomock.Controller, kind domain.BackendKind) *mocks.MockCompiler {
	c := mocks.NewMockCompiler(ctrl)
	c.EXPECT().Kind().Return(kind).AnyTimes()
	return c
}

func newFactory(ctrl *gomock.Controller, backends ...*mocks.MockBackend) *selector.Factory {
	list := make([]ports.Backend, 0, len(backends))
	for _, b := range backends {
		list = append(list, b)
	}
	return selector.NewFactory(selector.NewRegistry(), mocks.NewMockLogger(ctrl), telemetry.NewNoOpTracer(), list...)
}

func TestSelector_PriorityOrder(t *testing.T) {
	ctrl := gomock.NewController(t)

	nativeCompiler := newCompiler(ctrl, domain.BackendNative)
	native := newBackend(ctrl, domain.BackendNative, nil)
	native.EXPECT().New(gomock.Any()).Return(nativeCompiler, nil)
	process := newBackend(ctrl, domain.BackendProcess, nil)
	engine := newBackend(ctrl, domain.BackendEngine, nil)

	// Registration order does not matter.
	s := newFactory(ctrl, engine, process, native).New(domain.CompilerConfig{})

	c, err := s.Compiler(context.Background())
	require.NoError(t, err)
	assert.Same(t, nativeCompiler, c)

	kind, ok := s.Kind()
	require.True(t, ok)
	assert.Equal(t, domain.BackendNative, kind)
}

func TestSelector_FallsBackToEngine(t *testing.T) {
	ctrl := gomock.NewController(t)

	engineCompiler := newCompiler(ctrl, domain.BackendEngine)
	native := newBackend(ctrl, domain.BackendNative, nil)
	process := newBackend(ctrl, domain.BackendProcess, errUnavailable)
	engine := newBackend(ctrl, domain.BackendEngine, nil)
	engine.EXPECT().New(gomock.Any()).Return(engineCompiler, nil)

	s := newFactory(ctrl, native, process, engine).New(domain.CompilerConfig{DisableNative: true})

	c, err := s.Compiler(context.Background())
	require.NoError(t, err)
	assert.Same(t, engineCompiler, c)
}

func TestSelector_DisableProcess(t *testing.T) {
	ctrl := gomock.NewController(t)

	engineCompiler := newCompiler(ctrl, domain.BackendEngine)
	process := newBackend(ctrl, domain.BackendProcess, nil)
	engine := newBackend(ctrl, domain.BackendEngine, nil)
	engine.EXPECT().New(gomock.Any()).Return(engineCompiler, nil)

	s := newFactory(ctrl, process, engine).New(domain.CompilerConfig{DisableProcess: true})

	c, err := s.Compiler(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.BackendEngine, c.Kind())
}

func TestSelector_SkipsBackendThatFailsToConstruct(t *testing.T) {
	ctrl := gomock.NewController(t)

	engineCompiler := newCompiler(ctrl, domain.BackendEngine)
	process := newBackend(ctrl, domain.BackendProcess, nil)
	process.EXPECT().New(gomock.Any()).Return(nil, errors.New("boom"))
	engine := newBackend(ctrl, domain.BackendEngine, nil)
	engine.EXPECT().New(gomock.Any()).Return(engineCompiler, nil)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn("compiler backend process: boom")

	s := selector.NewFactory(selector.NewRegistry(), log, telemetry.NewNoOpTracer(), process, engine).
		New(domain.CompilerConfig{})

	c, err := s.Compiler(context.Background())
	require.NoError(t, err)
	assert.Same(t, engineCompiler, c)
}

func TestSelector_NoBackend(t *testing.T) {
	ctrl := gomock.NewController(t)

	native := newBackend(ctrl, domain.BackendNative, errUnavailable)
	s := newFactory(ctrl, native).New(domain.CompilerConfig{})

	_, err := s.Compiler(context.Background())
	require.ErrorIs(t, err, domain.ErrNoBackend)

	_, ok := s.Kind()
	assert.False(t, ok)
}

func TestSelector_ConstructsOnceUnderConcurrency(t *testing.T) {
	ctrl := gomock.NewController(t)

	engineCompiler := newCompiler(ctrl, domain.BackendEngine)
	engine := newBackend(ctrl, domain.BackendEngine, nil)
	engine.EXPECT().New(gomock.Any()).Return(engineCompiler, nil).Times(1)

	s := newFactory(ctrl, engine).New(domain.CompilerConfig{})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.Compiler(context.Background())
			assert.NoError(t, err)
			assert.Same(t, engineCompiler, c)
		}()
	}
	wg.Wait()
}

func TestSelector_PrivateCompilersArePerSelector(t *testing.T) {
	ctrl := gomock.NewController(t)

	first := newCompiler(ctrl, domain.BackendEngine)
	second := newCompiler(ctrl, domain.BackendEngine)
	engine := newBackend(ctrl, domain.BackendEngine, nil)
	gomock.InOrder(
		engine.EXPECT().New(gomock.Any()).Return(first, nil),
		engine.EXPECT().New(gomock.Any()).Return(second, nil),
	)
	first.EXPECT().Close().Return(nil)

	factory := newFactory(ctrl, engine)
	a := factory.New(domain.CompilerConfig{})
	b := factory.New(domain.CompilerConfig{})

	ca, err := a.Compiler(context.Background())
	require.NoError(t, err)
	cb, err := b.Compiler(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, ca, cb)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close(), "closing twice is a no-op")
}

func TestSelector_SharedCompiler(t *testing.T) {
	ctrl := gomock.NewController(t)

	shared := newCompiler(ctrl, domain.BackendEngine)
	engine := newBackend(ctrl, domain.BackendEngine, nil)
	engine.EXPECT().New(gomock.Any()).Return(shared, nil).Times(1)

	factory := newFactory(ctrl, engine)
	cfg := domain.CompilerConfig{Share: true}
	a := factory.New(cfg)
	b := factory.New(cfg)

	ca, err := a.Compiler(context.Background())
	require.NoError(t, err)
	cb, err := b.Compiler(context.Background())
	require.NoError(t, err)
	assert.Same(t, ca, cb)

	// Selectors never close a shared compiler; the registry does.
	require.NoError(t, a.Close())
	require.NoError(t, b.Close())

	shared.EXPECT().Close().Return(nil)
	require.NoError(t, factory.Registry().Close())

	_, ok := factory.Registry().Load(domain.BackendEngine)
	assert.False(t, ok)
}

func TestSelector_SharedLoserIsDiscarded(t *testing.T) {
	ctrl := gomock.NewController(t)

	winner := newCompiler(ctrl, domain.BackendEngine)
	loser := newCompiler(ctrl, domain.BackendEngine)
	loser.EXPECT().Close().Return(nil)

	engine := newBackend(ctrl, domain.BackendEngine, nil)
	factory := newFactory(ctrl, engine)

	// Another selector registers first while this one is constructing.
	engine.EXPECT().New(gomock.Any()).DoAndReturn(func(domain.CompilerConfig) (ports.Compiler, error) {
		_, stored := factory.Registry().CompareAndSet(domain.BackendEngine, winner)
		require.True(t, stored)
		return loser, nil
	})

	c, err := factory.New(domain.CompilerConfig{Share: true}).Compiler(context.Background())
	require.NoError(t, err)
	assert.Same(t, winner, c)
}

func TestSelector_Available(t *testing.T) {
	ctrl := gomock.NewController(t)

	engineCompiler := newCompiler(ctrl, domain.BackendEngine)
	native := newBackend(ctrl, domain.BackendNative, errUnavailable)
	process := newBackend(ctrl, domain.BackendProcess, nil)
	engine := newBackend(ctrl, domain.BackendEngine, nil)
	engine.EXPECT().New(gomock.Any()).Return(engineCompiler, nil)

	s := newFactory(ctrl, native, process, engine).New(domain.CompilerConfig{DisableProcess: true})
	_, err := s.Compiler(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.BackendStatus{
		{Kind: domain.BackendNative, Reason: "not here"},
		{Kind: domain.BackendProcess, Reason: "disabled by configuration"},
		{Kind: domain.BackendEngine, Available: true, Selected: true},
	}, s.Available(context.Background()))
}

func TestRegistry_CompareAndSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := selector.NewRegistry()

	first := newCompiler(ctrl, domain.BackendEngine)
	second := newCompiler(ctrl, domain.BackendEngine)

	got, stored := r.CompareAndSet(domain.BackendEngine, first)
	assert.True(t, stored)
	assert.Same(t, first, got)

	got, stored = r.CompareAndSet(domain.BackendEngine, second)
	assert.False(t, stored)
	assert.Same(t, first, got)

	loaded, ok := r.Load(domain.BackendEngine)
	require.True(t, ok)
	assert.Same(t, first, loaded)

	_, ok = r.Load(domain.BackendNative)
	assert.False(t, ok)
}

func TestRegistry_CloseJoinsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := selector.NewRegistry()

	engine := newCompiler(ctrl, domain.BackendEngine)
	engine.EXPECT().Close().Return(errors.New("engine close"))
	process := newCompiler(ctrl, domain.BackendProcess)
	process.EXPECT().Close().Return(nil)

	r.CompareAndSet(domain.BackendEngine, engine)
	r.CompareAndSet(domain.BackendProcess, process)

	err := r.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine close")
}
