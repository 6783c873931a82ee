package scripthost_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tsload/internal/adapters/compiler/compilertest"
	"go.trai.ch/tsload/internal/adapters/compiler/scripthost"
	"go.trai.ch/tsload/internal/adapters/compiler/scripts"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestResolve_Direct(t *testing.T) {
	sources := compilertest.NewSources(map[string]string{"lib/util.ts": "export {}"})

	src, err := scripthost.Resolve(sources, "src/main.ts", "lib/util.ts")
	require.NoError(t, err)
	assert.Equal(t, "lib/util.ts", src.Filename())
}

func TestResolve_RelativeToEntry(t *testing.T) {
	sources := compilertest.NewSources(map[string]string{"src/helper.ts": "export {}"})

	src, err := scripthost.Resolve(sources, "src/main.ts", "helper.ts")
	require.NoError(t, err)
	assert.Equal(t, "src/helper.ts", src.Filename())
	assert.Equal(t, 1, sources.Lookups("helper.ts"))
}

func TestResolve_NotFound(t *testing.T) {
	sources := compilertest.NewSources(nil)

	_, err := scripthost.Resolve(sources, "src/main.ts", "missing.ts")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
	assert.Equal(t, 1, sources.Lookups("src/missing.ts"))
}

func TestResolve_NoRetryForAbsoluteOrTopLevel(t *testing.T) {
	sources := compilertest.NewSources(nil)

	_, err := scripthost.Resolve(sources, "main.ts", "other.ts")
	require.ErrorIs(t, err, domain.ErrSourceNotFound)

	_, err = scripthost.Resolve(sources, "src/main.ts", "/abs/other.ts")
	require.ErrorIs(t, err, domain.ErrSourceNotFound)
	assert.Zero(t, sources.Lookups("src/abs/other.ts"))
}

func TestResolve_ReadErrorIsNotRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	sources := mocks.NewMockSourceFactory(ctrl)

	readErr := errors.Join(domain.ErrSourceReadFailed, errors.New("permission denied"))
	sources.EXPECT().GetSource("helper.ts").Return(nil, readErr)

	_, err := scripthost.Resolve(sources, "src/main.ts", "helper.ts")
	require.ErrorIs(t, err, domain.ErrSourceReadFailed)
}

func TestScript(t *testing.T) {
	sources := compilertest.NewSources(map[string]string{"custom.js": "function compileTypescript() {}"})

	builtin, err := scripthost.Adapter(sources, domain.CompilerConfig{})
	require.NoError(t, err)
	assert.Equal(t, scripts.AdapterName, builtin.Filename())
	assert.Equal(t, scripts.Adapter, builtin.Contents())

	custom, err := scripthost.Adapter(sources, domain.CompilerConfig{Adapter: "custom.js"})
	require.NoError(t, err)
	assert.Equal(t, "custom.js", custom.Filename())

	_, err = scripthost.Adapter(sources, domain.CompilerConfig{Adapter: "nope.js"})
	require.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestSession_Entry(t *testing.T) {
	sources := compilertest.NewSources(map[string]string{"test.ts": "var i: number = 5;"})

	src, err := scripthost.NewSession("test.ts", sources).Entry()
	require.NoError(t, err)
	assert.Equal(t, "var i: number = 5;", src.Contents())

	_, err = scripthost.NewSession("missing.ts", sources).Entry()
	require.Error(t, err)

	var compileErr *domain.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "missing.ts", compileErr.Filename)
	assert.ErrorIs(t, err, domain.ErrCompileFailed)
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestSession_GetSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	sources := mocks.NewMockSourceFactory(ctrl)

	readErr := errors.Join(domain.ErrSourceReadFailed, errors.New("permission denied"))
	sources.EXPECT().GetSource("a.ts").Return(domain.NewSource("a.ts", "A"), nil)
	sources.EXPECT().GetSource("missing.ts").Return(nil, domain.NotFoundError("missing.ts", nil))
	sources.EXPECT().GetSource("locked.ts").Return(nil, readErr)

	session := scripthost.NewSession("a.ts", sources)

	assert.Equal(t, scripthost.Result{Found: true, Filename: "a.ts", Contents: "A"}, session.GetSource("a.ts"))
	assert.Equal(t, scripthost.Result{Filename: "missing.ts"}, session.GetSource("missing.ts"))

	locked := session.GetSource("locked.ts")
	assert.False(t, locked.Found)
	assert.Contains(t, locked.Error, "permission denied")

	err := session.Fail(errors.New("script threw"))
	assert.ErrorIs(t, err, domain.ErrCompileFailed)
	assert.ErrorIs(t, err, domain.ErrSourceReadFailed, "read failures surface in the compile error")
}

func TestSession_Diagnostics(t *testing.T) {
	session := scripthost.NewSession("test.ts", compilertest.NewSources(nil))
	assert.Empty(t, session.Diagnostics())

	session.ReportDiagnostic("test.ts(1,5): error TS2322: Type 'string' is not assignable to type 'number'.")
	session.ReportDiagnostic("test.ts(2,1): error TS2304: Cannot find name 'x'.\n")

	assert.Equal(t,
		"test.ts(1,5): error TS2322: Type 'string' is not assignable to type 'number'.\n"+
			"test.ts(2,1): error TS2304: Cannot find name 'x'.\n",
		session.Diagnostics())

	var compileErr *domain.CompileError
	require.ErrorAs(t, session.Fail(errors.New("Could not compile source file test.ts")), &compileErr)
	assert.Equal(t, "test.ts", compileErr.Filename)
	assert.Zero(t, compileErr.ExitCode)
	assert.Equal(t, session.Diagnostics(), compileErr.Output)
	assert.Contains(t, compileErr.Error(), "TS2304")
}
