package domain_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tsload/internal/core/domain"
)

func TestSource_DigestIsContentAddressed(t *testing.T) {
	a := domain.NewSource("a.ts", "var i: number = 5;")
	b := domain.NewSource("b.ts", "var i: number = 5;")
	c := domain.NewSource("a.ts", "var i: number = 6;")

	assert.Equal(t, a.Digest(), b.Digest(), "same contents, different names")
	assert.NotEqual(t, a.Digest(), c.Digest(), "different contents")
}

func TestSource_DigestIsPathSafe(t *testing.T) {
	corpus := []string{"", "a", "var i: number = 5;", strings.Repeat("x", 4096), "ünïcödé"}
	seen := make(map[string]string, len(corpus))

	for _, contents := range corpus {
		d := domain.NewSource("f.ts", contents).Digest()
		assert.Len(t, d, 43, "unpadded base64 of a SHA-256 sum")
		assert.NotContains(t, d, "/")
		assert.NotContains(t, d, "+")
		assert.NotContains(t, d, "=")
		assert.Equal(t, filepath.Base(d), d)

		prev, dup := seen[d]
		assert.False(t, dup, "collision between %q and %q", prev, contents)
		seen[d] = contents
	}
}

func TestSource_DigestIsStable(t *testing.T) {
	// SHA-256("abc") in base64url.
	assert.Equal(t, "ungWv48Bz-pBQUDeXa4iI7ADYaOWF3qctBD_YfIAFa0", domain.NewSource("x", "abc").Digest())
}

func TestSource_Equal(t *testing.T) {
	a := domain.NewSource("a.ts", "x")

	assert.True(t, a.Equal(domain.NewSource("a.ts", "x")))
	assert.False(t, a.Equal(domain.NewSource("b.ts", "x")))
	assert.False(t, a.Equal(domain.NewSource("a.ts", "y")))
	assert.False(t, a.Equal(nil))
	assert.Equal(t, a.Key(), domain.NewSource("a.ts", "x").Key())
	assert.Equal(t, "x", a.String())
}

func TestSourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("let a = 1;"), 0o600))

	src, err := domain.SourceFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Filename())
	assert.Equal(t, "let a = 1;", src.Contents())
}

func TestSourceFromFile_NotFound(t *testing.T) {
	_, err := domain.SourceFromFile(filepath.Join(t.TempDir(), "missing.ts"))
	require.ErrorIs(t, err, domain.ErrSourceNotFound)
	assert.NotErrorIs(t, err, domain.ErrSourceReadFailed)
}

func TestSourceFromFile_ReadFailure(t *testing.T) {
	_, err := domain.SourceFromFile(t.TempDir())
	require.ErrorIs(t, err, domain.ErrSourceReadFailed)
	assert.NotErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestSourceFromFS(t *testing.T) {
	fsys := fstest.MapFS{"lib/a.ts": {Data: []byte("a")}}

	src, err := domain.SourceFromFS(fsys, "lib/a.ts")
	require.NoError(t, err)
	assert.Equal(t, "a", src.Contents())

	_, err = domain.SourceFromFS(fsys, "lib/b.ts")
	require.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestParseCacheMode(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.CacheMode
		wantErr bool
	}{
		{"", domain.CacheNone, false},
		{"none", domain.CacheNone, false},
		{"Memory", domain.CacheMemory, false},
		{" disk ", domain.CacheDisk, false},
		{"weak", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseCacheMode(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidCacheMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := domain.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, domain.CacheNone, cfg.Cache.Mode)
	assert.Equal(t, "typescript_code_cache", cfg.Cache.Dir)

	cfg.Cache.Mode = "bogus"
	require.ErrorIs(t, cfg.Validate(), domain.ErrInvalidCacheMode)

	cfg.Cache.Mode = domain.CacheMemory
	cfg.Cache.Size = 0
	require.ErrorIs(t, cfg.Validate(), domain.ErrInvalidCacheSize)
}

func TestCompileError(t *testing.T) {
	err := &domain.CompileError{Filename: "test.ts", ExitCode: 1, Output: "ERR\n"}

	assert.Equal(t, "could not compile script. Exit code: 1\nERR", err.Error())
	require.ErrorIs(t, err, domain.ErrCompileFailed)

	var ce *domain.CompileError
	require.ErrorAs(t, error(err), &ce)
	assert.Equal(t, 1, ce.ExitCode)
}

func TestCompileError_WrapsCause(t *testing.T) {
	cause := domain.NotFoundError("helper.ts", nil)
	err := &domain.CompileError{Filename: "test.ts", Err: cause}

	require.ErrorIs(t, err, domain.ErrCompileFailed)
	require.ErrorIs(t, err, domain.ErrSourceNotFound)
	assert.True(t, strings.HasPrefix(err.Error(), `could not compile "test.ts": `))
	assert.False(t, errors.Is(err, domain.ErrSourceReadFailed))
}

func TestBackendKind_String(t *testing.T) {
	assert.Equal(t, "native", domain.BackendNative.String())
	assert.Equal(t, "process", domain.BackendProcess.String())
	assert.Equal(t, "engine", domain.BackendEngine.String())
	assert.Equal(t, "unknown", domain.BackendKind(42).String())
}
