package rulectx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/palladiogo/internal/prt"
	"github.com/specialistvlad/palladiogo/internal/prt/memprt"
	"github.com/specialistvlad/palladiogo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PALLADIO_CORES", "3")
	t.Setenv("PALLADIO_HOST_ENCODING", "windows-1252")

	cfg, err := ConfigFromEnv()

	require.NoError(t, err)
	assert.Equal(t, Config{Cores: 3, HostEncoding: "windows-1252", StringCacheSize: 4096}, cfg)

	t.Run("invalid number", func(t *testing.T) {
		t.Setenv("PALLADIO_STRING_CACHE_SIZE", "many")
		_, err := ConfigFromEnv()
		assert.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	ctx, _ := testutil.LogContext(t)

	rc, err := New(ctx, Config{HostEncoding: "windows-1252"}, nil)
	require.NoError(t, err)

	assert.Positive(t, rc.Cores)
	assert.Equal(t, "windows-1252", rc.Names.Encoding())
	assert.True(t, strings.HasPrefix(filepath.Base(rc.ResolveMaps.UnpackDir()), unpackDirPrefix))
	assert.DirExists(t, rc.ResolveMaps.UnpackDir())
	assert.IsType(t, &memprt.Engine{}, rc.Engine)

	require.NoError(t, rc.Close())
	assert.NoDirExists(t, rc.ResolveMaps.UnpackDir())

	t.Run("unknown host encoding", func(t *testing.T) {
		_, err := New(ctx, Config{HostEncoding: "klingon"}, nil)
		assert.Error(t, err)
	})
}

func TestContext_ResolveMapFlushesOnChange(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.LogContext(t)
	dir := testutil.WriteFiles(t, map[string]string{"lot.rpk": testutil.LotPackage})
	path := filepath.Join(dir, "lot.rpk")
	rc, err := New(ctx, Config{UnpackDir: filepath.Join(dir, "unpack"), Cores: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	cache := rc.Cache.(*memprt.Cache)

	rm, err := rc.ResolveMap(ctx, path)
	require.NoError(t, err)
	info, err := rc.RuleFileInfo(rm, "bin/lot.cgb")
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Equal(t, 1, cache.Len())

	// --- Act ---
	_, err = rc.ResolveMap(ctx, path)
	require.NoError(t, err)
	hitLen := cache.Len()

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	_, err = rc.ResolveMap(ctx, path)
	require.NoError(t, err)

	// --- Assert ---
	assert.Equal(t, 1, hitLen)
	assert.Equal(t, 0, cache.Len())
}

func TestContext_RuleFileInfoErrors(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	rc, err := New(ctx, Config{UnpackDir: t.TempDir()}, nil)
	require.NoError(t, err)

	_, err = rc.RuleFileInfo(nil, "bin/lot.cgb")
	assert.Equal(t, prt.StatusResolveMapProviderNotFound, prt.StatusOf(err))

	_, err = rc.RuleFileInfo(prt.MapResolveMap{}, "bin/lot.cgb")
	assert.Equal(t, prt.StatusRuleFileNotFound, prt.StatusOf(err))

	_, err = rc.ResolveMap(ctx, filepath.Join(t.TempDir(), "missing.rpk"))
	assert.Error(t, err)
}
