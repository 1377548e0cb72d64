// Package harness runs whole jobs through the application for integration
// tests.
package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/palladiogo/internal/app"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/rulectx"
	"github.com/specialistvlad/palladiogo/internal/scene"
	"github.com/specialistvlad/palladiogo/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Result holds the outcomes of an integration test run.
type Result struct {
	LogOutput string
	Err       error
	// Dir is the temporary root all files were written to.
	Dir string
}

// Output loads the scene written to path, relative to Dir.
func (r *Result) Output(t *testing.T, path string) *geo.Detail {
	t.Helper()
	require.NoError(t, r.Err, r.LogOutput)
	d, err := scene.Load(filepath.Join(r.Dir, path))
	require.NoError(t, err)
	return d
}

// RunJob writes files below a temporary root and runs the job files found
// in its "job" directory.
func RunJob(t *testing.T, files map[string]string) *Result {
	t.Helper()
	return RunJobWithContext(context.Background(), t, files)
}

// RunJobWithContext is RunJob with a caller provided context.
func RunJobWithContext(ctx context.Context, t *testing.T, files map[string]string) *Result {
	t.Helper()

	dir := testutil.WriteFiles(t, files)
	cfg, err := app.NewConfig(app.Config{
		JobPaths:  []string{filepath.Join(dir, "job")},
		LogLevel:  "debug",
		LogFormat: "text",
		Engine:    rulectx.Config{UnpackDir: filepath.Join(dir, "unpack"), Cores: 2},
	})
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	a, err := app.New(logs, cfg, nil)
	require.NoError(t, err)

	runErr := a.Run(ctx)
	require.NoError(t, a.Close())

	if os.Getenv("PALLADIO_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}
	return &Result{LogOutput: logs.String(), Err: runErr, Dir: dir}
}
