package jobconfig

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/palladiogo/internal/shape"
	"github.com/specialistvlad/palladiogo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const lotsJob = `
scene  = "scenes/lots.yaml"
output = "${job_dir}/out/buildings.yaml"

assign "lots" {
  classifier = "lotId"
  rpk        = "rules/lot.rpk"
  rule_file  = "bin/lot.cgb"
  start_rule = "Lot"
  style      = "Night"

  overrides = {
    height            = 3.5
    "facade.material" = "stone"
    flat              = false
  }
}

generate {
  classifier      = "lotId"
  group_creation  = "primcls"
  emit_attributes = true
  emit_materials  = true
}
`

func TestLoad(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.LogContext(t)
	dir := testutil.WriteFiles(t, map[string]string{"job.hcl": lotsJob})

	// --- Act ---
	job, err := Load(ctx, dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scenes", "lots.yaml"), job.Scene)
	assert.Equal(t, filepath.Join(dir, "out", "buildings.yaml"), job.Output)

	require.Len(t, job.Assign, 1)
	a := job.Assign[0]
	want := &Assign{
		Name:       "lots",
		Classifier: "lotId",
		RPK:        filepath.Join(dir, "rules", "lot.rpk"),
		RuleFile:   "bin/lot.cgb",
		StartRule:  "Lot",
		Style:      "Night",
	}
	overrides := a.Overrides
	a.Overrides = nil
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("assign mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, overrides, 3)
	assert.True(t, overrides["height"].Equals(cty.NumberFloatVal(3.5)).True())
	assert.True(t, overrides["facade.material"].RawEquals(cty.StringVal("stone")))
	assert.True(t, overrides["flat"].RawEquals(cty.False))

	p := job.Assign[0].Params()
	assert.Equal(t, "lotId", p.Classifier)
	assert.Equal(t, "Night$Lot", p.Main.FullyQualifiedStartRule())

	require.NotNil(t, job.Generate)
	assert.Equal(t, Generate{Classifier: "lotId", GroupCreation: shape.GroupPrimCls, EmitAttributes: true, EmitMaterials: true}, *job.Generate)
	assert.Equal(t, shape.GroupPrimCls, job.Generate.Params().GroupCreation)
}

func TestLoad_MergesFiles(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	dir := testutil.WriteFiles(t, map[string]string{
		"a/scene.hcl":  `scene = "/abs/lots.yaml"`,
		"a/assign.hcl": `assign "first" { rpk = "/r/a.rpk" }`,
		"b/assign.hcl": `assign "second" { rpk = "b.rpk" }`,
		"notes.txt":    `not a job file`,
	})

	job, err := Load(ctx, filepath.Join(dir, "a"), filepath.Join(dir, "b", "assign.hcl"), filepath.Join(dir, "missing"))

	require.NoError(t, err)
	assert.Equal(t, "/abs/lots.yaml", job.Scene)
	require.Len(t, job.Assign, 2)
	assert.Equal(t, "first", job.Assign[0].Name)
	assert.Equal(t, filepath.Join(dir, "b", "b.rpk"), job.Assign[1].RPK)
	assert.Nil(t, job.Generate)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{name: "syntax", files: map[string]string{"job.hcl": `scene = `}, want: "failed to parse job file"},
		{name: "missing rpk", files: map[string]string{"job.hcl": `assign "a" {}`}, want: "failed to decode job file"},
		{name: "unknown attribute", files: map[string]string{"job.hcl": `colour = "red"`}, want: "failed to decode job file"},
		{name: "bad overrides", files: map[string]string{"job.hcl": `assign "a" {
  rpk       = "a.rpk"
  overrides = "height"
}`}, want: "overrides must be an object"},
		{name: "bad group creation", files: map[string]string{"job.hcl": `generate {
  group_creation = "all"
}`}, want: "generate:"},
		{name: "duplicate assign", files: map[string]string{
			"a.hcl": `assign "a" { rpk = "a.rpk" }`,
			"b.hcl": `assign "a" { rpk = "b.rpk" }`,
		}, want: `assign "a" is declared twice`},
		{name: "duplicate scene", files: map[string]string{
			"a.hcl": `scene = "a.yaml"`,
			"b.hcl": `scene = "b.yaml"`,
		}, want: "scene is already set"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.LogContext(t)
			dir := testutil.WriteFiles(t, tc.files)

			_, err := Load(ctx, dir)

			assert.ErrorContains(t, err, tc.want)
		})
	}

	t.Run("no job files", func(t *testing.T) {
		ctx, _ := testutil.LogContext(t)
		_, err := Load(ctx, t.TempDir())
		assert.ErrorIs(t, err, ErrNoJobFiles)
	})
}
