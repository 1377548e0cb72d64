package cli_behavior

import (
	"testing"

	"github.com/specialistvlad/palladiogo/internal/integration_tests/harness"
	"github.com/specialistvlad/palladiogo/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestJob_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		files map[string]string
		msg   string
	}{
		{
			name:  "invalid hcl is rejected",
			files: map[string]string{"job/main.hcl": `assign "a" {`},
			msg:   "failed to parse",
		},
		{
			name: "required rpk missing",
			files: map[string]string{"job/main.hcl": `
assign "a" {
  rule_file = "bin/lot.cgb"
}
`},
			msg: "rpk",
		},
		{
			name: "scene set twice",
			files: map[string]string{
				"job/a.hcl": `scene = "a.yaml"`,
				"job/b.hcl": `scene = "b.yaml"`,
			},
			msg: "scene",
		},
		{
			name:  "no job files",
			files: map[string]string{"job/readme.txt": "nothing here"},
			msg:   "no job files found",
		},
		{
			name: "unknown override",
			files: map[string]string{
				"lot.rpk": testutil.LotPackage,
				"s.yaml":  "points: [[0, 0, 0], [0, 0, 1], [1, 0, 1]]\nprimitives:\n  - {type: Poly, points: [0, 1, 2]}\n",
				"job/main.hcl": `
scene  = "../s.yaml"
output = "../o.yaml"

assign "a" {
  rpk        = "../lot.rpk"
  rule_file  = "bin/lot.cgb"
  start_rule = "Lot"
  overrides  = { storeys = 4 }
}
`,
			},
			msg: `override "storeys": no such rule attribute`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			result := harness.RunJob(t, tc.files)

			// --- Assert ---
			require.Error(t, result.Err)
			require.Contains(t, result.Err.Error(), tc.msg)
		})
	}
}
