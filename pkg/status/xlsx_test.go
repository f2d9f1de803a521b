package status

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/testwell-ci/testpages/internal/resultset"
)

func TestWriteXLSX(t *testing.T) {
	results := []*RepoStatus{
		{
			Ref:       RepoRef{Name: "widgets"},
			LocalHead: "aaa",
			Branches: map[string]BranchStatus{
				"dev": {
					"linux-gpu":   {Verdict: resultset.VerdictPassed, CommitHash: "aaa", Timestamp: "2024-05-01"},
					"windows-cpu": {Verdict: resultset.VerdictFailed, CommitHash: "bbb", Timestamp: "2024-05-01"},
				},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "status.xlsx")
	require.NoError(t, WriteXLSX(path, results))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Repo", "Branch", "Platform", "Result", "Commit", "Freshness", "Timestamp"}, rows[0])
	assert.Equal(t, "linux-gpu", rows[1][2])
	assert.Equal(t, "pass", rows[1][3])
	assert.Equal(t, "fresh", rows[1][5])
	assert.Equal(t, "windows-cpu", rows[2][2])
	assert.Equal(t, "fail", rows[2][3])
	assert.Equal(t, "stale", rows[2][5])
}
