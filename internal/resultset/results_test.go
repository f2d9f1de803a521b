package resultset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDocumentVerdict(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Verdict
	}{
		{
			name: "explicit success true",
			data: `{"success": true, "commit_hash": "abc"}`,
			want: VerdictPassed,
		},
		{
			name: "explicit success false wins over clean summary",
			data: `{"success": false, "summary": {"total": 10, "failed": 0}}`,
			want: VerdictFailed,
		},
		{
			name: "legacy derived pass",
			data: `{"summary": {"total": 10, "failed": 0}}`,
			want: VerdictPassed,
		},
		{
			name: "legacy derived fail",
			data: `{"summary": {"total": 10, "failed": 2}}`,
			want: VerdictFailed,
		},
		{
			name: "legacy empty run is unknown",
			data: `{"summary": {"total": 0}}`,
			want: VerdictUnknown,
		},
		{
			name: "no success and no summary",
			data: `{"commit_hash": "abc", "timestamp": "2024-01-01T00:00:00"}`,
			want: VerdictUnknown,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := DecodeDocument([]byte(tc.data))
			require.NoError(t, err)
			assert.Equal(t, tc.want, doc.Verdict())
		})
	}
}

func TestDecodeDocumentFields(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{
		"success": true,
		"commit_hash": "0123456789abcdef",
		"timestamp": "2024-05-01T10:00:00",
		"summary": {"total": 3, "failed": 0, "passed": 3},
		"tests": [{"name": "t1", "status": "passed", "duration_seconds": 1.5}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", doc.CommitHash)
	assert.Equal(t, "2024-05-01T10:00:00", doc.Timestamp)
	require.NotNil(t, doc.Summary)
	assert.Equal(t, 3, doc.Summary.Total)
	require.Len(t, doc.Tests, 1)
	assert.Equal(t, 1.5, doc.Tests[0].DurationSeconds)
}

func TestDecodeDocumentInvalid(t *testing.T) {
	_, err := DecodeDocument([]byte("not json"))
	assert.Error(t, err)
}
