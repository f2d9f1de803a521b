package gitx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOwnerRepo(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    OwnerRepo
		wantErr bool
	}{
		{
			name: "ssh with suffix",
			url:  "git@github.com:acme/widgets.git",
			want: OwnerRepo{Owner: "acme", Repo: "widgets"},
		},
		{
			name: "https with suffix",
			url:  "https://github.com/acme/widgets.git",
			want: OwnerRepo{Owner: "acme", Repo: "widgets"},
		},
		{
			name: "https without suffix",
			url:  "https://github.com/acme/widgets",
			want: OwnerRepo{Owner: "acme", Repo: "widgets"},
		},
		{
			name:    "other host",
			url:     "https://gitlab.com/acme/widgets",
			wantErr: true,
		},
		{
			name:    "missing repo",
			url:     "git@github.com:acme",
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseOwnerRepo(tc.url)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPagesURL(t *testing.T) {
	or := OwnerRepo{Owner: "acme", Repo: "widgets"}
	assert.Equal(t, "https://acme.github.io/widgets/", or.PagesURL())
	assert.Equal(t, "acme/widgets", or.Slug())
}
