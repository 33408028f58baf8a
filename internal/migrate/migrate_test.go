// AngelaMos | 2026
// migrate_test.go

package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	migrations, err := Load(files)
	require.NoError(t, err)
	require.Len(t, migrations, 4)

	want := []string{"users", "refresh_tokens", "ads", "feedbacks"}
	for i, name := range want {
		assert.Equal(t, name, migrations[i].Name)
	}

	assert.Contains(t, migrations[2].SQL, "ON DELETE SET NULL")
	assert.Contains(t, migrations[3].SQL, "REFERENCES ads (id) ON DELETE SET NULL")
}

func TestLoad_Ordering(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/0002_second.sql": {Data: []byte("SELECT 2;")},
		"sql/0001_first.sql":  {Data: []byte("SELECT 1;")},
		"sql/readme.txt":      {Data: []byte("ignored")},
	}

	migrations, err := Load(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0001", migrations[0].Version)
	assert.Equal(t, "first", migrations[0].Name)
	assert.Equal(t, "SELECT 2;", migrations[1].SQL)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{
			name: "missing name",
			fsys: fstest.MapFS{"sql/0001.sql": {Data: []byte("SELECT 1;")}},
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"sql/0001_a.sql": {Data: []byte("SELECT 1;")},
				"sql/0001_b.sql": {Data: []byte("SELECT 1;")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.fsys)
			assert.Error(t, err)
		})
	}
}
