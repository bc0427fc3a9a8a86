package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}

	assert.Len(t, ups, 4)
	assert.Equal(t, ups, downs)
}

func TestLegacyTimeBackfill(t *testing.T) {
	body, err := fs.ReadFile(files, "sql/000002_zeit_range.up.sql")
	require.NoError(t, err)

	assert.Contains(t, string(body), "SET zeit_anfang = zeit")
	assert.Contains(t, string(body), "ADDTIME(zeit_anfang, '00:15:00')")
}

func TestStatistikLogIsUnique(t *testing.T) {
	body, err := fs.ReadFile(files, "sql/000003_statistik.up.sql")
	require.NoError(t, err)

	assert.Contains(t, string(body), "UNIQUE KEY statistik_log_once (aufguss_id, datum)")
}
