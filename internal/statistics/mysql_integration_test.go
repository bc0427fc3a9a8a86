package statistics

import (
	"context"
	"testing"
	"time"

	"aufgussplan/internal/config"
	"aufgussplan/internal/database"
	"aufgussplan/internal/database/migrations"
	"aufgussplan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestMySQLIntegration runs the fact queries against a real MySQL container,
// covering the <=> matching and DATE_FORMAT week keys.
func TestMySQLIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping MySQL integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mysql:8.0",
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "secret",
				"MYSQL_DATABASE":      "aufgussplan",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("ready for connections").WithOccurrence(2),
				wait.ForListeningPort("3306/tcp"),
			).WithDeadline(3 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MySQL container: %v", err)
	}
	defer container.Terminate(ctx)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306")
	require.NoError(t, err)

	bunDB, err := database.Open(ctx, config.DatabaseConfig{
		Host:         host,
		Port:         port.Port(),
		Username:     "root",
		Password:     "secret",
		Database:     "aufgussplan",
		MaxOpenConns: 5,
		MaxIdleConns: 5,
		MaxLifetime:  time.Minute,
	}, nil)
	require.NoError(t, err)
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB.DB, nil)
	require.NoError(t, runner.RunMigrations())

	d := &DB{Bun: bunDB}
	first := &models.Aufguss{Datum: "2024-01-10", ZeitAnfang: "10:00:00"}
	second := &models.Aufguss{Datum: "2024-01-10", ZeitAnfang: "11:00:00"}
	for _, a := range []*models.Aufguss{first, second} {
		_, err := bunDB.NewInsert().Model(a).ExcludeColumn("erstellt_am").Exec(ctx)
		require.NoError(t, err)
	}

	for _, a := range []*models.Aufguss{first, second, first} {
		_, err := d.RecordOnce(ctx, a, "2024-01-10")
		require.NoError(t, err)
	}
	total, err := d.Anzahl(ctx, "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	count, err := bunDB.NewSelect().Model((*models.Statistik)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = bunDB.NewInsert().Model(&models.Statistik{Datum: "2021-01-03", Anzahl: 1}).Exec(ctx)
	require.NoError(t, err)
	rows, err := d.CountByPeriod(ctx, Week, Overall, "2021-01-01", "2021-01-31", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2020-W53", rows[0].Period)
}
