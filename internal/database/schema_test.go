package database_test

import (
	"context"
	"testing"

	"aufgussplan/internal/database"
	"aufgussplan/internal/database/dbtest"
	"aufgussplan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSchemaIsIdempotent(t *testing.T) {
	db := dbtest.New(t)

	require.NoError(t, database.CreateSchema(context.Background(), db))

	count, err := db.NewSelect().Model((*models.Aufguss)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNullSafeOperatorOnSQLite(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	assert.Equal(t, "IS", database.NullSafeEq(db))
	assert.False(t, database.IsMySQL(db))

	var matches int
	err := db.NewRaw("SELECT CASE WHEN NULL "+database.NullSafeEq(db)+" NULL THEN 1 ELSE 0 END").Scan(ctx, &matches)
	require.NoError(t, err)
	assert.Equal(t, 1, matches)
}

func TestStatistikLogUniqueness(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	_, err := db.NewInsert().Model(&models.StatistikLog{AufgussID: 1, Datum: "2024-01-10"}).ExcludeColumn("geloggt_am").Exec(ctx)
	require.NoError(t, err)

	_, err = db.NewInsert().Model(&models.StatistikLog{AufgussID: 1, Datum: "2024-01-10"}).ExcludeColumn("geloggt_am").Exec(ctx)
	assert.Error(t, err)

	_, err = db.NewInsert().Model(&models.StatistikLog{AufgussID: 1, Datum: "2024-01-11"}).ExcludeColumn("geloggt_am").Exec(ctx)
	assert.NoError(t, err)
}
