package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bbmitchh/Logmypour2/internal/config"
	"github.com/bbmitchh/Logmypour2/internal/database"
	"github.com/bbmitchh/Logmypour2/internal/model"
	"github.com/bbmitchh/Logmypour2/internal/tasting"
)

// newSQLite returns a migrated SQLite database in a temp dir.
func newSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.Migrate(context.Background(), db, config.DriverSQLite)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *sql.DB, email string) model.User {
	t.Helper()
	u := model.User{FirstName: "Ann", LastName: "Lee", Email: email, PasswordHash: "hash"}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), &u))
	return u
}

func sampleTasting(userID uint64, date, clock string) model.Tasting {
	lines := model.Products{
		tasting.NewLine("Pure Blue Vodka", 5, 2),
		tasting.NewLine("Oak Rum", 1, 3),
	}
	r := tasting.Summarize(lines, 10)
	return model.Tasting{
		UserID:              userID,
		DayOfWeek:           "Friday",
		Date:                date,
		Time:                clock,
		StoreName:           "Kroger",
		Products:            lines,
		BottlesToSell:       r.ToSell,
		BottlesSold:         r.Sold,
		BottlesLeft:         r.Left,
		PouredToSoldPercent: r.Conversion,
		TastingsPoured:      10,
	}
}
