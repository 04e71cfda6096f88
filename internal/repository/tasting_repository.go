package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bbmitchh/Logmypour2/internal/model"
)

const tastingColumns = `id, user_id, day_of_week, tasting_date, tasting_time, store_name, products,
	bottles_to_sell, bottles_sold, bottles_left, total_bottles, poured_to_sold_percent, tastings_poured`

// TastingRepo provides CRUD operations on the tastings table. Mutations
// check ownership inside a transaction so a record cannot change hands
// between the check and the write.
type TastingRepo struct {
	db *sql.DB
}

func NewTastingRepo(db *sql.DB) *TastingRepo { return &TastingRepo{db: db} }

// Create inserts t and sets t.ID.
func (r *TastingRepo) Create(ctx context.Context, t *model.Tasting) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tastings (user_id, day_of_week, tasting_date, tasting_time, store_name, products,
		 bottles_to_sell, bottles_sold, bottles_left, total_bottles, poured_to_sold_percent, tastings_poured)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.UserID, t.DayOfWeek, t.Date, t.Time, t.StoreName, t.Products,
		t.BottlesToSell, t.BottlesSold, t.BottlesLeft, t.TotalBottles, t.PouredToSoldPercent, t.TastingsPoured)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ListByOwner returns every tasting of userID, newest first.
func (r *TastingRepo) ListByOwner(ctx context.Context, userID uint64) ([]model.Tasting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tastingColumns+` FROM tastings WHERE user_id = ?
		 ORDER BY tasting_date DESC, tasting_time DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Tasting
	for rows.Next() {
		t, err := scanTasting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID returns a tasting regardless of owner.
func (r *TastingRepo) GetByID(ctx context.Context, id uint64) (model.Tasting, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tastingColumns+` FROM tastings WHERE id = ?`, id)
	t, err := scanTasting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tasting{}, ErrNotFound
	}
	return t, err
}

// UpdateByIDAndOwner overwrites the editable fields of t. If the tasting
// does not exist ErrNotFound is returned; if it exists but belongs to
// someone other than ownerID, ErrForbidden.
func (r *TastingRepo) UpdateByIDAndOwner(ctx context.Context, t *model.Tasting, ownerID uint64) error {
	return withTx(ctx, r.db, func(ctx context.Context, tx dbtx) error {
		if err := checkOwner(ctx, tx, t.ID, ownerID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE tastings SET day_of_week=?, tasting_date=?, tasting_time=?, store_name=?, products=?,
			 bottles_to_sell=?, bottles_sold=?, bottles_left=?, total_bottles=?, poured_to_sold_percent=?,
			 tastings_poured=?, updated_at=CURRENT_TIMESTAMP
			 WHERE id=?`,
			t.DayOfWeek, t.Date, t.Time, t.StoreName, t.Products,
			t.BottlesToSell, t.BottlesSold, t.BottlesLeft, t.TotalBottles, t.PouredToSoldPercent,
			t.TastingsPoured, t.ID)
		if err != nil {
			return err
		}
		t.UserID = ownerID
		return nil
	})
}

// DeleteByIDAndOwner removes a tasting provided it belongs to ownerID, with
// the same error contract as UpdateByIDAndOwner.
func (r *TastingRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	return withTx(ctx, r.db, func(ctx context.Context, tx dbtx) error {
		if err := checkOwner(ctx, tx, id, ownerID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM tastings WHERE id = ?`, id)
		return err
	})
}

func checkOwner(ctx context.Context, tx dbtx, id, ownerID uint64) error {
	var dbOwnerID uint64
	if err := tx.QueryRowContext(ctx, `SELECT user_id FROM tastings WHERE id = ?`, id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTasting(s rowScanner) (model.Tasting, error) {
	var t model.Tasting
	err := s.Scan(&t.ID, &t.UserID, &t.DayOfWeek, &t.Date, &t.Time, &t.StoreName, &t.Products,
		&t.BottlesToSell, &t.BottlesSold, &t.BottlesLeft, &t.TotalBottles, &t.PouredToSoldPercent, &t.TastingsPoured)
	return t, err
}
