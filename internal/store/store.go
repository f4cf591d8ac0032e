// Package store persists the application's models through GORM.
package store

import (
	"context" // Request scoped queries
	"errors"  // Sentinel errors
	"fmt"     // Error wrapping

	"wallet_booking/internal/domain" // Importing domain models
	"wallet_booking/internal/utils"  // Pagination

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // ON CONFLICT clauses
)

// Errors returned by the store. Anything else is an unexpected database failure.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrNoSeats           = errors.New("not enough seats")
	ErrNotPending        = errors.New("record is not pending")
	ErrInUse             = errors.New("record is referenced")
)

// Store wraps the GORM handle
type Store struct {
	db *gorm.DB // Database handle
}

// New returns a Store over db
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB() // Underlying database/sql pool
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps GORM errors onto store errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// paginate counts and fetches one page of q into a slice of T
func paginate[T any](q *gorm.DB, p utils.Page, order string) ([]T, int64, error) {
	q = q.Session(&gorm.Session{}) // reusable for both statements
	var total int64 // Rows matching q before paging
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}
	rows := make([]T, 0, p.PageSize) // Never nil, so JSON renders []
	if err := q.Order(order).Offset(p.Offset()).Limit(p.PageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("find: %w", err)
	}
	return rows, total, nil
}

// firstByUser loads the per-user singleton row of type T
func firstByUser[T any](ctx context.Context, db *gorm.DB, userID uint) (*T, error) {
	var row T
	// Query the row owned by the user
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, translate(err) // ErrNotFound when the user has none yet
	}
	return &row, nil
}

// upsertByUser inserts row or, when the user already has one, overwrites columns
func upsertByUser(ctx context.Context, db *gorm.DB, row any, columns ...string) error {
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}}, // Unique per user
		DoUpdates: clause.AssignmentColumns(columns),  // Overwrite only these on conflict
	}).Create(row).Error
	return translate(err)
}

// debit decrements a balance only if it covers amount, in a single statement
func debit(tx *gorm.DB, userID uint, coin domain.Coin, amount float64) error {
	if !coin.Valid() {
		return fmt.Errorf("unsupported coin %q", coin)
	}
	col := coin.Column() // Balance column for the coin
	// Deduct only when the balance covers amount
	res := tx.Model(&domain.User{}).
		Where("id = ? AND "+col+" >= ?", userID, amount).
		Update(col, gorm.Expr(col+" - ?", amount))
	if res.Error != nil {
		return res.Error // Return error to rollback
	}
	// No row matched, the balance was short or the user is gone
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// credit increments a balance
func credit(tx *gorm.DB, userID uint, coin domain.Coin, amount float64) error {
	if !coin.Valid() {
		return fmt.Errorf("unsupported coin %q", coin)
	}
	col := coin.Column() // Balance column for the coin
	// Add to the balance
	res := tx.Model(&domain.User{}).
		Where("id = ?", userID).
		Update(col, gorm.Expr(col+" + ?", amount))
	if res.Error != nil {
		return res.Error // Return error to rollback
	}
	// No row matched, the user does not exist
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
