package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Base carries the connection shared by the gorm-backed repositories. A Base
// built from a transaction handle scopes every query to that transaction.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// FirstOrNil runs q.First and maps a missing row to (nil, nil).
func FirstOrNil[T any](q *gorm.DB) (*T, error) {
	var out T
	err := q.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
