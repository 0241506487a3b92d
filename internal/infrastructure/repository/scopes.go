package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ctxKey string

// txKey carries the *gorm.DB of an open transaction
const txKey ctxKey = "gorm_tx"

// WithTx stores an open transaction in the context
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// conn returns the transaction bound to ctx, or db when there is none
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// SearchScope matches any of the given columns with ILIKE
func SearchScope(search string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + search + "%"
		cond := db.Session(&gorm.Session{NewDB: true})
		for i, col := range columns {
			if i == 0 {
				cond = cond.Where(col+" ILIKE ?", pattern)
			} else {
				cond = cond.Or(col+" ILIKE ?", pattern)
			}
		}
		return db.Where(cond)
	}
}

// DateRangeScope bounds column by optional inclusive start and end instants
func DateRangeScope(column string, start, end *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where(column+" >= ?", *start)
		}
		if end != nil {
			db = db.Where(column+" <= ?", *end)
		}
		return db
	}
}
