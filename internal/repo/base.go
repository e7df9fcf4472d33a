package repo

import (
	"context"

	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// NewestFirst orders query by (created_at, id) descending and, when cursor is
// set, keeps only rows strictly after it in that order. Column names are
// qualified with table when it is non-empty.
func NewestFirst(query *gorm.DB, table string, cursor *pagination.Cursor) *gorm.DB {
	createdAt, id := "created_at", "id"
	if table != "" {
		createdAt, id = table+".created_at", table+".id"
	}
	if cursor != nil {
		query = query.Where("("+createdAt+" < ?) OR ("+createdAt+" = ? AND "+id+" < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	return query.Order(createdAt + " DESC").Order(id + " DESC")
}
