package services

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// ClampLimit parses a limit query value, defaulting to 10 and clamping to [1, 50].
func ClampLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return DefaultPageSize
	}
	if n < 1 {
		return 1
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// afterCursor restricts q to rows strictly after (createdAt, id) in the
// given direction. id breaks ties between equal timestamps.
func afterCursor(q *gorm.DB, createdAt time.Time, id string, desc bool) *gorm.DB {
	if desc {
		return q.Where("(created_at < ? OR (created_at = ? AND id < ?))", createdAt, createdAt, id)
	}
	return q.Where("(created_at > ? OR (created_at = ? AND id > ?))", createdAt, createdAt, id)
}

func orderByCursor(q *gorm.DB, desc bool) *gorm.DB {
	if desc {
		return q.Order("created_at DESC").Order("id DESC")
	}
	return q.Order("created_at ASC").Order("id ASC")
}

// trimPage drops the look-ahead row. When there was one, the last row kept
// becomes the next cursor.
func trimPage[T any](rows []T, limit int, idOf func(T) string) ([]T, *string) {
	if len(rows) <= limit {
		return rows, nil
	}
	rows = rows[:limit]
	next := idOf(rows[limit-1])
	return rows, &next
}
