package models

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// Track mirrors a catalog track. Rows are refreshed by search and never deleted.
type Track struct {
	ID         string     `gorm:"primaryKey;size:64" json:"id"` // catalog id
	Name       string     `gorm:"not null" json:"name"`
	Artists    StringList `gorm:"type:text;not null" json:"artists"`
	Album      string     `gorm:"not null;default:''" json:"album"`
	AlbumImage *string    `json:"albumImage"`
	PreviewURL *string    `json:"previewUrl"`
	Popularity *int       `gorm:"index" json:"popularity"`
	CachedAt   time.Time  `gorm:"index" json:"cachedAt"`
	// SearchText is name, album and artists lowercased in Go, one per line.
	// Matching on it avoids SQLite's ASCII-only LOWER().
	SearchText string    `gorm:"type:text;not null;default:''" json:"-"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

func (t *Track) BeforeSave(tx *gorm.DB) error {
	parts := make([]string, 0, len(t.Artists)+2)
	parts = append(parts, t.Name, t.Album)
	parts = append(parts, t.Artists...)
	t.SearchText = strings.ToLower(strings.Join(parts, "\n"))
	return nil
}

// StringList stores a []string as a JSON array in a text column, so the same
// schema works on Postgres and SQLite.
type StringList []string

// Value stores the list without HTML escaping; "&", "<" and ">" stay literal
// in the column.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(l)); err != nil {
		return nil, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("models: unsupported StringList source")
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

func (StringList) GormDataType() string { return "text" }

// MarshalJSON keeps empty lists as [] instead of null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}
