package analytics

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

// Manager owns the derived analytics views and the reports read from them.
type Manager struct {
	log        *logger.Logger
	db         *gorm.DB
	now        func() time.Time
	viewsReady atomic.Bool
}

func NewManager(log *logger.Logger, db *gorm.DB) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		log: log.With("service", "AnalyticsViews"),
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// sqlTime scans timestamps from view columns. SQLite hands aggregated
// timestamps back as text, so both forms are accepted.
type sqlTime struct {
	Time  time.Time
	Valid bool
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *sqlTime) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*t = sqlTime{}
		return nil
	case time.Time:
		*t = sqlTime{Time: x.UTC(), Valid: true}
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	}
	return fmt.Errorf("cannot scan %T into timestamp", v)
}

// Value and GormDataType make gorm treat the field as a column rather than
// a relation.
func (t sqlTime) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time, nil
}

func (sqlTime) GormDataType() string { return "time" }

func (t *sqlTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = sqlTime{Time: parsed.UTC(), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (t sqlTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return 0
	}
	return v.Float64
}
