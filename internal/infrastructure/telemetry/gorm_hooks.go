package telemetry

import (
	"time"

	"gorm.io/gorm"
)

const queryStartKey = "telemetry:query_start"

// hookPoint lets a plugin run code around one kind of GORM operation
type hookPoint struct {
	operation string
	before    func(name string, fn func(*gorm.DB)) error
	after     func(name string, fn func(*gorm.DB)) error
}

// hookPoints returns the create, query, update, delete, row and raw processors.
// After hooks run before otelgorm closes its span so the span is still recording.
func hookPoints(db *gorm.DB) []hookPoint {
	cb := db.Callback()
	return []hookPoint{
		{
			operation: "create",
			before:    func(n string, fn func(*gorm.DB)) error { return cb.Create().Before("gorm:create").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Create().After("gorm:create").Before("otel:after:create").Register(n, fn)
			},
		},
		{
			operation: "query",
			before:    func(n string, fn func(*gorm.DB)) error { return cb.Query().Before("gorm:query").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Query().After("gorm:query").Before("otel:after:query").Register(n, fn)
			},
		},
		{
			operation: "update",
			before:    func(n string, fn func(*gorm.DB)) error { return cb.Update().Before("gorm:update").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Update().After("gorm:update").Before("otel:after:update").Register(n, fn)
			},
		},
		{
			operation: "delete",
			before:    func(n string, fn func(*gorm.DB)) error { return cb.Delete().Before("gorm:delete").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Delete().After("gorm:delete").Before("otel:after:delete").Register(n, fn)
			},
		},
		{
			operation: "row",
			before:    func(n string, fn func(*gorm.DB)) error { return cb.Row().Before("gorm:row").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Row().After("gorm:row").Before("otel:after:row").Register(n, fn)
			},
		},
		{
			operation: "raw",
			before:    func(n string, fn func(*gorm.DB)) error { return cb.Raw().Before("gorm:raw").Register(n, fn) },
			after: func(n string, fn func(*gorm.DB)) error {
				return cb.Raw().After("gorm:raw").Before("otel:after:raw").Register(n, fn)
			},
		},
	}
}

// registerAround installs before and after hooks for every operation under prefix
func registerAround(db *gorm.DB, prefix string, before func(*gorm.DB), after func(op string) func(*gorm.DB)) error {
	for _, hp := range hookPoints(db) {
		if before != nil {
			if err := hp.before(prefix+":before_"+hp.operation, before); err != nil {
				return err
			}
		}
		if err := hp.after(prefix+":after_"+hp.operation, after(hp.operation)); err != nil {
			return err
		}
	}
	return nil
}

func markQueryStart(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func queryElapsed(db *gorm.DB) (time.Duration, bool) {
	v, ok := db.InstanceGet(queryStartKey)
	if !ok {
		return 0, false
	}
	start, ok := v.(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}
