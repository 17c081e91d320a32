package storage

import (
	"context"
	"fmt"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	// DSN is the SQLite file path or the PostgreSQL connection string.
	DSN string
	S3  S3Options
}

// Open returns an observable store for the configured driver and a function
// releasing its resources.
func Open(ctx context.Context, o Options) (*Observable, func() error, error) {
	noop := func() error { return nil }

	switch o.Driver {
	case DriverMemory, "":
		return NewObservable(NewMemoryStore()), noop, nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, o.DSN)
		if err != nil {
			return nil, nil, err
		}
		return NewObservable(s), s.Close, nil
	case DriverPostgres:
		s, err := OpenPostgres(ctx, o.DSN)
		if err != nil {
			return nil, nil, err
		}
		return NewObservable(s), s.Close, nil
	case DriverS3:
		s, err := OpenS3(ctx, o.S3)
		if err != nil {
			return nil, nil, err
		}
		return NewObservable(s), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", o.Driver)
	}
}
