package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/gpufanctl/internal/errors"
	"codeberg.org/mutker/gpufanctl/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type Repository interface {
	Store(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal=WAL")
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func (r *sqliteRepository) Store(ctx context.Context, snapshot *Snapshot) error {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO telemetry (
            timestamp, temperature, smoothed_temperature, raw_max_temperature,
            device_count, target_fan_speed, applied_fan_speed,
            warmed_up, monitor
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            temperature = excluded.temperature,
            smoothed_temperature = excluded.smoothed_temperature,
            raw_max_temperature = excluded.raw_max_temperature,
            device_count = excluded.device_count,
            target_fan_speed = excluded.target_fan_speed,
            applied_fan_speed = excluded.applied_fan_speed,
            warmed_up = excluded.warmed_up,
            monitor = excluded.monitor
    `,
		snapshot.Timestamp.Unix(),
		snapshot.Temperature.Current,
		snapshot.Temperature.Smoothed,
		snapshot.Temperature.RawMax,
		snapshot.Temperature.DeviceCount,
		snapshot.FanSpeed.Target,
		snapshot.FanSpeed.Applied,
		boolToInt(snapshot.SystemState.WarmedUp),
		boolToInt(snapshot.SystemState.Monitor),
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}
	return nil
}
