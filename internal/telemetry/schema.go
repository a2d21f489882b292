package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/gpufanctl/internal/errors"
)

func initSchema(db *sql.DB) error {
	errFactory := errors.New()

	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS telemetry (
            timestamp INTEGER PRIMARY KEY,
            temperature REAL,
            smoothed_temperature REAL,
            raw_max_temperature REAL,
            device_count INTEGER,
            target_fan_speed INTEGER,
            applied_fan_speed INTEGER,
            warmed_up INTEGER,
            monitor INTEGER
        )
    `)
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}
