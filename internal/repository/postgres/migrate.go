package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS ride_requests (
	id                        UUID PRIMARY KEY,
	status                    TEXT NOT NULL,
	customer_id               TEXT NOT NULL,
	customer_name             TEXT NOT NULL DEFAULT '',
	driver_id                 TEXT,
	driver_name               TEXT,
	pickup_latitude           DOUBLE PRECISION NOT NULL,
	pickup_longitude          DOUBLE PRECISION NOT NULL,
	destination_latitude      DOUBLE PRECISION NOT NULL,
	destination_longitude     DOUBLE PRECISION NOT NULL,
	pickup_address            TEXT NOT NULL DEFAULT '',
	pickup_description        TEXT NOT NULL DEFAULT '',
	destination_address       TEXT NOT NULL DEFAULT '',
	destination_description   TEXT NOT NULL DEFAULT '',
	pickup_geohash            TEXT NOT NULL DEFAULT '',
	estimated_price           DOUBLE PRECISION NOT NULL DEFAULT 0,
	request_time              BIGINT NOT NULL,
	accept_time               BIGINT,
	start_time                BIGINT,
	end_time                  BIGINT,
	start_trip_latitude       DOUBLE PRECISION,
	start_trip_longitude      DOUBLE PRECISION,
	current_driver_latitude   DOUBLE PRECISION,
	current_driver_longitude  DOUBLE PRECISION,
	calculated_mileage        DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_ride_requests_status ON ride_requests (status);
CREATE INDEX IF NOT EXISTS idx_ride_requests_driver ON ride_requests (driver_id) WHERE driver_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_ride_requests_customer ON ride_requests (customer_id);
`

// Migrate creates the ride_requests table if it doesn't exist
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
