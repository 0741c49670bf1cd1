package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/cleanwatercheck/waterreport/internal/model"
)

// StationRepo provides read access to monitoring stations.  Stations are
// reference data: reports may point at one, and the frontend lists them
// per region when composing a report.
type StationRepo struct {
    db *sql.DB
}

// NewStationRepo returns a new StationRepo bound to the given database.
func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{db: db} }

// List returns stations, optionally restricted to a region, ordered by
// name.  An empty region string lists every station.
func (r *StationRepo) List(ctx context.Context, region string) ([]model.Station, error) {
    query := `SELECT id, name, region, latitude, longitude, type, status, created_at, updated_at
              FROM stations`
    args := []any{}
    if region != "" {
        query += " WHERE region = ?"
        args = append(args, region)
    }
    query += " ORDER BY name ASC"

    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, wrapSchemaErr(err)
    }
    defer rows.Close()
    out := []model.Station{}
    for rows.Next() {
        var s model.Station
        if err := rows.Scan(&s.ID, &s.Name, &s.Region, &s.Latitude, &s.Longitude,
            &s.Type, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

// GetByID returns a single station or sql.ErrNoRows.
func (r *StationRepo) GetByID(ctx context.Context, id uint64) (model.Station, error) {
    var s model.Station
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, region, latitude, longitude, type, status, created_at, updated_at
         FROM stations WHERE id = ? LIMIT 1`, id).Scan(
        &s.ID, &s.Name, &s.Region, &s.Latitude, &s.Longitude,
        &s.Type, &s.Status, &s.CreatedAt, &s.UpdatedAt)
    if err != nil && !errors.Is(err, sql.ErrNoRows) {
        return model.Station{}, wrapSchemaErr(err)
    }
    return s, err
}
