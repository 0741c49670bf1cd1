package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/cleanwatercheck/waterreport/internal/model"
)

// RegionRepo provides read access to the regions reference data and its
// water source / water utility child tables.  Regions are maintained by
// admin tooling; the API only ever reads them.
type RegionRepo struct {
    db *sql.DB
}

// NewRegionRepo returns a new RegionRepo bound to the given database.
func NewRegionRepo(db *sql.DB) *RegionRepo { return &RegionRepo{db: db} }

// ListAll returns every region ordered by name.
func (r *RegionRepo) ListAll(ctx context.Context) ([]model.Region, error) {
    const q = `SELECT id, name, code, population, created_at, updated_at
               FROM regions ORDER BY name ASC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, wrapSchemaErr(err)
    }
    defer rows.Close()
    out := []model.Region{}
    for rows.Next() {
        var reg model.Region
        if err := rows.Scan(&reg.ID, &reg.Name, &reg.Code, &reg.Population,
            &reg.CreatedAt, &reg.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, reg)
    }
    return out, rows.Err()
}

// GetByID returns a single region together with its water sources and
// water utilities.  ErrRegionNotFound is returned when no row matches.
func (r *RegionRepo) GetByID(ctx context.Context, id uint64) (model.Region, []model.WaterSource, []model.WaterUtility, error) {
    var reg model.Region
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, code, population, created_at, updated_at
         FROM regions WHERE id = ? LIMIT 1`, id).Scan(
        &reg.ID, &reg.Name, &reg.Code, &reg.Population, &reg.CreatedAt, &reg.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.Region{}, nil, nil, ErrRegionNotFound
        }
        return model.Region{}, nil, nil, wrapSchemaErr(err)
    }

    sources, err := r.sourcesByRegion(ctx, id)
    if err != nil {
        return model.Region{}, nil, nil, err
    }
    utilities, err := r.utilitiesByRegionID(ctx, id)
    if err != nil {
        return model.Region{}, nil, nil, err
    }
    return reg, sources, utilities, nil
}

func (r *RegionRepo) sourcesByRegion(ctx context.Context, regionID uint64) ([]model.WaterSource, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, region_id, name, type, latitude, longitude
         FROM water_sources WHERE region_id = ?`, regionID)
    if err != nil {
        return nil, wrapSchemaErr(err)
    }
    defer rows.Close()
    out := []model.WaterSource{}
    for rows.Next() {
        var s model.WaterSource
        if err := rows.Scan(&s.ID, &s.RegionID, &s.Name, &s.Type, &s.Latitude, &s.Longitude); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

func (r *RegionRepo) utilitiesByRegionID(ctx context.Context, regionID uint64) ([]model.WaterUtility, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, region_id, name, type, population_served, treatment_capacity
         FROM water_utilities WHERE region_id = ?`, regionID)
    if err != nil {
        return nil, wrapSchemaErr(err)
    }
    defer rows.Close()
    out := []model.WaterUtility{}
    for rows.Next() {
        var u model.WaterUtility
        if err := rows.Scan(&u.ID, &u.RegionID, &u.Name, &u.Type,
            &u.PopulationServed, &u.TreatmentCapacity); err != nil {
            return nil, err
        }
        out = append(out, u)
    }
    return out, rows.Err()
}

// CityByPostalCode resolves a postal code to its city record.
// ErrCityNotFound is returned for unknown postal codes.
func (r *RegionRepo) CityByPostalCode(ctx context.Context, postalCode string) (model.City, error) {
    var c model.City
    err := r.db.QueryRowContext(ctx,
        `SELECT postal_code, city_name, region FROM cities WHERE postal_code = ? LIMIT 1`,
        postalCode).Scan(&c.PostalCode, &c.CityName, &c.Region)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.City{}, ErrCityNotFound
        }
        return model.City{}, wrapSchemaErr(err)
    }
    return c, nil
}

// UtilitiesByRegionName returns the water utilities serving the named
// region.  Used by the postal-code water-info lookup, where the city row
// carries a region name rather than an id.
func (r *RegionRepo) UtilitiesByRegionName(ctx context.Context, region string) ([]model.WaterUtility, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT wu.id, wu.region_id, wu.name, wu.type, wu.population_served, wu.treatment_capacity
         FROM water_utilities wu
         JOIN regions reg ON reg.id = wu.region_id
         WHERE reg.name = ?`, region)
    if err != nil {
        return nil, wrapSchemaErr(err)
    }
    defer rows.Close()
    out := []model.WaterUtility{}
    for rows.Next() {
        var u model.WaterUtility
        if err := rows.Scan(&u.ID, &u.RegionID, &u.Name, &u.Type,
            &u.PopulationServed, &u.TreatmentCapacity); err != nil {
            return nil, err
        }
        out = append(out, u)
    }
    return out, rows.Err()
}
