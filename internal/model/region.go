package model

import "time"

// Region represents a row of the `regions` table.  Regions are reference
// data maintained by admin tooling, not created by end users.  Name and
// Code are both unique.
type Region struct {
    ID         uint64    // regions.id
    Name       string    // regions.name
    Code       string    // regions.code
    Population *uint64   // regions.population (nullable)
    CreatedAt  time.Time // regions.created_at
    UpdatedAt  time.Time // regions.updated_at
}

// WaterSource is a child row of a region describing one raw-water source
// (lake, river, groundwater intake) with its coordinates.
type WaterSource struct {
    ID        uint64  // water_sources.id
    RegionID  uint64  // water_sources.region_id
    Name      string  // water_sources.name
    Type      string  // water_sources.type
    Latitude  float64 // water_sources.latitude
    Longitude float64 // water_sources.longitude
}

// WaterUtility is a child row of a region describing one drinking-water
// utility serving that region.
type WaterUtility struct {
    ID                uint64 // water_utilities.id
    RegionID          uint64 // water_utilities.region_id
    Name              string // water_utilities.name
    Type              string // water_utilities.type
    PopulationServed  uint64 // water_utilities.population_served
    TreatmentCapacity uint64 // water_utilities.treatment_capacity
}

// City maps a postal code to its city and region for the public
// water-info lookup.  Postal codes are the primary key.
type City struct {
    PostalCode string // cities.postal_code
    CityName   string // cities.city_name
    Region     string // cities.region
}
