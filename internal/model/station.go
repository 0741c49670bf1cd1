package model

import "time"

// Station represents a fixed monitoring point in the `stations` table.
// Reports may reference a station instead of a free-text address.
type Station struct {
    ID        uint64    // stations.id
    Name      string    // stations.name
    Region    string    // stations.region
    Latitude  float64   // stations.latitude
    Longitude float64   // stations.longitude
    Type      string    // stations.type (e.g. municipal, well)
    Status    string    // stations.status (active/inactive)
    CreatedAt time.Time // stations.created_at
    UpdatedAt time.Time // stations.updated_at
}
