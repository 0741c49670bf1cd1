package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/cleanwatercheck/waterreport/internal/model"
    "github.com/cleanwatercheck/waterreport/internal/repository"
    "github.com/cleanwatercheck/waterreport/internal/utils"
)

// ReferenceHandler serves the read-only reference data: regions with
// their water sources and utilities, monitoring stations, and the
// postal-code lookup combining both.
type ReferenceHandler struct {
    Regions  *repository.RegionRepo
    Stations *repository.StationRepo
}

// NewReferenceHandler constructs a ReferenceHandler and panics if a dependency is nil.
func NewReferenceHandler(regions *repository.RegionRepo, stations *repository.StationRepo) *ReferenceHandler {
    if regions == nil || stations == nil {
        panic("nil dependency passed to NewReferenceHandler")
    }
    return &ReferenceHandler{Regions: regions, Stations: stations}
}

// GetRegions handles GET /api/regions and returns all regions ordered by name.
func (h *ReferenceHandler) GetRegions(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Regions.ListAll(ctx)
    if err != nil {
        var se *repository.SchemaError
        if errors.As(err, &se) {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": se.Error()})
        }
        c.Logger().Errorf("list regions: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error while listing regions"})
    }
    if items == nil {
        items = []model.Region{}
    }
    return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// GetRegion handles GET /api/regions/:id and returns the region with
// its water sources and utilities.
func (h *ReferenceHandler) GetRegion(c echo.Context) error {
    regionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || regionID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid region id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    region, sources, utilities, err := h.Regions.GetByID(ctx, regionID)
    if err != nil {
        if errors.Is(err, repository.ErrRegionNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "region not found"})
        }
        c.Logger().Errorf("get region %d: %v", regionID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
    }
    return c.JSON(http.StatusOK, map[string]any{
        "region":          region,
        "water_sources":   sources,
        "water_utilities": utilities,
    })
}

// GetStations handles GET /api/stations with an optional ?region=
// filter, returning stations ordered by name.
func (h *ReferenceHandler) GetStations(c echo.Context) error {
    region := c.QueryParam("region")

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Stations.List(ctx, region)
    if err != nil {
        var se *repository.SchemaError
        if errors.As(err, &se) {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": se.Error()})
        }
        c.Logger().Errorf("list stations: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error while listing stations"})
    }
    if items == nil {
        items = []model.Station{}
    }
    return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// GetStation handles GET /api/stations/:id.
func (h *ReferenceHandler) GetStation(c echo.Context) error {
    stationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || stationID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid station id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    st, err := h.Stations.GetByID(ctx, stationID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
        }
        c.Logger().Errorf("get station %d: %v", stationID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
    }
    return c.JSON(http.StatusOK, st)
}

// GetWaterInfo handles GET /api/water-info/:postalCode.  It resolves
// the postal code to a city, then returns the water utilities of the
// city's region.  An unknown postal code is a 404; a malformed one is
// rejected before the database is consulted.
func (h *ReferenceHandler) GetWaterInfo(c echo.Context) error {
    postalCode := c.Param("postalCode")
    if !utils.ValidPostalCode(postalCode) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "postal code must be 5 digits"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    city, err := h.Regions.CityByPostalCode(ctx, postalCode)
    if err != nil {
        if errors.Is(err, repository.ErrCityNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no city found for this postal code"})
        }
        c.Logger().Errorf("water info %s: %v", postalCode, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
    }

    utilities, err := h.Regions.UtilitiesByRegionName(ctx, city.Region)
    if err != nil {
        c.Logger().Errorf("water info %s utilities: %v", postalCode, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
    }
    if utilities == nil {
        utilities = []model.WaterUtility{}
    }

    return c.JSON(http.StatusOK, map[string]any{
        "postal_code":     city.PostalCode,
        "city":            city.CityName,
        "region":          city.Region,
        "water_utilities": utilities,
    })
}
