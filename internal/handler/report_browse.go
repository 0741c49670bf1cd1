package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/cleanwatercheck/waterreport/internal/model"
    "github.com/cleanwatercheck/waterreport/internal/repository"
)

// timestampLayout matches the DATE_FORMAT('%Y-%m-%d %T') rendering the
// list query produces, so list rows and the detail view agree.
const timestampLayout = "2006-01-02 15:04:05"

// reportDetail is the full representation returned by Get: the report
// row plus its parameter readings and image records.  The model structs
// carry no json tags, so the response shape is spelled out here with the
// same snake_case keys the list endpoint uses; the raw stored photo path
// stays internal and only the derived photo_url goes out.
type reportDetail struct {
    ID         uint64        `json:"id"`
    Title      string        `json:"title"`
    UserID     uint64        `json:"user_id"`
    StationID  *uint64       `json:"station_id,omitempty"`
    Address    string        `json:"address"`
    PostalCode string        `json:"postal_code"`
    Region     string        `json:"region"`
    Notes      string        `json:"notes"`
    AdminNotes *string       `json:"admin_notes,omitempty"`
    Status     string        `json:"status"`
    PhotoURL   *string       `json:"photo_url,omitempty"`
    CreatedAt  string        `json:"created_at"`
    UpdatedAt  string        `json:"updated_at"`
    Parameters []paramDetail `json:"parameters"`
    Images     []imageDetail `json:"images"`
}

type paramDetail struct {
    ID     uint64  `json:"id"`
    Name   string  `json:"name"`
    Value  float64 `json:"value"`
    Unit   string  `json:"unit,omitempty"`
    Status string  `json:"status"`
}

type imageDetail struct {
    ID         uint64 `json:"id"`
    URL        string `json:"url"`
    UploadedAt string `json:"uploaded_at"`
}

// List handles GET /api/reports.  Unknown query keys are ignored;
// the recognized filters (region, status, postalCode, ownerId) are
// ANDed together.  Results always come back newest first.
func (h *ReportHandler) List(c echo.Context) error {
    filter := repository.FilterFromValues(c.QueryParams())

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rows, err := h.Reports.List(ctx, filter)
    if err != nil {
        var se *repository.SchemaError
        if errors.As(err, &se) {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": se.Error()})
        }
        c.Logger().Errorf("list reports: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error while listing reports"})
    }

    for i := range rows {
        rows[i].PhotoURL = photoURL(rows[i].PhotoPath)
    }

    return c.JSON(http.StatusOK, echo.Map{
        "count":   len(rows),
        "reports": rows,
    })
}

// Get handles GET /api/reports/:id and returns the report with its
// parameters and images in one response.
func (h *ReportHandler) Get(c echo.Context) error {
    reportID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || reportID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rec, err := h.Reports.GetByID(ctx, reportID)
    if err != nil {
        if errors.Is(err, repository.ErrReportNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
        }
        var se *repository.SchemaError
        if errors.As(err, &se) {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": se.Error()})
        }
        c.Logger().Errorf("get report %d: %v", reportID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
    }

    params, err := h.Reports.Parameters(ctx, reportID)
    if err != nil {
        c.Logger().Errorf("get report %d parameters: %v", reportID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
    }
    images, err := h.Reports.Images(ctx, reportID)
    if err != nil {
        c.Logger().Errorf("get report %d images: %v", reportID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
    }

    return c.JSON(http.StatusOK, newReportDetail(rec, params, images))
}

// newReportDetail maps the stored rows onto the wire representation.
func newReportDetail(rec model.Report, params []model.ReportParameter, images []model.ReportImage) reportDetail {
    detail := reportDetail{
        ID:         rec.ID,
        Title:      rec.Title,
        UserID:     rec.UserID,
        StationID:  rec.StationID,
        Address:    rec.Address,
        PostalCode: rec.PostalCode,
        Region:     rec.Region,
        Notes:      rec.Notes,
        AdminNotes: rec.AdminNotes,
        Status:     rec.Status,
        PhotoURL:   photoURL(rec.PhotoPath),
        CreatedAt:  rec.CreatedAt.Format(timestampLayout),
        UpdatedAt:  rec.UpdatedAt.Format(timestampLayout),
        Parameters: make([]paramDetail, 0, len(params)),
        Images:     make([]imageDetail, 0, len(images)),
    }
    for _, p := range params {
        detail.Parameters = append(detail.Parameters, paramDetail{
            ID:     p.ID,
            Name:   p.Name,
            Value:  p.Value,
            Unit:   p.Unit,
            Status: p.Status,
        })
    }
    for _, img := range images {
        u := photoURL(&img.FilePath)
        url := ""
        if u != nil {
            url = *u
        }
        detail.Images = append(detail.Images, imageDetail{
            ID:         img.ID,
            URL:        url,
            UploadedAt: img.UploadedAt.Format(timestampLayout),
        })
    }
    return detail
}
