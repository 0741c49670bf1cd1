// Package handler defines HTTP handlers for the report workflow: the
// authenticated create/update/delete operations on water quality
// reports.  Authorization decisions are delegated to the policy
// package and performed before any row is touched; multi-row writes
// happen transactionally in the repository layer.  Photo storage
// failures reject the request up front, but photo deletion failures
// never fail a response.
package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/cleanwatercheck/waterreport/internal/model"
    "github.com/cleanwatercheck/waterreport/internal/policy"
    "github.com/cleanwatercheck/waterreport/internal/queue"
    "github.com/cleanwatercheck/waterreport/internal/repository"
    queue_publisher "github.com/cleanwatercheck/waterreport/internal/service"
    "github.com/cleanwatercheck/waterreport/internal/upload"
    "github.com/cleanwatercheck/waterreport/internal/utils"
)

// ReportHandler bundles the dependencies of the report workflow.
type ReportHandler struct {
    Reports *repository.ReportRepo // report + child row persistence
    Store   *upload.Store          // photo intake and best-effort removal
}

// NewReportHandler constructs a ReportHandler and panics if a dependency is nil.
func NewReportHandler(reports *repository.ReportRepo, store *upload.Store) *ReportHandler {
    if reports == nil || store == nil {
        panic("nil dependency passed to NewReportHandler")
    }
    return &ReportHandler{Reports: reports, Store: store}
}

// formField returns a form value and whether the field was present in
// the request at all.  Presence matters for partial updates: an absent
// field is left untouched, an empty one clears the column.
func formField(c echo.Context, key string) (string, bool) {
    vals, err := c.FormParams()
    if err != nil {
        return "", false
    }
    v, ok := vals[key]
    if !ok || len(v) == 0 {
        return "", false
    }
    return v[0], true
}

// savePhoto stores an optional multipart photo field.  It returns the
// stored reference (empty when no photo was sent) or an error already
// mapped to a response by the caller.
func (h *ReportHandler) savePhoto(c echo.Context) (string, error) {
    fh, err := c.FormFile("photo")
    if err != nil {
        // No photo field is fine; only a present-but-broken part errors.
        return "", nil
    }
    return h.Store.Save(fh)
}

// Create handles POST /api/reports.  The body is a multipart form with
// the report fields, an optional parameters JSON array and an optional
// photo.  The report row and every parameter row are inserted in one
// atomic transaction; a stored photo is removed again if that
// transaction fails.  A customer supplying a status field is rejected
// with 403 before anything is written.
func (h *ReportHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    role := getRole(c)

    title, _ := formField(c, "title")
    address, _ := formField(c, "address")
    postalCode, _ := formField(c, "postalCode")
    region, _ := formField(c, "region")
    notes, _ := formField(c, "notes")
    stationRaw, hasStation := formField(c, "stationId")
    statusRaw, hasStatus := formField(c, "status")
    paramsRaw, _ := formField(c, "parameters")

    // Status is part of the review workflow: only admins may set it,
    // even at creation time.  Check before any validation or storage.
    status := model.ReportStatusPending
    if hasStatus && statusRaw != "" {
        if !policy.CanReview(role) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "only admins can set report status"})
        }
        if !policy.ValidStatus(statusRaw) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
        }
        status = statusRaw
    }

    title = strings.TrimSpace(title)
    if title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
    }
    var stationID *uint64
    if hasStation && stationRaw != "" {
        id, err := strconv.ParseUint(stationRaw, 10, 64)
        if err != nil || id == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid station id"})
        }
        stationID = &id
    }
    if strings.TrimSpace(address) == "" && stationID == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "address or stationId is required"})
    }
    if !utils.ValidPostalCode(postalCode) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "postal code must be 5 digits"})
    }
    if strings.TrimSpace(region) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "region is required"})
    }

    params, err := parseParameters(paramsRaw)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    photoRef, err := h.savePhoto(c)
    if err != nil {
        switch {
        case errors.Is(err, upload.ErrTooLarge):
            return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "photo exceeds size limit"})
        case errors.Is(err, upload.ErrUnsupportedType):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo must be a jpeg, png or gif image"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storing photo failed"})
        }
    }

    rec := model.Report{
        Title:      title,
        UserID:     userID,
        StationID:  stationID,
        Address:    strings.TrimSpace(address),
        PostalCode: postalCode,
        Region:     strings.TrimSpace(region),
        Notes:      notes,
        Status:     status,
    }
    if photoRef != "" {
        rec.PhotoPath = &photoRef
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    reportID, err := h.Reports.Create(ctx, &rec, params)
    if err != nil {
        // The transaction has rolled back; the stored photo would be an
        // orphan, remove it best-effort.
        if photoRef != "" {
            h.Store.Remove(photoRef)
        }
        var se *repository.SchemaError
        if errors.As(err, &se) {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": se.Error()})
        }
        c.Logger().Errorf("create report: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error during report creation"})
    }

    // Notify the moderation queue.  A broker outage never fails the
    // submission; the publisher logs its own errors.
    ev := queue.ReportSubmittedEvent{
        ReportID:    reportID,
        UserID:      userID,
        Title:       rec.Title,
        Region:      rec.Region,
        PostalCode:  rec.PostalCode,
        Status:      rec.Status,
        SubmittedAt: time.Now().UTC().Format(time.RFC3339),
    }
    go func() {
        pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer pubCancel()
        _ = queue_publisher.PublishReportSubmitted(pubCtx, ev)
    }()

    return c.JSON(http.StatusCreated, echo.Map{
        "message":   "report created successfully",
        "report_id": reportID,
    })
}

// Update handles PUT /api/reports/:id.  Only the fields present in the
// multipart form are rebuilt; a supplied parameters array replaces the
// prior set wholesale inside the same transaction.  Authorization is
// checked before any field is persisted: a customer may only touch
// their own report and never status or admin notes.
func (h *ReportHandler) Update(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    role := getRole(c)
    reportID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || reportID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    existing, err := h.Reports.GetByID(ctx, reportID)
    if err != nil {
        if errors.Is(err, repository.ErrReportNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
    }
    if !policy.CanMutate(userID, role, existing.UserID) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not authorized to update this report"})
    }

    var upd repository.ReportUpdate

    if v, ok := formField(c, "status"); ok {
        if !policy.CanReview(role) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "only admins can update report status"})
        }
        if !policy.ValidStatus(v) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
        }
        upd.Status = &v
    }
    if v, ok := formField(c, "adminNotes"); ok {
        if !policy.CanReview(role) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "only admins can update admin notes"})
        }
        upd.AdminNotes = &v
    }
    if v, ok := formField(c, "title"); ok {
        v = strings.TrimSpace(v)
        if v == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "title cannot be empty"})
        }
        upd.Title = &v
    }
    if v, ok := formField(c, "address"); ok {
        upd.Address = &v
    }
    if v, ok := formField(c, "postalCode"); ok {
        if !utils.ValidPostalCode(v) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "postal code must be 5 digits"})
        }
        upd.PostalCode = &v
    }
    if v, ok := formField(c, "region"); ok {
        v = strings.TrimSpace(v)
        if v == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "region cannot be empty"})
        }
        upd.Region = &v
    }
    if v, ok := formField(c, "notes"); ok {
        upd.Notes = &v
    }
    if v, ok := formField(c, "stationId"); ok && v != "" {
        id, err := strconv.ParseUint(v, 10, 64)
        if err != nil || id == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid station id"})
        }
        upd.StationID = &id
    }
    if v, ok := formField(c, "parameters"); ok {
        params, err := parseParameters(v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
        if params == nil {
            params = []model.ReportParameter{}
        }
        upd.Params = &params
    }

    photoRef, err := h.savePhoto(c)
    if err != nil {
        switch {
        case errors.Is(err, upload.ErrTooLarge):
            return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "photo exceeds size limit"})
        case errors.Is(err, upload.ErrUnsupportedType):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo must be a jpeg, png or gif image"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storing photo failed"})
        }
    }
    if photoRef != "" {
        upd.PhotoPath = &photoRef
    }

    if err := h.Reports.Update(ctx, reportID, upd); err != nil {
        if photoRef != "" {
            h.Store.Remove(photoRef)
        }
        switch {
        case errors.Is(err, repository.ErrReportNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
        default:
            var se *repository.SchemaError
            if errors.As(err, &se) {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": se.Error()})
            }
            c.Logger().Errorf("update report %d: %v", reportID, err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error during report update"})
        }
    }

    // The new photo supersedes the old one; removing the old file is
    // best-effort and never blocks the response.
    if photoRef != "" && existing.PhotoPath != nil && *existing.PhotoPath != photoRef {
        h.Store.Remove(*existing.PhotoPath)
    }

    return c.JSON(http.StatusOK, echo.Map{"message": "report updated successfully"})
}

// Delete handles DELETE /api/reports/:id.  Child parameter and image
// rows go with the report in a single transaction; the photo file is
// removed only after the transaction commits, since the database is the
// source of truth for a photo's existence, not the filesystem.
func (h *ReportHandler) Delete(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    role := getRole(c)
    reportID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || reportID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    existing, err := h.Reports.GetByID(ctx, reportID)
    if err != nil {
        if errors.Is(err, repository.ErrReportNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
    }
    if !policy.CanMutate(userID, role, existing.UserID) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not authorized to delete this report"})
    }

    // Capture every stored file before the rows disappear.
    images, err := h.Reports.Images(ctx, reportID)
    if err != nil {
        c.Logger().Warnf("delete report %d: listing images failed: %v", reportID, err)
    }

    if err := h.Reports.Delete(ctx, reportID); err != nil {
        switch {
        case errors.Is(err, repository.ErrReportNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
        default:
            var se *repository.SchemaError
            if errors.As(err, &se) {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": se.Error()})
            }
            c.Logger().Errorf("delete report %d: %v", reportID, err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error during report deletion"})
        }
    }

    if existing.PhotoPath != nil {
        h.Store.Remove(*existing.PhotoPath)
    }
    for _, img := range images {
        if existing.PhotoPath != nil && img.FilePath == *existing.PhotoPath {
            continue
        }
        h.Store.Remove(img.FilePath)
    }

    return c.JSON(http.StatusOK, echo.Map{"message": "report deleted successfully"})
}
