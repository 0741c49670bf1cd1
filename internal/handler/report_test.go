package handler

import (
    "bytes"
    "database/sql"
    "mime/multipart"
    "net/http"
    "net/http/httptest"
    "net/url"
    "regexp"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/cleanwatercheck/waterreport/internal/repository"
    "github.com/cleanwatercheck/waterreport/internal/upload"
)

// newReportHandler builds a handler whose repository talks to sqlmock
// and whose photo store writes into a throwaway directory.
func newReportHandlerForTest(t *testing.T) (*ReportHandler, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })

    store, err := upload.NewStore(t.TempDir(), 1<<20)
    require.NoError(t, err)
    return NewReportHandler(repository.NewReportRepo(db), store), mock
}

// multipartBody encodes form fields as the multipart body a browser
// sends for the report form.
func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
    t.Helper()
    var buf bytes.Buffer
    w := multipart.NewWriter(&buf)
    for k, v := range fields {
        require.NoError(t, w.WriteField(k, v))
    }
    require.NoError(t, w.Close())
    return &buf, w.FormDataContentType()
}

// authedContext prepares an echo context carrying the identity values
// the JWT middleware would have stored.
func authedContext(t *testing.T, e *echo.Echo, req *http.Request, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", userID)
    c.Set("role", role)
    return c, rec
}

func TestCreateRequiresAuthContext(t *testing.T) {
    h, _ := newReportHandlerForTest(t)
    e := echo.New()

    body, ctype := multipartBody(t, map[string]string{"title": "x"})
    req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
    req.Header.Set(echo.HeaderContentType, ctype)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateRejectsCustomerSuppliedStatus(t *testing.T) {
    h, mock := newReportHandlerForTest(t)
    e := echo.New()

    body, ctype := multipartBody(t, map[string]string{
        "title":      "Cloudy water",
        "address":    "Somewhere 1",
        "postalCode": "80331",
        "region":     "Bavaria",
        "status":     "resolved",
    })
    req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
    req.Header.Set(echo.HeaderContentType, ctype)
    c, rec := authedContext(t, e, req, 5, "customer")

    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)
    // Nothing may have been written.
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateValidatesRequiredFields(t *testing.T) {
    h, _ := newReportHandlerForTest(t)
    e := echo.New()

    cases := []struct {
        name   string
        fields map[string]string
    }{
        {"missing title", map[string]string{
            "address": "A", "postalCode": "80331", "region": "Bavaria"}},
        {"missing location", map[string]string{
            "title": "T", "postalCode": "80331", "region": "Bavaria"}},
        {"bad postal code", map[string]string{
            "title": "T", "address": "A", "postalCode": "123", "region": "Bavaria"}},
        {"missing region", map[string]string{
            "title": "T", "address": "A", "postalCode": "80331"}},
        {"malformed parameters", map[string]string{
            "title": "T", "address": "A", "postalCode": "80331", "region": "Bavaria",
            "parameters": "{not json"}},
        {"unknown parameter status", map[string]string{
            "title": "T", "address": "A", "postalCode": "80331", "region": "Bavaria",
            "parameters": `[{"name":"ph","value":7,"status":"excellent"}]`}},
        {"duplicate parameter name", map[string]string{
            "title": "T", "address": "A", "postalCode": "80331", "region": "Bavaria",
            "parameters": `[{"name":"ph","value":7,"status":"good"},{"name":"ph","value":8,"status":"good"}]`}},
    }

    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            body, ctype := multipartBody(t, tc.fields)
            req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
            req.Header.Set(echo.HeaderContentType, ctype)
            c, rec := authedContext(t, e, req, 5, "customer")

            require.NoError(t, h.Create(c))
            assert.Equal(t, http.StatusBadRequest, rec.Code)
        })
    }
}

func TestCreatePersistsReportWithParameters(t *testing.T) {
    h, mock := newReportHandlerForTest(t)
    e := echo.New()

    body, ctype := multipartBody(t, map[string]string{
        "title":      "Cloudy water",
        "address":    "Somewhere 1",
        "postalCode": "80331",
        "region":     "Bavaria",
        "notes":      "visible particles",
        "parameters": `[{"name":"turbidity","value":9.5,"unit":"NTU","status":"poor"}]`,
    })
    req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
    req.Header.Set(echo.HeaderContentType, ctype)
    c, rec := authedContext(t, e, req, 5, "customer")

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO water_quality_reports")).
        WithArgs("Cloudy water", uint64(5), nil, "Somewhere 1", "80331",
            "Bavaria", "visible particles", "pending", nil).
        WillReturnResult(sqlmock.NewResult(31, 1))
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_parameters")).
        WithArgs(uint64(31), "turbidity", 9.5, "NTU", "poor").
        WillReturnResult(sqlmock.NewResult(1, 1))
    mock.ExpectCommit()

    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusCreated, rec.Code)
    assert.Contains(t, rec.Body.String(), `"report_id":31`)
    assert.NoError(t, mock.ExpectationsWereMet())
}

// reportRow returns sqlmock rows shaped like the GetByID select.
func reportRow(ownerID uint64) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows([]string{
        "id", "title", "user_id", "station_id", "address", "postal_code",
        "region", "notes", "admin_notes", "status", "photo_path",
        "created_at", "updated_at",
    }).AddRow(12, "Old title", ownerID, nil, "A-Str. 1", "80331",
        "Bavaria", "", nil, "pending", nil, now, now)
}

func TestUpdateForbidsForeignReportForCustomer(t *testing.T) {
    h, mock := newReportHandlerForTest(t)
    e := echo.New()

    form := url.Values{"title": {"Hijacked"}}
    req := httptest.NewRequest(http.MethodPut, "/api/reports/12", strings.NewReader(form.Encode()))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
    c, rec := authedContext(t, e, req, 5, "customer")
    c.SetParamNames("id")
    c.SetParamValues("12")

    mock.ExpectQuery(regexp.QuoteMeta("FROM water_quality_reports WHERE id = ?")).
        WithArgs(uint64(12)).
        WillReturnRows(reportRow(99)) // owned by someone else

    require.NoError(t, h.Update(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCustomerCannotTouchReviewFields(t *testing.T) {
    h, mock := newReportHandlerForTest(t)
    e := echo.New()

    form := url.Values{"adminNotes": {"self-approved"}}
    req := httptest.NewRequest(http.MethodPut, "/api/reports/12", strings.NewReader(form.Encode()))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
    c, rec := authedContext(t, e, req, 5, "customer")
    c.SetParamNames("id")
    c.SetParamValues("12")

    mock.ExpectQuery(regexp.QuoteMeta("FROM water_quality_reports WHERE id = ?")).
        WithArgs(uint64(12)).
        WillReturnRows(reportRow(5)) // their own report

    require.NoError(t, h.Update(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAdminMovesStatus(t *testing.T) {
    h, mock := newReportHandlerForTest(t)
    e := echo.New()

    form := url.Values{"status": {"reviewed"}, "adminNotes": {"checked on site"}}
    req := httptest.NewRequest(http.MethodPut, "/api/reports/12", strings.NewReader(form.Encode()))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
    c, rec := authedContext(t, e, req, 1, "admin")
    c.SetParamNames("id")
    c.SetParamValues("12")

    mock.ExpectQuery(regexp.QuoteMeta("FROM water_quality_reports WHERE id = ?")).
        WithArgs(uint64(12)).
        WillReturnRows(reportRow(99))
    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta(
        "UPDATE water_quality_reports SET admin_notes = ?, status = ?, updated_at = NOW() WHERE id = ?")).
        WithArgs("checked on site", "reviewed", uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    require.NoError(t, h.Update(c))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
    h, mock := newReportHandlerForTest(t)
    e := echo.New()

    form := url.Values{"status": {"approved"}}
    req := httptest.NewRequest(http.MethodPut, "/api/reports/12", strings.NewReader(form.Encode()))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
    c, rec := authedContext(t, e, req, 1, "admin")
    c.SetParamNames("id")
    c.SetParamValues("12")

    mock.ExpectQuery(regexp.QuoteMeta("FROM water_quality_reports WHERE id = ?")).
        WithArgs(uint64(12)).
        WillReturnRows(reportRow(99))

    require.NoError(t, h.Update(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMissingReportIs404(t *testing.T) {
    h, mock := newReportHandlerForTest(t)
    e := echo.New()

    req := httptest.NewRequest(http.MethodDelete, "/api/reports/404", nil)
    c, rec := authedContext(t, e, req, 5, "customer")
    c.SetParamNames("id")
    c.SetParamValues("404")

    mock.ExpectQuery(regexp.QuoteMeta("FROM water_quality_reports WHERE id = ?")).
        WithArgs(uint64(404)).
        WillReturnError(sql.ErrNoRows)

    require.NoError(t, h.Delete(c))
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAnnotatesStoredPhotoWithURL(t *testing.T) {
    h, mock := newReportHandlerForTest(t)
    e := echo.New()

    req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
    c, rec := authedContext(t, e, req, 5, "customer")

    rows := sqlmock.NewRows([]string{
        "id", "title", "user_id", "user_name", "station_id", "address",
        "postal_code", "region", "notes", "admin_notes", "status",
        "photo_path", "created_at", "updated_at",
    }).
        AddRow(2, "With photo", 5, "Ada", nil, "B-Str. 2", "80331",
            "Bavaria", "", nil, "pending", "uploads/pic.png",
            "2026-08-30 10:00:00", "2026-08-30 10:00:00").
        AddRow(1, "No photo", 5, "Ada", nil, "A-Str. 1", "80331",
            "Bavaria", "", nil, "pending", nil,
            "2026-08-29 09:00:00", "2026-08-29 09:00:00")
    mock.ExpectQuery(regexp.QuoteMeta("FROM water_quality_reports r")).
        WillReturnRows(rows)

    require.NoError(t, h.List(c))
    assert.Equal(t, http.StatusOK, rec.Code)

    body := rec.Body.String()
    assert.Contains(t, body, `"photo_url":"/uploads/pic.png"`)
    // The raw stored path stays internal and the photoless row carries
    // no photo_url key at all.
    assert.NotContains(t, body, "photo_path")
    assert.Equal(t, 1, strings.Count(body, "photo_url"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReturnsDetailWithWireFieldNames(t *testing.T) {
    h, mock := newReportHandlerForTest(t)
    e := echo.New()

    req := httptest.NewRequest(http.MethodGet, "/api/reports/12", nil)
    c, rec := authedContext(t, e, req, 5, "customer")
    c.SetParamNames("id")
    c.SetParamValues("12")

    now := time.Now()
    mock.ExpectQuery(regexp.QuoteMeta("FROM water_quality_reports WHERE id = ?")).
        WithArgs(uint64(12)).
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "title", "user_id", "station_id", "address", "postal_code",
            "region", "notes", "admin_notes", "status", "photo_path",
            "created_at", "updated_at",
        }).AddRow(12, "Cloudy water", 5, nil, "A-Str. 1", "80331",
            "Bavaria", "visible particles", nil, "pending", "uploads/pic.png", now, now))
    mock.ExpectQuery(regexp.QuoteMeta("FROM report_parameters WHERE report_id = ?")).
        WithArgs(uint64(12)).
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "report_id", "parameter_name", "value", "unit", "status",
        }).AddRow(7, 12, "turbidity", 9.5, "NTU", "poor"))
    mock.ExpectQuery(regexp.QuoteMeta("FROM report_images WHERE report_id = ?")).
        WithArgs(uint64(12)).
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "report_id", "file_path", "uploaded_at",
        }).AddRow(3, 12, "uploads/pic.png", now))

    require.NoError(t, h.Get(c))
    assert.Equal(t, http.StatusOK, rec.Code)

    body := rec.Body.String()
    // Detail and list views use the same snake_case field names.
    assert.Contains(t, body, `"postal_code":"80331"`)
    assert.Contains(t, body, `"photo_url":"/uploads/pic.png"`)
    assert.Contains(t, body, `"parameters":[{"id":7,"name":"turbidity","value":9.5,"unit":"NTU","status":"poor"}]`)
    assert.NotContains(t, body, "PostalCode")
    assert.NotContains(t, body, "photo_path")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteForbidsForeignReportForCustomer(t *testing.T) {
    h, mock := newReportHandlerForTest(t)
    e := echo.New()

    req := httptest.NewRequest(http.MethodDelete, "/api/reports/12", nil)
    c, rec := authedContext(t, e, req, 5, "customer")
    c.SetParamNames("id")
    c.SetParamValues("12")

    mock.ExpectQuery(regexp.QuoteMeta("FROM water_quality_reports WHERE id = ?")).
        WithArgs(uint64(12)).
        WillReturnRows(reportRow(99))

    require.NoError(t, h.Delete(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}
