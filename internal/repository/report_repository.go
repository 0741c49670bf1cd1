package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/cleanwatercheck/waterreport/internal/model"
)

// ReportRepo provides CRUD operations for water quality reports and their
// child rows.  A report groups an arbitrary number of measured parameters
// and uploaded images under one submission; children live in the
// report_parameters and report_images tables and never outlive their
// parent.  Every multi-row write runs inside a transaction so a failure
// partway leaves no orphaned parameter set and no report without its
// parameters.  All timestamp fields are assumed to be stored in UTC.
type ReportRepo struct {
    db *sql.DB
}

// NewReportRepo returns a new ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// ReportUpdate lists the mutable report fields for a partial update.
// Only non-nil fields are written; this is a deliberate allow-list so a
// request body can never reach a column that is not named here.  Status
// and AdminNotes are admin-only, which the policy layer enforces before
// the repository is ever called.  Params, when non-nil, replaces the
// full parameter set; partial parameter merges are not supported.
type ReportUpdate struct {
    Title      *string
    StationID  *uint64
    Address    *string
    PostalCode *string
    Region     *string
    Notes      *string
    AdminNotes *string
    Status     *string
    PhotoPath  *string
    Params     *[]model.ReportParameter
}

// Create inserts the report row and every parameter row in one atomic
// transaction and returns the new report id.  When rec.PhotoPath is set
// a report_images row is recorded alongside.  On any failure the whole
// transaction is rolled back; no partial parameter set survives.
func (r *ReportRepo) Create(ctx context.Context, rec *model.Report, params []model.ReportParameter) (uint64, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const q = `INSERT INTO water_quality_reports
        (title, user_id, station_id, address, postal_code, region, notes, status, photo_path)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        rec.Title, rec.UserID, rec.StationID, rec.Address, rec.PostalCode,
        rec.Region, rec.Notes, rec.Status, rec.PhotoPath)
    if err != nil {
        return 0, wrapSchemaErr(err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    rec.ID = uint64(id)

    if err := insertParametersTx(ctx, tx, rec.ID, params); err != nil {
        return 0, wrapSchemaErr(err)
    }
    if rec.PhotoPath != nil {
        if err := insertImageTx(ctx, tx, rec.ID, *rec.PhotoPath); err != nil {
            return 0, wrapSchemaErr(err)
        }
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return rec.ID, nil
}

// GetByID returns the bare report row.  ErrReportNotFound is returned
// when no row matches.
func (r *ReportRepo) GetByID(ctx context.Context, id uint64) (model.Report, error) {
    const q = `SELECT id, title, user_id, station_id, address, postal_code, region,
                      notes, admin_notes, status, photo_path, created_at, updated_at
               FROM water_quality_reports WHERE id = ? LIMIT 1`
    var rec model.Report
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &rec.ID, &rec.Title, &rec.UserID, &rec.StationID, &rec.Address,
        &rec.PostalCode, &rec.Region, &rec.Notes, &rec.AdminNotes,
        &rec.Status, &rec.PhotoPath, &rec.CreatedAt, &rec.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.Report{}, ErrReportNotFound
        }
        return model.Report{}, wrapSchemaErr(err)
    }
    return rec, nil
}

// Parameters returns all parameter rows of a report.
func (r *ReportRepo) Parameters(ctx context.Context, reportID uint64) ([]model.ReportParameter, error) {
    const q = `SELECT id, report_id, parameter_name, value, unit, status
               FROM report_parameters WHERE report_id = ?`
    rows, err := r.db.QueryContext(ctx, q, reportID)
    if err != nil {
        return nil, wrapSchemaErr(err)
    }
    defer rows.Close()
    out := []model.ReportParameter{}
    for rows.Next() {
        var p model.ReportParameter
        if err := rows.Scan(&p.ID, &p.ReportID, &p.Name, &p.Value, &p.Unit, &p.Status); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

// Images returns all image rows of a report, oldest first.
func (r *ReportRepo) Images(ctx context.Context, reportID uint64) ([]model.ReportImage, error) {
    const q = `SELECT id, report_id, file_path, uploaded_at
               FROM report_images WHERE report_id = ? ORDER BY uploaded_at ASC`
    rows, err := r.db.QueryContext(ctx, q, reportID)
    if err != nil {
        return nil, wrapSchemaErr(err)
    }
    defer rows.Close()
    out := []model.ReportImage{}
    for rows.Next() {
        var img model.ReportImage
        if err := rows.Scan(&img.ID, &img.ReportID, &img.FilePath, &img.UploadedAt); err != nil {
            return nil, err
        }
        out = append(out, img)
    }
    return out, rows.Err()
}

// Update applies the non-nil fields of upd to the report row and, when
// upd.Params is non-nil, deletes all prior parameter rows and inserts
// the new set inside the same transaction.  A set photo path also
// records a report_images row.  ErrReportNotFound is returned when the
// id matches no row.
func (r *ReportRepo) Update(ctx context.Context, id uint64, upd ReportUpdate) error {
    sets := []string{}
    args := []any{}
    if upd.Title != nil {
        sets = append(sets, "title = ?")
        args = append(args, *upd.Title)
    }
    if upd.StationID != nil {
        sets = append(sets, "station_id = ?")
        args = append(args, *upd.StationID)
    }
    if upd.Address != nil {
        sets = append(sets, "address = ?")
        args = append(args, *upd.Address)
    }
    if upd.PostalCode != nil {
        sets = append(sets, "postal_code = ?")
        args = append(args, *upd.PostalCode)
    }
    if upd.Region != nil {
        sets = append(sets, "region = ?")
        args = append(args, *upd.Region)
    }
    if upd.Notes != nil {
        sets = append(sets, "notes = ?")
        args = append(args, *upd.Notes)
    }
    if upd.AdminNotes != nil {
        sets = append(sets, "admin_notes = ?")
        args = append(args, *upd.AdminNotes)
    }
    if upd.Status != nil {
        sets = append(sets, "status = ?")
        args = append(args, *upd.Status)
    }
    if upd.PhotoPath != nil {
        sets = append(sets, "photo_path = ?")
        args = append(args, *upd.PhotoPath)
    }
    if len(sets) == 0 && upd.Params == nil {
        return nil
    }

    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if len(sets) > 0 {
        query := "UPDATE water_quality_reports SET "
        for i, s := range sets {
            if i > 0 {
                query += ", "
            }
            query += s
        }
        query += ", updated_at = NOW() WHERE id = ?"
        args = append(args, id)
        res, err := tx.ExecContext(ctx, query, args...)
        if err != nil {
            return wrapSchemaErr(err)
        }
        n, err := res.RowsAffected()
        if err != nil {
            return err
        }
        if n == 0 {
            // MySQL reports zero affected rows both for a missing id and
            // for a no-op update; distinguish with an existence check.
            var exists uint64
            errRow := tx.QueryRowContext(ctx,
                "SELECT id FROM water_quality_reports WHERE id = ? LIMIT 1", id).Scan(&exists)
            if errors.Is(errRow, sql.ErrNoRows) {
                return ErrReportNotFound
            }
            if errRow != nil {
                return errRow
            }
        }
    }

    if upd.Params != nil {
        if _, err := tx.ExecContext(ctx,
            "DELETE FROM report_parameters WHERE report_id = ?", id); err != nil {
            return wrapSchemaErr(err)
        }
        if err := insertParametersTx(ctx, tx, id, *upd.Params); err != nil {
            return wrapSchemaErr(err)
        }
    }
    if upd.PhotoPath != nil {
        if err := insertImageTx(ctx, tx, id, *upd.PhotoPath); err != nil {
            return wrapSchemaErr(err)
        }
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Delete removes child parameter rows, child image rows and the report
// row inside a single transaction.  ErrReportNotFound is returned when
// the report does not exist; in that case nothing is deleted.
func (r *ReportRepo) Delete(ctx context.Context, id uint64) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if _, err := tx.ExecContext(ctx,
        "DELETE FROM report_parameters WHERE report_id = ?", id); err != nil {
        return wrapSchemaErr(err)
    }
    if _, err := tx.ExecContext(ctx,
        "DELETE FROM report_images WHERE report_id = ?", id); err != nil {
        return wrapSchemaErr(err)
    }
    res, err := tx.ExecContext(ctx,
        "DELETE FROM water_quality_reports WHERE id = ?", id)
    if err != nil {
        return wrapSchemaErr(err)
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrReportNotFound
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// insertParametersTx inserts multiple report_parameters rows in a single
// statement within the provided transaction.  Passing an empty slice has
// no effect and returns nil.
func insertParametersTx(ctx context.Context, tx *sql.Tx, reportID uint64, params []model.ReportParameter) error {
    if len(params) == 0 {
        return nil
    }
    query := `INSERT INTO report_parameters (report_id, parameter_name, value, unit, status) VALUES `
    args := make([]interface{}, 0, len(params)*5)
    for i, p := range params {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?)"
        args = append(args, reportID, p.Name, p.Value, p.Unit, p.Status)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// insertImageTx records one uploaded photo in the report_images history
// table within the provided transaction.
func insertImageTx(ctx context.Context, tx *sql.Tx, reportID uint64, path string) error {
    _, err := tx.ExecContext(ctx,
        "INSERT INTO report_images (report_id, file_path, uploaded_at) VALUES (?, ?, NOW())",
        reportID, path)
    return err
}
