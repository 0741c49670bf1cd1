package repository

import (
    "context"
    "net/url"
    "strconv"
)

// ReportFilter defines the optional criteria for listing reports.  Zero
// values mean "no constraint"; an empty filter yields the full table.
type ReportFilter struct {
    Region     string
    Status     string
    PostalCode string
    OwnerID    uint64
}

// FilterFromValues builds a ReportFilter from raw query parameters.
// Only the known keys (region, status, postalCode, ownerId) are read;
// unknown keys are ignored rather than rejected.  A non-numeric ownerId
// is treated as absent.
func FilterFromValues(vals url.Values) ReportFilter {
    f := ReportFilter{
        Region:     vals.Get("region"),
        Status:     vals.Get("status"),
        PostalCode: vals.Get("postalCode"),
    }
    if raw := vals.Get("ownerId"); raw != "" {
        if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
            f.OwnerID = id
        }
    }
    return f
}

// predicates translates the filter into an ordered list of SQL
// conditions plus matching positional parameters.  User input only ever
// appears in the args slice, never in the query text.
func (f ReportFilter) predicates() ([]string, []any) {
    where := []string{}
    args := []any{}

    if f.Region != "" {
        where = append(where, "r.region = ?")
        args = append(args, f.Region)
    }
    if f.Status != "" {
        where = append(where, "r.status = ?")
        args = append(args, f.Status)
    }
    if f.PostalCode != "" {
        where = append(where, "r.postal_code = ?")
        args = append(args, f.PostalCode)
    }
    if f.OwnerID != 0 {
        where = append(where, "r.user_id = ?")
        args = append(args, f.OwnerID)
    }
    return where, args
}

// ReportListRow is one row of the filtered report list, joined with the
// reporter's display name.  PhotoPath holds the raw stored path; the
// handler derives the public photo_url from it.
type ReportListRow struct {
    ID         uint64  `json:"id"`
    Title      string  `json:"title"`
    UserID     uint64  `json:"user_id"`
    UserName   string  `json:"user_name"`
    StationID  *uint64 `json:"station_id,omitempty"`
    Address    string  `json:"address"`
    PostalCode string  `json:"postal_code"`
    Region     string  `json:"region"`
    Notes      string  `json:"notes"`
    AdminNotes *string `json:"admin_notes,omitempty"`
    Status     string  `json:"status"`
    PhotoPath  *string `json:"-"`
    PhotoURL   *string `json:"photo_url,omitempty"`
    CreatedAt  string  `json:"created_at"`
    UpdatedAt  string  `json:"updated_at"`
}

// List returns reports matching the filter, newest first.  The
// created_at DESC ordering is a contract relied on by the UI, not an
// incidental default.
func (r *ReportRepo) List(ctx context.Context, f ReportFilter) ([]ReportListRow, error) {
    where, args := f.predicates()

    cond := "1=1"
    if len(where) > 0 {
        cond = where[0]
        for _, w := range where[1:] {
            cond += " AND " + w
        }
    }

    dataSQL := `SELECT
            r.id,
            r.title,
            r.user_id,
            u.name AS user_name,
            r.station_id,
            r.address,
            r.postal_code,
            r.region,
            r.notes,
            r.admin_notes,
            r.status,
            r.photo_path,
            DATE_FORMAT(r.created_at, '%Y-%m-%d %T') AS created_at,
            DATE_FORMAT(r.updated_at, '%Y-%m-%d %T') AS updated_at
        FROM water_quality_reports r
        JOIN users u ON u.id = r.user_id
        WHERE ` + cond + `
        ORDER BY r.created_at DESC`

    rows, err := r.db.QueryContext(ctx, dataSQL, args...)
    if err != nil {
        return nil, wrapSchemaErr(err)
    }
    defer rows.Close()

    out := []ReportListRow{}
    for rows.Next() {
        var d ReportListRow
        if err := rows.Scan(
            &d.ID,
            &d.Title,
            &d.UserID,
            &d.UserName,
            &d.StationID,
            &d.Address,
            &d.PostalCode,
            &d.Region,
            &d.Notes,
            &d.AdminNotes,
            &d.Status,
            &d.PhotoPath,
            &d.CreatedAt,
            &d.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
