package model

import "time"

// Report status values stored in water_quality_reports.status.  A report
// starts in pending; only administrators move it through the review
// lifecycle.  Resolved and rejected close the normal workflow but remain
// admin-editable, including back to pending.
const (
    ReportStatusPending  = "pending"
    ReportStatusReviewed = "reviewed"
    ReportStatusResolved = "resolved"
    ReportStatusRejected = "rejected"
)

// Parameter status values stored in report_parameters.status.  They grade
// a single measured value against its expected range.
const (
    ParameterStatusGood = "good"
    ParameterStatusFair = "fair"
    ParameterStatusPoor = "poor"
)

// Report represents a row of the `water_quality_reports` table, the
// central mutable entity of the system.  A report is owned by the user
// who filed it (UserID never changes after creation) and locates the
// observation either by a known station or by a free-text address plus
// postal code.  AdminNotes and Status are reserved for administrators.
//
// Fields:
//  ID         – primary key identifier.
//  Title      – short summary supplied by the reporter.
//  UserID     – user who filed the report; fixed at creation.
//  StationID  – optional monitoring station reference (nullable).
//  Address    – free-text location when no station is referenced.
//  PostalCode – five-digit postal code of the location.
//  Region     – region name used for filtering.
//  Notes      – the reporter's free-text observations.
//  AdminNotes – reviewer commentary (nullable, admin-only).
//  Status     – review lifecycle state, see constants above.
//  PhotoPath  – relative path of the primary display photo (nullable);
//               the full image history lives in report_images.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Report struct {
    ID         uint64    // water_quality_reports.id
    Title      string    // water_quality_reports.title
    UserID     uint64    // water_quality_reports.user_id
    StationID  *uint64   // water_quality_reports.station_id (nullable)
    Address    string    // water_quality_reports.address
    PostalCode string    // water_quality_reports.postal_code
    Region     string    // water_quality_reports.region
    Notes      string    // water_quality_reports.notes
    AdminNotes *string   // water_quality_reports.admin_notes (nullable)
    Status     string    // water_quality_reports.status
    PhotoPath  *string   // water_quality_reports.photo_path (nullable)
    CreatedAt  time.Time // water_quality_reports.created_at
    UpdatedAt  time.Time // water_quality_reports.updated_at
}

// ReportParameter is a child row of a report: one measured or observed
// attribute (turbidity, odor, ...) with its value, unit and derived
// quality grade.  Parameter sets are replaced wholesale on update and
// removed with their parent report.
type ReportParameter struct {
    ID       uint64  // report_parameters.id
    ReportID uint64  // report_parameters.report_id
    Name     string  // report_parameters.parameter_name
    Value    float64 // report_parameters.value
    Unit     string  // report_parameters.unit
    Status   string  // report_parameters.status (good/fair/poor)
}

// ReportImage is a child row of a report recording one uploaded photo.
// The report row denormalizes the primary photo path; this table keeps
// the full upload history.
type ReportImage struct {
    ID         uint64    // report_images.id
    ReportID   uint64    // report_images.report_id
    FilePath   string    // report_images.file_path
    UploadedAt time.Time // report_images.uploaded_at
}
