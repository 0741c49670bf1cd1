// Package queue defines message payloads exchanged over the message broker.
package queue

// ReportSubmittedEvent is published when a citizen report has been stored
// successfully.  It carries enough information for downstream consumers
// (the moderation log, notification tooling, analytics) to act without
// querying the primary database.
type ReportSubmittedEvent struct {
    ReportID    uint64 `json:"report_id"`
    UserID      uint64 `json:"user_id"`
    Title       string `json:"title"`
    Region      string `json:"region"`
    PostalCode  string `json:"postal_code"`
    Status      string `json:"status"`
    SubmittedAt string `json:"submitted_at"`
}
