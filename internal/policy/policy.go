// Package policy holds the authorization and lifecycle rules for water
// quality reports.  The rules are plain functions over role and
// ownership so they can be applied by handlers before any row is
// touched and unit tested without a database.
package policy

import "github.com/cleanwatercheck/waterreport/internal/model"

// CanMutate reports whether an actor may update or delete the report
// owned by ownerID.  An admin may mutate any report; a customer only
// their own.
func CanMutate(actorID uint64, role string, ownerID uint64) bool {
    if role == model.RoleAdmin {
        return true
    }
    return role == model.RoleCustomer && actorID == ownerID
}

// CanReview reports whether an actor may drive the review workflow:
// changing a report's status or writing admin notes.  Only admins may,
// regardless of ownership.  A customer's update that includes either
// field must be rejected before any field is persisted.
func CanReview(role string) bool {
    return role == model.RoleAdmin
}

// ValidStatus reports whether s is one of the closed set of report
// states.  Any transition between valid states is admin-permitted,
// including reopening a resolved or rejected report back to pending;
// only unknown strings are refused.
func ValidStatus(s string) bool {
    switch s {
    case model.ReportStatusPending, model.ReportStatusReviewed,
        model.ReportStatusResolved, model.ReportStatusRejected:
        return true
    }
    return false
}

// ValidParameterStatus reports whether s is a known quality grade for a
// measured parameter.
func ValidParameterStatus(s string) bool {
    switch s {
    case model.ParameterStatusGood, model.ParameterStatusFair, model.ParameterStatusPoor:
        return true
    }
    return false
}

// ValidRole reports whether s is a known user role.
func ValidRole(s string) bool {
    return s == model.RoleCustomer || s == model.RoleAdmin
}
