// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors. SchemaError carries a diagnostic
// for operators when the live database does not match the expected
// columns, which historically happened when the postal_code migration
// had not been applied.
package repository

import (
    "errors"
    "fmt"
    "strings"
)

// ErrReportNotFound is returned when a report lookup, update or delete
// targets an id with no matching row. Handlers translate this into 404.
var ErrReportNotFound = errors.New("report not found")

// ErrRegionNotFound is returned when a region lookup misses.
var ErrRegionNotFound = errors.New("region not found")

// ErrCityNotFound is returned when no city matches a postal code.
var ErrCityNotFound = errors.New("city not found")

// SchemaError indicates the live database schema does not match the
// columns this code expects (missing column or table). The driver
// message is preserved so operators can see exactly which column or
// table the backend was looking for.
type SchemaError struct {
    Detail string
}

func (e *SchemaError) Error() string {
    return fmt.Sprintf("schema mismatch: %s", e.Detail)
}

// wrapSchemaErr converts MySQL "unknown column" (1054) and "table
// doesn't exist" (1146) errors into a SchemaError and passes every
// other error through unchanged. The detection by error-code substring
// matches how duplicate keys (1062) are recognized elsewhere.
func wrapSchemaErr(err error) error {
    if err == nil {
        return nil
    }
    msg := err.Error()
    if strings.Contains(msg, "1054") || strings.Contains(msg, "1146") {
        return &SchemaError{Detail: msg}
    }
    return err
}
