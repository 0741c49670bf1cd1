package handler // handler defines http handlers

import (
    "encoding/json"
    "errors"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/cleanwatercheck/waterreport/internal/model"
    "github.com/cleanwatercheck/waterreport/internal/policy"
)

// getUserID extracts the authenticated user's id from echo.Context.
// JWTAuth stores it as uint64; the other cases tolerate older token
// shapes where the subject arrived untyped.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// getRole extracts the caller's role from echo.Context.
func getRole(c echo.Context) string {
    if r, ok := c.Get("role").(string); ok {
        return r
    }
    return ""
}

// photoURL derives the public URL for a stored photo reference.  The
// stored path is relative (uploads/<name>); serving happens under the
// /uploads static prefix.
func photoURL(path *string) *string {
    if path == nil || *path == "" {
        return nil
    }
    u := "/" + strings.TrimPrefix(*path, "/")
    return &u
}

// parameterInput is the wire form of one measured parameter, sent as a
// JSON array in the multipart "parameters" field.
type parameterInput struct {
    Name   string  `json:"name"`
    Value  float64 `json:"value"`
    Unit   string  `json:"unit"`
    Status string  `json:"status"`
}

// parseParameters decodes and validates the parameters form field.  An
// empty string yields a nil slice (no parameters supplied).  Each entry
// needs a name and a known quality grade; only one entry per parameter
// name is accepted since updates replace the set wholesale.
func parseParameters(raw string) ([]model.ReportParameter, error) {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return nil, nil
    }
    var in []parameterInput
    if err := json.Unmarshal([]byte(raw), &in); err != nil {
        return nil, errors.New("parameters must be a JSON array")
    }
    out := make([]model.ReportParameter, 0, len(in))
    seen := map[string]bool{}
    for _, p := range in {
        name := strings.TrimSpace(p.Name)
        if name == "" {
            return nil, errors.New("parameter name is required")
        }
        if seen[name] {
            return nil, errors.New("duplicate parameter: " + name)
        }
        seen[name] = true
        if !policy.ValidParameterStatus(p.Status) {
            return nil, errors.New("invalid parameter status: " + p.Status)
        }
        out = append(out, model.ReportParameter{
            Name:   name,
            Value:  p.Value,
            Unit:   strings.TrimSpace(p.Unit),
            Status: p.Status,
        })
    }
    return out, nil
}
