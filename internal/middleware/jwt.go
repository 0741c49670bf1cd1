package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the caller's identity into the request context.  The
// provided secret must match the one used when issuing tokens.  On
// success the context carries "user_id" (uint64), "email", "name",
// "region" and "role" (strings), so handlers can authorize without a
// user lookup.  A missing token and an invalid token both produce 401
// with distinct messages; expiry is enforced by the parser and is an
// error, never a silent pass.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Read the Authorization header.  A valid header starts with
            // "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse the token.  The callback supplies the signing key and
            // ensures the algorithm is the HMAC family we issue; a token
            // signed any other way is rejected outright.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            // JSON numbers decode as float64; convert the subject once here
            // so every handler sees a uint64.
            sub, ok := claims["sub"].(float64)
            if !ok || sub < 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            c.Set("user_id", uint64(sub))
            c.Set("email", strClaim(claims, "email"))
            c.Set("name", strClaim(claims, "name"))
            c.Set("region", strClaim(claims, "region"))
            c.Set("role", strClaim(claims, "role"))
            return next(c)
        }
    }
}

// strClaim reads a string claim, returning "" for missing or non-string
// values.
func strClaim(claims jwt.MapClaims, key string) string {
    if v, ok := claims[key].(string); ok {
        return v
    }
    return ""
}
