// Package upload implements image intake for report photos.  Files are
// validated by extension and declared MIME type, capped in size, and
// stored on the local filesystem under a collision-resistant generated
// name.  The store never interprets file contents beyond the type check.
package upload

import (
    "errors"
    "fmt"
    "io"
    "log"
    "mime/multipart"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/google/uuid"
)

// ErrUnsupportedType is returned when the uploaded file is not a
// JPEG, PNG or GIF image by both extension and declared content type.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrTooLarge is returned when the uploaded file exceeds the size cap.
var ErrTooLarge = errors.New("file too large")

// allowedExt maps accepted file extensions to the content types a
// well-behaved client declares for them.
var allowedExt = map[string]string{
    ".jpg":  "image/jpeg",
    ".jpeg": "image/jpeg",
    ".png":  "image/png",
    ".gif":  "image/gif",
}

var allowedMime = map[string]bool{
    "image/jpeg": true,
    "image/png":  true,
    "image/gif":  true,
}

// Store saves report photos under a single directory and hands out
// references relative to the public /uploads prefix.  It is injected
// into the handlers that accept photo fields.
type Store struct {
    Dir      string // directory files are written to
    MaxBytes int64  // hard cap on a single file's size
}

// NewStore creates the upload directory if needed and returns a Store.
func NewStore(dir string, maxBytes int64) (*Store, error) {
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return nil, fmt.Errorf("create upload dir: %w", err)
    }
    return &Store{Dir: dir, MaxBytes: maxBytes}, nil
}

// Save validates and stores one uploaded file and returns its stable
// relative reference (uploads/<name>).  The generated name combines a
// timestamp, a random suffix and the original extension so concurrent
// uploads cannot collide.  ErrUnsupportedType and ErrTooLarge report
// the two rejection cases.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
    ext := strings.ToLower(filepath.Ext(fh.Filename))
    if _, ok := allowedExt[ext]; !ok {
        return "", ErrUnsupportedType
    }
    if declared := fh.Header.Get("Content-Type"); declared != "" && !allowedMime[declared] {
        return "", ErrUnsupportedType
    }
    if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
        return "", ErrTooLarge
    }

    name := fmt.Sprintf("%s-%s%s",
        time.Now().UTC().Format("20060102T150405"), uuid.NewString(), ext)

    src, err := fh.Open()
    if err != nil {
        return "", err
    }
    defer src.Close()

    dst, err := os.Create(filepath.Join(s.Dir, name))
    if err != nil {
        return "", err
    }
    defer dst.Close()

    // The header size is client-declared; LimitReader enforces the cap on
    // what actually arrives.
    limit := io.Reader(src)
    if s.MaxBytes > 0 {
        limit = io.LimitReader(src, s.MaxBytes+1)
    }
    n, err := io.Copy(dst, limit)
    if err != nil {
        _ = os.Remove(filepath.Join(s.Dir, name))
        return "", err
    }
    if s.MaxBytes > 0 && n > s.MaxBytes {
        _ = os.Remove(filepath.Join(s.Dir, name))
        return "", ErrTooLarge
    }

    return "uploads/" + name, nil
}

// Remove deletes a previously stored file by its relative reference.
// Deletion is best-effort: the database row is the source of truth for a
// photo's existence, so failures are logged and swallowed.  Only the
// base name of the reference is used, which keeps the operation inside
// the upload directory.
func (s *Store) Remove(ref string) {
    if ref == "" {
        return
    }
    name := filepath.Base(ref)
    if name == "." || name == string(filepath.Separator) {
        return
    }
    if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !os.IsNotExist(err) {
        log.Printf("upload: removing %s failed: %v", name, err)
    }
}
