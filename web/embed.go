// Package web provides the embedded static report assets.
package web

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed reports
var reportsFS embed.FS

// Reports returns the report assets. A non-empty dir serves files from
// disk instead of the embedded copy.
func Reports(dir string) (fs.FS, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrInvalid}
		}
		return os.DirFS(dir), nil
	}
	return fs.Sub(reportsFS, "reports")
}
