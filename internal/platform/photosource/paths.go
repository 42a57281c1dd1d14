// Package photosource turns local files and directories into image handles
// for the gallery's "add from library" flow.
package photosource

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExts are the file extensions treated as photos (lower case).
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".heic": true,
}

// Paths yields file:// URIs for the image files among its inputs. Directories
// are scanned one level deep, in name order. Non-image files are skipped.
type Paths struct {
	Inputs []string
}

// Pick returns up to limit URIs. A limit of zero or less means no limit.
// An empty result means the user picked nothing.
func (p Paths) Pick(ctx context.Context, limit int) ([]string, error) {
	var uris []string
	add := func(path string) (bool, error) {
		if !IsImage(path) {
			return false, nil
		}
		uri, err := FileURI(path)
		if err != nil {
			return false, err
		}
		uris = append(uris, uri)
		return limit > 0 && len(uris) >= limit, nil
	}

	for _, in := range p.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", in, err)
		}

		if !info.IsDir() {
			full, err := add(in)
			if err != nil {
				return nil, err
			}
			if full {
				return uris, nil
			}
			continue
		}

		entries, err := os.ReadDir(in)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", in, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			full, err := add(filepath.Join(in, e.Name()))
			if err != nil {
				return nil, err
			}
			if full {
				return uris, nil
			}
		}
	}
	return uris, nil
}

// IsImage reports whether path has a known image extension.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// FileURI converts a local path to an absolute file:// URI.
func FileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
