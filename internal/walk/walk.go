// Package walk discovers candidate source files for a fix run.
package walk

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Options controls which files a walk collects.
type Options struct {
	// Extensions is the set of file extensions to collect (with dot).
	Extensions []string
	// ExcludeDirs are directory names skipped entirely.
	ExcludeDirs []string
	// BackupMarker excludes files whose name contains it, so a second
	// run never processes the previous run's backups.
	BackupMarker string
}

// DefaultOptions matches the target codebase layout: C# sources, the usual
// build and VCS directories excluded.
func DefaultOptions() Options {
	return Options{
		Extensions:   []string{".cs"},
		ExcludeDirs:  []string{".git", ".vs", "bin", "obj", "packages", "node_modules", ".logfix"},
		BackupMarker: ".bak_",
	}
}

// FindFiles walks root and returns every matching file as an absolute
// path, sorted, so batches are deterministic regardless of filesystem
// iteration order. Inaccessible entries are skipped, not fatal.
func FindFiles(root string, opts Options) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	exclude := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		exclude[d] = true
	}
	extensions := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		extensions[strings.ToLower(e)] = true
	}

	var files []string
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip inaccessible files
		}

		if info.IsDir() {
			if path != absRoot && exclude[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if opts.BackupMarker != "" && strings.Contains(info.Name(), opts.BackupMarker) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
