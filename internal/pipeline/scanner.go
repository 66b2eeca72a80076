package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source is a discovered input image.
type Source struct {
	// RelPath is the path relative to the input directory, forward slashes.
	RelPath string
	// Stem is the filename without directory or extension.
	Stem string
	// Ext is the lowercase extension including the dot.
	Ext string
}

// imageExtensions lists recognized input file extensions.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// ScanImages walks the input directory and returns all image sources in
// deterministic order. Hidden directories are skipped.
func ScanImages(inputDir string) ([]Source, error) {
	var sources []Source

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !imageExtensions[ext] {
			return nil
		}

		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		base := filepath.Base(relPath)

		sources = append(sources, Source{
			RelPath: filepath.ToSlash(relPath),
			Stem:    strings.TrimSuffix(base, filepath.Ext(base)),
			Ext:     ext,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].RelPath < sources[j].RelPath })
	return sources, nil
}
