package fetch

import (
	"os"
	"path/filepath"

	"github.com/tanq16/printgrab/internal/printables"
	"github.com/tanq16/printgrab/internal/utils"
)

// Item is a single planned download with its final on-disk destination.
type Item struct {
	File       printables.File
	OutputPath string
	Exists     bool
}

// BuildPlan maps files to destinations under outputDir. Model folders become
// subdirectories, names are sanitized for the filesystem, and collisions
// inside the plan get a numeric suffix. Files whose destination already
// exists on disk are marked so the fetcher can skip them.
func BuildPlan(files []printables.File, outputDir string) []Item {
	planned := make(map[string]bool, len(files))
	items := make([]Item, 0, len(files))
	for _, file := range files {
		dir := outputDir
		if file.Folder != "" {
			dir = filepath.Join(outputDir, utils.SanitizeFilename(file.Folder))
		}
		path := filepath.Join(dir, utils.SanitizeFilename(file.Name))
		item := Item{File: file, OutputPath: path}
		if _, err := os.Stat(path); err == nil {
			item.Exists = true
		} else {
			if planned[path] {
				path = utils.RenewOutputPath(path, planned)
				item.OutputPath = path
			}
			planned[path] = true
		}
		items = append(items, item)
	}
	return items
}
