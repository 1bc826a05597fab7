package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var invalidPathChars = regexp.MustCompile(`[<>:"/\\|?*]`)

func GetRandomUserAgent() string {
	return userAgents[time.Now().UnixNano()%int64(len(userAgents))]
}

// SanitizeFilename replaces characters that are invalid on common
// filesystems with underscores.
func SanitizeFilename(name string) string {
	return invalidPathChars.ReplaceAllString(name, "_")
}

// RenewOutputPath returns the first numbered variant of outputPath that is
// neither present on disk nor already claimed in taken.
func RenewOutputPath(outputPath string, taken map[string]bool) string {
	dir := filepath.Dir(outputPath)
	base := filepath.Base(outputPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	index := 1
	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-(%d)%s", name, index, ext))
		if !taken[candidate] {
			if _, err := os.Stat(candidate); os.IsNotExist(err) {
				return candidate
			}
		}
		index++
	}
}

// NormalizeExtensions lower-cases extensions and ensures a leading dot, so
// "STL" and ".stl" select the same files.
func NormalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return normalized
}

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

// Clean removes every temp directory under root.
func Clean(root string) error {
	log := GetLogger("clean")
	var tempDirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == TempDirName {
			tempDirs = append(tempDirs, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, dir := range tempDirs {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		log.Debug().Msgf("Removed temp directory %s", dir)
	}
	return nil
}
