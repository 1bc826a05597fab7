package printables

import "strings"

// SelectFiles returns the files whose extension matches one of the given
// extensions. An empty extension list selects every file.
func SelectFiles(files []File, extensions []string) []File {
	if len(extensions) == 0 {
		return files
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}
	var selected []File
	for _, file := range files {
		if allowed[file.Extension] {
			selected = append(selected, file)
		}
	}
	return selected
}

// HasExtension reports whether any file carries the given extension.
func HasExtension(files []File, ext string) bool {
	ext = strings.ToLower(ext)
	for _, file := range files {
		if file.Extension == ext {
			return true
		}
	}
	return false
}
