package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var forbiddenChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// FindFileByName returns the file in directory named stem plus one extension.
// Subdirectories and unfinished .part files are skipped.
func FindFileByName(directory, stem string) (string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, ".part") {
			continue
		}

		if strings.TrimSuffix(name, filepath.Ext(name)) == stem {
			return filepath.Join(directory, name), nil
		}
	}

	return "", fmt.Errorf("file with name '%s' not found", stem)
}

// SanitizeFilename replaces characters that filesystems reject with '_' and
// trims surrounding whitespace and dots.
func SanitizeFilename(fileName string) string {
	sanitized := forbiddenChars.ReplaceAllString(fileName, "_")

	return strings.TrimFunc(sanitized, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
}

// Title returns the sanitized title or video_<index> when nothing is left of it.
func Title(title string, index int) string {
	if sanitized := SanitizeFilename(title); sanitized != "" {
		return sanitized
	}

	return fmt.Sprintf("video_%d", index)
}

// EnsureDir creates the output directory when it does not exist yet.
func EnsureDir(path string) error {
	return os.MkdirAll(path, os.ModePerm)
}
