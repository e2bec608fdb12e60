package utils

import (
	"regexp"
	"strings"
)

// maxFilenameLen leaves headroom under the common 255-byte filesystem
// limit for an extension and any uniqueness suffix.
const maxFilenameLen = 200

var (
	reservedChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	anyWhitespace = regexp.MustCompile(`\s+`)

	filenameReplacer = strings.NewReplacer("#", "", "[", "(", "]", ")")
)

// SanitizeFilename cleans a user-supplied filename before it is stored
// on disk. Path separators and other characters reserved on common
// filesystems are dropped, whitespace runs collapse to a single space,
// and the result is capped at maxFilenameLen bytes.
func SanitizeFilename(filename string) string {
	filename = reservedChars.ReplaceAllString(filename, "")
	filename = anyWhitespace.ReplaceAllString(filename, " ")
	filename = filenameReplacer.Replace(filename)
	filename = strings.TrimSpace(filename)

	if len(filename) > maxFilenameLen {
		filename = strings.TrimSpace(filename[:maxFilenameLen])
	}
	if filename == "" {
		return "Untitled"
	}
	return filename
}
