package middleware

import (
	"fmt"
	"path/filepath"
	"strings"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

// Input validation and sanitization utilities

// ValidateFingerprint checks the hex SHA-256 format
func ValidateFingerprint(s string) (domain.Fingerprint, error) {
	return domain.ParseFingerprint(strings.ToLower(strings.TrimSpace(s)))
}

// allowed upload extensions
var uploadTypes = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".txt":  true,
}

// ValidateUploadName checks the file name of an uploaded document
func ValidateUploadName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !uploadTypes[ext] {
		return fmt.Errorf("unsupported file type %q (allowed: pdf, png, jpg, tiff, gif, bmp, webp, txt)", ext)
	}
	return nil
}

// SanitizeFilename keeps only the base name without control characters
func SanitizeFilename(name string) string {
	name = SanitizeString(filepath.Base(filepath.Clean("/" + name)))
	if name == "/" || name == "." {
		return ""
	}
	return name
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
