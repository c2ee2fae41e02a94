package storage

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

var ErrPolicyViolation = errors.New("file policy violation")

// FilePolicy represents file upload policy constraints
type FilePolicy struct {
	MaxFileMB  float64
	MimeTypes  []string
	Extensions []string
}

// NewPhotoPolicy returns the policy applied to room photos
func NewPhotoPolicy(maxFileMB float64) *FilePolicy {
	return &FilePolicy{
		MaxFileMB:  maxFileMB,
		MimeTypes:  []string{"image/*"},
		Extensions: []string{"jpg", "jpeg", "png", "heic", "webp"},
	}
}

// MaxBytes returns the per-file limit in bytes, 0 meaning unlimited
func (fp *FilePolicy) MaxBytes() int64 {
	if fp == nil || fp.MaxFileMB <= 0 {
		return 0
	}
	return int64(fp.MaxFileMB * 1024 * 1024)
}

// ValidateFile validates a file against the policy
func (fp *FilePolicy) ValidateFile(fileName, contentType string, fileSizeBytes int64) error {
	if fp == nil {
		return nil
	}

	if max := fp.MaxBytes(); max > 0 && fileSizeBytes > max {
		return fmt.Errorf("%w: file size %d bytes exceeds maximum %d bytes (%.2f MB)",
			ErrPolicyViolation, fileSizeBytes, max, fp.MaxFileMB)
	}

	if len(fp.MimeTypes) > 0 && !fp.matchesMimeType(contentType) {
		return fmt.Errorf("%w: content type %s is not allowed. Allowed types: %v",
			ErrPolicyViolation, contentType, fp.MimeTypes)
	}

	if len(fp.Extensions) > 0 && !fp.matchesExtension(fileName) {
		return fmt.Errorf("%w: file extension is not allowed. Allowed extensions: %v",
			ErrPolicyViolation, fp.Extensions)
	}

	return nil
}

// matchesMimeType checks if contentType matches any of the allowed MIME type patterns
func (fp *FilePolicy) matchesMimeType(contentType string) bool {
	// "image/png; charset=utf-8" style parameters are ignored
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}

	for _, allowed := range fp.MimeTypes {
		if strings.HasSuffix(allowed, "/*") {
			prefix := strings.TrimSuffix(allowed, "/*")
			if strings.HasPrefix(mediaType, prefix+"/") {
				return true
			}
		} else if mediaType == allowed {
			return true
		}
	}
	return false
}

// matchesExtension checks if fileName has an allowed extension
func (fp *FilePolicy) matchesExtension(fileName string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		return false
	}

	for _, allowed := range fp.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
