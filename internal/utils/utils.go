// Package utils contains general helper functions used across the serializer.
package utils

import (
	"path/filepath"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf rewrites fullPath as a forward-slash path relative to
// root. A path equal to root yields "."; when the relative form cannot be
// computed the cleaned input is returned unchanged so callers always receive
// a usable path.
func RelativePathOrSelf(fullPath, root string) string {
	cleanedPath := filepath.Clean(fullPath)
	absoluteRoot, rootError := filepath.Abs(root)
	if rootError != nil {
		return cleanedPath
	}
	cleanedRoot := filepath.Clean(absoluteRoot)
	if cleanedPath == cleanedRoot {
		return "."
	}
	relativePath, relativeError := filepath.Rel(cleanedRoot, cleanedPath)
	if relativeError != nil {
		return cleanedPath
	}
	return filepath.ToSlash(relativePath)
}
