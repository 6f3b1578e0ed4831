// Package ignore implements the layered ignore-pattern engine that decides
// which directory entries are excluded from traversal and output.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// GitIgnoreFileName is the name of the per-directory ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the version-control metadata directory.
	GitDirectoryName = ".git"

	pathSegmentSeparator = "/"
	commentPrefix        = "#"
)

// alwaysIgnoredPatterns lists rules that apply to every run and cannot be disabled.
var alwaysIgnoredPatterns = []string{GitDirectoryName + pathSegmentSeparator}

// defaultIgnoredPatterns lists rules applied unless default patterns are disabled:
// hidden files, hidden directories, and package-manager lock artifacts.
var defaultIgnoredPatterns = []string{".*", ".*" + pathSegmentSeparator, "package-lock.json"}

// patternRule pairs a raw gitignore-syntax pattern with the root-relative
// directory the rule is anchored to. Rules loaded from a nested ignore file
// are interpreted relative to that directory, not to the tree root.
type patternRule struct {
	baseDirectory string
	pattern       string
}

// PatternSet is an ordered, immutable collection of ignore rules scoped to a
// directory. Deriving a child set never mutates the parent, so a parent set
// can be reused safely across sibling subtrees during depth-first traversal.
type PatternSet struct {
	useGitignore bool
	rules        []patternRule
}

// NewBaseSet composes the root pattern set from the always-ignored rules, the
// default rules (when includeDefaults is true), and the user-supplied
// patterns, in that order. useGitignore controls whether Derive consults
// per-directory ignore files.
func NewBaseSet(userPatterns []string, includeDefaults bool, useGitignore bool) *PatternSet {
	patternSet := &PatternSet{useGitignore: useGitignore}
	patternSet.rules = appendRootRules(patternSet.rules, alwaysIgnoredPatterns)
	if includeDefaults {
		patternSet.rules = appendRootRules(patternSet.rules, defaultIgnoredPatterns)
	}
	patternSet.rules = appendRootRules(patternSet.rules, userPatterns)
	return patternSet
}

// appendRootRules adds root-anchored rules, skipping blank pattern strings.
func appendRootRules(rules []patternRule, patterns []string) []patternRule {
	for _, patternValue := range patterns {
		trimmedPattern := strings.TrimSpace(patternValue)
		if trimmedPattern == "" {
			continue
		}
		rules = append(rules, patternRule{baseDirectory: "", pattern: trimmedPattern})
	}
	return rules
}

// Derive returns the pattern set active inside the directory at
// directoryPath, whose path relative to the tree root is relativeDirectory
// ("" for the root itself). Rules found in the directory's local ignore file
// are layered on top of a copy of the receiver; the receiver is never
// modified. A missing or unreadable ignore file contributes no rules.
func (patternSet *PatternSet) Derive(directoryPath string, relativeDirectory string) *PatternSet {
	if !patternSet.useGitignore {
		return patternSet
	}
	localPatterns := readIgnoreFilePatterns(filepath.Join(directoryPath, GitIgnoreFileName))
	if len(localPatterns) == 0 {
		return patternSet
	}
	derivedSet := &PatternSet{useGitignore: patternSet.useGitignore}
	derivedSet.rules = make([]patternRule, len(patternSet.rules), len(patternSet.rules)+len(localPatterns))
	copy(derivedSet.rules, patternSet.rules)
	for _, patternValue := range localPatterns {
		derivedSet.rules = append(derivedSet.rules, patternRule{baseDirectory: relativeDirectory, pattern: patternValue})
	}
	return derivedSet
}

// Matches reports whether the root-relative path is excluded by the set.
// Paths use forward slashes regardless of host convention; directory paths
// carry a trailing slash so directory-only rules can match them.
func (patternSet *PatternSet) Matches(relativePath string) bool {
	normalizedPath := strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator)
	isDirectory := strings.HasSuffix(normalizedPath, pathSegmentSeparator)
	cleanPath := strings.TrimSuffix(normalizedPath, pathSegmentSeparator)
	if cleanPath == "" {
		return false
	}

	for _, rule := range patternSet.rules {
		if ruleMatches(rule, cleanPath, isDirectory) {
			return true
		}
	}
	return false
}

// ruleMatches evaluates a single rule against a clean root-relative path.
func ruleMatches(rule patternRule, cleanPath string, isDirectory bool) bool {
	candidatePath := cleanPath
	if rule.baseDirectory != "" {
		basePrefix := rule.baseDirectory + pathSegmentSeparator
		if !strings.HasPrefix(cleanPath, basePrefix) {
			return false
		}
		candidatePath = strings.TrimPrefix(cleanPath, basePrefix)
	}

	patternValue := rule.pattern
	isDirectoryOnly := strings.HasSuffix(patternValue, pathSegmentSeparator)
	patternValue = strings.TrimSuffix(patternValue, pathSegmentSeparator)
	isAnchored := strings.HasPrefix(patternValue, pathSegmentSeparator)
	patternValue = strings.TrimPrefix(patternValue, pathSegmentSeparator)
	if patternValue == "" {
		return false
	}

	patternSegments := strings.Split(patternValue, pathSegmentSeparator)
	candidateSegments := strings.Split(candidatePath, pathSegmentSeparator)

	if isAnchored || len(patternSegments) > 1 {
		if len(candidateSegments) < len(patternSegments) {
			return false
		}
		if !segmentsMatch(candidateSegments[:len(patternSegments)], patternSegments) {
			return false
		}
		if len(candidateSegments) > len(patternSegments) {
			return true
		}
		return !isDirectoryOnly || isDirectory
	}

	lastIndex := len(candidateSegments) - 1
	for segmentIndex, candidateSegment := range candidateSegments {
		isMatched, matchError := filepath.Match(patternValue, candidateSegment)
		if matchError != nil || !isMatched {
			continue
		}
		if segmentIndex < lastIndex {
			return true
		}
		return !isDirectoryOnly || isDirectory
	}
	return false
}

// segmentsMatch reports whether each pattern segment matches the
// corresponding path segment using filepath.Match semantics.
func segmentsMatch(pathSegments, patternSegments []string) bool {
	for segmentIndex, patternSegment := range patternSegments {
		isMatched, matchError := filepath.Match(patternSegment, pathSegments[segmentIndex])
		if matchError != nil || !isMatched {
			return false
		}
	}
	return true
}

// readIgnoreFilePatterns loads pattern lines from an ignore file, dropping
// blank lines and comments. Read failures yield no patterns; a directory we
// cannot inspect simply contributes no additional rules.
//
// #nosec G304
func readIgnoreFilePatterns(ignoreFilePath string) []string {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		return nil
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", ignoreFilePath, closeError)
		}
	}()

	var patterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		patterns = append(patterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return patterns
	}
	return patterns
}
