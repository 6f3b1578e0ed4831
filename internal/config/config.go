// Package config defines the run configuration, its defaults, and the
// validation rules applied before any traversal begins.
package config

import (
	"errors"
	"fmt"
	"os"
)

const (
	// DefaultStructureFileName is the default filename for the tree listing.
	DefaultStructureFileName = "repo_structure.txt"
	// DefaultContentFileName is the default filename for the concatenated content.
	DefaultContentFileName = "repo_content.txt"

	// DefaultMaxFileSizeBytes caps how much of a file is sampled for text classification.
	DefaultMaxFileSizeBytes = 8192
	// MinimumMaxFileSizeBytes is the lower clamp bound for the file-size cap.
	MinimumMaxFileSizeBytes = 512
	// MaximumMaxFileSizeBytes is the upper clamp bound for the file-size cap.
	MaximumMaxFileSizeBytes = 4 * 1024 * 1024

	// errorInvalidRatioFormat reports a replacement ratio outside the unit interval.
	errorInvalidRatioFormat = "max replacement ratio %v is outside the range [0, 1]"
	// errorConflictingVerbosity reports mutually exclusive logging modes.
	errorConflictingVerbosity = "silent and verbose modes are mutually exclusive"
	// errorWorkingDirectoryFormat reports failure to determine the working directory.
	errorWorkingDirectoryFormat = "determine working directory: %w"
)

// Options collects the caller-supplied settings for a serialization run.
// Every field is optional; zero values select the documented defaults.
type Options struct {
	RootDirectory             string
	OutputDirectory           string
	StructureFileName         string
	ContentFileName           string
	IgnorePatterns            []string
	Force                     bool
	Interactive               bool
	MaxFileSizeBytes          int
	DisableDefaultPatterns    bool
	DisableGitignore          bool
	Silent                    bool
	Verbose                   bool
	HierarchicalOrdering      bool
	MaxReplacementRatio       float64
	KeepReplacementCharacters bool
}

// Configuration is the resolved, validated form of Options. It is constructed
// once per run and treated as immutable thereafter.
type Configuration struct {
	RootDirectory             string
	OutputDirectory           string
	StructureFileName         string
	ContentFileName           string
	IgnorePatterns            []string
	Force                     bool
	Interactive               bool
	MaxFileSizeBytes          int
	DisableDefaultPatterns    bool
	DisableGitignore          bool
	Silent                    bool
	Verbose                   bool
	HierarchicalOrdering      bool
	MaxReplacementRatio       float64
	KeepReplacementCharacters bool
}

// Resolve applies defaults, clamps the file-size cap, and validates the
// options, returning the immutable run configuration. Validation failures are
// fatal and occur before any filesystem traversal.
func (options Options) Resolve() (Configuration, error) {
	if options.MaxReplacementRatio < 0 || options.MaxReplacementRatio > 1 {
		return Configuration{}, fmt.Errorf(errorInvalidRatioFormat, options.MaxReplacementRatio)
	}
	if options.Silent && options.Verbose {
		return Configuration{}, errors.New(errorConflictingVerbosity)
	}

	configuration := Configuration{
		RootDirectory:             options.RootDirectory,
		OutputDirectory:           options.OutputDirectory,
		StructureFileName:         options.StructureFileName,
		ContentFileName:           options.ContentFileName,
		IgnorePatterns:            append([]string(nil), options.IgnorePatterns...),
		Force:                     options.Force,
		Interactive:               options.Interactive,
		MaxFileSizeBytes:          clampMaxFileSize(options.MaxFileSizeBytes),
		DisableDefaultPatterns:    options.DisableDefaultPatterns,
		DisableGitignore:          options.DisableGitignore,
		Silent:                    options.Silent,
		Verbose:                   options.Verbose,
		HierarchicalOrdering:      options.HierarchicalOrdering,
		MaxReplacementRatio:       options.MaxReplacementRatio,
		KeepReplacementCharacters: options.KeepReplacementCharacters,
	}

	if configuration.RootDirectory == "" || configuration.OutputDirectory == "" {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return Configuration{}, fmt.Errorf(errorWorkingDirectoryFormat, workingDirectoryError)
		}
		if configuration.RootDirectory == "" {
			configuration.RootDirectory = workingDirectory
		}
		if configuration.OutputDirectory == "" {
			configuration.OutputDirectory = workingDirectory
		}
	}
	if configuration.StructureFileName == "" {
		configuration.StructureFileName = DefaultStructureFileName
	}
	if configuration.ContentFileName == "" {
		configuration.ContentFileName = DefaultContentFileName
	}

	return configuration, nil
}

// clampMaxFileSize maps the zero value to the default cap and clamps explicit
// values into the supported range.
func clampMaxFileSize(maxFileSizeBytes int) int {
	if maxFileSizeBytes == 0 {
		return DefaultMaxFileSizeBytes
	}
	if maxFileSizeBytes < MinimumMaxFileSizeBytes {
		return MinimumMaxFileSizeBytes
	}
	if maxFileSizeBytes > MaximumMaxFileSizeBytes {
		return MaximumMaxFileSizeBytes
	}
	return maxFileSizeBytes
}
