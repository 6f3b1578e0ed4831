package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mtarasenko/reposcribe/internal/config"
	"github.com/mtarasenko/reposcribe/internal/ignore"
	"github.com/mtarasenko/reposcribe/internal/utils"
)

var (
	// ErrOutputsExist indicates at least one output file already exists and
	// force mode is disabled.
	ErrOutputsExist = errors.New("output files already exist; enable force to overwrite")
	// ErrPromptRequired indicates existing outputs should be confirmed by an
	// interactive caller before overwriting.
	ErrPromptRequired = errors.New("output files already exist; confirmation required")
)

const (
	// errorRootDirectoryFormat reports an unusable root directory.
	errorRootDirectoryFormat = "root directory %s: %w"
	// errorNotDirectoryFormat reports a root path that is not a directory.
	errorNotDirectoryFormat = "root path %s is not a directory"
	// errorWriteOutputFormat reports a failed output write.
	errorWriteOutputFormat = "writing %s: %w"
)

// Result carries the rendered artifacts and where they were written.
type Result struct {
	StructurePath string
	ContentPath   string
	Structure     string
	Content       string
	FilesIncluded int
}

// Run validates the configuration, resolves the output collision policy,
// renders both artifacts, and writes each as a single whole-buffer
// operation. Both generators traverse the tree independently but share the
// same base pattern set, classifier settings, and ordering rules, so their
// notion of what is ignored always agrees.
func Run(configuration config.Configuration, logger *zap.Logger) (Result, error) {
	rootInfo, rootStatError := os.Stat(configuration.RootDirectory)
	if rootStatError != nil {
		return Result{}, fmt.Errorf(errorRootDirectoryFormat, configuration.RootDirectory, rootStatError)
	}
	if !rootInfo.IsDir() {
		return Result{}, fmt.Errorf(errorNotDirectoryFormat, configuration.RootDirectory)
	}

	structurePath := filepath.Join(configuration.OutputDirectory, configuration.StructureFileName)
	contentPath := filepath.Join(configuration.OutputDirectory, configuration.ContentFileName)

	if !configuration.Force {
		if collisionError := checkOutputCollision(configuration.Interactive, structurePath, contentPath); collisionError != nil {
			return Result{}, collisionError
		}
	}

	baseSet := ignore.NewBaseSet(
		withOutputPatterns(configuration.IgnorePatterns, configuration, structurePath, contentPath),
		!configuration.DisableDefaultPatterns,
		!configuration.DisableGitignore,
	)

	structureBuilder := &StructureBuilder{Logger: logger}
	structureText, structureError := structureBuilder.Render(configuration.RootDirectory, baseSet)
	if structureError != nil {
		return Result{}, structureError
	}

	contentBuilder := &ContentBuilder{
		Classifier: TextClassifier{
			MaxSizeBytes:        configuration.MaxFileSizeBytes,
			MaxReplacementRatio: configuration.MaxReplacementRatio,
			Logger:              logger,
		},
		HierarchicalOrdering:      configuration.HierarchicalOrdering,
		KeepReplacementCharacters: configuration.KeepReplacementCharacters,
		Logger:                    logger,
	}
	contentText, filesIncluded, contentError := contentBuilder.Render(configuration.RootDirectory, baseSet)
	if contentError != nil {
		return Result{}, contentError
	}

	if mkdirError := os.MkdirAll(configuration.OutputDirectory, 0o755); mkdirError != nil {
		return Result{}, fmt.Errorf(errorWriteOutputFormat, configuration.OutputDirectory, mkdirError)
	}
	if writeError := os.WriteFile(structurePath, []byte(structureText), 0o644); writeError != nil {
		return Result{}, fmt.Errorf(errorWriteOutputFormat, structurePath, writeError)
	}
	if writeError := os.WriteFile(contentPath, []byte(contentText), 0o644); writeError != nil {
		return Result{}, fmt.Errorf(errorWriteOutputFormat, contentPath, writeError)
	}

	logger.Info("wrote structure output", zap.String("path", structurePath))
	logger.Info("wrote content output", zap.String("path", contentPath))

	return Result{
		StructurePath: structurePath,
		ContentPath:   contentPath,
		Structure:     structureText,
		Content:       contentText,
		FilesIncluded: filesIncluded,
	}, nil
}

// checkOutputCollision reports the collision policy outcome when either
// output file already exists. Interactive callers receive ErrPromptRequired
// so they can confirm the overwrite; everyone else gets ErrOutputsExist.
func checkOutputCollision(isInteractive bool, outputPaths ...string) error {
	for _, outputPath := range outputPaths {
		_, statError := os.Stat(outputPath)
		if statError == nil {
			if isInteractive {
				return ErrPromptRequired
			}
			return ErrOutputsExist
		}
		if !os.IsNotExist(statError) {
			return fmt.Errorf("inspecting output %s: %w", outputPath, statError)
		}
	}
	return nil
}

// withOutputPatterns appends anchored ignore rules for the output files
// themselves when they land inside the scanned tree, so a force-mode rerun
// never embeds the previous run's artifacts.
func withOutputPatterns(userPatterns []string, configuration config.Configuration, outputPaths ...string) []string {
	patterns := append([]string(nil), userPatterns...)
	for _, outputPath := range outputPaths {
		absoluteOutput, outputError := filepath.Abs(outputPath)
		if outputError != nil {
			continue
		}
		relativeOutput := utils.RelativePathOrSelf(absoluteOutput, configuration.RootDirectory)
		if filepath.IsAbs(relativeOutput) || strings.HasPrefix(relativeOutput, "..") {
			continue
		}
		patterns = append(patterns, "/"+relativeOutput)
	}
	return patterns
}
