package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mtarasenko/reposcribe/internal/ignore"
)

const (
	connectorMiddle    = "├── "
	connectorLast      = "└── "
	indentContinuation = "│   "
	indentTermination  = "    "

	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorReadDirectoryFormat is used when a directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"
)

// StructureBuilder renders the indented tree listing of a directory.
type StructureBuilder struct {
	Logger *zap.Logger
}

// Render produces the tree listing for the directory at rootDirectoryPath,
// filtered through baseSet and the per-directory ignore files derived from
// it. The first line is always the root directory's own name with a trailing
// slash.
func (builder *StructureBuilder) Render(rootDirectoryPath string, baseSet *ignore.PatternSet) (string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}

	var output strings.Builder
	output.WriteString(filepath.Base(absoluteRootPath) + pathSeparator + "\n")
	renderError := builder.renderLevel(absoluteRootPath, "", baseSet, "", &output)
	if renderError != nil {
		return "", renderError
	}
	return output.String(), nil
}

// renderLevel emits the entries of one directory and recurses into surviving
// subdirectories. The parent pattern set is never mutated; each level derives
// its own set so sibling subtrees cannot observe each other's local rules.
func (builder *StructureBuilder) renderLevel(directoryPath string, relativeDirectory string, parentSet *ignore.PatternSet, indentPrefix string, output *strings.Builder) error {
	localSet := parentSet.Derive(directoryPath, relativeDirectory)

	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return fmt.Errorf(errorReadDirectoryFormat, directoryPath, readDirectoryError)
	}

	surviving := filterEntries(directoryEntries, relativeDirectory, localSet)
	sortDirectoriesFirst(surviving)

	for entryIndex, directoryEntry := range surviving {
		isLastSibling := entryIndex == len(surviving)-1
		connector := connectorMiddle
		childIndent := indentPrefix + indentContinuation
		if isLastSibling {
			connector = connectorLast
			childIndent = indentPrefix + indentTermination
		}

		displayName := directoryEntry.Name()
		if directoryEntry.IsDir() {
			displayName += pathSeparator
		}
		builder.Logger.Debug("listing entry",
			zap.String("path", joinRelative(relativeDirectory, directoryEntry.Name())))
		output.WriteString(indentPrefix + connector + displayName + "\n")

		if directoryEntry.IsDir() {
			childPath := filepath.Join(directoryPath, directoryEntry.Name())
			childRelative := joinRelative(relativeDirectory, directoryEntry.Name())
			builder.Logger.Debug("entering directory", zap.String("path", childRelative))
			if childError := builder.renderLevel(childPath, childRelative, localSet, childIndent, output); childError != nil {
				builder.Logger.Warn("skipping unreadable directory",
					zap.String("path", childPath), zap.Error(childError))
			}
		}
	}

	return nil
}
