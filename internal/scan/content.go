package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/mtarasenko/reposcribe/internal/ignore"
)

const (
	separatorLine   = "================================================"
	fileStartPrefix = "START OF FILE: "
	fileEndPrefix   = "END OF FILE: "
	blockPadding    = "\n\n"
)

// ContentBuilder renders the concatenated, delimited bodies of every
// readable-text file that survives the ignore rules.
type ContentBuilder struct {
	Classifier                TextClassifier
	HierarchicalOrdering      bool
	KeepReplacementCharacters bool
	Logger                    *zap.Logger
}

// Render produces the content artifact for the directory at
// rootDirectoryPath and reports how many files were embedded. The traversal
// applies the same derivation and pruning discipline as the structure pass,
// so the embedded files are exactly the text-classified subset of the
// structure listing.
func (builder *ContentBuilder) Render(rootDirectoryPath string, baseSet *ignore.PatternSet) (string, int, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return "", 0, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}

	var output strings.Builder
	filesIncluded := 0
	renderError := builder.renderLevel(absoluteRootPath, "", baseSet, &output, &filesIncluded)
	if renderError != nil {
		return "", 0, renderError
	}
	return strings.TrimLeftFunc(output.String(), unicode.IsSpace), filesIncluded, nil
}

// renderLevel processes one directory: surviving files are embedded as
// delimited blocks and surviving directories are descended into.
func (builder *ContentBuilder) renderLevel(directoryPath string, relativeDirectory string, parentSet *ignore.PatternSet, output *strings.Builder, filesIncluded *int) error {
	localSet := parentSet.Derive(directoryPath, relativeDirectory)

	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return fmt.Errorf(errorReadDirectoryFormat, directoryPath, readDirectoryError)
	}

	surviving := filterEntries(directoryEntries, relativeDirectory, localSet)
	if builder.HierarchicalOrdering {
		sortAlphabetical(surviving)
	} else {
		sortDirectoriesFirst(surviving)
	}

	for _, directoryEntry := range surviving {
		entryPath := filepath.Join(directoryPath, directoryEntry.Name())
		entryRelative := joinRelative(relativeDirectory, directoryEntry.Name())

		if directoryEntry.IsDir() {
			builder.Logger.Debug("entering directory", zap.String("path", entryRelative))
			if childError := builder.renderLevel(entryPath, entryRelative, localSet, output, filesIncluded); childError != nil {
				builder.Logger.Warn("skipping unreadable directory",
					zap.String("path", entryPath), zap.Error(childError))
			}
			continue
		}

		builder.appendFile(entryPath, entryRelative, output, filesIncluded)
	}

	return nil
}

// appendFile classifies a single file and, when it qualifies as text, embeds
// its full transformed contents as a delimited block.
func (builder *ContentBuilder) appendFile(filePath string, relativePath string, output *strings.Builder, filesIncluded *int) {
	if !builder.Classifier.IsText(filePath) {
		builder.Logger.Info("skipping non-text file", zap.String("path", relativePath))
		return
	}

	fileData, readError := os.ReadFile(filePath) // #nosec G304
	if readError != nil {
		builder.Logger.Warn("unable to read file",
			zap.String("path", relativePath), zap.Error(readError))
		return
	}

	fileBody, _, _ := SanitizeText(fileData)
	if !builder.KeepReplacementCharacters {
		fileBody = strings.ReplaceAll(fileBody, string(ReplacementCharacter), "")
	}

	builder.Logger.Debug("including file", zap.String("path", relativePath))
	writeContentBlock(output, relativePath, fileBody)
	*filesIncluded++
}

// writeContentBlock wraps a file body in the delimited open/close markers.
// Empty files still produce a complete block with an empty body line.
func writeContentBlock(output *strings.Builder, relativePath string, fileBody string) {
	output.WriteString(blockPadding)
	output.WriteString(separatorLine + "\n")
	output.WriteString(fileStartPrefix + relativePath + "\n")
	output.WriteString(separatorLine + "\n")
	output.WriteString(fileBody)
	if !strings.HasSuffix(fileBody, "\n") {
		output.WriteString("\n")
	}
	output.WriteString(separatorLine + "\n")
	output.WriteString(fileEndPrefix + relativePath + "\n")
	output.WriteString(separatorLine + "\n")
}
