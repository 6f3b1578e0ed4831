// Package scan walks a directory tree and produces the structure and content
// artifacts, applying layered ignore rules and text classification.
package scan

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ReplacementCharacter is the sentinel emitted for undecodable bytes and
// disallowed control characters.
const ReplacementCharacter = utf8.RuneError

// allowedControlCharacters lists the control characters that do not count as
// replacement-worthy: tab, line feed, vertical tab, form feed, carriage return.
var allowedControlCharacters = map[rune]struct{}{
	'\t': {},
	'\n': {},
	'\v': {},
	'\f': {},
	'\r': {},
}

// TextClassifier decides whether a file's content is safe to embed as text.
type TextClassifier struct {
	MaxSizeBytes        int
	MaxReplacementRatio float64
	Logger              *zap.Logger
}

// IsText reads up to MaxSizeBytes from the head of the file and reports
// whether the sample qualifies as text under the replacement-ratio policy.
// An empty file is always text. Read failures are logged as warnings and
// classify the file as not text.
func (classifier TextClassifier) IsText(filePath string) bool {
	sample, readError := readFileHead(filePath, classifier.MaxSizeBytes)
	if readError != nil {
		classifier.Logger.Warn("unable to read file for classification",
			zap.String("path", filePath), zap.Error(readError))
		return false
	}
	if len(sample) == 0 {
		return true
	}
	_, replacementCount, totalRunes := SanitizeText(sample)
	return classifier.acceptsReplacements(replacementCount, totalRunes)
}

// acceptsReplacements applies the ratio policy. A zero ratio rejects on any
// replacement character; otherwise the file is rejected only when the ratio
// strictly exceeds the threshold, so an exact-threshold sample passes.
func (classifier TextClassifier) acceptsReplacements(replacementCount int, totalRunes int) bool {
	if classifier.MaxReplacementRatio == 0 {
		return replacementCount == 0
	}
	if totalRunes == 0 {
		return true
	}
	return float64(replacementCount)/float64(totalRunes) <= classifier.MaxReplacementRatio
}

// SanitizeText decodes data as UTF-8, mapping invalid sequences and
// disallowed control characters to the replacement character. It returns the
// sanitized text together with the replacement count and the total number of
// decoded runes.
func SanitizeText(data []byte) (string, int, int) {
	var builder strings.Builder
	builder.Grow(len(data))
	replacementCount := 0
	totalRunes := 0
	for byteIndex := 0; byteIndex < len(data); {
		decodedRune, runeSize := utf8.DecodeRune(data[byteIndex:])
		if isDisallowedControlCharacter(decodedRune) {
			decodedRune = ReplacementCharacter
		}
		if decodedRune == ReplacementCharacter {
			replacementCount++
		}
		builder.WriteRune(decodedRune)
		totalRunes++
		byteIndex += runeSize
	}
	return builder.String(), replacementCount, totalRunes
}

// isDisallowedControlCharacter reports whether the rune is a control
// character outside the allow-list.
func isDisallowedControlCharacter(candidate rune) bool {
	if _, isAllowed := allowedControlCharacters[candidate]; isAllowed {
		return false
	}
	return unicode.IsControl(candidate)
}

// readFileHead reads up to maxSizeBytes bytes from the start of the file.
//
// #nosec G304
func readFileHead(filePath string, maxSizeBytes int) ([]byte, error) {
	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		return nil, openError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", filePath, closeError)
		}
	}()
	return io.ReadAll(io.LimitReader(fileHandle, int64(maxSizeBytes)))
}
