package scan

import (
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mtarasenko/reposcribe/internal/ignore"
)

func renderContent(testingHandle *testing.T, builder *ContentBuilder, rootDirectory string, patternSet *ignore.PatternSet) (string, int) {
	testingHandle.Helper()
	contentText, filesIncluded, renderError := builder.Render(rootDirectory, patternSet)
	if renderError != nil {
		testingHandle.Fatalf("Render failed: %v", renderError)
	}
	return contentText, filesIncluded
}

func newTestContentBuilder() *ContentBuilder {
	return &ContentBuilder{
		Classifier: newTestClassifier(8192, 0),
		Logger:     zap.NewNop(),
	}
}

func TestContentBlockFormat(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "file1.txt"), "A")

	contentText, filesIncluded := renderContent(testingHandle, newTestContentBuilder(), rootDirectory, ignore.NewBaseSet(nil, true, true))

	expectedBlock := separatorLine + "\n" +
		"START OF FILE: file1.txt\n" +
		separatorLine + "\n" +
		"A\n" +
		separatorLine + "\n" +
		"END OF FILE: file1.txt\n" +
		separatorLine + "\n"
	if contentText != expectedBlock {
		testingHandle.Fatalf("unexpected content artifact:\n%q", contentText)
	}
	if filesIncluded != 1 {
		testingHandle.Fatalf("files included = %d, want 1", filesIncluded)
	}
	if strings.HasPrefix(contentText, "\n") {
		testingHandle.Fatalf("leading whitespace must be trimmed from the artifact")
	}
}

func TestContentEmptyFileProducesCompleteBlock(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "empty.txt"), "")

	contentText, filesIncluded := renderContent(testingHandle, newTestContentBuilder(), rootDirectory, ignore.NewBaseSet(nil, true, true))

	if !strings.Contains(contentText, "START OF FILE: empty.txt") {
		testingHandle.Errorf("missing open marker for the empty file:\n%s", contentText)
	}
	if !strings.Contains(contentText, "END OF FILE: empty.txt") {
		testingHandle.Errorf("missing close marker for the empty file:\n%s", contentText)
	}
	if filesIncluded != 1 {
		testingHandle.Errorf("files included = %d, want 1", filesIncluded)
	}
}

// TestContentScenario covers the reference scenario: file1.txt and
// src/file2.js are embedded while ignored.txt and test.log stay out.
func TestContentScenario(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	sourceDirectory := filepath.Join(rootDirectory, "src")
	makeTestDirectory(testingHandle, sourceDirectory)
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "file1.txt"), "A")
	writeTestFile(testingHandle, filepath.Join(sourceDirectory, "file2.js"), "B")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, ignore.GitIgnoreFileName), "ignored.txt\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "ignored.txt"), "secret")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "test.log"), "log line")

	baseSet := ignore.NewBaseSet([]string{"*.log"}, true, true)
	contentText, filesIncluded := renderContent(testingHandle, newTestContentBuilder(), rootDirectory, baseSet)

	if !strings.Contains(contentText, "START OF FILE: src/file2.js") {
		testingHandle.Errorf("missing src/file2.js block:\n%s", contentText)
	}
	if !strings.Contains(contentText, "START OF FILE: file1.txt") {
		testingHandle.Errorf("missing file1.txt block:\n%s", contentText)
	}
	if strings.Contains(contentText, "ignored.txt") || strings.Contains(contentText, "secret") {
		testingHandle.Errorf("ignored file leaked into content:\n%s", contentText)
	}
	if strings.Contains(contentText, "test.log") {
		testingHandle.Errorf("pattern-excluded file leaked into content:\n%s", contentText)
	}
	if filesIncluded != 2 {
		testingHandle.Errorf("files included = %d, want 2", filesIncluded)
	}
}

func TestContentOrderingModes(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	makeTestDirectory(testingHandle, filepath.Join(rootDirectory, "zdir"))
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "zdir", "inner.txt"), "inner")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "afile.txt"), "outer")

	baseSet := ignore.NewBaseSet(nil, true, true)

	defaultBuilder := newTestContentBuilder()
	defaultText, _ := renderContent(testingHandle, defaultBuilder, rootDirectory, baseSet)
	if strings.Index(defaultText, "zdir/inner.txt") > strings.Index(defaultText, "afile.txt") {
		testingHandle.Errorf("default ordering must process directories before files:\n%s", defaultText)
	}

	hierarchicalBuilder := newTestContentBuilder()
	hierarchicalBuilder.HierarchicalOrdering = true
	hierarchicalText, _ := renderContent(testingHandle, hierarchicalBuilder, rootDirectory, baseSet)
	if strings.Index(hierarchicalText, "afile.txt") > strings.Index(hierarchicalText, "zdir/inner.txt") {
		testingHandle.Errorf("hierarchical ordering must interleave alphabetically:\n%s", hierarchicalText)
	}
}

// TestContentEmbedsWholeFileBeyondSamplingCap verifies that a file larger
// than the classification cap is still embedded in full when its sampled
// head is clean.
func TestContentEmbedsWholeFileBeyondSamplingCap(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	largeBody := strings.Repeat("a", 600) + "TAIL-MARKER"
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "large.txt"), largeBody)

	builder := newTestContentBuilder()
	builder.Classifier = newTestClassifier(512, 0)
	contentText, _ := renderContent(testingHandle, builder, rootDirectory, ignore.NewBaseSet(nil, true, true))

	if !strings.Contains(contentText, "TAIL-MARKER") {
		testingHandle.Fatalf("content must embed the entire file, not just the sampled prefix:\n%s", contentText)
	}
}

func TestContentReplacementCharacterHandling(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestBytes(testingHandle, filepath.Join(rootDirectory, "noisy.txt"), []byte{'a', 0x00, 'b'})

	baseSet := ignore.NewBaseSet(nil, true, true)

	strippingBuilder := newTestContentBuilder()
	strippingBuilder.Classifier = newTestClassifier(8192, 0.5)
	strippedText, _ := renderContent(testingHandle, strippingBuilder, rootDirectory, baseSet)
	if strings.Contains(strippedText, string(ReplacementCharacter)) {
		testingHandle.Errorf("replacement characters must be stripped by default:\n%s", strippedText)
	}
	if !strings.Contains(strippedText, "ab") {
		testingHandle.Errorf("surviving characters must remain after stripping:\n%s", strippedText)
	}

	keepingBuilder := newTestContentBuilder()
	keepingBuilder.Classifier = newTestClassifier(8192, 0.5)
	keepingBuilder.KeepReplacementCharacters = true
	keptText, _ := renderContent(testingHandle, keepingBuilder, rootDirectory, baseSet)
	if !strings.Contains(keptText, "a"+string(ReplacementCharacter)+"b") {
		testingHandle.Errorf("replacement characters must be retained when configured:\n%s", keptText)
	}
}

func TestContentSkipsNonTextButKeepsTraversal(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestBytes(testingHandle, filepath.Join(rootDirectory, "blob.bin"), []byte{0x00, 0xff, 0x00})
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "readme.txt"), "text")

	contentText, filesIncluded := renderContent(testingHandle, newTestContentBuilder(), rootDirectory, ignore.NewBaseSet(nil, true, true))

	if strings.Contains(contentText, "blob.bin") {
		testingHandle.Errorf("non-text file leaked into content:\n%s", contentText)
	}
	if !strings.Contains(contentText, "START OF FILE: readme.txt") {
		testingHandle.Errorf("expected readme.txt block:\n%s", contentText)
	}
	if filesIncluded != 1 {
		testingHandle.Errorf("files included = %d, want 1", filesIncluded)
	}
}
