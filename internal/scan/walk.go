package scan

import (
	"os"
	"sort"

	"github.com/mtarasenko/reposcribe/internal/ignore"
)

const pathSeparator = "/"

// joinRelative appends a name to a root-relative directory path, yielding the
// entry's own root-relative path with forward slashes.
func joinRelative(relativeDirectory string, entryName string) string {
	if relativeDirectory == "" {
		return entryName
	}
	return relativeDirectory + pathSeparator + entryName
}

// filterEntries drops every directory entry whose root-relative path matches
// the active pattern set. Directory paths are matched with a trailing slash
// so directory-only rules apply. Matched directories are pruned entirely:
// their subtrees are never visited and their local ignore files never read.
func filterEntries(directoryEntries []os.DirEntry, relativeDirectory string, patternSet *ignore.PatternSet) []os.DirEntry {
	surviving := make([]os.DirEntry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		relativePath := joinRelative(relativeDirectory, directoryEntry.Name())
		if directoryEntry.IsDir() {
			relativePath += pathSeparator
		}
		if patternSet.Matches(relativePath) {
			continue
		}
		surviving = append(surviving, directoryEntry)
	}
	return surviving
}

// sortDirectoriesFirst orders entries with directories before files and
// case-sensitive ordinal name order within each group.
func sortDirectoriesFirst(directoryEntries []os.DirEntry) {
	sort.SliceStable(directoryEntries, func(firstIndex, secondIndex int) bool {
		firstIsDirectory := directoryEntries[firstIndex].IsDir()
		secondIsDirectory := directoryEntries[secondIndex].IsDir()
		if firstIsDirectory != secondIsDirectory {
			return firstIsDirectory
		}
		return directoryEntries[firstIndex].Name() < directoryEntries[secondIndex].Name()
	})
}

// sortAlphabetical orders entries purely by name, files and directories
// interleaved.
func sortAlphabetical(directoryEntries []os.DirEntry) {
	sort.SliceStable(directoryEntries, func(firstIndex, secondIndex int) bool {
		return directoryEntries[firstIndex].Name() < directoryEntries[secondIndex].Name()
	})
}
