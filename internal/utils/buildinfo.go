package utils

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion   = "unknown"
	gitDirectoryName = ".git"
)

// gitDescribeArgumentSets lists the describe invocations tried in order for
// development builds: an exact tag first, then the long dirty-aware form.
var gitDescribeArgumentSets = [][]string{
	{"describe", "--tags", "--exact-match"},
	{"describe", "--tags", "--long", "--dirty"},
}

// GetApplicationVersion resolves the version string reported by --version.
// Released binaries carry it in the module build info; a development build
// falls back to git describe against the enclosing repository, and the
// literal "unknown" when neither source yields a version.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		return buildInfo.Main.Version
	}

	repositoryDirectory, repositoryFound := findEnclosingRepository(".")
	if !repositoryFound {
		return unknownVersion
	}
	for _, describeArguments := range gitDescribeArgumentSets {
		// #nosec G204
		describeCommand := exec.Command("git", describeArguments...)
		describeCommand.Dir = repositoryDirectory
		describeOutput, describeError := describeCommand.Output()
		if describeError == nil && len(describeOutput) > 0 {
			return strings.TrimSpace(string(describeOutput))
		}
	}
	return unknownVersion
}

// findEnclosingRepository walks upward from startDirectory looking for a
// directory that contains .git and reports whether one was found.
func findEnclosingRepository(startDirectory string) (string, bool) {
	currentDirectory, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return "", false
	}
	for {
		gitPath := filepath.Join(currentDirectory, gitDirectoryName)
		if pathInfo, statError := os.Stat(gitPath); statError == nil && pathInfo.IsDir() {
			return currentDirectory, true
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", false
		}
		currentDirectory = parentDirectory
	}
}
