package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mtarasenko/reposcribe/internal/utils"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

func TestLoadFileConfigurationMissingFile(testingHandle *testing.T) {
	workingDirectory := testingHandle.TempDir()
	testingHandle.Setenv("HOME", testingHandle.TempDir())

	configuration, loadError := LoadFileConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingHandle.Fatalf("a missing configuration file must not be an error: %v", loadError)
	}
	if configuration.Output.Directory != "" || len(configuration.Paths.Exclude) != 0 {
		testingHandle.Fatalf("expected an empty configuration, got %+v", configuration)
	}
}

func TestLoadFileConfigurationLocalFile(testingHandle *testing.T) {
	workingDirectory := testingHandle.TempDir()
	testingHandle.Setenv("HOME", testingHandle.TempDir())

	writeTestFile(testingHandle, filepath.Join(workingDirectory, utils.ConfigFileName), `
output:
  directory: artifacts
  structure_file: tree.txt
paths:
  exclude:
    - vendor/
    - vendor/
    - "*.log"
  use_gitignore: false
scan:
  max_file_size: 2048
tokens:
  enabled: true
  model: gpt-4o
`)

	configuration, loadError := LoadFileConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingHandle.Fatalf("LoadFileConfiguration failed: %v", loadError)
	}
	if configuration.Output.Directory != "artifacts" {
		testingHandle.Errorf("output directory = %q, want artifacts", configuration.Output.Directory)
	}
	if configuration.Output.StructureFile != "tree.txt" {
		testingHandle.Errorf("structure file = %q, want tree.txt", configuration.Output.StructureFile)
	}
	expectedExcludes := []string{"vendor/", "*.log"}
	if len(configuration.Paths.Exclude) != len(expectedExcludes) {
		testingHandle.Fatalf("exclude patterns = %v, want deduplicated %v", configuration.Paths.Exclude, expectedExcludes)
	}
	if configuration.Paths.UseGitignore == nil || *configuration.Paths.UseGitignore {
		testingHandle.Errorf("use_gitignore must decode as an explicit false")
	}
	if configuration.Scan.MaxFileSize == nil || *configuration.Scan.MaxFileSize != 2048 {
		testingHandle.Errorf("max_file_size must decode as 2048")
	}
	if configuration.Tokens.Enabled == nil || !*configuration.Tokens.Enabled {
		testingHandle.Errorf("tokens.enabled must decode as true")
	}
}

func TestLoadFileConfigurationLocalOverridesGlobal(testingHandle *testing.T) {
	homeDirectory := testingHandle.TempDir()
	workingDirectory := testingHandle.TempDir()
	testingHandle.Setenv("HOME", homeDirectory)

	globalDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
	if makeDirError := os.MkdirAll(globalDirectory, 0o755); makeDirError != nil {
		testingHandle.Fatalf("failed to create global configuration directory: %v", makeDirError)
	}
	writeTestFile(testingHandle, filepath.Join(globalDirectory, utils.ConfigFileName), `
output:
  directory: global-out
  content_file: global.txt
`)
	writeTestFile(testingHandle, filepath.Join(workingDirectory, utils.ConfigFileName), `
output:
  directory: local-out
`)

	configuration, loadError := LoadFileConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingHandle.Fatalf("LoadFileConfiguration failed: %v", loadError)
	}
	if configuration.Output.Directory != "local-out" {
		testingHandle.Errorf("local configuration must override the global directory, got %q", configuration.Output.Directory)
	}
	if configuration.Output.ContentFile != "global.txt" {
		testingHandle.Errorf("global settings absent locally must survive the merge, got %q", configuration.Output.ContentFile)
	}
}

func TestInitializeConfigurationLocal(testingHandle *testing.T) {
	workingDirectory := testingHandle.TempDir()

	writtenPath, initError := InitializeConfiguration(InitOptions{Target: InitTargetLocal, WorkingDirectory: workingDirectory})
	if initError != nil {
		testingHandle.Fatalf("InitializeConfiguration failed: %v", initError)
	}
	if writtenPath != filepath.Join(workingDirectory, utils.ConfigFileName) {
		testingHandle.Fatalf("unexpected configuration path %s", writtenPath)
	}
	if _, statError := os.Stat(writtenPath); statError != nil {
		testingHandle.Fatalf("configuration file missing: %v", statError)
	}

	if _, secondError := InitializeConfiguration(InitOptions{Target: InitTargetLocal, WorkingDirectory: workingDirectory}); secondError == nil {
		testingHandle.Fatalf("re-initializing without force must fail")
	}
	if _, forcedError := InitializeConfiguration(InitOptions{Target: InitTargetLocal, WorkingDirectory: workingDirectory, Force: true}); forcedError != nil {
		testingHandle.Fatalf("re-initializing with force must succeed: %v", forcedError)
	}
}
