package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mtarasenko/reposcribe/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `output:
  # Directory where the output files are written.
  directory: .
  structure_file: repo_structure.txt
  content_file: repo_content.txt
  # Copy the content output to the system clipboard after each run.
  clipboard: false
paths:
  # Additional ignore patterns in gitignore syntax.
  exclude: []
  # Read per-directory .gitignore files during traversal.
  use_gitignore: true
  # Apply the built-in defaults: hidden entries and package-lock.json.
  use_defaults: true
scan:
  # Byte cap for the text-classification sample, clamped to [512, 4194304].
  max_file_size: 8192
  # Highest tolerated ratio of replacement characters; 0 rejects any.
  max_replacement_ratio: 0
  keep_replacement_characters: false
  # Order content blocks purely alphabetically instead of directories first.
  hierarchical: false
tokens:
  # Log a token count for the content output after each run.
  enabled: false
  model: gpt-4o
`
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", workingDirectoryError)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		homeDirectory, homeError := os.UserHomeDir()
		if homeError != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", homeError)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if mkdirError := os.MkdirAll(configurationDirectory, 0o755); mkdirError != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, mkdirError)
		}
		destinationPath = filepath.Join(configurationDirectory, utils.ConfigFileName)
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	if _, statError := os.Stat(destinationPath); statError == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !os.IsNotExist(statError) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, statError)
	}

	if writeError := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), 0o600); writeError != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, writeError)
	}

	return destinationPath, nil
}
