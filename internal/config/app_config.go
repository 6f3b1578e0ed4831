package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mtarasenko/reposcribe/internal/utils"
)

// LoadOptions controls how file configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// FileConfiguration holds settings read from configuration files. Pointer
// fields distinguish "absent" from an explicit false so flags can override
// only what the file actually set.
type FileConfiguration struct {
	Output OutputFileConfiguration `mapstructure:"output"`
	Paths  PathFileConfiguration   `mapstructure:"paths"`
	Scan   ScanFileConfiguration   `mapstructure:"scan"`
	Tokens TokenFileConfiguration  `mapstructure:"tokens"`
}

// OutputFileConfiguration configures output locations and post-write actions.
type OutputFileConfiguration struct {
	Directory     string `mapstructure:"directory"`
	StructureFile string `mapstructure:"structure_file"`
	ContentFile   string `mapstructure:"content_file"`
	Clipboard     *bool  `mapstructure:"clipboard"`
}

// PathFileConfiguration configures exclusion rules for path traversal.
type PathFileConfiguration struct {
	Exclude      []string `mapstructure:"exclude"`
	UseGitignore *bool    `mapstructure:"use_gitignore"`
	UseDefaults  *bool    `mapstructure:"use_defaults"`
}

// ScanFileConfiguration configures text classification and ordering.
type ScanFileConfiguration struct {
	MaxFileSize               *int     `mapstructure:"max_file_size"`
	MaxReplacementRatio       *float64 `mapstructure:"max_replacement_ratio"`
	KeepReplacementCharacters *bool    `mapstructure:"keep_replacement_characters"`
	Hierarchical              *bool    `mapstructure:"hierarchical"`
}

// TokenFileConfiguration controls token counting defaults.
type TokenFileConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadFileConfiguration loads configuration from the global file in the user
// home directory and a local file in the working directory, the local file
// taking precedence.
func LoadFileConfiguration(options LoadOptions) (FileConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return FileConfiguration{}, fmt.Errorf(errorWorkingDirectoryFormat, workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged FileConfiguration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfiguration, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return FileConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath, resolveError := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveError != nil {
		return FileConfiguration{}, resolveError
	}
	if localPath != "" {
		localConfiguration, loadError := loadConfigurationFromPath(localPath)
		if loadError != nil {
			return FileConfiguration{}, loadError
		}
		merged = merged.Merge(localConfiguration)
	}

	merged.Paths.Exclude = utils.DeduplicatePatterns(merged.Paths.Exclude)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (FileConfiguration, error) {
	if path == "" {
		return FileConfiguration{}, nil
	}
	pathInfo, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return FileConfiguration{}, nil
		}
		return FileConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if pathInfo.IsDir() {
		return FileConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return FileConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var configuration FileConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return FileConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration FileConfiguration) Merge(override FileConfiguration) FileConfiguration {
	result := configuration
	result.Output = result.Output.merge(override.Output)
	result.Paths = result.Paths.merge(override.Paths)
	result.Scan = result.Scan.merge(override.Scan)
	result.Tokens = result.Tokens.merge(override.Tokens)
	return result
}

func (configuration OutputFileConfiguration) merge(override OutputFileConfiguration) OutputFileConfiguration {
	result := configuration
	if override.Directory != "" {
		result.Directory = override.Directory
	}
	if override.StructureFile != "" {
		result.StructureFile = override.StructureFile
	}
	if override.ContentFile != "" {
		result.ContentFile = override.ContentFile
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (configuration PathFileConfiguration) merge(override PathFileConfiguration) PathFileConfiguration {
	result := configuration
	if len(override.Exclude) > 0 {
		result.Exclude = append(append([]string(nil), result.Exclude...), override.Exclude...)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.UseDefaults != nil {
		result.UseDefaults = cloneBool(override.UseDefaults)
	}
	return result
}

func (configuration ScanFileConfiguration) merge(override ScanFileConfiguration) ScanFileConfiguration {
	result := configuration
	if override.MaxFileSize != nil {
		value := *override.MaxFileSize
		result.MaxFileSize = &value
	}
	if override.MaxReplacementRatio != nil {
		value := *override.MaxReplacementRatio
		result.MaxReplacementRatio = &value
	}
	if override.KeepReplacementCharacters != nil {
		result.KeepReplacementCharacters = cloneBool(override.KeepReplacementCharacters)
	}
	if override.Hierarchical != nil {
		result.Hierarchical = cloneBool(override.Hierarchical)
	}
	return result
}

func (configuration TokenFileConfiguration) merge(override TokenFileConfiguration) TokenFileConfiguration {
	result := configuration
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
