// Package cli provides the command line interface.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mtarasenko/reposcribe/internal/config"
	"github.com/mtarasenko/reposcribe/internal/scan"
	"github.com/mtarasenko/reposcribe/internal/services/clipboard"
	"github.com/mtarasenko/reposcribe/internal/tokenizer"
	"github.com/mtarasenko/reposcribe/internal/utils"
)

const (
	rootUse              = "reposcribe [path]"
	rootShortDescription = "serialize a directory tree into text artifacts"
	rootLongDescription  = `reposcribe walks a directory tree and writes two deterministic artifacts:
a visual structure listing and a concatenation of every readable-text file,
both filtered by layered ignore rules (built-in defaults, user patterns, and
per-directory .gitignore files).`
	rootUsageExample = `  # Serialize the current directory
  reposcribe

  # Serialize a project into ./out, excluding vendored code
  reposcribe ./project --output-dir out -e vendor/

  # Pure alphabetical content ordering with a token summary
  reposcribe --hierarchical --tokens`

	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write a commented default configuration file.
By default the file is created in the working directory; use --global to
write it under the home directory instead.`

	outputDirFlagName        = "output-dir"
	structureFileFlagName    = "structure-file"
	contentFileFlagName      = "content-file"
	excludeFlagName          = "exclude"
	excludeFlagShorthand     = "e"
	forceFlagName            = "force"
	forceFlagShorthand       = "f"
	maxFileSizeFlagName      = "max-file-size"
	noDefaultsFlagName       = "no-default-patterns"
	noGitignoreFlagName      = "no-gitignore"
	silentFlagName           = "silent"
	verboseFlagName          = "verbose"
	verboseFlagShorthand     = "v"
	hierarchicalFlagName     = "hierarchical"
	maxRatioFlagName         = "max-replacement-ratio"
	keepReplacementsFlagName = "keep-replacement-chars"
	tokensFlagName           = "tokens"
	modelFlagName            = "model"
	clipboardFlagName        = "clipboard"
	configFlagName           = "config"
	versionFlagName          = "version"
	globalFlagName           = "global"

	outputDirFlagDescription        = "directory where output files are written"
	structureFileFlagDescription    = "filename for the structure listing"
	contentFileFlagDescription      = "filename for the concatenated content"
	excludeFlagDescription          = "additional ignore pattern (gitignore syntax)"
	forceFlagDescription            = "overwrite existing output files without confirmation"
	maxFileSizeFlagDescription      = "byte cap for text classification sampling"
	noDefaultsFlagDescription       = "include hidden files and lock-file artifacts"
	noGitignoreFlagDescription      = "do not read per-directory .gitignore files"
	silentFlagDescription           = "suppress informational logging"
	verboseFlagDescription          = "emit per-entry trace logging"
	hierarchicalFlagDescription     = "order content blocks purely alphabetically"
	maxRatioFlagDescription         = "replacement-character ratio threshold in [0,1]"
	keepReplacementsFlagDescription = "retain replacement characters in emitted content"
	tokensFlagDescription           = "log a token count for the content artifact"
	modelFlagDescription            = "tokenizer model used for token counting"
	clipboardFlagDescription        = "copy the content artifact to the clipboard"
	configFlagDescription           = "path to a configuration file"
	versionFlagDescription          = "display application version"
	globalFlagDescription           = "write the configuration to the home directory"

	versionTemplate        = "reposcribe version: %s\n"
	defaultPath            = "."
	overwritePromptMessage = "Output files already exist. Overwrite? [y/N]: "
	abortedMessage         = "Aborted; existing output files were left untouched."

	// summaryWithTokensFormat renders the post-run summary including tokens.
	summaryWithTokensFormat = "Summary: %d %s, %s, %d tokens (model: %s)"
	// summaryFormat renders the post-run summary without token counts.
	summaryFormat = "Summary: %d %s, %s"
)

// commandFlags holds every flag value bound on the root command.
type commandFlags struct {
	outputDirectory           string
	structureFileName         string
	contentFileName           string
	excludePatterns           []string
	force                     bool
	maxFileSizeBytes          int
	noDefaultPatterns         bool
	noGitignore               bool
	silent                    bool
	verbose                   bool
	hierarchical              bool
	maxReplacementRatio       float64
	keepReplacementCharacters bool
	tokensEnabled             bool
	tokenizerModel            string
	copyToClipboard           bool
	configFilePath            string
}

// Execute runs the reposcribe application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool
	flagValues := &commandFlags{}

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			rootDirectory := defaultPath
			if len(arguments) == 1 {
				rootDirectory = arguments[0]
			}
			return runSerialization(command, rootDirectory, flagValues)
		},
	}

	rootCommand.Flags().StringVar(&flagValues.outputDirectory, outputDirFlagName, "", outputDirFlagDescription)
	rootCommand.Flags().StringVar(&flagValues.structureFileName, structureFileFlagName, "", structureFileFlagDescription)
	rootCommand.Flags().StringVar(&flagValues.contentFileName, contentFileFlagName, "", contentFileFlagDescription)
	rootCommand.Flags().StringArrayVarP(&flagValues.excludePatterns, excludeFlagName, excludeFlagShorthand, nil, excludeFlagDescription)
	rootCommand.Flags().BoolVarP(&flagValues.force, forceFlagName, forceFlagShorthand, false, forceFlagDescription)
	rootCommand.Flags().IntVar(&flagValues.maxFileSizeBytes, maxFileSizeFlagName, 0, maxFileSizeFlagDescription)
	rootCommand.Flags().BoolVar(&flagValues.noDefaultPatterns, noDefaultsFlagName, false, noDefaultsFlagDescription)
	rootCommand.Flags().BoolVar(&flagValues.noGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	rootCommand.Flags().BoolVar(&flagValues.silent, silentFlagName, false, silentFlagDescription)
	rootCommand.Flags().BoolVarP(&flagValues.verbose, verboseFlagName, verboseFlagShorthand, false, verboseFlagDescription)
	rootCommand.Flags().BoolVar(&flagValues.hierarchical, hierarchicalFlagName, false, hierarchicalFlagDescription)
	rootCommand.Flags().Float64Var(&flagValues.maxReplacementRatio, maxRatioFlagName, 0, maxRatioFlagDescription)
	rootCommand.Flags().BoolVar(&flagValues.keepReplacementCharacters, keepReplacementsFlagName, false, keepReplacementsFlagDescription)
	rootCommand.Flags().BoolVar(&flagValues.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	rootCommand.Flags().StringVar(&flagValues.tokenizerModel, modelFlagName, "", modelFlagDescription)
	rootCommand.Flags().BoolVar(&flagValues.copyToClipboard, clipboardFlagName, false, clipboardFlagDescription)
	rootCommand.Flags().StringVar(&flagValues.configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand())
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var writeGlobal bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(command.OutOrStdout(), "Configuration written to %s\n", writtenPath)
			return nil
		},
	}

	initCommand.Flags().BoolVar(&writeGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVarP(&force, forceFlagName, forceFlagShorthand, false, forceFlagDescription)
	return initCommand
}

// runSerialization merges file configuration with flags, resolves the run
// configuration, and drives the serializer including the interactive
// overwrite confirmation.
func runSerialization(command *cobra.Command, rootDirectory string, flagValues *commandFlags) error {
	fileConfiguration, loadError := config.LoadFileConfiguration(config.LoadOptions{ExplicitFilePath: flagValues.configFilePath})
	if loadError != nil {
		return loadError
	}

	options := buildOptions(command, rootDirectory, fileConfiguration, flagValues)
	configuration, resolveError := options.Resolve()
	if resolveError != nil {
		return resolveError
	}

	loggerInstance, loggerError := utils.NewApplicationLogger(configuration.Verbose, configuration.Silent)
	if loggerError != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
	}
	defer func() { _ = loggerInstance.Sync() }()

	result, runError := scan.Run(configuration, loggerInstance)
	if errors.Is(runError, scan.ErrPromptRequired) {
		confirmed, promptError := confirmOverwrite(command)
		if promptError != nil {
			return promptError
		}
		if !confirmed {
			fmt.Fprintln(command.OutOrStdout(), abortedMessage)
			return nil
		}
		configuration.Force = true
		result, runError = scan.Run(configuration, loggerInstance)
	}
	if runError != nil {
		return runError
	}

	tokensEnabled := flagValues.tokensEnabled
	if !command.Flags().Changed(tokensFlagName) && fileConfiguration.Tokens.Enabled != nil {
		tokensEnabled = *fileConfiguration.Tokens.Enabled
	}
	if summaryError := logSummary(loggerInstance, result, tokensEnabled, resolveTokenizerModel(command, fileConfiguration, flagValues)); summaryError != nil {
		loggerInstance.Warn("token counting failed", zap.Error(summaryError))
	}

	copyToClipboard := flagValues.copyToClipboard
	if !command.Flags().Changed(clipboardFlagName) && fileConfiguration.Output.Clipboard != nil {
		copyToClipboard = *fileConfiguration.Output.Clipboard
	}
	if copyToClipboard {
		if copyError := clipboard.NewService().Copy(result.Content); copyError != nil {
			loggerInstance.Warn("clipboard copy failed", zap.Error(copyError))
		}
	}

	return nil
}

// buildOptions layers configuration sources: built-in defaults, then file
// configuration, then any flag the caller explicitly set.
func buildOptions(command *cobra.Command, rootDirectory string, fileConfiguration config.FileConfiguration, flagValues *commandFlags) config.Options {
	options := config.Options{
		RootDirectory:     rootDirectory,
		OutputDirectory:   fileConfiguration.Output.Directory,
		StructureFileName: fileConfiguration.Output.StructureFile,
		ContentFileName:   fileConfiguration.Output.ContentFile,
		IgnorePatterns:    append([]string(nil), fileConfiguration.Paths.Exclude...),
		Force:             flagValues.force,
		Interactive:       term.IsTerminal(int(os.Stdin.Fd())),
		Silent:            flagValues.silent,
		Verbose:           flagValues.verbose,
	}

	if fileConfiguration.Paths.UseGitignore != nil {
		options.DisableGitignore = !*fileConfiguration.Paths.UseGitignore
	}
	if fileConfiguration.Paths.UseDefaults != nil {
		options.DisableDefaultPatterns = !*fileConfiguration.Paths.UseDefaults
	}
	if fileConfiguration.Scan.MaxFileSize != nil {
		options.MaxFileSizeBytes = *fileConfiguration.Scan.MaxFileSize
	}
	if fileConfiguration.Scan.MaxReplacementRatio != nil {
		options.MaxReplacementRatio = *fileConfiguration.Scan.MaxReplacementRatio
	}
	if fileConfiguration.Scan.KeepReplacementCharacters != nil {
		options.KeepReplacementCharacters = *fileConfiguration.Scan.KeepReplacementCharacters
	}
	if fileConfiguration.Scan.Hierarchical != nil {
		options.HierarchicalOrdering = *fileConfiguration.Scan.Hierarchical
	}

	flags := command.Flags()
	if flags.Changed(outputDirFlagName) {
		options.OutputDirectory = flagValues.outputDirectory
	}
	if flags.Changed(structureFileFlagName) {
		options.StructureFileName = flagValues.structureFileName
	}
	if flags.Changed(contentFileFlagName) {
		options.ContentFileName = flagValues.contentFileName
	}
	if flags.Changed(excludeFlagName) {
		options.IgnorePatterns = append(options.IgnorePatterns, flagValues.excludePatterns...)
	}
	if flags.Changed(maxFileSizeFlagName) {
		options.MaxFileSizeBytes = flagValues.maxFileSizeBytes
	}
	if flags.Changed(noDefaultsFlagName) {
		options.DisableDefaultPatterns = flagValues.noDefaultPatterns
	}
	if flags.Changed(noGitignoreFlagName) {
		options.DisableGitignore = flagValues.noGitignore
	}
	if flags.Changed(hierarchicalFlagName) {
		options.HierarchicalOrdering = flagValues.hierarchical
	}
	if flags.Changed(maxRatioFlagName) {
		options.MaxReplacementRatio = flagValues.maxReplacementRatio
	}
	if flags.Changed(keepReplacementsFlagName) {
		options.KeepReplacementCharacters = flagValues.keepReplacementCharacters
	}

	return options
}

// resolveTokenizerModel picks the tokenizer model from the flag or file configuration.
func resolveTokenizerModel(command *cobra.Command, fileConfiguration config.FileConfiguration, flagValues *commandFlags) string {
	if command.Flags().Changed(modelFlagName) {
		return flagValues.tokenizerModel
	}
	if fileConfiguration.Tokens.Model != "" {
		return fileConfiguration.Tokens.Model
	}
	return tokenizer.DefaultModel
}

// confirmOverwrite asks the interactive caller whether existing outputs may
// be overwritten.
func confirmOverwrite(command *cobra.Command) (bool, error) {
	fmt.Fprint(command.OutOrStdout(), overwritePromptMessage)
	reader := bufio.NewReader(command.InOrStdin())
	answer, readError := reader.ReadString('\n')
	if readError != nil {
		return false, fmt.Errorf("reading confirmation: %w", readError)
	}
	normalizedAnswer := strings.ToLower(strings.TrimSpace(answer))
	return normalizedAnswer == "y" || normalizedAnswer == "yes", nil
}

// logSummary reports the run summary, including a token count when requested.
func logSummary(loggerInstance *zap.Logger, result scan.Result, tokensEnabled bool, model string) error {
	fileLabel := "files"
	if result.FilesIncluded == 1 {
		fileLabel = "file"
	}
	contentSize := utils.FormatFileSize(int64(len(result.Content)))

	if !tokensEnabled {
		loggerInstance.Info(fmt.Sprintf(summaryFormat, result.FilesIncluded, fileLabel, contentSize))
		return nil
	}

	counter, counterError := tokenizer.NewCounter(model)
	if counterError != nil {
		return counterError
	}
	tokenCount, countError := counter.CountString(result.Content)
	if countError != nil {
		return countError
	}
	loggerInstance.Info(fmt.Sprintf(summaryWithTokensFormat, result.FilesIncluded, fileLabel, contentSize, tokenCount, counter.Name()))
	return nil
}
