package utils

// ConfigFileName is the name of the configuration file read from the working directory.
const ConfigFileName = ".reposcribe.yaml"

// GlobalConfigDirectoryName is the directory under the user home that holds global configuration.
const GlobalConfigDirectoryName = ".reposcribe"

// LoggerInitializationFailedMessageFormat reports a logger that could not be constructed.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage reports a run that ended with an error.
const ApplicationExecutionFailedMessage = "reposcribe execution failed"
