package main

import (
	"fmt"

	"github.com/mtarasenko/reposcribe/internal/cli"
	"github.com/mtarasenko/reposcribe/internal/utils"
)

// main is the entry point for the reposcribe command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(false, false)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
