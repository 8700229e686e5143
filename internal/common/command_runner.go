package common

import (
	"context"

	"resumebuilder/internal/errors"
)

// LoadInputFunc turns command arguments into the operation input.
type LoadInputFunc[Input any] func(fp *FileProcessor, args []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc runs the pipeline operation for one input.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunCommand loads the input from args, runs the operation and writes the
// formatted result to the configured output.
func RunCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	loadInput LoadInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	if err := outputHandler.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return err
	}

	input, err := loadInput(fileProcessor, args)
	if err != nil {
		return err
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
