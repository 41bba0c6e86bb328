package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

var _ Executor = BinaryFileExecutor{}

type Executor interface {
	Command(ctx context.Context, name string, arg ...string) Command
}

type Command interface {
	// Output runs the command and returns its stdout.
	Output() ([]byte, error)
	// Stream runs the command and hands every stdout line to onLine.
	Stream(onLine func(line string)) error
}

// RunError carries what the process wrote to stderr before it failed.
type RunError struct {
	Err    error
	Stderr string
}

func (e *RunError) Error() string {
	return e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}

type BinaryFileExecutor struct{}

func (b BinaryFileExecutor) Command(ctx context.Context, name string, arg ...string) Command {
	return binaryCommand{cmd: exec.CommandContext(ctx, name, arg...)}
}

type binaryCommand struct {
	cmd *exec.Cmd
}

func (c binaryCommand) Output() ([]byte, error) {
	output, err := c.cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, &RunError{Err: err, Stderr: string(exitErr.Stderr)}
		}

		return output, &RunError{Err: err}
	}

	return output, nil
}

func (c binaryCommand) Stream(onLine func(line string)) error {
	var stderr bytes.Buffer
	c.cmd.Stderr = &stderr

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return &RunError{Err: err}
	}

	if err := c.cmd.Start(); err != nil {
		return &RunError{Err: err}
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		onLine(scanner.Text())
	}
	_, _ = io.Copy(io.Discard, stdout)

	if err := c.cmd.Wait(); err != nil {
		return &RunError{Err: err, Stderr: stderr.String()}
	}

	return nil
}
