// Package main provides the entry point for the sweepsum integrity scanner CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/logging"
)

// Process exit codes.
const (
	exitOK          = 0 // completed, possibly with recorded per-file errors
	exitDifferences = 1 // compare found differences
	exitAborted     = 2 // setup failure, missing manifest, bad flags or interruption
)

// exitError carries a specific exit code out of a command. A nil err
// exits silently.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	err := Execute()
	_ = logging.Close()
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process exit status, printing it
// when there is something to say.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			printError("%v", ee.err)
		}
		return ee.code
	}

	printError("%v", err)
	return exitAborted
}
