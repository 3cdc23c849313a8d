// Command sentryloop runs the agent-misevolution safety engine: a process
// hosting the Control API and its experiment supervisor, or a one-shot
// driver that runs a single experiment to completion.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("sentryloop"),
		kong.Description("Closed-loop agent misevolution safety experiment engine"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Exit(func(code int) {
			if code != 0 {
				os.Exit(configErrorExitCode)
			}
			os.Exit(0)
		}),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// Exit codes for a CLI front-end: 0 normal, 1 configuration error, 2
// model-gateway unavailable, 3 internal error.
const (
	configErrorExitCode    = 1
	gatewayUnavailableCode = 2
	internalErrorCode      = 3
)

// exitCoder is implemented by errors that know which exit code they should
// produce; anything else falls back to internalErrorCode.
type exitCoder interface {
	ExitCode() int
}

func exitCodeFor(err error) int {
	if ec, ok := err.(exitCoder); ok {
		return ec.ExitCode()
	}
	return internalErrorCode
}
