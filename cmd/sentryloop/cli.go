package main

import "fmt"

// CLI is the sentryloop command-line interface.
var CLI struct {
	Debug     bool   `help:"Enable debug logging." short:"d" env:"SENTRYLOOP_DEBUG"`
	LogFormat string `help:"Log format." enum:"json,text" default:"text" name:"log-format" env:"SENTRYLOOP_LOG_FORMAT"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Serve   ServeCmd   `cmd:"" help:"Start the Control API server."`
	Run     RunCmd     `cmd:"" help:"Run a single experiment to completion and exit."`
	List    ListCmd    `cmd:"" help:"List experiments known to a running Control API."`
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Printf("sentryloop %s\n", version)
	return nil
}

const version = "0.1.0"
