package main

import (
	"fmt"
	"os"

	"sdgsearch/command"
	"sdgsearch/command/check"
	"sdgsearch/command/index"
	"sdgsearch/command/query"
	"sdgsearch/command/serve"
	"sdgsearch/command/version"

	"github.com/hashicorp/cli"
)

func main() {

	commands := map[string]cli.CommandFactory{
		"serve":   command.NewCommand(serve.NewServeCommand()),
		"query":   command.NewCommand(query.NewQueryCommand()),
		"index":   command.NewCommand(index.NewIndexCommand()),
		"check":   command.NewCommand(check.NewCheckCommand()),
		"version": command.NewCommand(version.NewVersionCommand()),
	}

	cli := &cli.CLI{
		Name:                       "sdgsearch",
		Args:                       os.Args[1:],
		Commands:                   commands,
		Autocomplete:               true,
		AutocompleteNoDefaultFlags: false,
	}

	exitCode, err := cli.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err.Error())
	}

	os.Exit(exitCode)
}
