package version

import (
	"context"
	"fmt"

	"sdgsearch/config"

	"github.com/spf13/pflag"
)

// set by the build via -ldflags
var version = "dev"

func VersionNumber() string {
	return version
}

type VersionCommand struct {
}

func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

func (c *VersionCommand) Synopsis() string {
	return "Print the version"
}

func (c *VersionCommand) Flags() *pflag.FlagSet {
	return pflag.NewFlagSet("version", pflag.ContinueOnError)
}

func (c *VersionCommand) Execute(ctx context.Context, cfg *config.Config, args []string) error {
	fmt.Println(VersionNumber())
	return nil
}
