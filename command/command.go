package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sdgsearch/command/version"
	"sdgsearch/config"
	"sdgsearch/tracing"

	"github.com/hashicorp/cli"
	"github.com/spf13/pflag"
)

type CommandDefinition interface {
	Synopsis() string
	Flags() *pflag.FlagSet
	Execute(ctx context.Context, cfg *config.Config, args []string) error
}

func NewCommand(definition CommandDefinition) func() (cli.Command, error) {
	return func() (cli.Command, error) {
		return &command{definition}, nil
	}
}

type command struct {
	CommandDefinition
}

func (c *command) Help() string {
	sb := strings.Builder{}

	sb.WriteString(c.Synopsis())
	sb.WriteString("\n\n")

	sb.WriteString("Flags:\n\n")

	sb.WriteString(c.Flags().FlagUsagesWrapped(80))

	return sb.String()
}

func (c *command) Run(args []string) int {
	ctx := withCancelSignals(context.Background())
	cfg, err := config.CreateConfig(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	state := tracing.Configure(ctx, tracing.Options{
		ServiceName: cfg.ServiceName,
		Version:     version.VersionNumber(),
		APIKey:      cfg.APIKey,
		Endpoint:    cfg.Endpoint,
		Dataset:     cfg.Dataset,
		SampleRatio: cfg.SampleRatio,
	})
	defer state.Shutdown(ctx)

	ctx, span := tracing.OpenSpan(ctx, "main")
	defer span.End()

	flags := c.Flags()

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	if err := c.Execute(ctx, cfg, flags.Args()); err != nil {
		tracing.ErrorCtx(ctx, err)
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	return 0
}

func withCancelSignals(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-signals
		fmt.Printf("\nReceived %s, stopping\n", s)
		cancel()
	}()

	return ctx
}
