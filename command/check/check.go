package check

import (
	"context"
	"fmt"

	"sdgsearch/config"
	"sdgsearch/tracing"
	"sdgsearch/util"

	"github.com/spf13/pflag"
)

// CheckCommand verifies the observability wiring: it reports the resolved
// configuration, emits a probe span, and flushes the exporter. A missing API
// key is reported, not failed, since running without export is supported.
type CheckCommand struct {
}

func NewCheckCommand() *CheckCommand {
	return &CheckCommand{}
}

func (c *CheckCommand) Synopsis() string {
	return "Verify the observability configuration"
}

func (c *CheckCommand) Flags() *pflag.FlagSet {
	return pflag.NewFlagSet("check", pflag.ContinueOnError)
}

func (c *CheckCommand) Execute(ctx context.Context, cfg *config.Config, args []string) error {
	fmt.Println("service name:  ", cfg.ServiceName)

	if cfg.APIKey == "" {
		fmt.Println("api key:        not set (export disabled)")
	} else {
		fmt.Println("api key:       ", util.MaskSecret(cfg.APIKey))
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tracing.DefaultEndpoint
	}
	fmt.Println("endpoint:      ", endpoint)

	if cfg.Dataset != "" {
		fmt.Println("dataset:       ", cfg.Dataset, "(legacy dataset-scoped account)")
	}
	fmt.Println("sample ratio:  ", cfg.SampleRatio)

	// the command runner has already called Configure; this returns the same
	// state
	state := tracing.Configure(ctx, tracing.Options{
		ServiceName: cfg.ServiceName,
		APIKey:      cfg.APIKey,
		Endpoint:    cfg.Endpoint,
		Dataset:     cfg.Dataset,
		SampleRatio: cfg.SampleRatio,
	})

	if !state.Enabled {
		fmt.Println("export:         disabled")
		fmt.Println("set HONEYCOMB_API_KEY to enable trace export")
		return nil
	}

	// the resolved settings ride along on the span, minus the credential
	summary := checkSummary{
		ServiceName: cfg.ServiceName,
		Endpoint:    endpoint,
		Dataset:     cfg.Dataset,
		SampleRatio: cfg.SampleRatio,
		KeyPresent:  cfg.APIKey != "",
	}

	err := tracing.WithSpan(ctx, "observability_check", func(ctx context.Context) error {
		tracing.SetAttributes(ctx, tracing.Flatten("check.config", summary)...)
		return nil
	})
	if err != nil {
		return err
	}

	if err := state.ForceFlush(ctx); err != nil {
		return fmt.Errorf("flushing probe span: %w", err)
	}

	fmt.Println("export:         enabled, probe span sent")
	return nil
}

type checkSummary struct {
	ServiceName string
	Endpoint    string
	Dataset     string
	SampleRatio float64
	KeyPresent  bool
}
