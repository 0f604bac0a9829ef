package serve

import (
	"context"
	"errors"

	"sdgsearch/config"
	"sdgsearch/search"
	"sdgsearch/server"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ServeCommand struct {
	bind  string
	index string
}

func NewServeCommand() *ServeCommand {
	return &ServeCommand{}
}

func (c *ServeCommand) Synopsis() string {
	return "Run the search API server"
}

func (c *ServeCommand) Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.StringVar(&c.bind, "bind", "", "address to listen on (default from SEARCH_BIND_ADDR)")
	flags.StringVar(&c.index, "index", "", "index database file (default from SEARCH_INDEX_FILE)")
	return flags
}

func (c *ServeCommand) Execute(ctx context.Context, cfg *config.Config, args []string) error {
	if c.bind == "" {
		c.bind = cfg.BindAddr
	}
	if c.index == "" {
		c.index = cfg.IndexFile
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	index, err := search.Open(ctx, c.index)
	if err != nil {
		return err
	}
	defer index.Close()

	log.Info("index loaded",
		zap.String("file", c.index),
		zap.Int("documents", index.DocumentCount()),
		zap.Int("vocabulary", index.VocabularySize()),
	)

	wg, ctx := errgroup.WithContext(ctx)

	wg.Go(func() error {
		return index.Watch(ctx, c.index, log)
	})

	wg.Go(func() error {
		return server.New(index, log).Run(ctx, c.bind)
	})

	if err := wg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
