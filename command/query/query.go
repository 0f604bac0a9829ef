package query

import (
	"context"
	"fmt"
	"strings"

	"sdgsearch/config"
	"sdgsearch/search"

	"github.com/spf13/pflag"
)

type QueryCommand struct {
	index       string
	topN        int
	interactive bool
}

func NewQueryCommand() *QueryCommand {
	return &QueryCommand{}
}

func (c *QueryCommand) Synopsis() string {
	return "Run a search from the terminal"
}

func (c *QueryCommand) Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("query", pflag.ContinueOnError)
	flags.StringVar(&c.index, "index", "", "index database file (default from SEARCH_INDEX_FILE)")
	flags.IntVarP(&c.topN, "top", "n", search.DefaultTopN, "number of results")
	flags.BoolVarP(&c.interactive, "interactive", "i", false, "interactive search")
	return flags
}

func (c *QueryCommand) Execute(ctx context.Context, cfg *config.Config, args []string) error {
	if c.index == "" {
		c.index = cfg.IndexFile
	}

	index, err := search.Open(ctx, c.index)
	if err != nil {
		return err
	}
	defer index.Close()

	if c.interactive {
		return runInteractive(ctx, index, c.topN)
	}

	if len(args) == 0 {
		return fmt.Errorf("no query given")
	}

	results, err := index.Query(ctx, strings.Join(args, " "), c.topN)
	if err != nil {
		return err
	}

	for _, result := range results {
		fmt.Printf("%6.3f  %s\n", result.Score, result.Document.Title)
		if len(result.Document.Tags) > 0 {
			fmt.Printf("        [%s]\n", strings.Join(result.Document.Tags, ", "))
		}
	}
	if len(results) == 0 {
		fmt.Println("no results")
	}

	return nil
}
