package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"sdgsearch/config"
	"sdgsearch/search"

	"github.com/spf13/pflag"
)

// IndexCommand builds the TF-IDF index database from a JSON document corpus.
// This is the offline publish step; the server picks up the new file through
// its watcher.
type IndexCommand struct {
	from string
	out  string
}

func NewIndexCommand() *IndexCommand {
	return &IndexCommand{}
}

func (c *IndexCommand) Synopsis() string {
	return "Build the search index from a document corpus"
}

func (c *IndexCommand) Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("index", pflag.ContinueOnError)
	flags.StringVar(&c.from, "from", "documents.json", "JSON file of documents to index")
	flags.StringVar(&c.out, "out", "", "output database file (default from SEARCH_INDEX_FILE)")
	return flags
}

func (c *IndexCommand) Execute(ctx context.Context, cfg *config.Config, args []string) error {
	if c.out == "" {
		c.out = cfg.IndexFile
	}

	content, err := os.ReadFile(c.from)
	if err != nil {
		return err
	}

	var docs []search.Document
	if err := json.Unmarshal(content, &docs); err != nil {
		return fmt.Errorf("parsing %s: %w", c.from, err)
	}

	if err := search.Build(ctx, c.out, docs); err != nil {
		return err
	}

	fmt.Printf("indexed %d documents into %s\n", len(docs), c.out)
	return nil
}
