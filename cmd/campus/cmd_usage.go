package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/elee1766/campusadmin/src/storage"
)

// UsageCmd summarizes recorded completion usage per model
type UsageCmd struct {
	Since  time.Duration `help:"Only count usage newer than this, e.g. 24h; 0 counts everything" default:"0s"`
	Format string        `short:"f" enum:"table,json" default:"table" help:"Output format"`
}

func (c *UsageCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	var since time.Time
	if c.Since > 0 {
		since = a.Now().Add(-c.Since)
	}
	summaries, err := storage.SummarizeUsage(ctx, a.DB.DB(), since)
	if err != nil {
		return fmt.Errorf("failed to summarize usage: %w", err)
	}

	if c.Format == formatJSON {
		return printJSON(cli.out(), summaries)
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Model,
			strconv.Itoa(s.Requests),
			strconv.Itoa(s.PromptTokens),
			strconv.Itoa(s.CompletionTokens),
			strconv.Itoa(s.PromptTokens + s.CompletionTokens),
		})
	}
	printTable(cli.out(), []string{"Model", "Requests", "Prompt", "Completion", "Total"}, rows)
	return nil
}
