package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/elee1766/campusadmin/src/orclient"
	"github.com/elee1766/campusadmin/src/theme"
)

// ModelCmd shows model information from the configured provider
type ModelCmd struct {
	Info ModelInfoCmd `cmd:"" help:"Get information about a model"`
	List ModelListCmd `cmd:"" help:"List available models"`
}

// ModelInfoCmd gets information about a specific model
type ModelInfoCmd struct {
	Model  string `arg:"" optional:"" help:"Model ID; defaults to the configured model"`
	Format string `short:"f" enum:"table,json" default:"table" help:"Output format"`
}

func (c *ModelInfoCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}
	provider, err := a.ModelProvider()
	if err != nil {
		return err
	}

	name := c.Model
	if name == "" {
		name = a.Config.Agent.Model
	}
	client, err := provider.Model(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get model info: %w", err)
	}
	info := client.GetModelInfo()

	if c.Format == formatJSON {
		return printJSON(cli.out(), info)
	}
	printModelTable(cli.out(), info)

	if or, ok := provider.(*orclient.Client); ok {
		stats := or.Cache().Stats()
		fmt.Fprintf(cli.out(), "\n%s %d cached (%d valid), ttl %s\n",
			theme.Muted("model cache:"), stats.TotalEntries, stats.ValidEntries, stats.TTL)
	}
	return nil
}

// ModelListCmd lists available models
type ModelListCmd struct {
	Search string `short:"s" help:"Only list models whose ID or name contains this"`
	Format string `short:"f" enum:"table,json" default:"table" help:"Output format"`
}

func (c *ModelListCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}
	provider, err := a.ModelProvider()
	if err != nil {
		return err
	}

	models, err := provider.GetModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	models = filterModels(models, c.Search)

	if c.Format == formatJSON {
		return printJSON(cli.out(), models)
	}
	rows := make([][]string, 0, len(models))
	for _, m := range models {
		rows = append(rows, []string{m.ID, m.Name, fmt.Sprint(m.ContextLength)})
	}
	printTable(cli.out(), []string{"ID", "Name", "Context"}, rows)
	return nil
}

func filterModels(models []*aisdk.ModelInfo, query string) []*aisdk.ModelInfo {
	if query == "" {
		return models
	}
	query = strings.ToLower(query)
	var matches []*aisdk.ModelInfo
	for _, m := range models {
		if strings.Contains(strings.ToLower(m.ID), query) ||
			strings.Contains(strings.ToLower(m.Name), query) {
			matches = append(matches, m)
		}
	}
	return matches
}

func printModelTable(out io.Writer, model *aisdk.ModelInfo) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID:\t%s\n", model.ID)
	if model.Name != "" {
		fmt.Fprintf(w, "Name:\t%s\n", model.Name)
	}
	if model.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", theme.Truncate(model.Description, 100))
	}
	if model.ContextLength > 0 {
		fmt.Fprintf(w, "Context Length:\t%d\n", model.ContextLength)
	}

	if model.Pricing != nil {
		if model.Pricing.Prompt != "" {
			fmt.Fprintf(w, "Prompt price:\t%s per token\n", model.Pricing.Prompt)
		}
		if model.Pricing.Completion != "" {
			fmt.Fprintf(w, "Completion price:\t%s per token\n", model.Pricing.Completion)
		}
	}

	if model.Architecture != nil {
		if model.Architecture.Tokenizer != "" {
			fmt.Fprintf(w, "Tokenizer:\t%s\n", model.Architecture.Tokenizer)
		}
		if len(model.Architecture.InputModalities) > 0 {
			fmt.Fprintf(w, "Input:\t%s\n", strings.Join(model.Architecture.InputModalities, ", "))
		}
	}
}
