package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	jsonschema "github.com/swaggest/jsonschema-go"
)

// ToolsCmd prints the tool catalog exactly as the assistant sees it
type ToolsCmd struct {
	Format string `short:"f" enum:"text,json" default:"text" help:"Output format"`
}

type toolInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Suspends    bool               `json:"suspends"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

func (c *ToolsCmd) Run(kctx *kong.Context, cli *CLI) error {
	a, err := cli.open(context.Background())
	if err != nil {
		return err
	}

	if c.Format == formatJSON {
		var infos []toolInfo
		for _, tool := range a.Toolbox.Tools() {
			infos = append(infos, toolInfo{
				Name:        tool.GetName(),
				Description: tool.GetDescription(),
				Suspends:    tool.MaySuspend(),
				Parameters:  tool.GetParameters(),
			})
		}
		return printJSON(cli.out(), infos)
	}

	fmt.Fprintln(cli.out(), a.Toolbox.Describe())
	return nil
}
