package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	Config      string `short:"c" help:"Configuration file loaded after the default locations" type:"path"`
	DB          string `help:"SQLite database path (overrides config)" type:"path"`
	LogLevel    string `help:"Log level (debug, info, warn, error); defaults to the configured level"`
	APIKey      string `env:"CAMPUS_API_KEY" help:"Completion service API key"`
	MetricsFile string `help:"Write prometheus metrics to this textfile after the command"`

	Chat      ChatCmd      `cmd:"" help:"Talk to the campus assistant"`
	Students  StudentsCmd  `cmd:"" help:"Manage student records"`
	Analytics AnalyticsCmd `cmd:"" help:"Show campus analytics"`
	Events    EventsCmd    `cmd:"" help:"Manage campus events"`
	Threads   ThreadsCmd   `cmd:"" help:"Inspect or clear conversation threads"`
	Usage     UsageCmd     `cmd:"" help:"Summarize model token usage"`
	Tools     ToolsCmd     `cmd:"" help:"Print the tool catalog"`
	Seed      SeedCmd      `cmd:"" help:"Insert the sample students"`
	Migrate   MigrateCmd   `cmd:"" help:"Database migrations"`
	Model     ModelCmd     `cmd:"" help:"Model information"`
	Status    StatusCmd    `cmd:"" help:"Show host and configuration status"`

	state session `kong:"-"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("campus"),
		kong.Description("Campus administration assistant"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if cerr := cli.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
