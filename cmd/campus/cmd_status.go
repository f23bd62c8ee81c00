package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/elee1766/campusadmin/src/storage"
	"github.com/elee1766/campusadmin/src/theme"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatusCmd reports the host, the effective configuration and the database
type StatusCmd struct{}

func (c *StatusCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}
	cfg := a.Config

	w := tabwriter.NewWriter(cli.out(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, theme.Heading("Host"))
	if info, err := host.InfoWithContext(ctx); err == nil {
		fmt.Fprintf(w, "  Hostname:\t%s\n", info.Hostname)
		fmt.Fprintf(w, "  Platform:\t%s %s (%s)\n", info.Platform, info.PlatformVersion, info.KernelArch)
		fmt.Fprintf(w, "  Uptime:\t%s\n", time.Duration(info.Uptime)*time.Second)
	} else {
		fmt.Fprintf(w, "  Host:\t%s\n", theme.Error(err.Error()))
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		fmt.Fprintf(w, "  Memory:\t%.1f%% of %d MiB used\n", vm.UsedPercent, vm.Total>>20)
	}

	fmt.Fprintln(w, theme.Heading("Assistant"))
	fmt.Fprintf(w, "  Provider:\t%s\n", cfg.API.Provider)
	fmt.Fprintf(w, "  Model:\t%s\n", cfg.Agent.Model)
	apiKey := theme.Muted("(not set)")
	if cfg.API.APIKey != "" {
		apiKey = maskAPIKey(cfg.API.APIKey)
	}
	fmt.Fprintf(w, "  API key:\t%s\n", apiKey)
	fmt.Fprintf(w, "  Memory backend:\t%s\n", cfg.Memory.Backend)
	fmt.Fprintf(w, "  Tools:\t%d\n", a.Toolbox.Len())

	fmt.Fprintln(w, theme.Heading("Database"))
	fmt.Fprintf(w, "  Path:\t%s\n", a.DB.Path())
	if total, err := storage.CountActiveStudents(ctx, a.DB.DB()); err == nil {
		fmt.Fprintf(w, "  Active students:\t%d\n", total)
	}
	if migrations, err := a.DB.MigrationStatus(); err == nil {
		var pending []string
		for _, m := range migrations {
			if !m.Applied {
				pending = append(pending, m.Name)
			}
		}
		if len(pending) == 0 {
			fmt.Fprintf(w, "  Migrations:\t%d applied\n", len(migrations))
		} else {
			fmt.Fprintf(w, "  Migrations:\tpending %s\n", strings.Join(pending, ", "))
		}
	}
	return nil
}
