package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/elee1766/campusadmin/src/theme"
)

// MigrateCmd manages database migrations
type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" help:"Run pending migrations"`
	Status MigrateStatusCmd `cmd:"" help:"Show migration status"`
}

// MigrateUpCmd runs pending migrations. Opening the database applies them.
type MigrateUpCmd struct{}

func (c *MigrateUpCmd) Run(kctx *kong.Context, cli *CLI) error {
	a, err := cli.open(context.Background())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	migrations, err := a.DB.MigrationStatus()
	if err != nil {
		return err
	}
	version := 0
	for _, m := range migrations {
		if m.Applied && m.Version > version {
			version = m.Version
		}
	}
	fmt.Fprintln(cli.out(), theme.Success(fmt.Sprintf("Database %s is at version %d", a.DB.Path(), version)))
	return nil
}

// MigrateStatusCmd shows migration status
type MigrateStatusCmd struct{}

func (c *MigrateStatusCmd) Run(kctx *kong.Context, cli *CLI) error {
	a, err := cli.open(context.Background())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	migrations, err := a.DB.MigrationStatus()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(migrations))
	for _, m := range migrations {
		applied := "pending"
		if m.Applied && m.AppliedAt != nil {
			applied = m.AppliedAt.Local().Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{strconv.Itoa(m.Version), m.Name, applied})
	}
	printTable(cli.out(), []string{"Version", "Name", "Applied"}, rows)
	return nil
}
