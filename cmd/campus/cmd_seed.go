package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/elee1766/campusadmin/src/theme"
)

// SeedCmd inserts the sample students that are not already present
type SeedCmd struct{}

func (c *SeedCmd) Run(kctx *kong.Context, cli *CLI) error {
	a, err := cli.open(context.Background())
	if err != nil {
		return err
	}

	n, err := a.Seed(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out(), theme.Success(fmt.Sprintf("Seeded %d students", n)))
	return nil
}
