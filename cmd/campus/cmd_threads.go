package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/elee1766/campusadmin/src/memory"
	"github.com/elee1766/campusadmin/src/theme"
)

// ThreadsCmd inspects conversation threads
type ThreadsCmd struct {
	List  ThreadsListCmd  `cmd:"" help:"List a user's threads"`
	Show  ThreadsShowCmd  `cmd:"" help:"Print a thread's context"`
	Clear ThreadsClearCmd `cmd:"" help:"Forget a thread"`
}

type ThreadsListCmd struct {
	User string `short:"u" default:"default_user" help:"User ID"`
}

func (c *ThreadsListCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	ids, err := a.Store.Threads(ctx, c.User)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(cli.out(), theme.Muted("(none)"))
	}
	for _, id := range ids {
		fmt.Fprintln(cli.out(), id)
	}
	return nil
}

type ThreadsShowCmd struct {
	User   string `short:"u" default:"default_user" help:"User ID"`
	Thread string `short:"t" default:"default" help:"Thread ID"`
}

func (c *ThreadsShowCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	text := a.Store.ContextText(ctx, memory.Identity{UserID: c.User, ThreadID: c.Thread})
	if text == "" {
		fmt.Fprintln(cli.out(), theme.Muted("(empty thread)"))
		return nil
	}
	fmt.Fprintln(cli.out(), text)
	return nil
}

type ThreadsClearCmd struct {
	User   string `short:"u" default:"default_user" help:"User ID"`
	Thread string `short:"t" default:"default" help:"Thread ID"`
}

func (c *ThreadsClearCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	id := memory.Identity{UserID: c.User, ThreadID: c.Thread}
	if err := a.Store.Clear(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(cli.out(), theme.Success("Cleared "+id.String()))
	return nil
}
