package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/elee1766/campusadmin/src/attachment"
	"github.com/elee1766/campusadmin/src/campusagent"
	"github.com/elee1766/campusadmin/src/theme"
	"github.com/spf13/afero"
)

// ChatCmd sends one message, or runs a read-eval loop on stdin when no
// message is given.
type ChatCmd struct {
	Message []string `arg:"" optional:"" help:"Message to send; omit to read messages from stdin"`
	User    string   `short:"u" default:"default_user" help:"User the conversation belongs to"`
	Thread  string   `short:"t" default:"default" help:"Conversation thread"`
	Attach  string   `short:"a" type:"existingfile" help:"Text, markdown or HTML file to use as thread context"`
	Persist bool     `help:"Write the thread to durable storage after each message"`
	Stream  bool     `help:"Print the answer as it is delivered"`
	Tools   bool     `help:"List the tools used for each answer"`
}

func (c *ChatCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}
	agent, err := a.Agent(ctx)
	if err != nil {
		return err
	}

	req := campusagent.Request{
		UserID:   c.User,
		ThreadID: c.Thread,
		Persist:  c.Persist || a.Config.Memory.PersistByDefault,
	}
	if c.Attach != "" {
		doc, err := attachment.NewLoader(afero.NewOsFs(), attachment.DefaultMaxBytes).Load(c.Attach)
		if err != nil {
			return fmt.Errorf("failed to load attachment: %w", err)
		}
		req.Attachment = doc.Context()
	}

	out := cli.out()
	if len(c.Message) > 0 {
		req.Message = strings.Join(c.Message, " ")
		return c.send(ctx, agent, req, out)
	}
	return c.repl(ctx, agent, req, cli.in(), out)
}

func (c *ChatCmd) repl(ctx context.Context, agent *campusagent.Agent, req campusagent.Request, in io.Reader, out io.Writer) error {
	interactive := isTerminal(out)
	if interactive {
		fmt.Fprintln(out, theme.Muted("Type a message, or \"exit\" to quit."))
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, theme.Heading("you> "))
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		req.Message = line
		if err := c.send(ctx, agent, req, out); err != nil {
			return err
		}
		// the document only needs to be set once per thread
		req.Attachment = ""
	}
}

// send prints the answer. Model and tool failures are part of the answer
// text, so only output errors are returned.
func (c *ChatCmd) send(ctx context.Context, agent *campusagent.Agent, req campusagent.Request, out io.Writer) error {
	var answer string
	var used []string

	if c.Stream {
		for chunk := range agent.Stream(ctx, req) {
			if _, err := fmt.Fprint(out, chunk.Text); err != nil {
				return err
			}
			used = append(used, chunk.ToolsUsed...)
		}
		fmt.Fprintln(out)
	} else {
		res := agent.Run(ctx, req)
		answer, used = res.Answer, res.ToolsUsed
		if _, err := fmt.Fprintln(out, answer); err != nil {
			return err
		}
	}

	if c.Tools && len(used) > 0 {
		fmt.Fprintln(out, theme.Muted("tools: "+strings.Join(used, ", ")))
	}
	return nil
}
