package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/elee1766/campusadmin/src/theme"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printJSON writes v as indented JSON, highlighted when w is a terminal.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if isTerminal(w) {
		if err := quick.Highlight(w, string(data)+"\n", "json", "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, theme.Muted("(none)"))
		return
	}
	fmt.Fprintln(w, theme.Table(headers, rows, theme.DefaultCellWidth))
}

// fieldChange renders the character-level change from before to after.
// With color the changed runs are highlighted, otherwise they are marked
// as [-removed-] and {+added+}.
func fieldChange(before, after string, color bool) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))
	if color {
		return dmp.DiffPrettyText(diffs)
	}

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// maskAPIKey masks an API key for display
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
