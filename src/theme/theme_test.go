package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "unbounded value", Truncate("unbounded value", 0))

	out := Truncate("Computer Science and Engineering", 10)
	assert.Equal(t, 10, ansi.StringWidth(out))
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestTable(t *testing.T) {
	out := ansi.Strip(Table(
		[]string{"ID", "Name"},
		[][]string{{"STU001", "Alice Johnson"}, {"STU002", "Bob Smith"}},
		0,
	))
	for _, want := range []string{"ID", "Name", "STU001", "Alice Johnson", "Bob Smith"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "STU001"), strings.Index(out, "STU002"))
}

func TestSetTheme(t *testing.T) {
	prev := CurrentTheme
	defer SetTheme(prev)

	next := prev
	next.Primary = "#ffffff"
	SetTheme(next)
	assert.Equal(t, next, CurrentTheme)
	assert.Contains(t, ansi.Strip(Heading("Students")), "Students")
}
