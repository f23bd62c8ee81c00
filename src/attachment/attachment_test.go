package attachment

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/docs/handbook.md", []byte("# Handbook\n\nRules.\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/docs/notes.txt", []byte("  plain notes  "), 0644))
	require.NoError(t, afero.WriteFile(fs, "/docs/page.html", []byte(`<html><head><title>Library</title><style>p{}</style></head>
<body><h1>Hours</h1><script>alert(1)</script><p>Open <b>daily</b>.</p></body></html>`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/docs/big.txt", make([]byte, 64), 0644))
	require.NoError(t, afero.WriteFile(fs, "/docs/scan.pdf", []byte("%PDF-1.4"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/docs/blob.txt", []byte{0xff, 0xfe, 0x00}, 0644))

	l := NewLoader(fs, 32)

	doc, err := l.Load("/docs/handbook.md")
	require.NoError(t, err)
	assert.Equal(t, "markdown", doc.Format)
	assert.Equal(t, "# Handbook\n\nRules.", doc.Text)
	assert.Equal(t, "Document: handbook.md\n\n# Handbook\n\nRules.", doc.Context())

	doc, err = l.Load("/docs/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "plain notes", doc.Text)

	_, err = l.Load("/docs/big.txt")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = l.Load("/docs/scan.pdf")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = l.Load("/docs/blob.txt")
	assert.ErrorIs(t, err, ErrNotText)

	_, err = l.Load("/docs/missing.txt")
	assert.Error(t, err)

	doc, err = NewLoader(fs, 0).Load("/docs/page.html")
	require.NoError(t, err)
	assert.Equal(t, "Library", doc.Title)
	assert.Contains(t, doc.Text, "# Hours")
	assert.Contains(t, doc.Text, "Open **daily**.")
	assert.NotContains(t, doc.Text, "alert")
	assert.NotContains(t, doc.Text, "p{}")
	assert.Contains(t, doc.Context(), "Document: Library (page.html)")
}
