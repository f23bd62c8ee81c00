// Package attachment turns a user-supplied document into the plain text
// stored as a thread's auxiliary context.
package attachment

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/afero"
)

// DefaultMaxBytes bounds the size of an attachment.
const DefaultMaxBytes = 1 << 20

var (
	ErrUnsupported = errors.New("unsupported attachment type")
	ErrTooLarge    = errors.New("attachment too large")
	ErrNotText     = errors.New("attachment is not text")
)

// Document is a loaded attachment.
type Document struct {
	Name   string
	Title  string
	Format string
	Text   string
}

// Loader reads attachments from a filesystem.
type Loader struct {
	fs       afero.Fs
	maxBytes int64
}

// NewLoader returns a Loader over fs. maxBytes <= 0 means DefaultMaxBytes.
func NewLoader(fs afero.Fs, maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{fs: fs, maxBytes: maxBytes}
}

// Load reads path and converts it by extension. HTML becomes markdown;
// text and markdown are passed through.
func (l *Loader) Load(path string) (*Document, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	info, err := l.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > l.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, info.Size(), l.maxBytes)
	}

	raw, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if !utf8.Valid(raw) || strings.ContainsRune(string(raw), 0) {
		return nil, fmt.Errorf("%w: %s", ErrNotText, path)
	}

	doc := &Document{Name: filepath.Base(path), Format: format}
	switch format {
	case "html":
		doc.Title, doc.Text, err = FromHTML(string(raw))
		if err != nil {
			return nil, err
		}
	default:
		doc.Text = strings.TrimSpace(string(raw))
	}
	return doc, nil
}

// Context renders the document as stored in the conversation.
func (d *Document) Context() string {
	header := d.Name
	if d.Title != "" {
		header = d.Title + " (" + d.Name + ")"
	}
	return "Document: " + header + "\n\n" + d.Text
}

func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".csv", ".log", "":
		return "text", nil
	case ".md", ".markdown":
		return "markdown", nil
	case ".html", ".htm":
		return "html", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
}

// FromHTML strips scripts and styles and converts the rest to markdown.
// It returns the document title when there is one.
func FromHTML(html string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, head").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	body, err := doc.Html()
	if err != nil {
		return "", "", fmt.Errorf("failed to render HTML: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(body)
	if err != nil {
		return "", "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	for strings.Contains(markdown, "\n\n\n") {
		markdown = strings.ReplaceAll(markdown, "\n\n\n", "\n\n")
	}
	return title, markdown, nil
}
