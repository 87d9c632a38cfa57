package report

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Entry is one line of a listing.
type Entry struct {
	Name        string
	Description string
	Default     bool
}

// Section is a titled group of entries.
type Section struct {
	Title   string
	Entries []Entry
}

// List renders sections to w with aligned descriptions. Empty sections are
// skipped. Listings are requested output and ignore quiet mode.
func (c *Console) List(w io.Writer, sections ...Section) error {
	width := 0
	for _, s := range sections {
		for _, e := range s.Entries {
			width = max(width, lipgloss.Width(entryName(e)))
		}
	}

	var b strings.Builder
	for _, s := range sections {
		if len(s.Entries) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(c.styles.prefixBold.Render(s.Title+":") + "\n")
		for _, e := range s.Entries {
			name := entryName(e)
			b.WriteString("  " + c.styles.actionBold.Render(name))
			if e.Description != "" {
				b.WriteString(strings.Repeat(" ", width-lipgloss.Width(name)+2))
				b.WriteString(c.styles.muted.Render(e.Description))
			}
			b.WriteString("\n")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(w, b.String())
	return err
}

func entryName(e Entry) string {
	if e.Default {
		return e.Name + " (default)"
	}
	return e.Name
}
