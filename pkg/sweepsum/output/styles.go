package output

import "github.com/charmbracelet/lipgloss"

// Color constants using ANSI 256-color palette for chrome that is not
// configurable (borders, titles).
const (
	// ColorPrimary is used for primary elements like headers (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess is used for positive status indicators (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning is used for warning messages (orange/yellow).
	ColorWarning = lipgloss.Color("214")
)

// Palette holds the configurable display colors. Values are lipgloss
// colors: an ANSI index such as "9" or a hex string such as "#ff0000".
type Palette struct {
	Added   string
	Removed string
	Changed string
	Error   string
	Path    string
	Digest  string
	Muted   string
}

// DefaultPalette returns the built-in colors.
func DefaultPalette() Palette {
	return Palette{
		Added:   "10",
		Removed: "9",
		Changed: "11",
		Error:   "13",
		Path:    "14",
		Digest:  "7",
		Muted:   "8",
	}
}

// withDefaults fills unset colors from DefaultPalette.
func (p Palette) withDefaults() Palette {
	d := DefaultPalette()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&p.Added, d.Added)
	fill(&p.Removed, d.Removed)
	fill(&p.Changed, d.Changed)
	fill(&p.Error, d.Error)
	fill(&p.Path, d.Path)
	fill(&p.Digest, d.Digest)
	fill(&p.Muted, d.Muted)
	return p
}

// Styles are the lipgloss styles derived from a Palette. They are built per
// formatter instead of living in package state, so two formatters with
// different palettes never interfere.
type Styles struct {
	// Box styles for containing grouped content.
	HeaderBox lipgloss.Style
	FooterBox lipgloss.Style

	// Text styles.
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	// Palette-driven styles.
	Added     lipgloss.Style
	Removed   lipgloss.Style
	Changed   lipgloss.Style
	Error     lipgloss.Style
	Path      lipgloss.Style
	Digest    lipgloss.Style
	Highlight lipgloss.Style
}

// NewStyles builds the styles for p.
func NewStyles(p Palette) *Styles {
	p = p.withDefaults()
	muted := lipgloss.Color(p.Muted)

	return &Styles{
		HeaderBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1),
		FooterBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1).
			MarginTop(1),

		Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Label:   lipgloss.NewStyle().Foreground(muted),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Muted:   lipgloss.NewStyle().Foreground(muted),
		Success: lipgloss.NewStyle().Foreground(ColorSuccess),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),

		Added:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Added)),
		Removed: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Removed)),
		Changed: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Changed)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)).Bold(true),
		Path:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Path)),
		Digest:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Digest)),
		Highlight: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Changed)).
			Bold(true).
			Underline(true),
	}
}
