package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rfit/pkg/core/catalog"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the interactive catalog browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the template catalogs interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			m, err := NewCatalogModel(cfg.Defaults)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// =============================================================================
// CatalogModel - Interactive catalog browser
// =============================================================================

// CatalogModel is the bubbletea model for browsing catalogs. Left and right
// switch family, tab switches surface kind, up and down move through the
// templates of the current catalog.
type CatalogModel struct {
	Families []catalog.Family
	Kinds    []catalog.Kind
	Options  catalog.Options

	Family  int
	Kind    int
	Cursor  int
	Catalog catalog.Catalog
	Height  int
	Offset  int
	Err     error
}

// NewCatalogModel creates a browser on the first family's wall catalog.
func NewCatalogModel(opts catalog.Options) (CatalogModel, error) {
	m := CatalogModel{
		Families: catalog.Families(),
		Kinds:    catalog.Kinds(),
		Options:  opts,
		Height:   10,
	}
	if err := m.load(); err != nil {
		return m, err
	}
	return m, nil
}

func (m *CatalogModel) load() error {
	cat, err := catalog.Build(m.Families[m.Family], m.Kinds[m.Kind], m.Options)
	if err != nil {
		m.Err = err
		return err
	}
	m.Catalog = cat
	m.Err = nil
	m.Cursor = 0
	m.Offset = 0
	return nil
}

// Selected returns the template under the cursor.
func (m CatalogModel) Selected() catalog.Template {
	return m.Catalog.Templates[m.Cursor]
}

func (m CatalogModel) Init() tea.Cmd {
	return nil
}

func (m CatalogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.Catalog.Len()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "right", "l":
			m.Family = (m.Family + 1) % len(m.Families)
			_ = m.load()
		case "left", "h":
			m.Family = (m.Family + len(m.Families) - 1) % len(m.Families)
			_ = m.load()
		case "tab":
			m.Kind = (m.Kind + 1) % len(m.Kinds)
			_ = m.load()
		case "shift+tab":
			m.Kind = (m.Kind + len(m.Kinds) - 1) % len(m.Kinds)
			_ = m.load()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 20
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m CatalogModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Template Catalogs"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ family  tab kind  ↑/↓ template  q quit"))
	b.WriteString("\n\n")

	for i, f := range m.Families {
		if i == m.Family {
			b.WriteString(listSelectedStyle.Render("[" + string(f) + "]"))
		} else {
			b.WriteString(listDimStyle.Render(" " + string(f) + " "))
		}
	}
	b.WriteString("\n")
	kind := m.Kinds[m.Kind]
	b.WriteString(listNormalStyle.Render(fmt.Sprintf("kind: %s", kind)))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  films R-%.2f", kind.DefaultFilm())))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(StyleWarning.Render(m.Err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > m.Catalog.Len() {
		end = m.Catalog.Len()
	}
	film := kind.DefaultFilm()
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		t := m.Catalog.Templates[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			t.Name,
			t.Topology.String(),
			fmt.Sprintf("%.1f%%", t.FramingFraction*100),
			fmt.Sprintf("%.2f", film+t.LayersR()),
		})
	}

	last := m.Catalog.Len() - 1
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Template", "Topology", "Framing", "Fixed R").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case idx == last:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, m.Catalog.Len())))

	return b.String()
}

// detail describes the template under the cursor.
func (m CatalogModel) detail() string {
	t := m.Selected()
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(t.Name))
	b.WriteString(listDimStyle.Render(" solves for " + t.Topology.Unknown()))
	b.WriteString("\n")
	if len(t.Layers) == 0 {
		b.WriteString(listDimStyle.Render("  no fixed layers"))
		b.WriteString("\n")
	}
	for _, l := range t.Layers {
		b.WriteString("  " + listNormalStyle.Render(l.String()))
		b.WriteString("\n")
	}
	if m.Cursor == m.Catalog.Len()-1 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("  fallback: %.0f%% framing, no finishes", catalog.FallbackFraction*100)))
		b.WriteString("\n")
	}
	return b.String()
}
