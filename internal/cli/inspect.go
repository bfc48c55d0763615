package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/waymerge/waymerge/pkg/graph"
	"github.com/waymerge/waymerge/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGray)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
)

// inspectCommand creates the inspect command for browsing network edges.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		simplifyFirst bool
		noCache       bool
		configPath    string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "Browse network edges in an interactive table",
		Long: `Browse the edges of a road network in an interactive table sorted by
length, longest first. By default the network is shown as loaded; pass
--simplify to contract it first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			opts.SkipSimplify = !simplifyFirst
			cfg, err := applyConfig(configPath, &opts)
			if err != nil {
				return err
			}
			return c.runInspect(cmd.Context(), opts, noCache, cfg)
		},
	}

	cmd.Flags().BoolVar(&simplifyFirst, "simplify", false, "contract the network before browsing")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "input format: pbf, json, csv (default: detect from extension)")
	cmd.Flags().StringVar(&opts.EdgesInput, "edges", "", "edge table path (CSV input)")
	cmd.Flags().StringSliceVar(&opts.Keep, "keep", nil, "highway classes to keep (default: principal road classes)")
	cmd.Flags().StringSliceVar(&opts.Drop, "drop", nil, "highway classes to drop from the kept set")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file")

	return cmd
}

// runInspect loads the graph and hands it to the interactive browser.
func (c *CLI) runInspect(ctx context.Context, opts pipeline.Options, noCache bool, cfg pipeline.Config) error {
	runner, err := c.newRunner(ctx, noCache, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	g, err := runner.Graph(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("inspect: %w", err)
	}
	if g.EdgeCount() == 0 {
		printInfo("Network has no edges")
		return nil
	}

	m := newInspectModel(opts.Input, g)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("inspect: %w", err)
	}
	return nil
}

// =============================================================================
// inspectModel - Interactive edge browser
// =============================================================================

// edgeRow is one line of the edge table.
type edgeRow struct {
	from   graph.NodeID
	to     graph.NodeID
	length float64
	lanes  int
	name   string
}

// inspectModel is the bubbletea model for the edge browser.
type inspectModel struct {
	input  string
	rows   []edgeRow
	total  float64
	cursor int
	offset int
	height int
}

// newInspectModel builds the model with edges sorted by length, longest
// first. Endpoint IDs break ties so the order is stable.
func newInspectModel(input string, g *graph.Graph) inspectModel {
	edges := g.Edges()
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Length != edges[j].Length {
			return edges[i].Length > edges[j].Length
		}
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	rows := make([]edgeRow, len(edges))
	for i, e := range edges {
		rows[i] = edgeRow{from: e.From, to: e.To, length: e.Length, lanes: e.Lanes, name: e.Name}
	}
	return inspectModel{input: input, rows: rows, total: g.TotalLength(), height: 15}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "g":
			m.cursor, m.offset = 0, 0
		case "G":
			m.cursor = len(m.rows) - 1
			m.offset = m.cursor - m.height + 1
			if m.offset < 0 {
				m.offset = 0
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
		if m.cursor >= m.offset+m.height {
			m.offset = m.cursor - m.height + 1
		}
	}
	return m, nil
}

func (m inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Edges of " + m.input))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  g/G jump  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		lanes := "—"
		if r.lanes > 0 {
			lanes = fmt.Sprintf("%d", r.lanes)
		}

		name := r.name
		if name == "" {
			name = "—"
		}

		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", r.from),
			fmt.Sprintf("%d", r.to),
			formatLength(r.length),
			lanes,
			name,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "From", "To", "Length", "Lanes", "Name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d] · %s total", m.cursor+1, len(m.rows), formatLength(m.total))))
	b.WriteString("\n")

	return b.String()
}
