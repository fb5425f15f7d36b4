package cli

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgrid/pkg/engine"
	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
	"github.com/matzehuels/flowgrid/pkg/layout"
)

const (
	// defaultCellWidth is how many layout pixels one terminal column covers.
	defaultCellWidth = 10.0

	// cellAspect is the height of a terminal cell relative to its width.
	cellAspect = 2.0

	// gutterStep is the gutter change per +/- key press, in pixels.
	gutterStep = 2.0

	// chromeLines are the terminal lines taken by the header and footer.
	chromeLines = 8

	// maxShownErrors bounds the error list under the grid.
	maxShownErrors = 3
)

// Preview styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// previewCommand creates the preview command for the interactive terminal view.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags     layoutFlags
		cellWidth float64
		noCache   bool
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "preview [items.json]",
		Short: "Preview a layout interactively in the terminal",
		Long: `Preview a layout interactively in the terminal.

Each item is drawn as a colored block; the terminal width is the container
width (one column per --cell-width pixels) and resizing the terminal
re-runs the layout.

Keys:
  tab     next strategy
  + / -   widen / narrow the gutter
  r       refresh
  j / k   scroll
  q       quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cellWidth <= 0 {
				return errors.Configuration("cell width must be positive, got %v", cellWidth)
			}
			s, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			return c.runPreview(cmd.Context(), args[0], s, cellWidth, noCache, redisAddr)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&cellWidth, "cell-width", defaultCellWidth, "layout pixels per terminal column")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for a shared cache (host:port)")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input string, s settings, cellWidth float64, noCache bool, redisAddr string) error {
	inputs, err := item.ReadInputsFile(input)
	if err != nil {
		return fmt.Errorf("load items %s: %w", input, err)
	}

	store, err := newCache(ctx, s.file.Cache, noCache, redisAddr)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	feed := newPreviewFeed()
	var viewport atomic.Uint64
	eng, err := engine.New(engine.Config{
		Strategy: s.strategy,
		Options:  s.options,
		Debounce: s.debounce,
		Viewport: func() float64 { return math.Float64frombits(viewport.Load()) },
	},
		engine.WithLogger(c.Logger),
		engine.WithResolver(newResolver(filepath.Dir(input), store)),
		engine.WithListener(feed),
	)
	if err != nil {
		return err
	}
	defer eng.Destroy()

	if err := eng.SetItems(inputs); err != nil {
		return err
	}

	m := newPreviewModel(eng, feed, filepath.Base(input), cellWidth, &viewport)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("preview: %w", err)
	}
	return ctx.Err()
}

// =============================================================================
// previewFeed - engine notifications to bubbletea messages
// =============================================================================

// previewFeed collects engine notifications. The engine calls it under its
// lock, so it only records state and pokes a one-slot signal channel; the
// program drains the state on its own goroutine. Only the newest placement
// set matters, so bursts collapse into one redraw.
type previewFeed struct {
	mu         sync.Mutex
	placements []layout.Placement
	strategy   layout.Strategy
	fresh      bool
	errs       []string
	signal     chan struct{}
}

func newPreviewFeed() *previewFeed {
	return &previewFeed{signal: make(chan struct{}, 1)}
}

func (f *previewFeed) OnLayoutComputed(ps []layout.Placement, s layout.Strategy) {
	f.mu.Lock()
	f.placements, f.strategy, f.fresh = ps, s, true
	f.mu.Unlock()
	f.poke()
}

func (f *previewFeed) OnLayoutChange(s layout.Strategy) {
	f.mu.Lock()
	f.strategy = s
	f.mu.Unlock()
	f.poke()
}

func (f *previewFeed) OnError(err error) {
	f.mu.Lock()
	f.errs = append(f.errs, err.Error())
	f.mu.Unlock()
	f.poke()
}

func (f *previewFeed) poke() {
	select {
	case f.signal <- struct{}{}:
	default:
	}
}

// feedMsg carries the state accumulated since the previous drain.
type feedMsg struct {
	placements []layout.Placement
	strategy   layout.Strategy
	fresh      bool
	errs       []string
}

// wait blocks until the feed has news, then drains it.
func (f *previewFeed) wait() tea.Msg {
	<-f.signal
	return f.drain()
}

func (f *previewFeed) drain() feedMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := feedMsg{placements: f.placements, strategy: f.strategy, fresh: f.fresh, errs: f.errs}
	f.fresh, f.errs = false, nil
	return msg
}

var _ engine.Listener = (*previewFeed)(nil)

// =============================================================================
// previewModel
// =============================================================================

// previewModel is the bubbletea model for the interactive layout preview.
type previewModel struct {
	eng      *engine.Engine
	feed     *previewFeed
	title    string
	viewport *atomic.Uint64

	cellWidth float64
	cols      int
	rows      int
	offset    int

	strategy   layout.Strategy
	placements []layout.Placement
	colors     map[string]int
	errs       []string
	status     string
}

func newPreviewModel(eng *engine.Engine, feed *previewFeed, title string, cellWidth float64, viewport *atomic.Uint64) previewModel {
	return previewModel{
		eng:       eng,
		feed:      feed,
		title:     title,
		viewport:  viewport,
		cellWidth: cellWidth,
		strategy:  eng.Strategy(),
		colors:    map[string]int{},
	}
}

func (m previewModel) Init() tea.Cmd {
	return m.feed.wait
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case feedMsg:
		m.apply(msg)
		return m, m.feed.wait

	case tea.WindowSizeMsg:
		m.cols = max(msg.Width, 1)
		m.rows = max(msg.Height-chromeLines, 1)
		m.viewport.Store(math.Float64bits(float64(m.rows) * m.cellHeight()))
		m.report(m.eng.Resize(float64(m.cols) * m.cellWidth))

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.report(m.eng.SetLayout(m.eng.Strategy().Next()))
		case "+", "=":
			m.setGutter(m.eng.Params().Gutter + gutterStep)
		case "-", "_":
			m.setGutter(math.Max(0, m.eng.Params().Gutter-gutterStep))
		case "r":
			m.report(m.eng.Refresh())
		case "down", "j":
			if m.offset < m.gridHeight()-m.rows {
				m.offset++
			}
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		}
	}
	return m, nil
}

func (m *previewModel) apply(msg feedMsg) {
	if msg.strategy != "" {
		m.strategy = msg.strategy
	}
	if msg.fresh {
		m.placements = msg.placements
		for _, p := range m.placements {
			if _, ok := m.colors[p.ItemID]; !ok {
				m.colors[p.ItemID] = len(m.colors)
			}
		}
		m.offset = min(m.offset, max(0, m.gridHeight()-m.rows))
	}
	m.errs = append(m.errs, msg.errs...)
	if n := len(m.errs); n > maxShownErrors {
		m.errs = m.errs[n-maxShownErrors:]
	}
}

func (m *previewModel) setGutter(g float64) {
	m.report(m.eng.SetOptions(layout.Overrides{Gutter: layout.Float(g)}))
}

// report records a failed operation in the status line. Item-level
// failures arrive through the feed instead.
func (m *previewModel) report(err error) {
	m.status = ""
	if err != nil {
		m.status = errors.UserMessage(err)
	}
}

func (m previewModel) cellHeight() float64 {
	return m.cellWidth * cellAspect
}

// gridHeight is the number of terminal rows the whole layout covers.
func (m previewModel) gridHeight() int {
	return int(math.Ceil(layout.Extent(m.placements) / m.cellHeight()))
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Preview " + m.title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab strategy  +/- gutter  r refresh  j/k scroll  q quit"))
	b.WriteString("\n")

	grid := rasterize(m.placements, m.cols, m.rows, m.offset, m.cellWidth, m.cellHeight())
	b.WriteString(m.paint(grid))

	b.WriteString(m.summary())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(StyleWarning.Render(m.status))
		b.WriteString("\n")
	}
	for _, e := range m.errs {
		b.WriteString(listDimStyle.Render(e))
		b.WriteString("\n")
	}
	return b.String()
}

// summary renders the current strategy, container and gutter as a table.
func (m previewModel) summary() string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	height := layout.Extent(m.placements)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Strategy", "Width", "Height", "Items", "Gutter").
		Row(
			string(m.strategy),
			fmt.Sprintf("%.0fpx", float64(m.cols)*m.cellWidth),
			fmt.Sprintf("%.0fpx", height),
			fmt.Sprintf("%d", len(m.placements)),
			fmt.Sprintf("%.0fpx", m.eng.Params().Gutter),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return listSelectedStyle
			}
			return listNormalStyle
		})
	return t.Render()
}

// paint styles each run of cells owned by one placement.
func (m previewModel) paint(grid [][]int) string {
	var b strings.Builder
	for _, line := range grid {
		for i := 0; i < len(line); {
			j := i
			for j < len(line) && line[j] == line[i] {
				j++
			}
			run := strings.Repeat(" ", j-i)
			if owner := line[i]; owner >= 0 {
				idx := m.colors[m.placements[owner].ItemID]
				run = lipgloss.NewStyle().Background(blockColors[idx%len(blockColors)]).Render(strings.Repeat("█", j-i))
			}
			b.WriteString(run)
			i = j
		}
		b.WriteString("\n")
	}
	return b.String()
}

// blockColors cycles through distinguishable background colors.
var blockColors = []lipgloss.Color{
	lipgloss.Color("36"), lipgloss.Color("75"), lipgloss.Color("167"),
	lipgloss.Color("220"), lipgloss.Color("141"), lipgloss.Color("35"),
	lipgloss.Color("209"), lipgloss.Color("110"),
}

// rasterize maps placements onto a cols x rows character grid starting at
// terminal row offset. Each cell holds the index of the placement covering
// its center, or -1 for background.
func rasterize(ps []layout.Placement, cols, rows, offset int, cellW, cellH float64) [][]int {
	grid := make([][]int, rows)
	for r := range grid {
		grid[r] = make([]int, cols)
		for c := range grid[r] {
			grid[r][c] = -1
		}
	}
	for i, p := range ps {
		c0 := int(math.Ceil(p.X/cellW - 0.5))
		c1 := int(math.Ceil((p.X+p.Width)/cellW - 0.5))
		r0 := int(math.Ceil(p.Y/cellH-0.5)) - offset
		r1 := int(math.Ceil((p.Y+p.Height)/cellH-0.5)) - offset
		for r := max(r0, 0); r < min(r1, rows); r++ {
			for c := max(c0, 0); c < min(c1, cols); c++ {
				grid[r][c] = i
			}
		}
	}
	return grid
}
