package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/datatable/internal/coordinator"
	"github.com/rshade/datatable/internal/logging"
	"github.com/rshade/datatable/internal/query"
	"github.com/rshade/datatable/internal/trigger"
)

// Default dimensions.
const (
	defaultWidth  = 100
	defaultHeight = 24
	// chromeLines is the number of lines around the table body.
	chromeLines  = 7
	minTableRows = 3
)

// Key bindings.
const (
	keyQuit     = "q"
	keyCtrlC    = "ctrl+c"
	keyFilter   = "/"
	keyEnter    = "enter"
	keyEsc      = "esc"
	keySort     = "s"
	keyOrder    = "o"
	keyPrev     = "left"
	keyPrevAlt  = "h"
	keyNext     = "right"
	keyNextAlt  = "l"
	keyFirst    = "<"
	keyLast     = ">"
	keyGrow     = "+"
	keyShrink   = "-"
	keyReload   = "r"
	helpText    = "[/] filter  [s] sort column  [o] order  [←→/hl] page  [<>] first/last  [+-] size  [r] reload  [q] quit"
	sortUpArrow = " ▲"
	sortDnArrow = " ▼"
)

// Column describes one rendered column of T.
type Column[T any] struct {
	Title string
	// SortField is the backend ordering field; empty makes the column unsortable.
	SortField string
	Width     int
	Value     func(T) string
}

// PageMsg carries a page published by the coordinator.
type PageMsg[T any] struct {
	Page query.Page[T]
}

// LoadingMsg carries a loading transition published by the coordinator.
type LoadingMsg struct {
	Loading bool
}

// Options wires a Model to its coordinator and trigger sources. Every
// field except Title and Logger is required.
type Options[T any] struct {
	Title       string
	Columns     []Column[T]
	Coordinator *coordinator.Coordinator[T]
	Search      *trigger.SearchDebouncer
	Sort        *trigger.SortCycler
	Pager       *trigger.Pager
	Logger      zerolog.Logger
}

// Model is the Bubble Tea model for a paginated table.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type Model[T any] struct {
	opts   Options[T]
	logger zerolog.Logger

	table     table.Model
	spinner   spinner.Model
	textInput textinput.Model

	page      query.Page[T]
	loading   bool
	filtering bool
	quitting  bool
	status    string
	fetchErr  string

	width  int
	height int
}

// NewModel creates a table model. The coordinator must already be attached
// or be attached before the program starts.
func NewModel[T any](opts Options[T]) Model[T] {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.Prompt = "Filter: "
	ti.CharLimit = 256

	m := Model[T]{
		opts:      opts,
		logger:    logging.ComponentLogger(opts.Logger, "tui"),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(labelStyle)),
		textInput: ti,
		page:      query.EmptyPage[T](),
		loading:   true,
		width:     defaultWidth,
		height:    defaultHeight,
	}
	m.table = table.New(
		table.WithColumns(m.tableColumns()),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
		table.WithStyles(tableStyles()),
	)
	return m
}

// Bind subscribes p to c: pages and loading transitions are delivered to
// the program as PageMsg and LoadingMsg.
func Bind[T any](p *tea.Program, c *coordinator.Coordinator[T]) (dispose func()) {
	return c.Subscribe(
		func(page query.Page[T]) { p.Send(PageMsg[T]{Page: page}) },
		func(loading bool) { p.Send(LoadingMsg{Loading: loading}) },
	)
}

// Init starts the spinner.
func (m Model[T]) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state.
func (m Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case PageMsg[T]:
		return m.handlePage(msg), nil

	case LoadingMsg:
		m.loading = msg.Loading
		if m.loading {
			m.fetchErr = ""
			return m, m.spinner.Tick
		}
		return m, nil

	case FetchErrorMsg:
		m.fetchErr = "fetch failed: " + msg.Err.Error()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model[T]) handlePage(msg PageMsg[T]) Model[T] {
	m.page = msg.Page
	if m.opts.Pager != nil {
		m.opts.Pager.Observe(msg.Page.Total)
		if state, err := m.opts.Coordinator.State(); err == nil {
			m.opts.Pager.Sync(state.PageIndex, state.PageSize)
		}
	}
	m.table.SetRows(m.tableRows())
	m.table.SetCursor(0)
	return m
}

func (m Model[T]) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		m.filtering = false
		m.textInput.Blur()
		m.opts.Search.Flush()
		return m, nil
	case keyEsc:
		m.filtering = false
		m.textInput.Blur()
		return m, nil
	case keyCtrlC:
		return m.quit()
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.opts.Search.Push(m.textInput.Value())
	return m, cmd
}

func (m Model[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	switch msg.String() {
	case keyQuit, keyCtrlC:
		return m.quit()
	case keyFilter:
		m.filtering = true
		cmd := m.textInput.Focus()
		return m, cmd
	case keySort:
		err = m.toggleSort(m.nextSortField())
	case keyOrder:
		field, _ := m.opts.Sort.Current()
		if field == "" {
			field = m.nextSortField()
		}
		err = m.toggleSort(field)
	case keyPrev, keyPrevAlt:
		err = m.opts.Pager.Prev()
	case keyNext, keyNextAlt:
		err = m.opts.Pager.Next()
	case keyFirst:
		err = m.opts.Pager.First()
	case keyLast:
		err = m.opts.Pager.Last()
	case keyGrow:
		err = m.opts.Pager.Grow()
	case keyShrink:
		err = m.opts.Pager.Shrink()
	case keyReload:
		err = m.opts.Coordinator.Reload()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	if err != nil {
		m.logger.Warn().Err(err).Str("key", msg.String()).Msg("trigger rejected")
		m.status = err.Error()
	} else {
		m.status = ""
	}
	return m, nil
}

// toggleSort emits a sort trigger. The coordinator returns to the first
// page, so the pager follows without waiting for the next published page.
func (m Model[T]) toggleSort(field string) error {
	if err := m.opts.Sort.Toggle(field); err != nil {
		return err
	}
	m.table.SetColumns(m.tableColumns())
	if m.opts.Pager != nil {
		m.opts.Pager.Reset()
	}
	return nil
}

func (m Model[T]) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.opts.Search.Close()
	return m, tea.Quit
}

// nextSortField returns the sortable column after the active one.
func (m Model[T]) nextSortField() string {
	current, _ := m.opts.Sort.Current()
	var fields []string
	for _, col := range m.opts.Columns {
		if col.SortField != "" {
			fields = append(fields, col.SortField)
		}
	}
	if len(fields) == 0 {
		return current
	}
	for i, f := range fields {
		if f == current {
			return fields[(i+1)%len(fields)]
		}
	}
	return fields[0]
}

func (m Model[T]) tableColumns() []table.Column {
	field, order := "", query.SortNone
	if m.opts.Sort != nil {
		field, order = m.opts.Sort.Current()
	}
	cols := make([]table.Column, len(m.opts.Columns))
	for i, col := range m.opts.Columns {
		title := col.Title
		if col.SortField != "" && col.SortField == field {
			switch order {
			case query.SortAsc:
				title += sortUpArrow
			case query.SortDesc:
				title += sortDnArrow
			case query.SortNone:
			}
		}
		cols[i] = table.Column{Title: title, Width: col.Width}
	}
	return cols
}

func (m Model[T]) tableRows() []table.Row {
	rows := make([]table.Row, len(m.page.Items))
	for i, item := range m.page.Items {
		row := make(table.Row, len(m.opts.Columns))
		for j, col := range m.opts.Columns {
			row[j] = col.Value(item)
		}
		rows[i] = row
	}
	return rows
}

func (m Model[T]) tableHeight() int {
	return max(m.height-chromeLines, minTableRows)
}

// View renders the model.
func (m Model[T]) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.opts.Title))
	b.WriteString("\n")
	if m.filtering || m.textInput.Value() != "" {
		b.WriteString(m.textInput.View())
	}
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")
	switch {
	case m.status != "":
		b.WriteString(errorStyle.Render(m.status))
	case m.fetchErr != "":
		b.WriteString(errorStyle.Render(m.fetchErr))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}

func (m Model[T]) footer() string {
	meta := m.opts.Pager.Meta()
	parts := []string{
		labelStyle.Render("Page ") + valueStyle.Render(fmt.Sprintf("%d/%d", meta.CurrentPage, max(meta.TotalPages, 1))),
		labelStyle.Render("Items ") + valueStyle.Render(fmt.Sprintf("%d", meta.TotalItems)),
		labelStyle.Render("Size ") + valueStyle.Render(fmt.Sprintf("%d", meta.PageSize)),
	}
	if window := meta.Window(query.DefaultWindowSize); len(window) > 1 {
		nums := make([]string, len(window))
		for i, n := range window {
			if n == meta.CurrentPage {
				nums[i] = valueStyle.Render(fmt.Sprintf("[%d]", n))
			} else {
				nums[i] = labelStyle.Render(fmt.Sprintf("%d", n))
			}
		}
		parts = append(parts, strings.Join(nums, " "))
	}
	if m.loading {
		parts = append(parts, m.spinner.View()+labelStyle.Render(" loading"))
	}
	return strings.Join(parts, "   ")
}
