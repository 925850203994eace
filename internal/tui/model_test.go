package tui_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/datatable/internal/coordinator"
	"github.com/rshade/datatable/internal/fetch"
	"github.com/rshade/datatable/internal/query"
	"github.com/rshade/datatable/internal/trigger"
	"github.com/rshade/datatable/internal/tui"
)

type person struct {
	ID   int
	Name string
}

type harness struct {
	model  tui.Model[person]
	params chan query.Parameters
	coord  *coordinator.Coordinator[person]
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	params := make(chan query.Parameters, 32)
	src := fetch.FetcherFunc[person](func(_ context.Context, p query.Parameters) (query.Page[person], error) {
		params <- p
		return query.Page[person]{Items: []person{{ID: 1, Name: "Ada"}}, Total: 42}, nil
	})

	c := coordinator.New[person]()
	t.Cleanup(c.Detach)
	require.NoError(t, c.Attach(src, coordinator.Sort{}, coordinator.PageRequest{Size: 10}, ""))
	<-params

	pager := trigger.NewPager(c.OnPageTrigger, 10, nil)
	search := trigger.NewSearchDebouncer(pager.ResetOn(c.OnSearchTrigger), trigger.WithQuiet(0))
	t.Cleanup(search.Close)

	m := tui.NewModel(tui.Options[person]{
		Title: "People",
		Columns: []tui.Column[person]{
			{Title: "ID", SortField: "id", Width: 8, Value: func(p person) string { return strconv.Itoa(p.ID) }},
			{Title: "Name", SortField: "name", Width: 20, Value: func(p person) string { return p.Name }},
			{Title: "Note", Width: 10, Value: func(person) string { return "-" }},
		},
		Coordinator: c,
		Search:      search,
		Sort:        trigger.NewSortCycler(c.OnSortTrigger, "", query.SortNone),
		Pager:       pager,
	})
	return &harness{model: m, params: params, coord: c}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(tui.Model[person])
	return cmd
}

func (h *harness) key(s string) tea.Cmd {
	switch s {
	case "left":
		return h.send(tea.KeyMsg{Type: tea.KeyLeft})
	case "right":
		return h.send(tea.KeyMsg{Type: tea.KeyRight})
	case "enter":
		return h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.send(tea.KeyMsg{Type: tea.KeyEsc})
	default:
		return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}
}

func (h *harness) nextParams(t *testing.T) query.Parameters {
	t.Helper()
	select {
	case p := <-h.params:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("no fetch issued")
		return query.Parameters{}
	}
}

func (h *harness) publish() {
	h.send(tui.PageMsg[person]{Page: query.Page[person]{Items: []person{{ID: 1, Name: "Ada"}}, Total: 42}})
	h.send(tui.LoadingMsg{Loading: false})
}

func TestModel_RendersPage(t *testing.T) {
	h := newHarness(t)
	assert.NotNil(t, h.model.Init())

	h.publish()
	view := h.model.View()

	assert.Contains(t, view, "People")
	assert.Contains(t, view, "Ada")
	assert.Contains(t, view, "1/5")
	assert.Contains(t, view, "42")
	assert.NotContains(t, view, "loading")
}

func TestModel_LoadingStartsSpinner(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(tui.LoadingMsg{Loading: true})
	assert.NotNil(t, cmd)
	assert.Contains(t, h.model.View(), "loading")
}

func TestModel_PagingKeys(t *testing.T) {
	h := newHarness(t)
	h.publish()

	h.key("right")
	p := h.nextParams(t)
	assert.Equal(t, 10, p.Offset)

	h.key("l")
	assert.Equal(t, 20, h.nextParams(t).Offset)

	h.key("h")
	assert.Equal(t, 10, h.nextParams(t).Offset)

	h.key(">")
	assert.Equal(t, 40, h.nextParams(t).Offset)

	h.key("<")
	assert.Equal(t, 0, h.nextParams(t).Offset)

	h.key("+")
	p = h.nextParams(t)
	assert.Equal(t, 25, p.Limit)
}

func TestModel_SortKeys(t *testing.T) {
	h := newHarness(t)
	h.publish()

	h.key("s")
	assert.Equal(t, "id", h.nextParams(t).Ordering())
	assert.Contains(t, h.model.View(), "ID ▲")

	h.key("s")
	assert.Equal(t, "name", h.nextParams(t).Ordering())

	h.key("o")
	assert.Equal(t, "-name", h.nextParams(t).Ordering())
	assert.Contains(t, h.model.View(), "Name ▼")

	// Unsortable columns are skipped.
	h.key("s")
	assert.Equal(t, "id", h.nextParams(t).Ordering())
}

func TestModel_SortAndSearchResetPager(t *testing.T) {
	h := newHarness(t)
	h.publish()

	h.key("l")
	h.key("l")
	assert.Equal(t, 10, h.nextParams(t).Offset)
	assert.Equal(t, 20, h.nextParams(t).Offset)

	h.key("s")
	p := h.nextParams(t)
	assert.Equal(t, "id", p.Ordering())
	assert.Equal(t, 0, p.Offset)

	h.key("l")
	assert.Equal(t, 10, h.nextParams(t).Offset)

	h.key("/")
	for _, r := range "ada" {
		h.key(string(r))
	}
	h.key("enter")
	p = h.nextParams(t)
	assert.Equal(t, "ada", p.Keyword)
	assert.Equal(t, 0, p.Offset)

	h.key("l")
	p = h.nextParams(t)
	assert.Equal(t, "ada", p.Keyword)
	assert.Equal(t, 10, p.Offset)
}

func TestModel_FilterForwardsThroughDebouncer(t *testing.T) {
	h := newHarness(t)
	h.publish()

	h.key("/")
	for _, r := range "ab" {
		h.key(string(r))
	}
	h.key("enter")
	select {
	case p := <-h.params:
		t.Fatalf("short keyword fetched: %+v", p)
	case <-time.After(50 * time.Millisecond):
	}

	h.key("/")
	h.key("c")
	h.key("enter")
	p := h.nextParams(t)
	assert.Equal(t, "abc", p.Keyword)
	assert.Equal(t, 0, p.Offset)
	assert.Contains(t, h.model.View(), "abc")

	// Keys typed in the filter do not page or quit.
	h.key("/")
	h.key("q")
	h.key("esc")
	assert.NotEmpty(t, h.model.View())
}

func TestModel_ReloadAndQuit(t *testing.T) {
	h := newHarness(t)
	h.publish()

	h.key("r")
	assert.Equal(t, 0, h.nextParams(t).Offset)

	cmd := h.key("q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, h.model.View())
}

func TestModel_StatusOnRejectedTrigger(t *testing.T) {
	h := newHarness(t)
	h.publish()
	h.coord.Detach()

	h.key("r")
	assert.Contains(t, h.model.View(), "not attached")
}

func TestModel_WindowResize(t *testing.T) {
	h := newHarness(t)
	h.send(tea.WindowSizeMsg{Width: 60, Height: 12})
	h.publish()
	assert.Contains(t, h.model.View(), "Ada")
}

func TestModel_FetchErrorStatus(t *testing.T) {
	h := newHarness(t)
	h.publish()

	h.send(tui.FetchErrorMsg{Err: errors.New("backend down")})
	assert.Contains(t, h.model.View(), "fetch failed: backend down")

	h.send(tui.LoadingMsg{Loading: true})
	assert.NotContains(t, h.model.View(), "backend down")
}

func TestNotifier_DropsWithoutProgram(t *testing.T) {
	var n tui.Notifier
	var obs coordinator.Observer = &n
	assert.NotPanics(t, func() {
		obs.CycleStarted(1)
		obs.CycleCompleted(1, time.Millisecond, errors.New("boom"))
		obs.CycleDiscarded(2)
	})
}
