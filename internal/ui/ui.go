// package ui implements the interactive search-and-create flow: enter a
// query, pick one result per provider, choose field sources side by side,
// and materialize the merged record as a content node.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tunedex/tunedex/internal/catalog"
	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/providers"
	"github.com/tunedex/tunedex/internal/search"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	QueryView ViewState = iota
	ResultListView
	CompareView
	ConfirmView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	aggregator *search.Aggregator
	engine     *catalog.Engine
	kind       string
	width      int
	height     int

	queryInput textinput.Model
	resultList list.Model
	results    map[string][]providers.Result
	selected   map[string]providers.Result

	selections map[string]*providers.Details
	fields     []search.Field
	fieldIdx   int
	optionIdx  int
	picks      map[string]string

	created *models.Node
	err     error
	help    help.Model
	keys    keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	toggle   key.Binding
	compare  key.Binding
	yes      key.Binding
	no       key.Binding
	restart  key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		compare: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "compare"),
		),
		yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "create"),
		),
		no: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "back"),
		),
		restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "new search"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.toggle, k.compare},
		{k.yes, k.no, k.restart, k.quit},
	}
}

// resultItem wraps [providers.Result] to implement list.Item.
type resultItem struct {
	result providers.Result
}

func (i resultItem) FilterValue() string { return i.result.Name }
func (i resultItem) Title() string       { return i.result.Name }
func (i resultItem) Description() string {
	desc := i.result.Provider
	if i.result.Artist != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.result.Artist)
	}
	if i.result.Year != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.result.Year)
	}
	return desc
}

type resultsFetchedMsg struct {
	results map[string][]providers.Result
}

type detailsFetchedMsg struct {
	selections map[string]*providers.Details
	err        error
}

type contentCreatedMsg struct {
	node *models.Node
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, aggregator *search.Aggregator, engine *catalog.Engine, kind string) *Model {
	input := textinput.New()
	input.Placeholder = fmt.Sprintf("search for an %s...", kind)
	input.Focus()

	return &Model{
		ctx:        ctx,
		view:       QueryView,
		aggregator: aggregator,
		engine:     engine,
		kind:       kind,
		queryInput: input,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.resultList.Width() == 0 {
			m.resultList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case QueryView:
			return m.handleQueryKeys(msg)
		case ResultListView:
			return m.handleResultListKeys(msg)
		case CompareView:
			return m.handleCompareKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case resultsFetchedMsg:
		m.results = msg.results
		m.selected = make(map[string]providers.Result)

		var items []list.Item
		for _, name := range m.aggregator.Providers() {
			for _, result := range msg.results[name] {
				items = append(items, resultItem{result: result})
			}
		}
		m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.resultList.Title = fmt.Sprintf("Results for %q", m.queryInput.Value())
		m.resultList.SetSize(m.width-4, m.height-8)
		m.view = ResultListView
		return m, nil

	case detailsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ResultView
			return m, nil
		}
		m.selections = msg.selections
		m.picks = make(map[string]string)
		m.fields = nil
		for _, field := range search.CompareFields(m.kind) {
			if len(search.FieldOptions(m.selections, field.Name)) > 0 {
				m.fields = append(m.fields, field)
			}
		}
		m.fieldIdx = 0
		m.optionIdx = 0
		if len(m.fields) == 0 {
			m.err = fmt.Errorf("selected records have no usable fields")
			m.view = ResultView
			return m, nil
		}
		m.view = CompareView
		return m, nil

	case contentCreatedMsg:
		m.created = msg.node
		if msg.node == nil {
			m.err = fmt.Errorf("content creation failed, see log for details")
		}
		m.view = ResultView
		return m, nil
	}

	switch m.view {
	case QueryView:
		var cmd tea.Cmd
		m.queryInput, cmd = m.queryInput.Update(msg)
		return m, cmd
	case ResultListView:
		var cmd tea.Cmd
		m.resultList, cmd = m.resultList.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case QueryView:
		return m.renderQuery()
	case ResultListView:
		return m.renderResultList()
	case CompareView:
		return m.renderCompare()
	case ConfirmView:
		return m.renderConfirm()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleQueryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		query := strings.TrimSpace(m.queryInput.Value())
		if query == "" {
			return m, nil
		}
		return m, m.fetchResults(query)
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

func (m *Model) handleResultListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = QueryView
		return m, nil
	case "enter", " ":
		if item, ok := m.resultList.SelectedItem().(resultItem); ok {
			// One selection per provider; re-selecting replaces it.
			if current, taken := m.selected[item.result.Provider]; taken && current.ID == item.result.ID {
				delete(m.selected, item.result.Provider)
			} else {
				m.selected[item.result.Provider] = item.result
			}
		}
		return m, nil
	case "c":
		if len(m.selected) == 0 {
			return m, nil
		}
		return m, m.fetchDetails()
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleCompareKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := m.fields[m.fieldIdx]
	options := search.FieldOptions(m.selections, field.Name)

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ResultListView
		return m, nil
	case "up", "k":
		if m.optionIdx > 0 {
			m.optionIdx--
		}
		return m, nil
	case "down", "j":
		if m.optionIdx < len(options)-1 {
			m.optionIdx++
		}
		return m, nil
	case "enter":
		m.picks[field.Name] = options[m.optionIdx]
		m.fieldIdx++
		m.optionIdx = 0
		if m.fieldIdx >= len(m.fields) {
			m.view = ConfirmView
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = CompareView
		m.fieldIdx = 0
		m.optionIdx = 0
		return m, nil
	case "y":
		return m, m.createContent()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = QueryView
		m.queryInput.SetValue("")
		m.queryInput.Focus()
		m.selected = nil
		m.selections = nil
		m.created = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) fetchResults(query string) tea.Cmd {
	return func() tea.Msg {
		return resultsFetchedMsg{results: m.aggregator.SearchAll(m.ctx, query, m.kind)}
	}
}

func (m *Model) fetchDetails() tea.Cmd {
	return func() tea.Msg {
		selections := make(map[string]*providers.Details, len(m.selected))
		for name, result := range m.selected {
			if details := m.aggregator.Details(m.ctx, name, result.ID, m.kind); details != nil {
				selections[name] = details
			}
		}
		if len(selections) == 0 {
			return detailsFetchedMsg{err: fmt.Errorf("no details available for the selected results")}
		}
		return detailsFetchedMsg{selections: selections}
	}
}

func (m *Model) createContent() tea.Cmd {
	return func() tea.Msg {
		rec := search.Merge(m.kind, m.selections, m.picks)
		return contentCreatedMsg{node: m.engine.CreateContent(m.ctx, rec, m.kind)}
	}
}

func (m *Model) renderQuery() string {
	title := styles.title.Render(fmt.Sprintf("Search %ss", m.kind))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.queryInput.View(), helpView)
}

func (m *Model) renderResultList() string {
	var picked []string
	for _, name := range m.aggregator.Providers() {
		if result, ok := m.selected[name]; ok {
			picked = append(picked, fmt.Sprintf("%s: %s", name, result.Name))
		}
	}

	status := ""
	if len(picked) > 0 {
		status = styles.ok.Render("Selected — " + strings.Join(picked, " | "))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.compare, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", m.resultList.View(), status, helpView)
}

func (m *Model) renderCompare() string {
	field := m.fields[m.fieldIdx]
	options := search.FieldOptions(m.selections, field.Name)

	title := styles.title.Render(fmt.Sprintf("Pick a source for %s (%d/%d)", field.Label, m.fieldIdx+1, len(m.fields)))

	var lines []string
	for i, name := range options {
		cursor := "  "
		if i == m.optionIdx {
			cursor = styles.ok.Render("> ")
		}
		value := search.FieldValue(m.selections[name], field.Name)
		lines = append(lines, fmt.Sprintf("%s%s: %s", cursor, name, value))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, strings.Join(lines, "\n"), helpView)
}

func (m *Model) renderConfirm() string {
	rec := search.Merge(m.kind, m.selections, m.picks)

	title := styles.title.Render(fmt.Sprintf("Create %s %q?", m.kind, rec.Name))

	var lines []string
	if rec.Artist != "" {
		lines = append(lines, fmt.Sprintf("Artist: %s", rec.Artist))
	}
	if rec.Album != "" {
		lines = append(lines, fmt.Sprintf("Album: %s", rec.Album))
	}
	if rec.Year != "" {
		lines = append(lines, fmt.Sprintf("Year: %s", rec.Year))
	}
	if rec.Length != "" {
		lines = append(lines, fmt.Sprintf("Length: %s", rec.Length))
	}
	if len(rec.Genres) > 0 {
		lines = append(lines, fmt.Sprintf("Genres: %s", strings.Join(rec.Genres, ", ")))
	}
	if len(rec.Members) > 0 {
		lines = append(lines, styles.warn.Render(fmt.Sprintf("Members: %s (will be stored as a band)", strings.Join(rec.Members, ", "))))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, strings.Join(lines, "\n"), helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Error: %v", m.err)), helpView)
	}
	if m.created == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("Nothing was created"), helpView)
	}

	title := styles.ok.Render(fmt.Sprintf("✓ Created %s %q", m.created.Bundle, m.created.Title))
	return fmt.Sprintf("%s\nID: %s\n\n%s", title, m.created.ID, helpView)
}
