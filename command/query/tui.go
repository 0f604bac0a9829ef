package query

import (
	"context"
	"fmt"
	"strings"

	"sdgsearch/search"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func runInteractive(ctx context.Context, index *search.Index, topN int) error {
	input := textinput.New()
	input.Placeholder = "search..."
	input.Focus()

	m := model{ctx: ctx, index: index, topN: topN, input: input}
	_, err := tea.NewProgram(m).Run()
	return err
}

type resultsMsg struct {
	query   string
	results []search.Result
	err     error
}

type model struct {
	ctx   context.Context
	index *search.Index
	topN  int
	input textinput.Model

	query   string
	results []search.Result
	err     error
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			query := m.input.Value()
			if query == "" {
				return m, nil
			}
			return m, func() tea.Msg {
				results, err := m.index.Query(m.ctx, query, m.topN)
				return resultsMsg{query: query, results: results, err: err}
			}
		}

	case resultsMsg:
		m.query = msg.query
		m.results = msg.results
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	sb := strings.Builder{}

	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")

	switch {
	case m.err != nil:
		sb.WriteString("error: " + m.err.Error() + "\n")

	case m.query != "" && len(m.results) == 0:
		sb.WriteString("no results for " + m.query + "\n")

	default:
		for _, result := range m.results {
			sb.WriteString(fmt.Sprintf("%6.3f  %s\n", result.Score, result.Document.Title))
		}
	}

	sb.WriteString("\n(enter to search, esc to quit)\n")

	return sb.String()
}
