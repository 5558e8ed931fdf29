package installer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/mnemo/internal/providers/llm"
)

// ModelStep picks a model from the ones the backend already has pulled.
type ModelStep struct {
	list     list.Model
	loading  bool
	fetching bool
	err      error
}

func NewModelStep() Step {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select Model"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{
		list:    l,
		loading: true,
	}
}

func (s *ModelStep) Init() tea.Cmd {
	return nil
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.loading && !s.fetching {
		s.fetching = true
		baseURL := state.OllamaBaseURL

		return s, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			models, err := llm.NewOllama(baseURL, "", nil).Models(ctx)
			if err != nil {
				return errMsg(err)
			}

			var items []list.Item
			for _, name := range models {
				items = append(items, item{
					id:    name,
					title: name,
					desc:  fmt.Sprintf("ollama model %q", name),
				})
			}
			return modelsMsg(items)
		}
	}

	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case modelsMsg:
		s.list.SetItems(msg)
		s.loading = false
		s.fetching = false
		return s, nil

	case errMsg:
		s.loading = false
		s.fetching = false
		s.err = msg
		return s, nil

	case tea.KeyMsg:
		if s.err != nil {
			if msg.String() == "enter" {
				s.err = nil
				s.loading = true
				s.fetching = false
				return s, nil
			}
			return s, nil
		}

		if msg.String() == "enter" {
			wasFiltering := s.list.FilterState() == list.Filtering
			s.list, cmd = s.list.Update(msg)

			if wasFiltering || s.list.FilterState() == list.Filtering {
				return s, cmd
			}

			if i, ok := s.list.SelectedItem().(item); ok {
				state.Model = i.id
				return nil, nil
			}
			return s, cmd
		}
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error fetching models: %v", s.err)) +
			"\n\nIs Ollama running at " + state.OllamaBaseURL + "?\n\n(press enter to retry, ctrl+c to quit)\n"
	}
	if s.loading {
		return "Fetching installed models from Ollama...\n"
	}
	return s.list.View()
}
