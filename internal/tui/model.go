package tui

import (
	"fmt"

	"github.com/Veraticus/immowert/internal/form"
	"github.com/Veraticus/immowert/internal/model"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the intake form state.
type Model struct {
	lastError error
	config    Config
	status    string
	req       model.ValuationRequest
	keymap    KeyMap
	input     textinput.Model
	fields    []form.Field
	cursor    int
	width     int
	height    int
	editing   bool
	submitted bool
	quitting  bool
}

func newModel(initial model.ValuationRequest, cfg Config) Model {
	input := textinput.New()
	input.CharLimit = 120
	input.Prompt = "› "

	return Model{
		config: cfg,
		req:    initial.Clone(),
		keymap: DefaultKeyMap(),
		input:  input,
		fields: form.Fields(),
		width:  cfg.Width,
		height: cfg.Height,
	}
}

// Request returns the current state of the form.
func (m Model) Request() model.ValuationRequest {
	return m.req.Clone()
}

// Submitted reports whether the user confirmed the form.
func (m Model) Submitted() bool {
	return m.submitted
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}

	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Commit):
		m.apply(m.input.Value())
		m.editing = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keymap.Cancel):
		m.editing = false
		m.input.Blur()
		m.status = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := m.fields[m.cursor]

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Submit):
		if m.config.Validate != nil {
			if err := m.config.Validate(m.req); err != nil {
				m.lastError = err
				m.status = ""
				return m, nil
			}
		}
		m.submitted = true
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keymap.Prev) && field.Kind() == form.KindBuildingClass:
		m.apply(string(cycleBuildingClass(m.req.BuildingClass, -1)))

	case key.Matches(msg, m.keymap.Next) && field.Kind() == form.KindBuildingClass:
		m.apply(string(cycleBuildingClass(m.req.BuildingClass, 1)))

	case key.Matches(msg, m.keymap.Clear):
		m.apply("")

	case key.Matches(msg, m.keymap.Edit):
		if field.Kind() == form.KindToggle {
			if form.Value(m.req, field) == "ja" {
				m.apply("nein")
			} else {
				m.apply("ja")
			}
			return m, nil
		}
		m.editing = true
		m.input.SetValue(form.Value(m.req, field))
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd
	}

	return m, nil
}

func (m *Model) apply(value string) {
	field := m.fields[m.cursor]
	next, outcome := form.Apply(m.req, form.Update{Field: field, Value: value})
	m.req = next
	m.lastError = outcome.Err

	switch {
	case outcome.Err != nil:
		m.status = ""
	case outcome.Cleared:
		m.status = fmt.Sprintf("%s: Eingabe ist keine Zahl und wurde geleert", field.Label())
	default:
		m.status = ""
	}
}

func cycleBuildingClass(current model.BuildingClass, step int) model.BuildingClass {
	classes := model.BuildingClasses()
	idx := -1
	for i, c := range classes {
		if c == current {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step > 0:
		return classes[0]
	case idx < 0:
		return classes[len(classes)-1]
	}
	return classes[(idx+step+len(classes))%len(classes)]
}
