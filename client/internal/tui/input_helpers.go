package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// focusInput переводит фокус на поле idx и снимает его с остальных.
func focusInput(inputs []textinput.Model, idx int) tea.Cmd {
	for i := range inputs {
		if i == idx {
			inputs[i].Focus()
			inputs[i].PromptStyle = focusedStyle
			inputs[i].TextStyle = focusedStyle
			continue
		}
		inputs[i].Blur()
		inputs[i].PromptStyle = subtleStyle
		inputs[i].TextStyle = subtleStyle
	}
	return textinput.Blink
}

// handleFormInput обрабатывает ввод в форме из нескольких полей.
// Tab и стрелки переключают поля, Enter на последнем поле вызывает onSubmit,
// Esc возвращает на previousState. Любой ввод сбрасывает ошибку сессии.
func (m *model) handleFormInput(
	msg tea.Msg,
	inputs []textinput.Model,
	onSubmit func() tea.Cmd,
	previousState screenState,
) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEsc:
			for i := range inputs {
				inputs[i].Blur()
			}
			m.session.ClearError()
			m.state = previousState
			return m, tea.ClearScreen
		case keyTab, keyDown:
			m.focusedField = (m.focusedField + 1) % len(inputs)
			return m, focusInput(inputs, m.focusedField)
		case keyShiftTab, keyUp:
			m.focusedField = (m.focusedField + len(inputs) - 1) % len(inputs)
			return m, focusInput(inputs, m.focusedField)
		case keyEnter:
			if m.focusedField < len(inputs)-1 {
				m.focusedField++
				return m, focusInput(inputs, m.focusedField)
			}
			return m, onSubmit()
		}
		m.session.ClearError()
	}

	if m.focusedField >= len(inputs) {
		return m, nil
	}
	var cmd tea.Cmd
	inputs[m.focusedField], cmd = inputs[m.focusedField].Update(msg)
	return m, cmd
}

// openForm сбрасывает форму и переключается на экран state.
func (m *model) openForm(state screenState, inputs []textinput.Model) tea.Cmd {
	m.state = state
	m.focusedField = 0
	m.session.ClearError()
	return focusInput(inputs, 0)
}

func resetInputs(inputs []textinput.Model) {
	for i := range inputs {
		inputs[i].Reset()
	}
}

// optional возвращает nil для пустой строки.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
