package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type workDoneMsg struct {
	err error
}

type workSpinnerModel struct {
	spinner spinner.Model
	label   string
	work    tea.Cmd
	err     error
	done    bool
}

func newWorkSpinnerModel(label string, work tea.Cmd) workSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return workSpinnerModel{
		spinner: s,
		label:   label,
		work:    work,
	}
}

func (m workSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m workSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case workDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m workSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// runWithSpinner shows label on output until work returns.
func runWithSpinner(ctx context.Context, output io.Writer, label string, work func(context.Context) error) error {
	workCmd := func() tea.Msg {
		return workDoneMsg{err: work(ctx)}
	}

	p := tea.NewProgram(
		newWorkSpinnerModel(label, workCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(workSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
