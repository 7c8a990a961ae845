package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/FNNDSC/chrisapp"
)

func newBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse FILE",
		Short: "Browse a descriptor's parameters interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := chrisapp.ReadDescriptor(args[0])
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(newBrowseModel(d), tea.WithAltScreen()).Run()
			return err
		},
	}
}

// browseModel holds the state of the parameter browser.
type browseModel struct {
	desc        chrisapp.Descriptor
	selectedRow int
	windowWidth int
}

func newBrowseModel(d chrisapp.Descriptor) browseModel {
	return browseModel{desc: d}
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit

		case "up", "k":
			if m.selectedRow > 0 {
				m.selectedRow--
			}
			return m, nil

		case "down", "j":
			if m.selectedRow < len(m.desc.Parameters)-1 {
				m.selectedRow++
			}
			return m, nil

		case "g":
			m.selectedRow = 0
			return m, nil

		case "G":
			if n := len(m.desc.Parameters); n > 0 {
				m.selectedRow = n - 1
			}
			return m, nil
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	header := titleStyle.Render(fmt.Sprintf("%s %s (%s)", m.desc.Title, m.desc.Version, m.desc.Type))

	var rows []string
	for i, p := range m.desc.Parameters {
		cursor := "  "
		name := p.Name
		if i == m.selectedRow {
			cursor = "> "
			name = paramNameStyle.Render(name)
		}
		rows = append(rows, fmt.Sprintf("%s%s (%s)", cursor, name, p.Type))
	}
	if len(rows) == 0 {
		rows = append(rows, "  (no parameters)")
	}
	list := strings.Join(rows, "\n")

	detail := ""
	if m.selectedRow < len(m.desc.Parameters) {
		detail = m.renderDetail(m.desc.Parameters[m.selectedRow])
	}

	footer := labelStyle.Render("↑/↓ select · q quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, "", list, "", detail, footer)
}

func (m browseModel) renderDetail(p chrisapp.Parameter) string {
	requirement := "mandatory"
	if p.Optional {
		requirement = fmt.Sprintf("optional, default %v", p.Default)
	}
	exposure := "shown in UIs"
	if !p.UIExposed {
		exposure = "hidden from UIs"
	}
	lines := []string{
		labelStyle.Render("Flag") + p.Flag,
		labelStyle.Render("Type") + p.Type.String(),
		labelStyle.Render("Action") + string(p.Action),
		labelStyle.Render("Requirement") + requirement,
		labelStyle.Render("Exposure") + exposure,
	}
	if p.ShortFlag != "" {
		lines = append(lines, labelStyle.Render("Short flag")+p.ShortFlag)
	}
	if p.Help != "" {
		lines = append(lines, labelStyle.Render("Help")+p.Help)
	}
	return strings.Join(lines, "\n")
}
