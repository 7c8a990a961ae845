package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/FNNDSC/chrisapp"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(16)

	paramNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	mandatoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	optionalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))
)

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Pretty-print a plugin descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := chrisapp.ReadDescriptor(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderDescriptor(d))
			return nil
		},
	}
}

func renderDescriptor(d chrisapp.Descriptor) string {
	header := titleStyle.Render(fmt.Sprintf("%s %s", d.Title, d.Version))

	identity := []struct{ label, value string }{
		{"Type", string(d.Type)},
		{"Authors", d.Authors},
		{"Category", d.Category},
		{"Description", d.Description},
		{"Documentation", d.Documentation},
		{"License", d.License},
		{"Exec", fmt.Sprintf("%s %s/%s", d.ExecShell, d.SelfPath, d.SelfExec)},
		{"Workers", fmt.Sprintf("%d-%d", d.MinNumberOfWorkers, d.MaxNumberOfWorkers)},
		{"CPU (m)", fmt.Sprintf("%d-%d", d.MinCPULimit, d.MaxCPULimit)},
		{"Memory (MB)", fmt.Sprintf("%d-%d", d.MinMemoryLimit, d.MaxMemoryLimit)},
		{"GPU", fmt.Sprintf("%d-%d", d.MinGPULimit, d.MaxGPULimit)},
	}
	var lines []string
	for _, row := range identity {
		if row.value == "" {
			continue
		}
		lines = append(lines, labelStyle.Render(row.label)+row.value)
	}

	lines = append(lines, "", titleStyle.Render(fmt.Sprintf("Parameters (%d)", len(d.Parameters))))
	for _, p := range d.Parameters {
		lines = append(lines, renderParameter(p))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		append([]string{header, ""}, lines...)...)
}

func renderParameter(p chrisapp.Parameter) string {
	requirement := mandatoryStyle.Render("mandatory")
	if p.Optional {
		requirement = optionalStyle.Render(fmt.Sprintf("optional, default %v", p.Default))
	}
	flags := p.Flag
	if p.ShortFlag != "" {
		flags = p.ShortFlag + ", " + flags
	}
	line := fmt.Sprintf("  %s  %s (%s, %s)",
		paramNameStyle.Render(p.Name), flags, p.Type, requirement)
	if !p.UIExposed {
		line += "  [hidden]"
	}
	if p.Help != "" {
		line += "\n" + strings.Repeat(" ", 4) + p.Help
	}
	return line
}
