package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/porter/pkg/application"
	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"github.com/felixgeelhaar/porter/pkg/storage"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI view of the conversion checklist",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("PORTER_SKIP_DASHBOARD_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(initialModel())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dashboardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var statusDone = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var statusErr = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

type model struct {
	table  table.Model
	counts map[checklist.Status]int
	tamper []string
	err    error
}

func initialModel() model {
	cwd, _ := os.Getwd()
	repo := storage.NewFilesystemRepository(cwd)

	items, err := repo.LoadItems()
	if err != nil {
		return model{err: err}
	}
	store := checklist.NewStore(items, repo)

	columns := []table.Column{
		{Title: "Status", Width: 10},
		{Title: "Category", Width: 12},
		{Title: "Source", Width: 34},
		{Title: "Target", Width: 34},
	}

	rows := []table.Row{}
	for _, item := range store.List() {
		rows = append(rows, table.Row{
			string(item.Status),
			string(item.Category),
			item.SourcePath,
			item.TargetPath,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))

	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))

	t.SetStyles(s)

	// Quick integrity check on the audit trail
	audit := application.NewAuditService(repo)
	tamper, _ := audit.VerifyIntegrity()

	return model{
		table:  t,
		counts: store.CountByStatus(),
		tamper: tamper,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading dashboard: %v\nPress q to quit.", m.err)
	}

	total := 0
	for _, n := range m.counts {
		total += n
	}
	header := headerStyle.Render(fmt.Sprintf("porter — %d conversion units", total))

	progress := fmt.Sprintf("complete %d  pending %d  error %d  missing %d",
		m.counts[checklist.StatusComplete],
		m.counts[checklist.StatusPending],
		m.counts[checklist.StatusError],
		m.counts[checklist.StatusMissing],
	)

	integrityView := ""
	if len(m.tamper) > 0 {
		integrityView = statusErr.Render("\nAUDIT TRAIL TAMPERED:\n")
		for _, t := range m.tamper {
			integrityView += fmt.Sprintf("- %s\n", t)
		}
	} else {
		integrityView = statusDone.Render("\nAudit Trail: OK")
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			progress,
			"\nChecklist:",
			m.table.View(),
			integrityView,
			"\nPress q to quit.",
		),
	)
}
