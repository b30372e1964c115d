// Package tui provides the terminal UI for watching a document stream. It
// renders a split view: a scrollable table of recently consumed documents on
// top and the full payload of the selected document below.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"runbridge/src/consumer"
	"runbridge/src/documents"
)

// Styles for the monitor
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Bold(true)

	startStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	stopStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().Faint(true)

	// Column widths
	timeWidth = 10
	nameWidth = 12
	runWidth  = 14
)

// maxRows bounds the in-memory feed; the oldest rows are dropped first.
const maxRows = 500

// Row is one consumed document in the feed.
type Row struct {
	At    time.Time
	Topic string
	Name  string
	Run   string
	Doc   documents.Document
}

// DocumentMsg delivers a consumed document to the monitor.
type DocumentMsg Row

// MonitorModel is the Bubble Tea model for the document monitor.
type MonitorModel struct {
	topic  string
	feed   <-chan DocumentMsg
	rows   []Row
	cursor int
	follow bool

	detail         viewport.Model
	terminalWidth  int
	terminalHeight int
}

// NewMonitorModel creates a monitor reading documents from feed.
func NewMonitorModel(topic string, feed <-chan DocumentMsg) MonitorModel {
	return MonitorModel{
		topic:  topic,
		feed:   feed,
		follow: true,
		detail: viewport.New(0, 0),
	}
}

// HandlerFeeding adapts a feed channel into a document handler, so the same
// consumer loop that archives documents can also drive the monitor.
func HandlerFeeding(feed chan<- DocumentMsg) consumer.DocumentHandler {
	return func(c *consumer.Consumer, topic, name string, doc documents.Document) error {
		feed <- DocumentMsg{
			At:    time.Now(),
			Topic: topic,
			Name:  name,
			Run:   documents.RunUID(name, doc),
			Doc:   doc,
		}
		return nil
	}
}

// waitForDocument blocks on the feed channel and hands the next document to
// Update. The channel closing quits the program.
func (m MonitorModel) waitForDocument() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.feed
		if !ok {
			return tea.Quit()
		}
		return msg
	}
}

// Init starts listening on the feed. Required by tea.Model interface.
func (m MonitorModel) Init() tea.Cmd {
	return m.waitForDocument()
}

// Update handles messages and updates the model state.
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.terminalWidth = msg.Width
		m.terminalHeight = msg.Height
		m.detail.Width = msg.Width
		m.detail.Height = m.detailHeight()
		m.refreshDetail()

	case DocumentMsg:
		m.rows = append(m.rows, Row(msg))
		if len(m.rows) > maxRows {
			m.rows = m.rows[len(m.rows)-maxRows:]
		}
		if m.follow {
			m.cursor = len(m.rows) - 1
		}
		m.refreshDetail()
		return m, m.waitForDocument()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.follow = false
			m.refreshDetail()
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
			m.follow = m.cursor == len(m.rows)-1
			m.refreshDetail()
		case "home", "g":
			m.cursor = 0
			m.follow = false
			m.refreshDetail()
		case "end", "G":
			if len(m.rows) > 0 {
				m.cursor = len(m.rows) - 1
			}
			m.follow = true
			m.refreshDetail()

		// Scroll the payload view independently
		case "d":
			m.detail.ScrollDown(1)
		case "u":
			m.detail.ScrollUp(1)
		}
	}

	return m, nil
}

// listHeight returns the number of feed rows visible in the top pane.
func (m MonitorModel) listHeight() int {
	// UI overhead: title (1) + header (1) + divider (1) + help (1) = 4 lines
	available := m.terminalHeight - 4
	if available < 8 {
		available = 8
	}
	h := available / 3
	if h < 2 {
		h = 2
	}
	return h
}

func (m MonitorModel) detailHeight() int {
	available := m.terminalHeight - 4
	if available < 8 {
		available = 8
	}
	return available - m.listHeight()
}

// refreshDetail re-renders the selected document payload into the viewport.
func (m *MonitorModel) refreshDetail() {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		m.detail.SetContent("")
		return
	}
	row := m.rows[m.cursor]
	pretty, err := json.MarshalIndent(row.Doc, "", "  ")
	if err != nil {
		pretty = []byte(fmt.Sprintf("%v", row.Doc))
	}
	header := fmt.Sprintf("Document: %s │ Run: %s │ Topic: %s", row.Name, orDash(row.Run), row.Topic)
	m.detail.SetContent(headerStyle.Render(header) + "\n\n" + string(pretty))
	m.detail.GotoTop()
}

// View renders the split-view monitor.
func (m MonitorModel) View() string {
	if m.terminalHeight == 0 {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("runbridge - document monitor [%s]", m.topic)))
	b.WriteString("\n")

	header := fmt.Sprintf("%s %s %s %s",
		TruncateAndPad("Time", timeWidth, false),
		TruncateAndPad("Name", nameWidth, false),
		TruncateAndPad("Run", runWidth, false),
		"Summary",
	)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	listHeight := m.listHeight()
	lines := m.renderRows()
	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}
	end := min(start+listHeight, len(lines))
	for i := start; i < end; i++ {
		b.WriteString(lines[i])
		b.WriteString("\n")
	}
	for i := end - start; i < listHeight; i++ {
		b.WriteString("\n")
	}

	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(m.terminalWidth, 1))))
	b.WriteString("\n")

	b.WriteString(m.detail.View())
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("↑/↓ navigate feed • d/u scroll payload • G follow • q quit"))
	return b.String()
}

// renderRows formats every feed row as a single table line.
func (m MonitorModel) renderRows() []string {
	summaryWidth := m.terminalWidth - timeWidth - nameWidth - runWidth - 8
	if summaryWidth < 20 {
		summaryWidth = 20
	}

	var lines []string
	for i, row := range m.rows {
		name := row.Name
		switch name {
		case documents.NameStart:
			name = startStyle.Render(TruncateAndPad(name, nameWidth, false))
		case documents.NameStop:
			name = stopStyle.Render(TruncateAndPad(name, nameWidth, false))
		default:
			name = TruncateAndPad(name, nameWidth, false)
		}

		line := fmt.Sprintf("%s %s %s %s",
			TruncateAndPad(row.At.Format("15:04:05"), timeWidth, false),
			name,
			TruncateAndPad(orDash(row.Run), runWidth, true),
			Truncate(summarize(row.Doc), summaryWidth, true),
		)

		if i == m.cursor {
			cursor := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Render("► ")
			lines = append(lines, cursor+rowStyle.Render(line))
		} else {
			lines = append(lines, "  "+rowStyle.Render(line))
		}
	}
	return lines
}

// summarize renders a short single-line digest of a document payload.
func summarize(doc documents.Document) string {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Sprintf("%d keys", len(doc))
	}
	return string(data)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
