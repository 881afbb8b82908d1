package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"agro-collector/cache"
	"agro-collector/services"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Collect on an interval and show the latest report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchInterval <= 0 {
			return fmt.Errorf("--interval must be positive")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer session.Close()

		ctx := cmd.Context()
		trigger := func() (*cache.RunRecord, error) {
			return session.scheduler.Trigger(ctx, services.TriggerCLI)
		}
		m := newWatchModel(trigger, func() map[string]string { return session.sensorNames(ctx) }, watchInterval)
		_, err = tea.NewProgram(m).Run()
		return err
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Minute, "Time between collector runs")
}

type runDoneMsg struct {
	record *cache.RunRecord
	names  map[string]string
	err    error
}

// tickMsg carries the sequence number of the tick that produced it; only the latest
// scheduled tick is live.
type tickMsg struct {
	seq int
}

type watchModel struct {
	trigger  func() (*cache.RunRecord, error)
	names    func() map[string]string
	interval time.Duration

	running  bool
	tickSeq  int
	runs     int
	last     *cache.RunRecord
	lastName map[string]string
	message  string
	quitting bool
}

func newWatchModel(trigger func() (*cache.RunRecord, error), names func() map[string]string, interval time.Duration) watchModel {
	return watchModel{trigger: trigger, names: names, interval: interval}
}

func (m watchModel) Init() tea.Cmd {
	return func() tea.Msg { return tickMsg{} }
}

func (m watchModel) runCollector() tea.Cmd {
	trigger, names := m.trigger, m.names
	return func() tea.Msg {
		record, err := trigger()
		return runDoneMsg{record: record, names: names(), err: err}
	}
}

// scheduleNext arms the next tick and invalidates any tick still pending.
func (m *watchModel) scheduleNext() tea.Cmd {
	m.tickSeq++
	seq := m.tickSeq
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{seq: seq} })
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.running {
				m.tickSeq++
				m.running = true
				m.message = "Collecting..."
				return m, m.runCollector()
			}
		}

	case tickMsg:
		// stale ticks are dropped; the finishing run arms the next one
		if msg.seq != m.tickSeq || m.running {
			return m, nil
		}
		m.running = true
		m.message = "Collecting..."
		return m, m.runCollector()

	case runDoneMsg:
		m.running = false
		m.runs++
		switch {
		case errors.Is(msg.err, services.ErrRunInProgress):
			m.message = errorStyle.Render("✗ previous run still in progress")
		case msg.err != nil:
			m.message = errorStyle.Render("✗ " + msg.err.Error())
			m.last = msg.record
		default:
			m.message = ""
			m.last = msg.record
			m.lastName = msg.names
		}
		next := m.scheduleNext()
		return m, next
	}

	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("🌱 Sensor collector"))
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render(fmt.Sprintf("every %s · %d runs", m.interval, m.runs)))
	s.WriteString("\n\n")

	if m.message != "" {
		s.WriteString(m.message + "\n\n")
	}
	if m.last != nil {
		s.WriteString(renderRun(m.last, m.lastName))
	}

	s.WriteString(mutedStyle.Render("\nr to run now, q to quit\n"))
	return s.String()
}
