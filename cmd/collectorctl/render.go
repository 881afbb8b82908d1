package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"agro-collector/cache"

	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

// renderRun draws one collector run as a list of sensors with their outcome.
func renderRun(record *cache.RunRecord, names map[string]string) string {
	var s strings.Builder

	duration := record.FinishedAt.Sub(record.StartedAt).Round(time.Millisecond)
	s.WriteString(headerStyle.Render(fmt.Sprintf("Run %s", shortID(record.ID))))
	s.WriteString(mutedStyle.Render(fmt.Sprintf("  %s · %s · %s",
		record.Trigger, record.StartedAt.Local().Format("2006-01-02 15:04:05"), duration)))
	s.WriteString("\n\n")

	if record.Error != "" {
		s.WriteString(errorStyle.Render("✗ " + record.Error))
		s.WriteString("\n")
		return s.String()
	}
	if record.Report == nil || len(record.Report.Results) == 0 {
		s.WriteString(mutedStyle.Render("No sensors with a configured endpoint."))
		s.WriteString("\n")
		return s.String()
	}

	for _, res := range record.Report.Results {
		name := names[res.SensorID]
		if name == "" {
			name = res.SensorID
		}
		var outcome string
		switch {
		case !res.Success:
			outcome = errorStyle.Render("✗ " + res.Error)
		case res.Value == nil:
			outcome = mutedStyle.Render("✓ no value")
		default:
			outcome = successStyle.Render("✓ " + strconv.FormatFloat(*res.Value, 'f', -1, 64))
		}
		s.WriteString(normalStyle.Render(fmt.Sprintf("%-28s %s", name, outcome)))
		s.WriteString("\n")
	}

	failed := record.Report.Failed()
	summary := fmt.Sprintf("\n%d sensors, %d failed", len(record.Report.Results), failed)
	if failed > 0 {
		s.WriteString(errorStyle.Render(summary))
	} else {
		s.WriteString(successStyle.Render(summary))
	}
	s.WriteString("\n")
	return s.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
