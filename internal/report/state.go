package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/good-yellow-bee/wtc/internal/models"
)

// StateLabel maps a state code to its four letter token. Unknown codes are
// returned unchanged with ok set to false.
func StateLabel(s models.State) (label string, ok bool) {
	switch s {
	case models.StateOK:
		return "OK", true
	case models.StateWarning:
		return "WARN", true
	case models.StateCritical:
		return "CRIT", true
	case models.StateUnknown:
		return "UNKN", true
	}
	return string(s), false
}

// stateColors uses the basic ANSI palette so output matches the terminal theme.
var stateColors = map[models.State]lipgloss.Color{
	models.StateOK:       lipgloss.Color("2"), // Green
	models.StateWarning:  lipgloss.Color("3"), // Yellow
	models.StateCritical: lipgloss.Color("1"), // Red
	models.StateUnknown:  lipgloss.Color("6"), // Cyan
}
