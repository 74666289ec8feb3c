package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
	labelStyle   = lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color("250"))
	focusedLabel = labelStyle.Foreground(lipgloss.Color("212")).Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))
	activeButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("235")).
				Background(lipgloss.Color("62")).
				Bold(true)

	selectedLoanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	finalizedLoanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true)
	struckStyle        = finalizedLoanStyle.Strikethrough(true)
)

// renderModalBox caja centrada con título y cuerpo, acotada al ancho de pantalla.
// Sin tamaño de pantalla todavía (screenWidth 0) usa el ancho máximo.
func renderModalBox(screenWidth int, title, body string) string {
	w := screenWidth - 12
	if screenWidth <= 0 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	if w > 72 {
		w = 72
	}

	header := lipgloss.NewStyle().Bold(true).Render(title)
	box := lipgloss.NewStyle().
		Width(w).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62"))
	return box.Render(header + "\n\n" + body)
}

// overlay centra box en la pantalla; sin tamaño conocido lo devuelve tal cual.
func overlay(width, height int, box string) string {
	if width == 0 || height == 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func button(label string, active bool) string {
	if active {
		return activeButtonStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

func keyHelp(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, pairs[i]+": "+pairs[i+1])
	}
	return helpStyle.Render(strings.Join(parts, "   "))
}
