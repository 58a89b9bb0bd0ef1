package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	headerStyle  lipgloss.Style
	titleStyle   lipgloss.Style
	pathStyle    lipgloss.Style
)

func init() {
	initStyles()
}

func initStyles() {
	if !IsTerminal() {
		successStyle = lipgloss.NewStyle()
		errorStyle = lipgloss.NewStyle()
		warningStyle = lipgloss.NewStyle()
		infoStyle = lipgloss.NewStyle()
		dimStyle = lipgloss.NewStyle()
		headerStyle = lipgloss.NewStyle()
		titleStyle = lipgloss.NewStyle()
		pathStyle = lipgloss.NewStyle()
		return
	}

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
}

func Success(text string) string { return successStyle.Render(text) }
func Error(text string) string   { return errorStyle.Render(text) }
func Warning(text string) string { return warningStyle.Render(text) }
func Info(text string) string    { return infoStyle.Render(text) }
func Dim(text string) string     { return dimStyle.Render(text) }
func Header(text string) string  { return headerStyle.Render(text) }
func Title(text string) string   { return titleStyle.Render(text) }
func Path(text string) string    { return pathStyle.Render(text) }

// CoverMark renders the marker shown next to titles with a cached cover.
func CoverMark(has bool) string {
	if has {
		return Success("✓")
	}
	return Dim("·")
}

// SuccessMsg writes a success message
func SuccessMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Success("✓")+" "+fmt.Sprintf(format, args...))
}

// ErrorMsg writes an error message
func ErrorMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Error("✗")+" "+fmt.Sprintf(format, args...))
}

// WarningMsg writes a warning message
func WarningMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Warning("⚠")+" "+fmt.Sprintf(format, args...))
}

// InfoMsg writes an info message
func InfoMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Info("ℹ")+" "+fmt.Sprintf(format, args...))
}
