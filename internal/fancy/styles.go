// Package fancy provides pretty printing utilities and styling for CLI output
package fancy

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

var (
	RootStyle = lipgloss.NewStyle().
			Foreground(ColorTitle).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorHeading).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorBranch)

	EnvStyle = lipgloss.NewStyle().
			Foreground(ColorEnv)

	PathStyle = lipgloss.NewStyle().
			Foreground(ColorPath)

	AppStyle = lipgloss.NewStyle().
			Foreground(ColorOK)

	CommandStyle = lipgloss.NewStyle().
			Foreground(ColorCommand)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorFailure)
)

// Tree returns a new tree with common styling applied
func Tree() *tree.Tree {
	t := tree.New()
	t.EnumeratorStyle(BranchStyle)
	t.Enumerator(tree.RoundedEnumerator)
	return t
}

// BranchNode creates a styled section header node with a dimmed detail next to it
func BranchNode(title string, detail string) *tree.Tree {
	if detail == "" {
		return tree.New().Root(HeaderStyle.Render(title))
	}
	return tree.New().Root(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			HeaderStyle.Render(title),
			" ",
			InfoStyle.Render(detail),
		),
	)
}

// EnvText styles an environment variable assignment
func EnvText(text string) string {
	return EnvStyle.Render(text)
}

// PathText styles file paths
func PathText(text string) string {
	return PathStyle.Render(text)
}

// AppText styles an app type
func AppText(text string) string {
	return AppStyle.Render(text)
}

// CommandText styles a command line
func CommandText(text string) string {
	return CommandStyle.Render(text)
}

// ValidText styles valid status text (green)
func ValidText(text string) string {
	return AppStyle.Render(text)
}

// ErrorText styles error text (red)
func ErrorText(text string) string {
	return ErrorStyle.Render(text)
}

// TruncateString truncates a string if it exceeds maxLength
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
