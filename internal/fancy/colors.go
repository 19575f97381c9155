package fancy

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette, by role. ANSI 256 codes so output degrades cleanly on basic terminals.
var (
	ColorTitle   = lipgloss.Color("33")
	ColorHeading = lipgloss.Color("255")
	ColorMuted   = lipgloss.Color("245")
	ColorBranch  = lipgloss.Color("238")
	ColorEnv     = lipgloss.Color("221")
	ColorPath    = lipgloss.Color("51")
	ColorOK      = lipgloss.Color("78")
	ColorCommand = lipgloss.Color("214")
	ColorFailure = lipgloss.Color("160")
)
