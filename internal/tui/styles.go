// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal user interface for the TerraDesk
// console. This file defines the shared lipgloss styles used across the
// different views, in a light and a dark variant.
package tui

import "github.com/charmbracelet/lipgloss"

// palette is one theme's worth of colors.
type palette struct {
	subtle    lipgloss.Color
	highlight lipgloss.Color
	special   lipgloss.Color
	errorC    lipgloss.Color
	success   lipgloss.Color
	text      lipgloss.Color
}

var darkPalette = palette{
	subtle:    lipgloss.Color("240"), // muted gray
	highlight: lipgloss.Color("81"),  // teal/cyan
	special:   lipgloss.Color("208"), // orange for special attention
	errorC:    lipgloss.Color("196"), // bright red
	success:   lipgloss.Color("40"),  // green
	text:      lipgloss.Color("231"),
}

var lightPalette = palette{
	subtle:    lipgloss.Color("245"),
	highlight: lipgloss.Color("25"), // deep blue reads better on light terminals
	special:   lipgloss.Color("166"),
	errorC:    lipgloss.Color("124"),
	success:   lipgloss.Color("28"),
	text:      lipgloss.Color("235"),
}

// themeMode is the active mode, "dark" or "light".
var themeMode = "dark"

// Styles rebuilt by applyTheme.
var (
	docStyle           lipgloss.Style
	helpStyle          lipgloss.Style
	errorStyle         lipgloss.Style
	successStyle       lipgloss.Style
	specialStyle       lipgloss.Style
	titleStyle         lipgloss.Style
	mainTitleStyle     lipgloss.Style
	itemStyle          lipgloss.Style
	selectedItemStyle  lipgloss.Style
	dialogBoxStyle     lipgloss.Style
	buttonStyle        lipgloss.Style
	activeButtonStyle  lipgloss.Style
	statusMessageStyle lipgloss.Style
)

func init() { applyTheme() }

// ThemeMode returns the active theme mode.
func ThemeMode() string { return themeMode }

// SetTheme switches between the light and dark palettes. Unknown modes fall
// back to dark.
func SetTheme(mode string) {
	if mode != "light" {
		mode = "dark"
	}
	themeMode = mode
	applyTheme()
}

// ToggleTheme flips the palette and returns the new mode.
func ToggleTheme() string {
	if themeMode == "dark" {
		SetTheme("light")
	} else {
		SetTheme("dark")
	}
	return themeMode
}

func currentPalette() palette {
	if themeMode == "light" {
		return lightPalette
	}
	return darkPalette
}

func applyTheme() {
	p := currentPalette()

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	helpStyle = lipgloss.NewStyle().Foreground(p.subtle)

	errorStyle = lipgloss.NewStyle().Foreground(p.errorC)

	successStyle = lipgloss.NewStyle().Foreground(p.success)

	specialStyle = lipgloss.NewStyle().Foreground(p.special)

	titleStyle = lipgloss.NewStyle().
		Foreground(p.highlight).
		Bold(true).
		Padding(1, 2)

	mainTitleStyle = lipgloss.NewStyle().
		Foreground(p.highlight).
		Bold(true).
		Padding(1, 3)

	itemStyle = lipgloss.NewStyle()
	selectedItemStyle = lipgloss.NewStyle().Foreground(p.highlight)

	dialogBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(p.highlight).
		Padding(1, 2).
		Width(60)

	buttonStyle = lipgloss.NewStyle().
		Foreground(p.text).
		Background(lipgloss.Color("237")).
		Padding(0, 3).
		MarginTop(1)

	activeButtonStyle = buttonStyle.
		Background(p.highlight).
		Foreground(p.text).
		Underline(true)

	statusMessageStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(p.text).
		Background(p.highlight)
}
