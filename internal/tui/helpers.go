// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/i18n"
)

// A message to signal that we should go back to the main menu.
type backToMenuMsg struct{}

// statusMsg carries a transient status line shown at the bottom of a view.
type statusMsg struct {
	text  string
	isErr bool
}

// statusOK builds a success status command.
func statusOK(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

// statusErr builds an error status command.
func statusErr(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: errorText(err), isErr: true} }
}

// errorText maps an error onto a user-facing line. API errors keep their
// server message; the taxonomy only adds context where the server is mute.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case api.IsConflict(err):
		return fmt.Sprintf("%s: %v", i18n.T("common.error"), err)
	case api.IsValidation(err):
		var apiErr *api.Error
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			parts := make([]string, 0, len(apiErr.Fields))
			for field, msg := range apiErr.Fields {
				parts = append(parts, field+": "+msg)
			}
			sort.Strings(parts)
			return strings.Join(parts, "; ")
		}
	}
	return fmt.Sprintf("%s: %v", i18n.T("common.error"), err)
}

// formatTime renders a timestamp for table cells, local time, seconds
// precision.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// formatTimePtr renders an optional timestamp.
func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

// yesNo renders a boolean with the translated yes/no words.
func yesNo(v bool) string {
	if v {
		return i18n.T("common.yes")
	}
	return i18n.T("common.no")
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
