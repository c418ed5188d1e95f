// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/terradesk/terradesk/internal/model"
)

func TestLogDetailPrettyPrintsJSON(t *testing.T) {
	m := &logsModel{width: 120, height: 40}
	m.openDetail(model.LogEntry{
		Timestamp: time.Now(),
		Level:     "info",
		Category:  "ingest",
		Message:   "tile upload finished",
		Detail:    json.RawMessage(`{"tiles":12,"zone":"harbor"}`),
	})

	if m.state != logsDetailState {
		t.Fatalf("opening an entry should switch to the detail state")
	}
	view := m.detail.View()
	if !strings.Contains(view, `"tiles": 12`) {
		t.Fatalf("detail should indent the JSON payload, got %q", view)
	}
	if !strings.Contains(view, "tile upload finished") {
		t.Fatalf("detail missing the message line: %q", view)
	}
}

func TestLogDetailKeepsRawInvalidPayload(t *testing.T) {
	m := &logsModel{width: 120, height: 40}
	m.openDetail(model.LogEntry{
		Timestamp: time.Now(),
		Level:     "error",
		Message:   "broken payload",
		Detail:    json.RawMessage(`{not json`),
	})

	if !strings.Contains(m.detail.View(), "{not json") {
		t.Fatalf("unparsable detail should be shown verbatim")
	}
}
