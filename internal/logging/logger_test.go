// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"testing"

	clog "github.com/charmbracelet/log"
)

func TestSetDebugTogglesLevel(t *testing.T) {
	defer SetDebug(false)

	SetDebug(true)
	if L.GetLevel() != clog.DebugLevel {
		t.Fatalf("debug mode should lower the level to debug, got %v", L.GetLevel())
	}
	SetDebug(false)
	if L.GetLevel() != clog.InfoLevel {
		t.Fatalf("disabling debug should restore info, got %v", L.GetLevel())
	}
}
