// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"sort"
	"testing"
)

func TestLanguageCodesAreSorted(t *testing.T) {
	m := buildLanguageModel()
	if len(m.codes) < 2 {
		t.Fatalf("expected at least two locales, got %v", m.codes)
	}
	if !sort.StringsAreSorted(m.codes) {
		t.Fatalf("language codes not sorted: %v", m.codes)
	}
	for _, code := range m.codes {
		if m.labels[code] == "" {
			t.Fatalf("locale %q has no label", code)
		}
	}
}
