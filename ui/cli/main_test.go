// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.
package cli

import (
	"runtime/debug"
	"testing"
)

func TestResolveBuildVersion_MainVersion(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/terradesk/terradesk", Version: "v1.2.3"},
	}
	v, c, d := resolveBuildVersion(info)
	if v != "v1.2.3" {
		t.Fatalf("expected v1.2.3 got %s", v)
	}
	if c != gitCommit {
		t.Fatalf("expected commit to equal package gitCommit (default) got %s", c)
	}
	if d != buildDate {
		t.Fatalf("expected date to equal package buildDate (default) got %s", d)
	}
}

func TestResolveBuildVersion_VCSSettings(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/terradesk/terradesk", Version: "v2.0.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc1234"},
			{Key: "vcs.time", Value: "2026-08-31T12:00:00Z"},
		},
	}
	_, c, d := resolveBuildVersion(info)
	if c != "abc1234" {
		t.Fatalf("expected vcs revision got %s", c)
	}
	if d != "2026-08-31T12:00:00Z" {
		t.Fatalf("expected vcs time got %s", d)
	}
}

func TestResolveBuildVersion_GitCommitFallback(t *testing.T) {
	// preserve original
	orig := gitCommit
	defer func() { gitCommit = orig }()
	gitCommit = "deadbeef"
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/terradesk/terradesk", Version: "(devel)"},
	}
	v, _, _ := resolveBuildVersion(info)
	if v != "deadbeef" {
		t.Fatalf("expected gitCommit fallback got %s", v)
	}
}

func TestSetVersion(t *testing.T) {
	orig := version
	defer func() { version = orig }()

	SetVersion("v9.9.9")
	if version != "v9.9.9" {
		t.Fatalf("SetVersion did not apply, got %s", version)
	}
	SetVersion("")
	if version != "v9.9.9" {
		t.Fatalf("empty version must not clobber the current one")
	}
}

func TestRootCommandWiring(t *testing.T) {
	cmd := NewRootCmd()
	if cmd.Use != "terradesk" {
		t.Fatalf("unexpected root command use %q", cmd.Use)
	}
	for _, name := range []string{"login", "logout", "export", "version"} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("subcommand %q not registered", name)
		}
	}
	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Fatalf("--config flag not registered")
	}
}
