// SPDX-License-Identifier: MPL-2.0

package python

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"bgsetup-cli/internal/config"
)

func TestDetectManager_Auto(t *testing.T) {
	tests := []struct {
		name   string
		onPath map[string]bool
		want   config.Manager
		wantEr error
	}{
		{
			name:   "pyenv wins over brew",
			onPath: map[string]bool{"pyenv": true, "brew": true},
			want:   config.ManagerPyenv,
		},
		{
			name:   "brew when no pyenv",
			onPath: map[string]bool{"brew": true, "apt-get": true},
			want:   config.ManagerBrew,
		},
		{
			name:   "apt as last resort",
			onPath: map[string]bool{"apt-get": true},
			want:   config.ManagerApt,
		},
		{
			name:   "nothing found",
			onPath: map[string]bool{},
			wantEr: ErrNoManager,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withStubs(t, tt.onPath, nil)

			got, err := DetectManager(config.ManagerAuto)
			if tt.wantEr != nil {
				if !errors.Is(err, tt.wantEr) {
					t.Errorf("DetectManager() = %v, want %v", err, tt.wantEr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectManager() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectManager() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectManager_PinnedMissing(t *testing.T) {
	withStubs(t, map[string]bool{"brew": true}, nil)

	if _, err := DetectManager(config.ManagerPyenv); err == nil {
		t.Error("DetectManager() should fail when the pinned manager is absent")
	}
}

func TestDetectManager_Pinned(t *testing.T) {
	withStubs(t, map[string]bool{"winget": true}, nil)

	got, err := DetectManager(config.ManagerWinget)
	if err != nil {
		t.Fatalf("DetectManager() error: %v", err)
	}
	if got != config.ManagerWinget {
		t.Errorf("DetectManager() = %q", got)
	}
}

func TestInstallArgs(t *testing.T) {
	tests := []struct {
		name        string
		manager     config.Manager
		requirement string
		want        string
	}{
		{name: "pyenv", manager: config.ManagerPyenv, requirement: "3.10", want: "pyenv install -s 3.10"},
		{name: "pyenv trims patch", manager: config.ManagerPyenv, requirement: "3.11.4", want: "pyenv install -s 3.11"},
		{name: "brew", manager: config.ManagerBrew, requirement: "3.12", want: "brew install python@3.12"},
		{name: "apt", manager: config.ManagerApt, requirement: "3.10", want: "apt-get install -y python3.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv, err := InstallArgs(tt.manager, tt.requirement)
			if err != nil {
				t.Fatalf("InstallArgs() error: %v", err)
			}
			if got := strings.Join(argv, " "); got != tt.want {
				t.Errorf("InstallArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstallArgs_Winget(t *testing.T) {
	argv, err := InstallArgs(config.ManagerWinget, "3.11")
	if err != nil {
		t.Fatalf("InstallArgs() error: %v", err)
	}
	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, "Python.Python.3.11") {
		t.Errorf("InstallArgs() = %q, missing winget package id", joined)
	}
	if !strings.Contains(joined, "--silent") {
		t.Errorf("InstallArgs() = %q, expected unattended install", joined)
	}
}

func TestInstallArgs_Unsupported(t *testing.T) {
	if _, err := InstallArgs(config.Manager("nix"), "3.10"); err == nil {
		t.Error("InstallArgs() should reject unknown managers")
	}
}

func TestEnsure_TooOldWithoutManagerKeepsVersionDetail(t *testing.T) {
	// An interpreter exists but is too old, and no version manager is on
	// PATH. The error must still carry what was found and what is required.
	withStubs(t,
		map[string]bool{"python3": true},
		map[string]string{"python3": "3.8.2"},
	)

	cfg := config.PythonConfig{Requirement: "3.10", Manager: config.ManagerAuto}
	_, err := Ensure(context.Background(), cfg, io.Discard, io.Discard)
	if err == nil {
		t.Fatal("Ensure() should fail without a version manager")
	}

	var verr *VersionError
	if !errors.As(err, &verr) {
		t.Fatalf("Ensure() = %v, want a *VersionError in the chain", err)
	}
	if verr.Found != "3.8.2" || verr.Required != "3.10" {
		t.Errorf("VersionError = %+v, want Found 3.8.2 Required 3.10", verr)
	}
	if !strings.Contains(err.Error(), "no supported python version manager") {
		t.Errorf("Ensure() error %q should mention the missing manager", err)
	}
}

func TestMajorMinor(t *testing.T) {
	tests := []struct{ in, want string }{
		{"3.10", "3.10"},
		{"3.11.4", "3.11"},
		{"v3.12", "3.12"},
		{"3", "3"},
	}
	for _, tt := range tests {
		if got := majorMinor(tt.in); got != tt.want {
			t.Errorf("majorMinor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
