// SPDX-License-Identifier: MPL-2.0

package python

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

// withStubs replaces the lookPath and queryVersion seams for the duration of
// a test.
func withStubs(t *testing.T, onPath map[string]bool, versions map[string]string) {
	t.Helper()
	origLook, origQuery := lookPath, queryVersion
	t.Cleanup(func() {
		lookPath, queryVersion = origLook, origQuery
	})

	lookPath = func(name string) (string, error) {
		if onPath[name] {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
	queryVersion = func(_ context.Context, path string, _ ...string) (string, error) {
		if v, ok := versions[path]; ok {
			return v, nil
		}
		return "", errors.New("no version")
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{name: "plain", out: "Python 3.11.4\n", want: "3.11.4"},
		{name: "no patch", out: "Python 3.10\n", want: "3.10"},
		{name: "windows store banner", out: "Python 3.12.1 (tags/v3.12.1)\n", want: "3.12.1"},
		{name: "garbage", out: "command not found", wantErr: true},
		{name: "empty", out: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.out)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseVersion(%q) should fail", tt.out)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) error: %v", tt.out, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %q, want %q", tt.out, got, tt.want)
			}
		})
	}
}

func TestInterpreter_Satisfies(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		requirement string
		wantErr     error
	}{
		{name: "exact match", version: "3.10", requirement: "3.10"},
		{name: "newer minor", version: "3.12.1", requirement: "3.10"},
		{name: "newer patch", version: "3.10.14", requirement: "3.10"},
		{name: "too old", version: "3.9.7", requirement: "3.10", wantErr: ErrVersionTooOld},
		{name: "major too old", version: "2.7.18", requirement: "3.10", wantErr: ErrVersionTooOld},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := Interpreter{Path: "python3", Version: tt.version}
			err := i.Satisfies(tt.requirement)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Satisfies() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Satisfies() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInterpreter_String(t *testing.T) {
	if got := (Interpreter{Path: "python3"}).String(); got != "python3" {
		t.Errorf("String() = %q", got)
	}
	if got := (Interpreter{Path: "py", Args: []string{"-3"}}).String(); got != "py -3" {
		t.Errorf("String() = %q", got)
	}
}

func TestFind_PrefersPython3(t *testing.T) {
	withStubs(t,
		map[string]bool{"python3": true, "python": true},
		map[string]string{"python3": "3.11.4", "python": "2.7.18"},
	)

	interp, err := Find(context.Background(), "")
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if interp.Path != "python3" || interp.Version != "3.11.4" {
		t.Errorf("Find() = %+v, want python3 3.11.4", interp)
	}
}

func TestFind_FallsBackWhenVersionQueryFails(t *testing.T) {
	// python3 is on PATH but broken; python works.
	withStubs(t,
		map[string]bool{"python3": true, "python": true},
		map[string]string{"python": "3.10.2"},
	)

	interp, err := Find(context.Background(), "")
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if interp.Path != "python" {
		t.Errorf("Find() = %+v, want fallback to python", interp)
	}
}

func TestFind_NotFound(t *testing.T) {
	withStubs(t, map[string]bool{}, map[string]string{})

	_, err := Find(context.Background(), "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Find() = %v, want ErrNotFound", err)
	}
}

func TestFind_ExplicitPath(t *testing.T) {
	withStubs(t, map[string]bool{}, map[string]string{"/opt/py/bin/python": "3.12.0"})

	interp, err := Find(context.Background(), "/opt/py/bin/python")
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if interp.Path != "/opt/py/bin/python" || interp.Version != "3.12.0" {
		t.Errorf("Find() = %+v", interp)
	}
}

func TestFind_ExplicitPathBroken(t *testing.T) {
	withStubs(t, map[string]bool{}, map[string]string{})

	if _, err := Find(context.Background(), "/opt/py/bin/python"); err == nil {
		t.Error("Find() with a broken explicit path should fail, not fall back")
	}
}
