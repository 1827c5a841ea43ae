package manager

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func stubLookPath(t *testing.T, path string, err error) {
	t.Helper()
	orig := lookPath
	lookPath = func(string) (string, error) { return path, err }
	t.Cleanup(func() { lookPath = orig })
}

func TestResolveSSHPath(t *testing.T) {
	stubLookPath(t, "/usr/local/bin/ssh", nil)
	if got := ResolveSSHPath("/opt/ssh"); got != "/usr/local/bin/ssh" {
		t.Fatalf("expected PATH hit, got %s", got)
	}

	stubLookPath(t, "", errors.New("not found"))
	if got := ResolveSSHPath("/opt/ssh"); got != "/opt/ssh" {
		t.Fatalf("expected configured fallback, got %s", got)
	}
	if got := ResolveSSHPath(""); got != DefaultSSHFallbackPath {
		t.Fatalf("expected %s, got %s", DefaultSSHFallbackPath, got)
	}
}

func TestSSHArgv(t *testing.T) {
	if got, want := SSHArgv("web web.internal"), []string{"ssh", "web web.internal"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWriteConnecting(t *testing.T) {
	var b bytes.Buffer
	WriteConnecting(&b, "backup")
	if want := "\033[H\033[JConnecting to backup...\n"; b.String() != want {
		t.Fatalf("expected %q, got %q", want, b.String())
	}
}

func TestHandoff_EmptyName(t *testing.T) {
	if err := Handoff("  ", ""); err == nil {
		t.Fatalf("expected error for empty host name")
	}
}
