package manager

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestListIdentityFiles(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"notes.txt", "key.pem", "id_rsa.pub", "id_rsa", "config", "known_hosts"} {
		touch(t, dir, n)
	}
	if err := os.Mkdir(filepath.Join(dir, "id_dir"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got := ListIdentityFiles(dir)
	want := []string{"id_dir", "id_rsa", "key.pem"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestListIdentityFiles_Sorted(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"id_rsa", "b.pem", "id_ed25519", "a.pem"} {
		touch(t, dir, n)
	}
	got := ListIdentityFiles(dir)
	want := []string{"a.pem", "b.pem", "id_ed25519", "id_rsa"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestListIdentityFiles_MissingDir(t *testing.T) {
	got := ListIdentityFiles(filepath.Join(t.TempDir(), "missing"))
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSSHDirFor(t *testing.T) {
	if got := SSHDirFor("/home/u/.ssh/config"); got != "/home/u/.ssh" {
		t.Fatalf("expected /home/u/.ssh, got %s", got)
	}
}

func newTestKey(t *testing.T) (ed25519.PrivateKey, ssh.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("ssh public key: %v", err)
	}
	return priv, sshPub
}

func TestDescribeIdentityFile_PrefersPub(t *testing.T) {
	dir := t.TempDir()
	_, pub := newTestKey(t)
	if err := os.WriteFile(filepath.Join(dir, "id_ed25519.pub"), ssh.MarshalAuthorizedKey(pub), 0o600); err != nil {
		t.Fatalf("write pub: %v", err)
	}
	// The private half is garbage; it must not be read.
	touch(t, dir, "id_ed25519")

	info := DescribeIdentityFile(dir, "id_ed25519")
	if info.Err != "" {
		t.Fatalf("expected no error, got %s", info.Err)
	}
	if info.Type != ssh.KeyAlgoED25519 {
		t.Fatalf("expected type %s, got %s", ssh.KeyAlgoED25519, info.Type)
	}
	if info.Fingerprint != ssh.FingerprintSHA256(pub) {
		t.Fatalf("expected fingerprint %s, got %s", ssh.FingerprintSHA256(pub), info.Fingerprint)
	}
}

func TestDescribeIdentityFile_PrivateKey(t *testing.T) {
	dir := t.TempDir()
	priv, pub := newTestKey(t)
	block, err := ssh.MarshalPrivateKey(priv, "test")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "deploy.pem"), pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	info := DescribeIdentityFile(dir, "deploy.pem")
	if info.Encrypted || info.Err != "" {
		t.Fatalf("expected plain key, got %+v", info)
	}
	if info.Fingerprint != ssh.FingerprintSHA256(pub) {
		t.Fatalf("expected fingerprint %s, got %s", ssh.FingerprintSHA256(pub), info.Fingerprint)
	}
	if !strings.Contains(info.Summary(), "deploy.pem (ssh-ed25519 SHA256:") {
		t.Fatalf("unexpected summary %q", info.Summary())
	}
}

func TestDescribeIdentityFile_EncryptedKey(t *testing.T) {
	dir := t.TempDir()
	priv, pub := newTestKey(t)
	block, err := ssh.MarshalPrivateKeyWithPassphrase(priv, "test", []byte("hunter2"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "id_locked"), pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	info := DescribeIdentityFile(dir, "id_locked")
	if !info.Encrypted {
		t.Fatalf("expected encrypted key, got %+v", info)
	}
	if info.Fingerprint != ssh.FingerprintSHA256(pub) {
		t.Fatalf("expected embedded public key fingerprint, got %q", info.Fingerprint)
	}
	if !strings.HasSuffix(info.Summary(), ", encrypted)") {
		t.Fatalf("unexpected summary %q", info.Summary())
	}
}

func TestDescribeIdentityFile_Garbage(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "id_bad")
	info := DescribeIdentityFile(dir, "id_bad")
	if info.Err == "" {
		t.Fatalf("expected an error note for an unparsable key")
	}
	if info.Summary() != "id_bad" {
		t.Fatalf("expected bare name summary, got %q", info.Summary())
	}
}
