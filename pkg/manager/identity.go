package manager

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ListIdentityFiles returns the candidate private key entries directly inside
// dir, matched by name only: names starting with "id_" that are not ".pub" files, plus any "*.pem".
// The result is sorted. A missing or unreadable directory yields an empty
// list; the scan is advisory and never fails.
func ListIdentityFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if isIdentityFileName(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

func isIdentityFileName(name string) bool {
	if strings.HasPrefix(name, "id_") && !strings.HasSuffix(name, ".pub") {
		return true
	}
	return strings.HasSuffix(name, ".pem")
}

// SSHDirFor returns the directory scanned for identity files: the directory
// holding the config file.
func SSHDirFor(configPath string) string {
	return filepath.Dir(configPath)
}

// KeyInfo is a best-effort description of an identity file for display.
type KeyInfo struct {
	Name        string
	Type        string // e.g. "ssh-ed25519"
	Fingerprint string // SHA256:...
	Encrypted   bool
	Err         string
}

// Summary renders the key as "name (type SHA256:...)".
func (k KeyInfo) Summary() string {
	switch {
	case k.Type != "" && k.Encrypted:
		return k.Name + " (" + k.Type + " " + k.Fingerprint + ", encrypted)"
	case k.Type != "":
		return k.Name + " (" + k.Type + " " + k.Fingerprint + ")"
	case k.Encrypted:
		return k.Name + " (encrypted)"
	default:
		return k.Name
	}
}

// DescribeIdentityFile reads dir/name and reports the key type and
// fingerprint. The sibling ".pub" file is preferred because it never needs a
// passphrase. Unreadable or unrecognized files come back with Err set.
func DescribeIdentityFile(dir, name string) KeyInfo {
	info := KeyInfo{Name: name}
	path := filepath.Join(dir, name)

	if data, err := os.ReadFile(path + ".pub"); err == nil {
		if pub, _, _, _, perr := ssh.ParseAuthorizedKey(data); perr == nil {
			info.Type = pub.Type()
			info.Fingerprint = ssh.FingerprintSHA256(pub)
			return info
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		info.Err = err.Error()
		return info
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			info.Encrypted = true
			if missing.PublicKey != nil {
				info.Type = missing.PublicKey.Type()
				info.Fingerprint = ssh.FingerprintSHA256(missing.PublicKey)
			}
			return info
		}
		info.Err = err.Error()
		return info
	}
	pub := signer.PublicKey()
	info.Type = pub.Type()
	info.Fingerprint = ssh.FingerprintSHA256(pub)
	return info
}
