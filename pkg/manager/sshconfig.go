package manager

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// canonicalKeys maps a lower-cased ssh_config keyword to the casing written
// back to disk. Keys not listed here fall back to upperFirst.
var canonicalKeys = map[string]string{
	"hostname":     "HostName",
	"identityfile": "IdentityFile",
	"proxyjump":    "ProxyJump",
	"forwardagent": "ForwardAgent",
}

// NormalizeKey returns the canonical spelling of an ssh_config keyword.
//
// Only the keys in the normalization table are fully canonicalized. Everything
// else gets its first character upper-cased and the rest left alone, so
// "stricthostkeychecking" becomes "Stricthostkeychecking" while
// "StrictHostKeyChecking" is kept as typed.
func NormalizeKey(key string) string {
	if k, ok := canonicalKeys[strings.ToLower(key)]; ok {
		return k
	}
	return upperFirst(key)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

// DefaultSSHConfigPath returns ~/.ssh/config.
func DefaultSSHConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ssh", "config"), nil
}

// ConfigStore owns one SSH client config file and the host records most
// recently parsed from it. It is not safe for concurrent use.
type ConfigStore struct {
	path  string
	hosts []HostRecord
}

// NewConfigStore returns a store for path. An empty path selects
// ~/.ssh/config; "~" and environment variables are expanded.
func NewConfigStore(path string) (*ConfigStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		p, err := DefaultSSHConfigPath()
		if err != nil {
			return nil, fmt.Errorf("resolve ssh config path: %w", err)
		}
		path = p
	}
	path = expandPath(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &ConfigStore{path: path}, nil
}

// Path returns the resolved config file path.
func (s *ConfigStore) Path() string { return s.path }

// Hosts returns a copy of the in-memory host list.
func (s *ConfigStore) Hosts() []HostRecord {
	out := make([]HostRecord, len(s.hosts))
	for i := range s.hosts {
		out[i] = s.hosts[i].clone()
	}
	return out
}

// Load re-reads the config file and replaces the in-memory list.
//
// A missing file is the fresh-install case and yields an empty list with a
// nil error. Other I/O failures are returned and leave the previous list in
// place.
func (s *ConfigStore) Load() ([]HostRecord, error) {
	hosts, err := parseSSHConfigFile(s.path)
	if err != nil {
		return nil, err
	}
	s.hosts = hosts
	return s.Hosts(), nil
}

// AddHostParams describes a new Host block. Name, HostName and User are
// required by the form layer; the store itself does not validate them.
type AddHostParams struct {
	Name         string
	HostName     string
	User         string
	IdentityFile string
	ProxyJump    string
	ForwardAgent string
}

func (p AddHostParams) record() HostRecord {
	rec := HostRecord{Name: p.Name}
	rec.Attributes.Set("HostName", p.HostName)
	rec.Attributes.Set("User", p.User)
	if p.IdentityFile != "" {
		rec.Attributes.Set("IdentityFile", p.IdentityFile)
	}
	if p.ProxyJump != "" {
		rec.Attributes.Set("ProxyJump", p.ProxyJump)
	}
	if p.ForwardAgent != "" {
		rec.Attributes.Set("ForwardAgent", p.ForwardAgent)
	}
	return rec
}

// Add appends a new Host block to the end of the config file and, once the
// write succeeded, to the in-memory list. Existing content is never
// rewritten. On a write error the in-memory list is left untouched.
func (s *ConfigStore) Add(p AddHostParams) (HostRecord, error) {
	rec := p.record()
	if err := appendHostBlock(s.path, rec); err != nil {
		return HostRecord{}, err
	}
	s.hosts = append(s.hosts, rec)
	return rec.clone(), nil
}

// RenderHostBlock serializes a record as it is written to disk:
//
//	Host <name>
//	    <Key> <Value>
//
// Attributes are emitted in their insertion order. No trailing newline.
func RenderHostBlock(h HostRecord) string {
	return strings.Join(renderHostBlockLines(h), "\n")
}

const hostBlockIndent = "    "

func renderHostBlockLines(h HostRecord) []string {
	out := make([]string, 0, 1+h.Attributes.Len())
	out = append(out, "Host "+h.Name)
	for _, a := range h.Attributes.Pairs() {
		out = append(out, hostBlockIndent+a.Key+" "+a.Value)
	}
	return out
}

func appendHostBlock(path string, h HostRecord) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("append host: empty config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("append host %s: create config dir: %w", h.Name, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("append host %s: %w", h.Name, err)
	}
	payload := "\n" + RenderHostBlock(h) + "\n"
	if _, err := f.WriteString(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("append host %s: %w", h.Name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("append host %s: %w", h.Name, err)
	}
	return nil
}

// --------------------
// Parsing internals
// --------------------

func parseSSHConfigFile(path string) ([]HostRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []HostRecord{}, nil
		}
		return nil, fmt.Errorf("open ssh config %s: %w", path, err)
	}
	defer f.Close()

	out := make([]HostRecord, 0, 32)
	var current *HostRecord

	flush := func() {
		if current != nil {
			out = append(out, *current)
			current = nil
		}
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, val := splitKeyVal(line)
		if strings.EqualFold(key, "host") {
			flush()
			if val == "" {
				// A bare "Host" opens no block; its keys are dropped.
				continue
			}
			current = &HostRecord{Name: val}
			continue
		}
		if current == nil {
			// Global settings before the first Host block are not tracked.
			continue
		}
		current.Attributes.Set(NormalizeKey(key), val)
	}
	flush()

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan ssh config %s: %w", path, err)
	}
	return out, nil
}

// splitKeyVal splits a trimmed, non-empty line on its first run of
// whitespace. The value keeps its internal whitespace and is trimmed at the
// ends; a keyword with no value yields "".
func splitKeyVal(line string) (key, val string) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}
