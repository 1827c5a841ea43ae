package manager

import "strings"

// HostRecord is a single Host block parsed from (or appended to) an SSH client
// config file.
//
// Name is the text following "Host" verbatim; a multi-alias line such as
// "Host web web.internal" produces one record named "web web.internal".
type HostRecord struct {
	Name       string
	Attributes Attributes
}

// Attributes is an insertion-ordered key/value set. Keys are canonical
// (see NormalizeKey); setting an existing key replaces the value in place.
type Attributes struct {
	keys   []string
	values map[string]string
}

// Attr is one key/value pair of a HostRecord.
type Attr struct {
	Key   string
	Value string
}

// NewAttributes builds an attribute set from pairs, in order.
func NewAttributes(pairs ...Attr) Attributes {
	var a Attributes
	for _, p := range pairs {
		a.Set(p.Key, p.Value)
	}
	return a
}

// Set stores value under key, keeping the first-seen position of key.
func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string, 8)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value for key and whether it was present.
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (a Attributes) Keys() []string {
	return append([]string(nil), a.keys...)
}

// Len returns the number of attributes.
func (a Attributes) Len() int { return len(a.keys) }

// Pairs returns the attributes in insertion order.
func (a Attributes) Pairs() []Attr {
	out := make([]Attr, 0, len(a.keys))
	for _, k := range a.keys {
		out = append(out, Attr{Key: k, Value: a.values[k]})
	}
	return out
}

// Clone returns a deep copy so callers cannot mutate store-owned records.
func (a Attributes) Clone() Attributes {
	var out Attributes
	for _, k := range a.keys {
		out.Set(k, a.values[k])
	}
	return out
}

func (h HostRecord) clone() HostRecord {
	return HostRecord{Name: h.Name, Attributes: h.Attributes.Clone()}
}

// HostName returns the HostName attribute or "".
func (h HostRecord) HostName() string {
	v, _ := h.Attributes.Get("HostName")
	return v
}

// User returns the User attribute or "".
func (h HostRecord) User() string {
	v, _ := h.Attributes.Get("User")
	return v
}

// Target renders "user@hostname" for list display, with N/A for missing parts.
func (h HostRecord) Target() string {
	user := strings.TrimSpace(h.User())
	if user == "" {
		user = "N/A"
	}
	hostName := strings.TrimSpace(h.HostName())
	if hostName == "" {
		hostName = "N/A"
	}
	return user + "@" + hostName
}
