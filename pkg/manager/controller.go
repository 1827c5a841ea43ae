package manager

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField is wrapped by FieldError when a required add-form field
	// is empty.
	ErrMissingField = errors.New("required field is empty")

	// ErrNoSelection is returned by Choose when the filtered view is empty.
	ErrNoSelection = errors.New("no host selected")

	// ErrSessionEnded is returned by every transition after Choose succeeded.
	ErrSessionEnded = errors.New("session already ended")
)

// FieldError names the add-form field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }

// AddHostForm is the raw input of the add-host form.
type AddHostForm struct {
	Alias        string
	HostName     string
	User         string
	IdentityFile string
	ProxyJump    string
	ForwardAgent string
}

// Validate trims every field and requires Alias, HostName and User.
func (f AddHostForm) Validate() (AddHostParams, error) {
	p := AddHostParams{
		Name:         strings.TrimSpace(f.Alias),
		HostName:     strings.TrimSpace(f.HostName),
		User:         strings.TrimSpace(f.User),
		IdentityFile: strings.TrimSpace(f.IdentityFile),
		ProxyJump:    strings.TrimSpace(f.ProxyJump),
		ForwardAgent: strings.TrimSpace(f.ForwardAgent),
	}
	switch {
	case p.Name == "":
		return AddHostParams{}, &FieldError{Field: "alias", Err: ErrMissingField}
	case p.HostName == "":
		return AddHostParams{}, &FieldError{Field: "hostname", Err: ErrMissingField}
	case p.User == "":
		return AddHostParams{}, &FieldError{Field: "user", Err: ErrMissingField}
	}
	return p, nil
}

// View is the snapshot handed to the rendering layer.
type View struct {
	Query     string
	Records   []HostRecord
	Selection int // index into Records, -1 when empty
	Total     int // size of the unfiltered list
}

// Selected returns the highlighted record of the snapshot.
func (v View) Selected() (HostRecord, bool) {
	if v.Selection < 0 || v.Selection >= len(v.Records) {
		return HostRecord{}, false
	}
	return v.Records[v.Selection], true
}

// Controller owns the interactive session state: the authoritative host
// list, the current query, the filtered view derived from it, and the
// selection. Choosing a host is terminal.
type Controller struct {
	store *ConfigStore

	all       []HostRecord
	query     string
	filtered  []HostRecord
	selection int

	ended  bool
	chosen string
}

// NewController loads the store and starts with an empty query.
func NewController(store *ConfigStore) (*Controller, error) {
	if store == nil {
		return nil, errors.New("nil config store")
	}
	c := &Controller{store: store, selection: -1}
	hosts, err := store.Load()
	if err != nil {
		return nil, err
	}
	c.all = hosts
	c.refilter()
	return c, nil
}

// Store returns the backing ConfigStore.
func (c *Controller) Store() *ConfigStore { return c.store }

func (c *Controller) refilter() {
	c.filtered = FilterHosts(c.all, c.query)
	if len(c.filtered) > 0 {
		c.selection = 0
	} else {
		c.selection = -1
	}
}

// SetQuery replaces the search text and resets the selection to the first
// match.
func (c *Controller) SetQuery(q string) error {
	if c.ended {
		return ErrSessionEnded
	}
	c.query = q
	c.refilter()
	return nil
}

// Query returns the current search text.
func (c *Controller) Query() string { return c.query }

// Highlight selects index i of the filtered view, clamped to its bounds.
func (c *Controller) Highlight(i int) error {
	if c.ended {
		return ErrSessionEnded
	}
	if len(c.filtered) == 0 {
		c.selection = -1
		return nil
	}
	c.selection = clampInt(i, 0, len(c.filtered)-1)
	return nil
}

// Move shifts the selection by delta.
func (c *Controller) Move(delta int) error {
	if c.selection < 0 {
		return c.Highlight(0)
	}
	return c.Highlight(c.selection + delta)
}

// Snapshot returns the current filtered view and selection.
func (c *Controller) Snapshot() View {
	return View{
		Query:     c.query,
		Records:   append([]HostRecord(nil), c.filtered...),
		Selection: c.selection,
		Total:     len(c.all),
	}
}

// Details returns the highlighted record. It never mutates state.
func (c *Controller) Details() (HostRecord, bool) {
	if c.selection < 0 || c.selection >= len(c.filtered) {
		return HostRecord{}, false
	}
	return c.filtered[c.selection].clone(), true
}

// SubmitAdd validates the form, appends the host to the config file and
// reloads. On success the query is cleared and the first host is selected.
// Validation or write failures leave the session state unchanged.
func (c *Controller) SubmitAdd(f AddHostForm) (HostRecord, error) {
	if c.ended {
		return HostRecord{}, ErrSessionEnded
	}
	p, err := f.Validate()
	if err != nil {
		return HostRecord{}, err
	}
	rec, err := c.store.Add(p)
	if err != nil {
		return HostRecord{}, err
	}
	hosts, err := c.store.Load()
	if err != nil {
		// The block is on disk and in the store; show what the store holds.
		hosts = c.store.Hosts()
		err = fmt.Errorf("reload after add: %w", err)
	}
	c.all = hosts
	c.query = ""
	c.refilter()
	return rec, err
}

// Reload re-parses the config file keeping the current query. It is used
// when the file changes on disk during the session. The highlighted host
// stays highlighted if it still matches; otherwise the first match is.
func (c *Controller) Reload() error {
	if c.ended {
		return ErrSessionEnded
	}
	hosts, err := c.store.Load()
	if err != nil {
		return err
	}
	prev, hadPrev := c.Details()
	c.all = hosts
	c.refilter()
	if hadPrev {
		for i := range c.filtered {
			if c.filtered[i].Name == prev.Name {
				c.selection = i
				break
			}
		}
	}
	return nil
}

// Choose ends the session with the highlighted host and returns its name.
func (c *Controller) Choose() (string, error) {
	if c.ended {
		return "", ErrSessionEnded
	}
	rec, ok := c.Details()
	if !ok {
		return "", ErrNoSelection
	}
	c.ended = true
	c.chosen = rec.Name
	return rec.Name, nil
}

// Ended reports whether Choose has completed the session.
func (c *Controller) Ended() bool { return c.ended }

// Result returns the chosen host name, if any.
func (c *Controller) Result() (string, bool) {
	return c.chosen, c.ended
}

// IdentityFiles lists candidate keys next to the config file.
func (c *Controller) IdentityFiles() []string {
	return ListIdentityFiles(SSHDirFor(c.store.Path()))
}

// DescribeIdentityFile describes one of IdentityFiles.
func (c *Controller) DescribeIdentityFile(name string) KeyInfo {
	return DescribeIdentityFile(SSHDirFor(c.store.Path()), name)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
