package manager

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// UIOptions configures the interactive host picker.
type UIOptions struct {
	Theme Theme

	// MaxResults caps the visible rows; 0 fits the window.
	MaxResults int

	// ShowFingerprints describes available keys in the add form.
	ShowFingerprints bool

	// Watch reloads the host list when the config file changes.
	Watch bool

	// DebugLog, when set, receives log.Printf tracing via tea.LogToFile.
	DebugLog string
}

// RunTUI runs the picker until the user quits or chooses a host. It returns
// the chosen host name, or "" when the user quit.
func RunTUI(ctrl *Controller, opts UIOptions) (string, error) {
	if ctrl == nil {
		return "", fmt.Errorf("nil controller")
	}

	if opts.DebugLog != "" {
		f, err := tea.LogToFile(opts.DebugLog, "ssh-manager")
		if err != nil {
			return "", fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
	} else {
		// stdout belongs to the TUI.
		log.SetOutput(io.Discard)
	}
	log.Printf("loaded %d hosts from %s", ctrl.Snapshot().Total, ctrl.Store().Path())

	m := newModel(ctrl, opts)
	if opts.Watch {
		w, err := NewConfigWatcher(ctrl.Store().Path())
		if err != nil {
			log.Printf("watch %s: %v", ctrl.Store().Path(), err)
		} else {
			defer w.Close()
			m.watcher = w
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return "", err
	}
	name, ok := ctrl.Result()
	if !ok {
		return "", nil
	}
	return name, nil
}

type uiMode int

const (
	modeList uiMode = iota
	modeAdd
	modeDetails
)

// Add form field order.
const (
	fieldAlias = iota
	fieldHostName
	fieldUser
	fieldIdentityFile
	fieldProxyJump
	fieldForwardAgent
	fieldCount
)

var formFieldByName = map[string]int{
	"alias":    fieldAlias,
	"hostname": fieldHostName,
	"user":     fieldUser,
}

type model struct {
	ctrl    *Controller
	opts    UIOptions
	theme   Theme
	watcher *ConfigWatcher

	keys     KeyMap
	formKeys FormKeyMap
	help     help.Model

	mode      uiMode
	input     textinput.Model
	searching bool

	form          []textinput.Model
	formFocus     int
	formErr       string
	availableKeys []string

	details viewport.Model

	width, height int

	status      string
	statusUntil time.Time

	quitting bool
}

func newModel(ctrl *Controller, opts UIOptions) model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search..."
	ti.CharLimit = 256
	ti.Cursor.Style = ti.Cursor.Style.Bold(true)
	ti.PromptStyle = ti.PromptStyle.Bold(true)

	theme := opts.Theme
	if theme.Name == "" {
		theme = NoTheme()
	}

	h := help.New()
	if theme.Enabled {
		h.Styles.ShortKey = theme.Help
		h.Styles.FullKey = theme.Help
	}

	return model{
		ctrl:     ctrl,
		opts:     opts,
		theme:    theme,
		keys:     DefaultKeyMap(),
		formKeys: DefaultFormKeyMap(),
		help:     h,
		input:    ti,
		form:     newAddForm(),
		details:  viewport.New(80, 20),
	}
}

func newAddForm() []textinput.Model {
	mk := func(prompt, placeholder string, limit int) textinput.Model {
		in := textinput.New()
		in.Prompt = prompt
		in.Placeholder = placeholder
		in.CharLimit = limit
		return in
	}
	fields := make([]textinput.Model, fieldCount)
	fields[fieldAlias] = mk("Alias:         ", "required, e.g. web1", 256)
	fields[fieldHostName] = mk("HostName:      ", "required, e.g. 10.0.0.1", 256)
	fields[fieldUser] = mk("User:          ", "required", 128)
	fields[fieldIdentityFile] = mk("IdentityFile:  ", "optional, e.g. ~/.ssh/id_ed25519", 512)
	fields[fieldProxyJump] = mk("ProxyJump:     ", "optional, bastion or jump host", 256)
	fields[fieldForwardAgent] = mk("ForwardAgent:  ", "optional, yes/no", 8)
	return fields
}

func (m model) Init() tea.Cmd {
	if m.watcher != nil {
		return m.watcher.Next()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.details.Width = maxInt(20, msg.Width-4)
		m.details.Height = maxInt(5, msg.Height-6)
		return m, nil

	case configChangedMsg:
		if err := m.ctrl.Reload(); err != nil {
			if !errors.Is(err, ErrSessionEnded) {
				m.setStatus(fmt.Sprintf("reload failed: %v", err), 4000)
			}
		} else {
			log.Printf("reloaded %s: %d hosts", msg.path, m.ctrl.Snapshot().Total)
			m.setStatus("config changed on disk; reloaded", 2000)
		}
		return m, m.rearmWatch()

	case watchErrMsg:
		log.Printf("watch error: %v", msg.err)
		return m, m.rearmWatch()

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateForm(msg)
		case modeDetails:
			return m.updateDetails(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m model) rearmWatch() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Next()
}

func (m model) updateList(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch {
		case k.Type == tea.KeyCtrlC:
			return m.quit()
		case key.Matches(k, m.keys.Back):
			m.searching = false
			m.input.Blur()
			return m, nil
		case key.Matches(k, m.keys.Connect):
			return m.choose()
		case key.Matches(k, m.keys.Up):
			_ = m.ctrl.Move(-1)
			return m, nil
		case key.Matches(k, m.keys.Down):
			_ = m.ctrl.Move(1)
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(k)
		m.recomputeFilter()
		return m, cmd
	}

	switch {
	case key.Matches(k, m.keys.Quit):
		return m.quit()
	case key.Matches(k, m.keys.Search):
		m.searching = true
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(k, m.keys.Add):
		return m.openAddForm()
	case key.Matches(k, m.keys.Details):
		m.openDetails()
		return m, nil
	case key.Matches(k, m.keys.Connect):
		return m.choose()
	case key.Matches(k, m.keys.Up):
		_ = m.ctrl.Move(-1)
	case key.Matches(k, m.keys.Down):
		_ = m.ctrl.Move(1)
	case key.Matches(k, m.keys.Back):
		if m.input.Value() != "" {
			m.input.SetValue("")
			m.recomputeFilter()
		}
	case key.Matches(k, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// recomputeFilter pushes the search box text into the controller when it
// differs from the current query.
func (m *model) recomputeFilter() {
	q := m.input.Value()
	if q == m.ctrl.Query() {
		return
	}
	_ = m.ctrl.SetQuery(q)
}

func (m model) choose() (tea.Model, tea.Cmd) {
	name, err := m.ctrl.Choose()
	if err != nil {
		m.setStatus(err.Error(), 2000)
		return m, nil
	}
	log.Printf("chose host %s", name)
	return m.quit()
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// --- Add form ---

func (m model) openAddForm() (tea.Model, tea.Cmd) {
	m.mode = modeAdd
	m.formErr = ""
	m.form = newAddForm()
	m.formFocus = fieldAlias

	files := m.ctrl.IdentityFiles()
	m.availableKeys = make([]string, 0, len(files))
	for _, f := range files {
		if m.opts.ShowFingerprints {
			m.availableKeys = append(m.availableKeys, m.ctrl.DescribeIdentityFile(f).Summary())
		} else {
			m.availableKeys = append(m.availableKeys, f)
		}
	}
	cmd := m.form[m.formFocus].Focus()
	return m, cmd
}

func (m model) formValues() AddHostForm {
	return AddHostForm{
		Alias:        m.form[fieldAlias].Value(),
		HostName:     m.form[fieldHostName].Value(),
		User:         m.form[fieldUser].Value(),
		IdentityFile: m.form[fieldIdentityFile].Value(),
		ProxyJump:    m.form[fieldProxyJump].Value(),
		ForwardAgent: m.form[fieldForwardAgent].Value(),
	}
}

func (m *model) focusField(i int) tea.Cmd {
	m.form[m.formFocus].Blur()
	m.formFocus = (i + fieldCount) % fieldCount
	return m.form[m.formFocus].Focus()
}

func (m model) updateForm(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.formKeys.Cancel):
		m.mode = modeList
		m.formErr = ""
		return m, nil
	case key.Matches(k, m.formKeys.Next):
		cmd := m.focusField(m.formFocus + 1)
		return m, cmd
	case key.Matches(k, m.formKeys.Prev):
		cmd := m.focusField(m.formFocus - 1)
		return m, cmd
	case key.Matches(k, m.formKeys.Save):
		return m.submitForm()
	}
	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(k)
	return m, cmd
}

func (m model) submitForm() (tea.Model, tea.Cmd) {
	rec, err := m.ctrl.SubmitAdd(m.formValues())
	if err != nil && rec.Name == "" {
		var fe *FieldError
		if errors.As(err, &fe) {
			m.formErr = fmt.Sprintf("%s is required", fe.Field)
			if i, ok := formFieldByName[fe.Field]; ok {
				cmd := m.focusField(i)
				return m, cmd
			}
			return m, nil
		}
		m.formErr = err.Error()
		return m, nil
	}

	log.Printf("added host %s to %s", rec.Name, m.ctrl.Store().Path())
	m.mode = modeList
	m.formErr = ""
	m.input.SetValue("")
	if err != nil {
		m.setStatus(fmt.Sprintf("added %s; %v", rec.Name, err), 4000)
	} else {
		m.setStatus("added host "+rec.Name, 2500)
	}
	return m, nil
}

// --- Details ---

func (m *model) openDetails() {
	rec, ok := m.ctrl.Details()
	if !ok {
		m.setStatus("no host selected", 1500)
		return
	}
	m.details.SetContent(m.renderDetails(rec))
	m.details.GotoTop()
	m.mode = modeDetails
}

func (m model) renderDetails(rec HostRecord) string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderLine("Host: "+rec.Name) + "\n\n")
	for _, a := range rec.Attributes.Pairs() {
		b.WriteString(m.theme.AccentText(a.Key+":") + " " + a.Value + "\n")
	}
	if rec.Attributes.Len() == 0 {
		b.WriteString(m.theme.DimText("(no attributes)") + "\n")
	}
	b.WriteString("\n" + m.theme.DimText("As written to "+m.ctrl.Store().Path()+":") + "\n")
	b.WriteString(RenderHostBlock(rec) + "\n")
	return b.String()
}

func (m model) updateDetails(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Back), key.Matches(k, m.keys.Details), k.String() == "q":
		m.mode = modeList
		return m, nil
	case k.Type == tea.KeyCtrlC:
		return m.quit()
	}
	var cmd tea.Cmd
	m.details, cmd = m.details.Update(k)
	return m, cmd
}

// --- View ---

func (m model) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode {
	case modeAdd:
		return m.viewForm()
	case modeDetails:
		return m.viewDetails()
	}
	return m.viewList()
}

func (m model) viewList() string {
	var b strings.Builder
	v := m.ctrl.Snapshot()

	header := "ssh-manager · Hosts"
	b.WriteString(m.theme.HeaderLine(header) + "  " + m.theme.DimText(m.ctrl.Store().Path()) + "\n")
	b.WriteString(m.theme.Rule(minInt(maxInt(len(header), m.width), 60)) + "\n")
	b.WriteString(m.input.View() + "\n\n")

	if len(v.Records) == 0 {
		if v.Total == 0 {
			b.WriteString(m.theme.DimText("  No hosts yet. Press a to add one.") + "\n")
		} else {
			b.WriteString(m.theme.DimText("  No matches.") + "\n")
		}
	}

	rows := m.visibleRows()
	start := 0
	if v.Selection >= rows {
		start = v.Selection - rows + 1
	}
	end := minInt(len(v.Records), start+rows)

	nameW := 0
	for _, r := range v.Records[start:end] {
		nameW = maxInt(nameW, lipgloss.Width(r.Name))
	}
	nameW = minInt(nameW, 40)

	for i := start; i < end; i++ {
		r := v.Records[i]
		selected := i == v.Selection
		name := padRight(r.Name, nameW)
		if selected {
			name = m.theme.SelectedText(name)
		}
		b.WriteString(m.theme.SelectedPrefix(selected) + name + "  " + m.theme.DimText(r.Target()) + "\n")
	}

	b.WriteString("\n")
	count := fmt.Sprintf("%d/%d hosts", len(v.Records), v.Total)
	b.WriteString(m.theme.DimText(count))
	if st := m.activeStatus(); st != "" {
		b.WriteString("  " + m.theme.AccentText(st))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys) + "\n")
	return b.String()
}

func (m model) viewForm() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderLine("Add SSH host") + "\n\n")
	for i := range m.form {
		b.WriteString(m.form[i].View() + "\n")
	}

	b.WriteString("\n" + m.theme.AccentText("Available keys:") + "\n")
	if len(m.availableKeys) == 0 {
		b.WriteString(m.theme.DimText("  (none found in "+SSHDirFor(m.ctrl.Store().Path())+")") + "\n")
	}
	for _, k := range m.availableKeys {
		b.WriteString("  " + k + "\n")
	}

	if m.formErr != "" {
		b.WriteString("\n" + m.theme.ErrorText(m.formErr) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.formKeys))
	return m.theme.Box(b.String()) + "\n"
}

func (m model) viewDetails() string {
	footer := m.theme.DimText(fmt.Sprintf("%3.f%%  esc/d/q back", m.details.ScrollPercent()*100))
	return m.theme.Box(m.details.View()) + "\n" + footer + "\n"
}

// --- Helpers ---

func (m model) visibleRows() int {
	if m.opts.MaxResults > 0 {
		return m.opts.MaxResults
	}
	if m.height <= 0 {
		return 20
	}
	return maxInt(3, m.height-8)
}

func (m *model) setStatus(s string, ms int) {
	m.status = s
	m.statusUntil = time.Now().Add(time.Duration(ms) * time.Millisecond)
}

func (m model) activeStatus() string {
	if m.status == "" || time.Now().After(m.statusUntil) {
		return ""
	}
	return m.status
}

func padRight(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
