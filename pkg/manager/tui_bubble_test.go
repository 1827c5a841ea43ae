package manager

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m model, msgs ...tea.Msg) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(model)
	}
	return m, cmd
}

func typeText(t *testing.T, m model, s string) model {
	t.Helper()
	for _, r := range s {
		m, _ = send(t, m, runes(string(r)))
	}
	return m
}

func newTestModel(t *testing.T, content string) (model, string) {
	t.Helper()
	c, p := newTestController(t, content)
	return newModel(c, UIOptions{Theme: NoTheme(), MaxResults: 50}), p
}

func TestTUI_SearchFiltersAndResetsSelection(t *testing.T) {
	m, _ := newTestModel(t, twoHostConfig+"\nHost dev-box\n    HostName 10.0.0.9\n    User dev\n")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if v := m.ctrl.Snapshot(); v.Selection != 1 {
		t.Fatalf("expected selection 1, got %d", v.Selection)
	}

	m, _ = send(t, m, runes("/"))
	if !m.searching {
		t.Fatalf("expected search to be focused")
	}
	m = typeText(t, m, "dbx")

	v := m.ctrl.Snapshot()
	if v.Query != "dbx" {
		t.Fatalf("expected query dbx, got %q", v.Query)
	}
	if got := hostNames(v.Records); len(got) != 1 || got[0] != "dev-box" {
		t.Fatalf("expected [dev-box], got %v", got)
	}
	if v.Selection != 0 {
		t.Fatalf("expected selection reset to 0, got %d", v.Selection)
	}
	if !strings.Contains(m.View(), "dev@10.0.0.9") {
		t.Fatalf("expected view to show user@hostname, got:\n%s", m.View())
	}
}

func TestTUI_LettersTypeWhileSearching(t *testing.T) {
	m, _ := newTestModel(t, twoHostConfig)
	m, _ = send(t, m, runes("/"))
	m = typeText(t, m, "qad")
	if m.quitting || m.mode != modeList {
		t.Fatalf("expected q/a/d to be typed into the search box")
	}
	if m.ctrl.Query() != "qad" {
		t.Fatalf("expected query qad, got %q", m.ctrl.Query())
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.searching {
		t.Fatalf("expected esc to leave search")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.ctrl.Query() != "" {
		t.Fatalf("expected second esc to clear the query, got %q", m.ctrl.Query())
	}
}

func TestTUI_EnterChoosesHost(t *testing.T) {
	m, _ := newTestModel(t, twoHostConfig)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.quitting || cmd == nil {
		t.Fatalf("expected quit after choosing")
	}
	if name, ok := m.ctrl.Result(); !ok || name != "backup" {
		t.Fatalf("expected backup chosen, got %q (%v)", name, ok)
	}
	if m.View() != "" {
		t.Fatalf("expected empty view after quit")
	}
}

func TestTUI_EnterOnEmptyListShowsStatus(t *testing.T) {
	m, _ := newTestModel(t, "")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.quitting {
		t.Fatalf("expected to stay open with nothing to choose")
	}
	if m.activeStatus() != ErrNoSelection.Error() {
		t.Fatalf("expected status %q, got %q", ErrNoSelection.Error(), m.activeStatus())
	}
	if !strings.Contains(m.View(), "No hosts yet") {
		t.Fatalf("expected empty-state hint, got:\n%s", m.View())
	}
}

func TestTUI_QuitLeavesNoResult(t *testing.T) {
	m, _ := newTestModel(t, twoHostConfig)
	m, _ = send(t, m, runes("q"))
	if !m.quitting {
		t.Fatalf("expected quit")
	}
	if _, ok := m.ctrl.Result(); ok {
		t.Fatalf("expected no chosen host after quit")
	}
}

func TestTUI_AddFormFlow(t *testing.T) {
	m, p := newTestModel(t, twoHostConfig)

	m, _ = send(t, m, runes("a"))
	if m.mode != modeAdd {
		t.Fatalf("expected add form")
	}

	// Save with only an alias: hostname is reported missing.
	m = typeText(t, m, "newhost")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeAdd || !strings.Contains(m.formErr, "hostname") {
		t.Fatalf("expected hostname error, got mode=%d err=%q", m.mode, m.formErr)
	}
	if m.formFocus != fieldHostName {
		t.Fatalf("expected focus on hostname, got %d", m.formFocus)
	}

	m = typeText(t, m, "10.0.0.1")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "root")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeList {
		t.Fatalf("expected list after save, got mode %d (err %q)", m.mode, m.formErr)
	}

	v := m.ctrl.Snapshot()
	if v.Total != 3 || v.Records[2].Name != "newhost" {
		t.Fatalf("expected newhost appended, got %v", hostNames(v.Records))
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasSuffix(string(data), "\nHost newhost\n    HostName 10.0.0.1\n    User root\n") {
		t.Fatalf("unexpected config tail:\n%s", string(data))
	}
}

func TestTUI_AddFormCancel(t *testing.T) {
	m, p := newTestModel(t, twoHostConfig)
	m, _ = send(t, m, runes("a"))
	m = typeText(t, m, "ghost")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList {
		t.Fatalf("expected list after cancel")
	}
	data, _ := os.ReadFile(p)
	if string(data) != twoHostConfig {
		t.Fatalf("expected config untouched after cancel")
	}
}

func TestTUI_AddFormListsKeys(t *testing.T) {
	m, p := newTestModel(t, twoHostConfig)
	dir := SSHDirFor(p)
	touch(t, dir, "id_rsa")
	touch(t, dir, "id_rsa.pub")
	touch(t, dir, "work.pem")

	m, _ = send(t, m, runes("a"))
	view := m.View()
	if !strings.Contains(view, "Available keys:") || !strings.Contains(view, "id_rsa") || !strings.Contains(view, "work.pem") {
		t.Fatalf("expected available keys in form, got:\n%s", view)
	}
	if strings.Contains(view, "id_rsa.pub") {
		t.Fatalf("expected .pub files to be hidden")
	}
}

func TestTUI_DetailsShowsAttributes(t *testing.T) {
	m, _ := newTestModel(t, twoHostConfig)
	m, _ = send(t, m, runes("d"))
	if m.mode != modeDetails {
		t.Fatalf("expected details mode")
	}
	view := m.View()
	for _, want := range []string{"Host: myserver", "HostName: 192.168.1.1", "User: admin"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in details, got:\n%s", want, view)
		}
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList {
		t.Fatalf("expected esc to close details")
	}
	if v := m.ctrl.Snapshot(); v.Total != 2 || v.Selection != 0 {
		t.Fatalf("expected details to leave state untouched, got %+v", v)
	}
}

func TestTUI_ConfigChangedReloads(t *testing.T) {
	m, p := newTestModel(t, twoHostConfig)
	if _, err := mustStore(t, p).Add(AddHostParams{Name: "late", HostName: "h", User: "u"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, configChangedMsg{path: p})
	v := m.ctrl.Snapshot()
	if v.Total != 3 {
		t.Fatalf("expected reload to pick up the new host, got %d", v.Total)
	}
	if rec, ok := v.Selected(); !ok || rec.Name != "backup" {
		t.Fatalf("expected backup to stay selected across reload, got %q", rec.Name)
	}
}

func TestTUI_MaxResultsWindowFollowsSelection(t *testing.T) {
	var b strings.Builder
	for _, n := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		b.WriteString("Host " + n + "\n")
	}
	c, _ := newTestController(t, b.String())
	m := newModel(c, UIOptions{Theme: NoTheme(), MaxResults: 2})
	for i := 0; i < 4; i++ {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	view := m.View()
	if strings.Contains(view, "charlie") || !strings.Contains(view, " > echo") {
		t.Fatalf("expected window of delta..echo with echo selected, got:\n%s", view)
	}
}
