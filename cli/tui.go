package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fahmaliyi/fortress/vault"
	"github.com/spf13/cobra"
)

type browserState int

const (
	stateTable browserState = iota
	stateShowEntry
	stateAddEntry
)

// clearClipboardMsg fires when a copied password should be wiped. seq
// identifies the copy that scheduled it so a later copy is not cleared early.
type clearClipboardMsg struct{ seq int }

type browser struct {
	vault      *vault.Vault
	password   []byte
	clipboard  vault.Clipboard
	clearAfter time.Duration

	entries  []vault.Entry
	cursor   int
	state    browserState
	inputs   []textinput.Model
	selected *vault.Entry
	revealed bool
	msg      string
	isErr    bool
	copySeq  int
	copied   bool
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	msgStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("0"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

func (a *app) newBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the vault interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withPassword(func(pw []byte) error {
				entries, err := a.vault.List(pw)
				if err != nil {
					return err
				}
				m := newBrowser(a.vault, pw, a.opts.Clipboard, a.cfg.ClipboardClear, entries)
				final, err := tea.NewProgram(m, tea.WithOutput(cmd.OutOrStdout())).Run()
				if b, ok := final.(browser); ok && b.copied {
					_ = b.clipboard.WriteAll("")
				}
				return err
			})
		},
	}
}

func newBrowser(v *vault.Vault, password []byte, clip vault.Clipboard, clearAfter time.Duration, entries []vault.Entry) browser {
	return browser{
		vault:      v,
		password:   password,
		clipboard:  clip,
		clearAfter: clearAfter,
		entries:    entries,
		state:      stateTable,
	}
}

func (m browser) Init() tea.Cmd {
	return nil
}

func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if c, ok := msg.(clearClipboardMsg); ok {
		if c.seq == m.copySeq && m.copied {
			_ = m.clipboard.WriteAll("")
			m.copied = false
			m.setMsg("Clipboard cleared", false)
		}
		return m, nil
	}
	switch m.state {
	case stateShowEntry:
		return m.updateShowEntry(msg)
	case stateAddEntry:
		return m.updateAddEntry(msg)
	default:
		return m.updateTable(msg)
	}
}

func (m browser) View() string {
	var s string
	switch m.state {
	case stateShowEntry:
		s = m.viewShowEntry()
	case stateAddEntry:
		s = m.viewAddEntry()
	default:
		s = m.viewTable()
	}
	if m.msg != "" {
		style := msgStyle
		if m.isErr {
			style = errStyle
		}
		s += "\n" + style.Render(m.msg) + "\n"
	}
	return s
}

func (m *browser) setMsg(text string, isErr bool) {
	m.msg = text
	m.isErr = isErr
}

func (m *browser) reload() {
	entries, err := m.vault.List(m.password)
	if err != nil {
		m.setMsg(err.Error(), true)
		return
	}
	m.entries = entries
	if m.cursor >= len(m.entries) {
		m.cursor = max(len(m.entries)-1, 0)
	}
}

// copyPassword puts an already decrypted password on the clipboard and
// schedules its removal.
func (m browser) copyPassword(password string) (browser, tea.Cmd) {
	if err := m.clipboard.WriteAll(password); err != nil {
		m.setMsg((&vault.ClipboardError{Password: password, Cause: err}).Error(), true)
		return m, nil
	}
	m.copySeq++
	m.copied = true
	if m.clearAfter <= 0 {
		m.setMsg("Password copied!", false)
		return m, nil
	}
	m.setMsg(fmt.Sprintf("Password copied! (clears in %s)", m.clearAfter), false)
	seq := m.copySeq
	return m, tea.Tick(m.clearAfter, func(time.Time) tea.Msg { return clearClipboardMsg{seq: seq} })
}

// firstIndex reports whether the entry under the cursor is the one the
// identifier-based operations would act on.
func (m browser) firstIndex() bool {
	id := m.entries[m.cursor].Identifier
	for i, e := range m.entries {
		if e.Identifier == id {
			return i == m.cursor
		}
	}
	return false
}

// --- Table ---

func (m browser) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if len(m.entries) == 0 {
			return m, nil
		}
		e := m.entries[m.cursor]
		m.selected = &e
		m.revealed = false
		m.state = stateShowEntry
		m.setMsg("", false)
	case "a":
		m.inputs = newAddInputs()
		m.state = stateAddEntry
		m.setMsg("", false)
	case "d":
		if len(m.entries) == 0 {
			return m, nil
		}
		id := m.entries[m.cursor].Identifier
		if !m.firstIndex() {
			m.setMsg(fmt.Sprintf("'%s' is not unique; only its first entry can be removed", id), true)
			return m, nil
		}
		if err := m.vault.Remove(m.password, id); err != nil {
			m.setMsg(err.Error(), true)
			return m, nil
		}
		m.reload()
		m.setMsg(fmt.Sprintf("Entry '%s' has been removed.", id), false)
	case "c":
		if len(m.entries) == 0 {
			return m, nil
		}
		return m.copyPassword(m.entries[m.cursor].Password)
	}
	return m, nil
}

func (m browser) viewTable() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Vault Entries") + "\n\n")
	if len(m.entries) == 0 {
		b.WriteString("(empty)\n")
	}
	for i, e := range m.entries {
		line := fmt.Sprintf("%-30s  %-30s", e.Identifier, e.Username)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("j/k=move, enter=show, a=add, d=delete, c=copy, q=quit"))
	return b.String()
}

// --- Show Entry ---

func (m browser) updateShowEntry(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc", "q":
		m.state = stateTable
		m.selected = nil
		m.revealed = false
	case "v":
		m.revealed = !m.revealed
	case "c":
		return m.copyPassword(m.selected.Password)
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m browser) viewShowEntry() string {
	e := m.selected
	secret := "*****"
	if m.revealed {
		secret = e.Password
	}
	return fmt.Sprintf("%s\n\nIdentifier: %s\nUsername:   %s\nPassword:   %s\n\n%s",
		titleStyle.Render("Entry"), e.Identifier, e.Username, secret,
		helpStyle.Render("v=reveal/hide, c=copy, esc=back"))
}

// --- Add Entry ---

func newAddInputs() []textinput.Model {
	placeholders := []string{"Identifier", "Username", "Password (blank to generate)"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		ti := textinput.New()
		ti.Placeholder = p
		ti.Prompt = ""
		inputs[i] = ti
	}
	inputs[2].EchoMode = textinput.EchoPassword
	inputs[0].Focus()
	return inputs
}

func (m browser) updateAddEntry(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.clearInputs()
			m.state = stateTable
			return m, nil
		case "ctrl+c":
			m.clearInputs()
			return m, tea.Quit
		case "tab", "down":
			m.focusNext(false)
			return m, nil
		case "shift+tab", "up":
			m.focusNext(true)
			return m, nil
		case "enter":
			if m.inputs[len(m.inputs)-1].Focused() {
				return m.saveAddEntry()
			}
			m.focusNext(false)
			return m, nil
		}
	}

	var cmds []tea.Cmd
	for i := range m.inputs {
		if m.inputs[i].Focused() {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *browser) focusNext(backward bool) {
	n := len(m.inputs)
	for i := 0; i < n; i++ {
		if m.inputs[i].Focused() {
			m.inputs[i].Blur()
			if backward {
				m.inputs[(i-1+n)%n].Focus()
			} else {
				m.inputs[(i+1)%n].Focus()
			}
			return
		}
	}
}

func (m browser) saveAddEntry() (tea.Model, tea.Cmd) {
	req := vault.AddRequest{
		Identifier: strings.TrimSpace(m.inputs[0].Value()),
		Username:   strings.TrimSpace(m.inputs[1].Value()),
		Password:   m.inputs[2].Value(),
	}
	if req.Identifier == "" {
		m.setMsg("Identifier is required", true)
		return m, nil
	}
	if req.Username == "" {
		req.Username = emptyUsername
	}
	req.Generate = req.Password == ""

	e, err := m.vault.Add(m.password, req)
	m.clearInputs()
	m.state = stateTable
	if err != nil {
		m.setMsg(err.Error(), true)
		return m, nil
	}
	m.reload()
	m.cursor = len(m.entries) - 1
	if req.Generate {
		return m.copyPassword(e.Password)
	}
	m.setMsg("Entry added!", false)
	return m, nil
}

func (m *browser) clearInputs() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
}

func (m browser) viewAddEntry() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Add New Entry") + "\n\n")
	for _, ti := range m.inputs {
		b.WriteString(fmt.Sprintf("%s: %s\n\n", ti.Placeholder, ti.View()))
	}
	b.WriteString(helpStyle.Render("tab=next field, enter on last field=save, esc=cancel"))
	return b.String()
}
