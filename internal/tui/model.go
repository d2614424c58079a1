// Package tui hosts the expense calculator in a terminal. The calculator
// is mounted into its own document; key presses are translated into the
// same submit and click events the web host delivers.
package tui

import (
	"net/url"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/net/html"

	"expcalc/internal/dom"
	"expcalc/internal/log"
	"expcalc/internal/widget"
)

type focus int

const (
	focusName focus = iota
	focusAmount
	focusList
	focusCount
)

// Model is the bubbletea model of the calculator screen.
type Model struct {
	doc  *dom.Document
	calc *widget.Calculator
	log  *log.Logger

	name   textinput.Model
	amount textinput.Model
	focus  focus
	// selected indexes the list rows; -1 when the list is empty.
	selected int

	keys KeyMap
	help help.Model
}

var _ tea.Model = (*Model)(nil)

// New builds the screen. The calculator is mounted by Init.
func New(opts widget.Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	// The terminal has no use for an external stylesheet link.
	opts.Stylesheet = ""
	calc := widget.New(opts)
	labels := calc.Labels()

	name := textinput.New()
	name.Placeholder = labels.NamePlaceholder
	name.CharLimit = 200
	name.Width = 32
	name.Focus()

	amount := textinput.New()
	amount.Placeholder = labels.AmountPlaceholder
	amount.CharLimit = 32
	amount.Width = 16

	return &Model{
		doc:      dom.NewDocument(),
		calc:     calc,
		log:      opts.Logger.WithComponent(log.ComponentTUI),
		name:     name,
		amount:   amount,
		selected: -1,
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.doc.Mount(m.calc)
	m.log.Info("Calculator mounted", log.FieldOperation, log.OpMount)
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.doc.Unmount(m.calc)
			m.log.Info("Calculator unmounted", log.FieldOperation, log.OpUnmount)
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			m.submit()
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.setFocus((m.focus + 1) % focusCount)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.setFocus((m.focus + focusCount - 1) % focusCount)
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.move(1)
			return m, nil
		case m.focus == focusList && key.Matches(msg, m.keys.Delete):
			m.deleteSelected()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusAmount:
		m.amount, cmd = m.amount.Update(msg)
	}
	return m, cmd
}

// submit delivers the field values as a submit event and mirrors the
// widget's cleared inputs back into the text fields.
func (m *Model) submit() {
	form := dom.ByID(m.calc.Root(), widget.FormID)
	m.doc.Dispatch(dom.Event{
		Type:   dom.EventSubmit,
		Target: form,
		Form: url.Values{
			widget.NameField:   {m.name.Value()},
			widget.AmountField: {m.amount.Value()},
		},
	})
	m.name.SetValue(inputValue(m.calc, widget.NameID))
	m.amount.SetValue(inputValue(m.calc, widget.AmountID))
	m.setFocus(focusName)
	m.clampSelection()
}

// deleteSelected clicks the delete control of the selected row.
func (m *Model) deleteSelected() {
	rows := m.rows()
	if m.selected < 0 || m.selected >= len(rows) {
		return
	}
	btn := dom.Find(rows[m.selected], func(n *html.Node) bool { return dom.IsElement(n, "button") })
	if btn == nil {
		return
	}
	m.doc.Dispatch(dom.Event{Type: dom.EventClick, Target: btn})
	m.clampSelection()
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.name.Blur()
	m.amount.Blur()
	switch f {
	case focusName:
		m.name.Focus()
	case focusAmount:
		m.amount.Focus()
	case focusList:
		if m.selected < 0 && len(m.rows()) > 0 {
			m.selected = 0
		}
	}
}

func (m *Model) move(delta int) {
	n := len(m.rows())
	if n == 0 {
		m.selected = -1
		return
	}
	m.selected += delta
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= n {
		m.selected = n - 1
	}
}

func (m *Model) clampSelection() {
	n := len(m.rows())
	switch {
	case n == 0:
		m.selected = -1
	case m.selected >= n:
		m.selected = n - 1
	}
}

func (m *Model) rows() []*html.Node {
	list := dom.ByID(m.calc.Root(), widget.ListID)
	return dom.FindAll(list, func(n *html.Node) bool { return dom.IsElement(n, "li") })
}

func inputValue(calc *widget.Calculator, id string) string {
	v, _ := dom.Attr(dom.ByID(calc.Root(), id), "value")
	return v
}

// View implements tea.Model.
func (m *Model) View() string {
	r := &renderer{inputs: map[string]string{
		widget.NameID:   m.inputView(m.name, m.focus == focusName),
		widget.AmountID: m.inputView(m.amount, m.focus == focusAmount),
	}}
	if m.focus == focusList {
		if rows := m.rows(); m.selected >= 0 && m.selected < len(rows) {
			r.selected = rows[m.selected]
		}
	}
	return r.render(m.calc.Root()) + "\n" + Styles.Hint.Render(m.help.View(m.keys))
}

func (m *Model) inputView(in textinput.Model, focused bool) string {
	if focused {
		return Styles.Focused.Render(in.View())
	}
	return Styles.Input.Render(in.View())
}
