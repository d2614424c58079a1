package dom

import (
	"net/url"

	"golang.org/x/net/html"
)

const (
	EventSubmit = "submit"
	EventClick  = "click"
)

// Event is a user action delivered to listeners. Form carries the submitted
// field values for submit events.
type Event struct {
	Type          string
	Target        *html.Node
	CurrentTarget *html.Node
	Form          url.Values
}

// Listener receives events. Registrations are matched by identity, so
// implementations must be comparable; pointer receivers are the norm.
type Listener interface {
	HandleEvent(Event)
}

// Binding is a stable Listener handle around a function. Create it once and
// pass the same pointer to both AddEventListener and RemoveEventListener.
type Binding struct {
	fn func(Event)
}

// Bind wraps fn in a new Binding.
func Bind(fn func(Event)) *Binding {
	return &Binding{fn: fn}
}

func (b *Binding) HandleEvent(ev Event) {
	if b != nil && b.fn != nil {
		b.fn(ev)
	}
}
