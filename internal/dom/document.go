package dom

import (
	"golang.org/x/net/html"
)

// Component is a self-contained visual unit that a Document can host.
// Connected runs after the root is attached, Disconnected after it is
// detached.
type Component interface {
	Root() *html.Node
	Connected(doc *Document)
	Disconnected(doc *Document)
}

type registration struct {
	eventType string
	listener  Listener
}

// Document is the active visual tree components are mounted into. It owns
// listener registrations and dispatches events with bubbling. A Document is
// not safe for concurrent use.
type Document struct {
	body      *html.Node
	listeners map[*html.Node][]registration
	mounted   map[Component]bool
}

func NewDocument() *Document {
	return &Document{
		body:      Element("body"),
		listeners: make(map[*html.Node][]registration),
		mounted:   make(map[Component]bool),
	}
}

// Body returns the document root element.
func (d *Document) Body() *html.Node {
	return d.body
}

// Mount attaches the component root to the body and runs Connected.
// Mounting an already mounted component does nothing.
func (d *Document) Mount(c Component) {
	if d.mounted[c] {
		return
	}
	root := c.Root()
	if root.Parent != nil {
		root.Parent.RemoveChild(root)
	}
	d.body.AppendChild(root)
	d.mounted[c] = true
	c.Connected(d)
}

// Unmount detaches the component root and runs Disconnected.
func (d *Document) Unmount(c Component) {
	if !d.mounted[c] {
		return
	}
	root := c.Root()
	if root.Parent != nil {
		root.Parent.RemoveChild(root)
	}
	delete(d.mounted, c)
	c.Disconnected(d)
}

// IsMounted reports whether c is currently attached to d.
func (d *Document) IsMounted(c Component) bool {
	return d.mounted[c]
}

// AddEventListener registers l for events of the given type reaching node.
// Registering the same listener twice for a node and type is a no-op.
func (d *Document) AddEventListener(node *html.Node, eventType string, l Listener) {
	for _, r := range d.listeners[node] {
		if r.eventType == eventType && r.listener == l {
			return
		}
	}
	d.listeners[node] = append(d.listeners[node], registration{eventType: eventType, listener: l})
}

// RemoveEventListener drops the registration made with the identical
// listener. Other listeners are untouched.
func (d *Document) RemoveEventListener(node *html.Node, eventType string, l Listener) {
	regs := d.listeners[node]
	for i, r := range regs {
		if r.eventType == eventType && r.listener == l {
			regs = append(regs[:i], regs[i+1:]...)
			break
		}
	}
	if len(regs) == 0 {
		delete(d.listeners, node)
		return
	}
	d.listeners[node] = regs
}

// ListenerCount returns the number of registrations on node.
func (d *Document) ListenerCount(node *html.Node) int {
	return len(d.listeners[node])
}

// Dispatch delivers ev to listeners on the target and then on each ancestor.
// Events whose target is outside the document are dropped.
func (d *Document) Dispatch(ev Event) int {
	if ev.Target == nil || !Contains(d.body, ev.Target) {
		return 0
	}
	delivered := 0
	for n := ev.Target; n != nil; n = n.Parent {
		regs := append([]registration(nil), d.listeners[n]...)
		for _, r := range regs {
			if r.eventType != ev.Type {
				continue
			}
			ev.CurrentTarget = n
			r.listener.HandleEvent(ev)
			delivered++
		}
	}
	return delivered
}
