// Package nav resolves a documentation site's navigation: the top-bar and
// sidebar forests, the source rewrite map and the source exclusion set.
//
// Authored entries (Item) are resolved into an explicit variant per node:
// a Group has children and no link, a Leaf has a link and no children, a
// Mixed node has both. Every resolved value is immutable; accessors return
// copies.
package nav

import "slices"

// Item is a navigation entry as authored.
type Item struct {
	Text  string
	Link  string
	Items []Item
}

// Kind discriminates resolved nodes.
type Kind int

const (
	KindGroup Kind = iota + 1
	KindLeaf
	KindMixed
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindLeaf:
		return "leaf"
	case KindMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// Link is a validated navigation target. Internal targets start with "/"
// and are kept verbatim, fragment included.
type Link struct {
	Target   string
	External bool
}

// Node is a resolved navigation node: *Group, *Leaf or *Mixed.
type Node interface {
	Text() string
	Kind() Kind
	node()
}

// Linked is implemented by nodes that carry a link.
type Linked interface {
	Node
	Link() Link
}

// Parent is implemented by nodes that carry children.
type Parent interface {
	Node
	Children() []Node
}

// Group is a pure group header.
type Group struct {
	text     string
	children []Node
}

func (g *Group) Text() string     { return g.text }
func (g *Group) Kind() Kind       { return KindGroup }
func (g *Group) Children() []Node { return slices.Clone(g.children) }
func (*Group) node()              {}

// Leaf is a link without children.
type Leaf struct {
	text string
	link Link
}

func (l *Leaf) Text() string { return l.text }
func (l *Leaf) Kind() Kind   { return KindLeaf }
func (l *Leaf) Link() Link   { return l.link }
func (*Leaf) node()          {}

// Mixed is a link that also heads a group.
type Mixed struct {
	text     string
	link     Link
	children []Node
}

func (m *Mixed) Text() string     { return m.text }
func (m *Mixed) Kind() Kind       { return KindMixed }
func (m *Mixed) Link() Link       { return m.link }
func (m *Mixed) Children() []Node { return slices.Clone(m.children) }
func (*Mixed) node()              {}

// Walk visits nodes depth-first in declaration order. The breadcrumb holds
// the texts from the root down to and including the visited node; fn may
// keep it. Returning false from fn skips the node's children.
func Walk(forest []Node, fn func(n Node, breadcrumb []string) bool) {
	walk(forest, nil, fn)
}

func walk(forest []Node, parents []string, fn func(Node, []string) bool) {
	for _, n := range forest {
		crumb := append(slices.Clip(parents), n.Text())
		if !fn(n, slices.Clone(crumb)) {
			continue
		}
		if p, ok := n.(Parent); ok {
			walk(p.Children(), crumb, fn)
		}
	}
}
