package wordlist

import "strings"

// attacher decides which node owns each comment. Comments collect in a
// pending buffer until an item, a sub-list boundary or a line break claims
// them. current is the item whose source line is still open.
type attacher struct {
	pending []Comment
	current *Item
}

func (a *attacher) push(c Comment) {
	a.pending = append(a.pending, c)
}

func (a *attacher) take() []Comment {
	out := a.pending
	a.pending = nil
	return out
}

// resolved hands the pending comments to it as leading comments. For a
// duplicate, it is the first-seen item.
func (a *attacher) resolved(it *Item) {
	it.Leading = append(it.Leading, a.take()...)
	a.current = it
}

// whitespace closes the current item's line when ws holds a line break.
func (a *attacher) whitespace(ws string) {
	if a.current != nil && strings.ContainsRune(ws, '\n') {
		a.closeLine()
	}
}

// closeLine hands the pending comments to the current item as trailing
// comments. It reports whether there was a current item.
func (a *attacher) closeLine() bool {
	if a.current == nil {
		return false
	}
	a.current.Trailing = append(a.current.Trailing, a.take()...)
	a.current = nil
	return true
}

// boundary is called at a sub-list start or end. The pending comments go to
// the current item if its line is still open, otherwise they are returned
// for the sub-list.
func (a *attacher) boundary() []Comment {
	if a.closeLine() {
		return nil
	}
	return a.take()
}
