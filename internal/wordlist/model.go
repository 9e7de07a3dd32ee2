package wordlist

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// CommentKind tells a comment from a CDATA section.
type CommentKind uint8

const (
	KindComment CommentKind = iota
	KindCDATA
)

// Comment is human-authored metadata attached to a sub-list, an item or the
// document.
type Comment struct {
	Kind CommentKind
	Text string
}

// Item is a leaf entry. Which fields are set depends on the ItemForm of the
// list that owns it.
type Item struct {
	Key   string
	Text  string // bare text items
	Regex bool   // hyphenation items flagged RegEx="True"
	From  string // from / find
	To    string // to / replaceWith

	Leading  []Comment
	Trailing []Comment

	Line   int
	Column int
}

// SubList is a named node of the list tree.
type SubList struct {
	Name     string
	Depth    int
	Rule     *ListRule
	Children []*SubList
	Items    []*Item

	Leading  []Comment
	Trailing []Comment

	index map[string]*Item
}

func newSubList(rule *ListRule, depth int) *SubList {
	sl := &SubList{Name: rule.Name, Depth: depth, Rule: rule}
	if rule.ItemForm != FormNone {
		sl.index = make(map[string]*Item)
	}
	for _, child := range rule.Children {
		sl.Children = append(sl.Children, newSubList(child, depth+1))
	}
	return sl
}

// Child returns the child sub-list with the given element name.
func (sl *SubList) Child(name string) *SubList {
	for _, c := range sl.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// lookup returns the first-seen item with key, if any.
func (sl *SubList) lookup(key string) (*Item, bool) {
	it, ok := sl.index[key]
	return it, ok
}

func (sl *SubList) add(it *Item) {
	sl.index[it.Key] = it
	sl.Items = append(sl.Items, it)
}

// Document is the result of validating one dictionary file.
type Document struct {
	Name           string
	Schema         *Schema
	Root           *SubList
	Culture        language.Tag
	HasDeclaration bool
	BOM            bool

	Leading  []Comment
	Trailing []Comment
}

// ItemCount returns the number of items in the whole tree.
func (d *Document) ItemCount() int {
	n := 0
	var walk func(*SubList)
	walk = func(sl *SubList) {
		n += len(sl.Items)
		for _, c := range sl.Children {
			walk(c)
		}
	}
	walk(d.Root)
	return n
}

// normalizeComment replaces a run of horizontal whitespace at either end of
// a comment with repl.
func normalizeComment(s, repl string) string {
	isHorizontal := func(r rune) bool {
		return r != '\n' && r != '\r' && unicode.IsSpace(r)
	}
	start := len(s) - len(strings.TrimLeftFunc(s, isHorizontal))
	if start == len(s) {
		if s == "" {
			return ""
		}
		return repl
	}
	end := len(strings.TrimRightFunc(s, isHorizontal))
	var b strings.Builder
	if start > 0 {
		b.WriteString(repl)
	}
	b.WriteString(s[start:end])
	if end < len(s) {
		b.WriteString(repl)
	}
	return b.String()
}

func newComment(kind CommentKind, text string) Comment {
	if kind == KindCDATA {
		return Comment{Kind: kind, Text: normalizeComment(text, "")}
	}
	return Comment{Kind: kind, Text: normalizeComment(text, " ")}
}
