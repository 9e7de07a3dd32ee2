package wordlist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xylographe/SE-WordListValidator/internal/diag"
)

// Validate parses one dictionary of the given kind, checks it against the
// kind's schema and returns its canonical model with items deduplicated and
// sorted. name is the file name; it selects the collation culture and schema
// variants. A *StructuralError aborts the file.
func Validate(r io.Reader, kind Kind, name string, sink diag.Sink) (*Document, error) {
	schema, err := SchemaFor(kind, name)
	if err != nil {
		return nil, err
	}
	rd, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		Name:    filepath.Base(name),
		Schema:  schema,
		Root:    newSubList(schema.Root, 0),
		Culture: CultureForFile(name),
		BOM:     rd.BOM,
	}
	if sink == nil {
		sink = diag.Discard
	}
	v := &validator{rd: rd, doc: doc, sink: sink}
	if err := v.run(); err != nil {
		return nil, err
	}
	newComparator(doc.Culture).sortItems(doc.Root)
	return doc, nil
}

// ValidateFile opens path and validates it as the kind its name implies.
func ValidateFile(path string, sink diag.Sink) (*Document, error) {
	kind, err := KindForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Validate(f, kind, path, sink)
}

// Canonicalize validates r and returns its canonical rendering. Nothing is
// returned when validation fails.
func Canonicalize(r io.Reader, kind Kind, name string, sink diag.Sink) ([]byte, error) {
	doc, err := Validate(r, kind, name, sink)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("emit %s: %w", doc.Name, err)
	}
	return buf.Bytes(), nil
}

// openItem is a text item element whose content has not been read yet.
type openItem struct {
	list     *SubList
	node     Node
	regex    bool
	resolved bool
}

type validator struct {
	rd   *Reader
	doc  *Document
	sink diag.Sink
	att  attacher

	stack      []*SubList
	item       *openItem
	rootSeen   bool
	rootClosed bool
}

func (v *validator) run() error {
	for {
		n, err := v.rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := v.step(n); err != nil {
			return err
		}
	}
	if !v.rootSeen {
		return &StructuralError{Msg: fmt.Sprintf("Missing root element <%s>", v.doc.Schema.Root.Name)}
	}
	v.doc.Trailing = append(v.doc.Trailing, v.att.take()...)
	return nil
}

func (v *validator) top() *SubList {
	return v.stack[len(v.stack)-1]
}

func (v *validator) parentName() string {
	if v.item != nil {
		return v.item.node.Name
	}
	if len(v.stack) > 0 {
		return v.top().Name
	}
	return ""
}

func (v *validator) unexpected(n Node) error {
	if p := v.parentName(); p != "" {
		return structuralf(n, "Unexpected %s node in <%s>", n.Kind, p)
	}
	return structuralf(n, "Unexpected %s node", n.Kind)
}

func (v *validator) invalidElement(n Node) error {
	if p := v.parentName(); p != "" {
		return structuralf(n, "Invalid element <%s…> in <%s>", n.Name, p)
	}
	return structuralf(n, "Invalid element <%s…>", n.Name)
}

func (v *validator) step(n Node) error {
	switch n.Kind {
	case NodeComment:
		v.att.push(newComment(KindComment, n.Value))
	case NodeCDATA:
		v.att.push(newComment(KindCDATA, n.Value))
	case NodeWhitespace:
		v.att.whitespace(n.Value)
	case NodeXMLDeclaration:
		if v.rootSeen {
			return v.unexpected(n)
		}
		v.doc.HasDeclaration = true
	case NodeElement:
		return v.element(n)
	case NodeEndElement:
		v.endElement()
	case NodeText:
		return v.text(n)
	default:
		return v.unexpected(n)
	}
	return nil
}

func (v *validator) element(n Node) error {
	if !v.rootSeen {
		root := v.doc.Schema.Root
		if n.Name != root.Name || len(n.Attrs) > 0 {
			return v.invalidElement(n)
		}
		v.rootSeen = true
		v.doc.Leading = append(v.doc.Leading, v.att.take()...)
		v.stack = append(v.stack, v.doc.Root)
		if n.SelfClosing {
			v.endElement()
		}
		return nil
	}
	if v.rootClosed || v.item != nil {
		return v.unexpected(n)
	}
	list := v.top()
	rule := list.Rule
	if childRule := rule.child(n.Name); childRule != nil {
		if len(n.Attrs) > 0 {
			return v.invalidElement(n)
		}
		child := list.Child(childRule.Name)
		child.Leading = append(child.Leading, v.att.boundary()...)
		if !n.SelfClosing {
			v.stack = append(v.stack, child)
		}
		return nil
	}
	if !rule.matchesItem(n.Name) {
		return v.invalidElement(n)
	}
	v.att.closeLine()
	switch rule.ItemForm {
	case FormText:
		if len(n.Attrs) > 0 {
			return v.invalidElement(n)
		}
		if n.SelfClosing {
			diag.Verbosef(v.sink, n.Line, n.Column, "Removed empty <%s>", n.Name)
			return nil
		}
		v.item = &openItem{list: list, node: n}
	case FormFlaggedText:
		if n.SelfClosing {
			return v.invalidElement(n)
		}
		regex, err := v.flag(rule, n)
		if err != nil {
			return err
		}
		v.item = &openItem{list: list, node: n, regex: regex}
	case FormPair:
		from, okFrom := n.Attr(rule.KeyAttr)
		to, okTo := n.Attr(rule.ValueAttr)
		if !n.SelfClosing || len(n.Attrs) != 2 || !okFrom || !okTo || from == "" {
			return v.invalidElement(n)
		}
		return v.resolve(list, &Item{From: from, To: to}, n)
	}
	return nil
}

// flag reads the optional boolean attribute of a flagged text item.
func (v *validator) flag(rule *ListRule, n Node) (bool, error) {
	switch len(n.Attrs) {
	case 0:
		return false, nil
	case 1:
		raw, ok := n.Attr(rule.FlagAttr)
		if !ok {
			return false, v.invalidElement(n)
		}
		switch s := strings.TrimSpace(raw); {
		case strings.EqualFold(s, "true"):
			return true, nil
		case strings.EqualFold(s, "false"):
			return false, nil
		default:
			return false, structuralf(n, "Invalid attribute value <%s %s=\"%s\"> in <%s>", n.Name, rule.FlagAttr, raw, v.top().Name)
		}
	default:
		return false, v.invalidElement(n)
	}
}

func (v *validator) endElement() {
	if v.item != nil {
		if !v.item.resolved {
			diag.Verbosef(v.sink, v.item.node.Line, v.item.node.Column, "Removed empty <%s>", v.item.node.Name)
		}
		v.item = nil
		return
	}
	list := v.top()
	list.Trailing = append(list.Trailing, v.att.boundary()...)
	v.stack = v.stack[:len(v.stack)-1]
	if len(v.stack) == 0 {
		v.rootClosed = true
	}
}

func (v *validator) text(n Node) error {
	if v.item == nil {
		return v.unexpected(n)
	}
	if strings.TrimSpace(n.Value) == "" {
		return nil
	}
	v.item.resolved = true
	it := &Item{Text: n.Value, Regex: v.item.regex}
	return v.resolve(v.item.list, it, v.item.node)
}

func itemKey(form ItemForm, it *Item) string {
	switch form {
	case FormPair:
		return it.From + "\x00" + it.To
	case FormFlaggedText:
		if it.Regex {
			return it.Text + "\x01"
		}
		return it.Text + "\x00"
	default:
		return it.Text
	}
}

// resolve files a new item under list, or merges it into the first-seen
// item with the same key.
func (v *validator) resolve(list *SubList, it *Item, n Node) error {
	rule := list.Rule
	it.Key = itemKey(rule.ItemForm, it)
	it.Line, it.Column = n.Line, n.Column
	if first, ok := list.lookup(it.Key); ok {
		v.duplicate(first, it, n)
		return nil
	}
	if rule.check != nil {
		if err := rule.check(it, n, v.sink); err != nil {
			return err
		}
		// A corrected item may now collide with an earlier one.
		if key := itemKey(rule.ItemForm, it); key != it.Key {
			it.Key = key
			if first, ok := list.lookup(key); ok {
				v.duplicate(first, it, n)
				return nil
			}
		}
	}
	list.add(it)
	v.att.resolved(it)
	return nil
}

func (v *validator) duplicate(first, dup *Item, n Node) {
	var what string
	if first.Text != "" {
		what = fmt.Sprintf("»%s«", dup.Text)
	} else {
		what = fmt.Sprintf("|%s| ==> |%s|", dup.From, dup.To)
	}
	diag.Verbosef(v.sink, n.Line, n.Column, "Removed duplicate %s (first seen at line %d column %d)", what, first.Line, first.Column)
	v.att.resolved(first)
}
