package wordlist

import (
	"io"
	"strings"

	"github.com/beevik/etree"
)

const indentUnit = "  "

// WriteTo writes the canonical form of the document: categories in schema
// order, items sorted, comments restored next to their owners.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	x := etree.NewDocument()
	x.WriteSettings.CanonicalText = true
	x.WriteSettings.CanonicalAttrVal = true

	if d.HasDeclaration {
		x.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
		x.CreateText("\n")
	}
	for _, c := range d.Leading {
		appendComment(&x.Element, c)
		x.CreateText("\n")
	}
	root := x.CreateElement(d.Root.Name)
	emitList(root, d.Root)
	x.CreateText("\n")
	for _, c := range d.Trailing {
		appendComment(&x.Element, c)
		x.CreateText("\n")
	}

	var n int64
	if d.BOM {
		m, err := w.Write(utf8BOM)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	m, err := x.WriteTo(w)
	return n + m, err
}

func appendComment(el *etree.Element, c Comment) {
	if c.Kind == KindCDATA {
		el.CreateCData(c.Text)
		return
	}
	el.CreateComment(c.Text)
}

// emitList fills el with the content of sl. An element left without
// children is written self-closing.
func emitList(el *etree.Element, sl *SubList) {
	indent := "\n" + strings.Repeat(indentUnit, sl.Depth+1)
	for _, child := range sl.Children {
		for _, c := range child.Leading {
			el.CreateText(indent)
			appendComment(el, c)
		}
		el.CreateText(indent)
		emitList(el.CreateElement(child.Name), child)
	}
	rule := sl.Rule
	for _, it := range sl.Items {
		for _, c := range it.Leading {
			el.CreateText(indent)
			appendComment(el, c)
		}
		el.CreateText(indent)
		ie := el.CreateElement(rule.ItemName)
		switch rule.ItemForm {
		case FormPair:
			ie.CreateAttr(rule.KeyAttr, it.From)
			ie.CreateAttr(rule.ValueAttr, it.To)
		case FormFlaggedText:
			if it.Regex {
				ie.CreateAttr(rule.FlagAttr, "True")
			}
			ie.SetText(it.Text)
		default:
			ie.SetText(it.Text)
		}
		for _, c := range it.Trailing {
			el.CreateText(" ")
			appendComment(el, c)
		}
	}
	for _, c := range sl.Trailing {
		el.CreateText(indent)
		appendComment(el, c)
	}
	if len(el.Child) > 0 {
		el.CreateText("\n" + strings.Repeat(indentUnit, sl.Depth))
	}
}
