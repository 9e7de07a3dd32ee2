package wordlist

import (
	"fmt"
	"path/filepath"

	"github.com/xylographe/SE-WordListValidator/internal/diag"
)

// Layout is the structural variant of a list node.
type Layout uint8

const (
	// LayoutFlat holds bare-text items only.
	LayoutFlat Layout = iota
	// LayoutHierarchical holds child categories, and possibly items.
	LayoutHierarchical
	// LayoutAttributedLeaf holds self-closing items carrying two attributes.
	LayoutAttributedLeaf
)

// ItemForm describes how the items of a list are written.
type ItemForm uint8

const (
	FormNone        ItemForm = iota
	FormText                 // <word>text</word>
	FormFlaggedText          // <Item RegEx="True">text</Item>
	FormPair                 // <Word from="a" to="b" />
)

// itemCheck validates a newly seen item. It may rewrite the item in place;
// a returned error is structural and aborts the file.
type itemCheck func(it *Item, n Node, sink diag.Sink) error

// ListRule declares one element of a dictionary schema.
type ListRule struct {
	Name     string
	Layout   Layout
	Children []*ListRule

	ItemName string
	ItemForm ItemForm
	// FoldItemName accepts the item element name in any letter case.
	FoldItemName bool
	// KeyAttr and ValueAttr name the attributes of FormPair items.
	KeyAttr   string
	ValueAttr string
	// FlagAttr names the optional boolean attribute of FormFlaggedText items.
	FlagAttr string

	check itemCheck
}

// child returns the child rule named name.
func (r *ListRule) child(name string) *ListRule {
	for _, c := range r.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// matchesItem reports whether name is this rule's item element.
func (r *ListRule) matchesItem(name string) bool {
	if r.ItemForm == FormNone {
		return false
	}
	if r.FoldItemName {
		return equalFoldASCII(name, r.ItemName)
	}
	return name == r.ItemName
}

// Schema is the immutable structure of one dictionary kind.
type Schema struct {
	Kind Kind
	Root *ListRule
}

type replaceCategory struct {
	name     string
	itemName string
	regex    bool
}

// replaceCategories is the canonical category order of replace lists.
var replaceCategories = []replaceCategory{
	{name: "WholeWords", itemName: "Word"},
	{name: "PartialWords", itemName: "WordPart"},
	{name: "PartialWordsAlways", itemName: "WordPart"},
	{name: "PartialLines", itemName: "LinePart"},
	{name: "PartialLinesAlways", itemName: "LinePart"},
	{name: "BeginLines", itemName: "Beginning"},
	{name: "EndLines", itemName: "Ending"},
	{name: "WholeLines", itemName: "Line"},
	{name: "RegularExpressions", itemName: "RegEx", regex: true},
}

// SchemaFor builds the schema for kind. fileName selects variants: the
// names list drops its blacklist category for a file named exactly names.xml.
func SchemaFor(kind Kind, fileName string) (*Schema, error) {
	switch kind {
	case ReplaceList:
		return replaceListSchema(), nil
	case NoBreakAfterList:
		return &Schema{Kind: kind, Root: &ListRule{
			Name:     "NoBreakAfterList",
			Layout:   LayoutFlat,
			ItemName: "Item",
			ItemForm: FormFlaggedText,
			FlagAttr: "RegEx",
			check:    checkFlaggedRegex,
		}}, nil
	case NamesList:
		root := &ListRule{
			Name:     "names",
			Layout:   LayoutHierarchical,
			ItemName: "name",
			ItemForm: FormText,
		}
		if filepath.Base(fileName) != "names.xml" {
			root.Children = []*ListRule{{
				Name:     "blacklist",
				Layout:   LayoutFlat,
				ItemName: "name",
				ItemForm: FormText,
			}}
		} else {
			root.Layout = LayoutFlat
		}
		return &Schema{Kind: kind, Root: root}, nil
	case UserList:
		return &Schema{Kind: kind, Root: &ListRule{
			Name:         "words",
			Layout:       LayoutFlat,
			ItemName:     "word",
			ItemForm:     FormText,
			FoldItemName: true,
		}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

func replaceListSchema() *Schema {
	root := &ListRule{Name: "OCRFixReplaceList", Layout: LayoutHierarchical}
	for _, c := range replaceCategories {
		rule := &ListRule{
			Name:      c.name,
			Layout:    LayoutAttributedLeaf,
			ItemName:  c.itemName,
			ItemForm:  FormPair,
			KeyAttr:   "from",
			ValueAttr: "to",
		}
		if c.regex {
			rule.KeyAttr = "find"
			rule.ValueAttr = "replaceWith"
			rule.check = checkRegexReplacement
		}
		root.Children = append(root.Children, rule)
	}
	return &Schema{Kind: ReplaceList, Root: root}
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
