package wordlist

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

// NodeKind classifies the nodes produced by a Reader.
type NodeKind uint8

const (
	NodeElement NodeKind = iota + 1
	NodeEndElement
	NodeText
	NodeWhitespace
	NodeComment
	NodeCDATA
	NodeXMLDeclaration
	NodeProcessingInstruction
	NodeDocumentType
)

func (k NodeKind) String() string {
	switch k {
	case NodeElement:
		return "Element"
	case NodeEndElement:
		return "EndElement"
	case NodeText:
		return "Text"
	case NodeWhitespace:
		return "Whitespace"
	case NodeComment:
		return "Comment"
	case NodeCDATA:
		return "CDATA"
	case NodeXMLDeclaration:
		return "XmlDeclaration"
	case NodeProcessingInstruction:
		return "ProcessingInstruction"
	case NodeDocumentType:
		return "DocumentType"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Attr is one attribute of an element node.
type Attr struct {
	Name  string
	Value string
}

// Node is one token of the input document.
type Node struct {
	Kind        NodeKind
	Depth       int
	Name        string
	Attrs       []Attr
	Value       string
	SelfClosing bool
	Line        int
	Column      int
}

// Attr returns the value of the attribute named name.
func (n Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var declEncoding = regexp.MustCompile(`^<\?xml[^>]*?\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

type position struct {
	line, col int
	offset    int64
}

type stashed struct {
	tok xml.Token
	err error
	pos position
}

// Reader is a forward-only pull reader over an XML dictionary. It reports
// self-closing elements with a flag instead of a separate end node.
type Reader struct {
	dec   *xml.Decoder
	src   []byte
	open  int
	stash *stashed

	// BOM reports whether the input started with a UTF-8 byte-order mark.
	BOM bool
}

// NewReader reads r fully and prepares it for tokenizing. Input in a
// declared non-UTF-8 encoding is transcoded to UTF-8.
func NewReader(r io.Reader) (*Reader, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	rd := &Reader{}
	if bytes.HasPrefix(src, utf8BOM) {
		src = src[len(utf8BOM):]
		rd.BOM = true
	}
	if m := declEncoding.FindSubmatch(src); m != nil {
		label := strings.ToLower(string(m[1]))
		if label != "utf-8" && label != "utf8" {
			cr, err := charset.NewReaderLabel(label, bytes.NewReader(src))
			if err != nil {
				return nil, &StructuralError{Line: 1, Column: 1, Msg: fmt.Sprintf("unsupported encoding %q", m[1]), Err: err}
			}
			if src, err = io.ReadAll(cr); err != nil {
				return nil, fmt.Errorf("transcode %s: %w", label, err)
			}
		}
	}
	rd.src = src
	rd.dec = xml.NewDecoder(bytes.NewReader(src))
	rd.dec.Strict = true
	// The input is UTF-8 by now whatever the declaration says.
	rd.dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }
	return rd, nil
}

func (rd *Reader) position() position {
	line, col := rd.dec.InputPos()
	return position{line: line, col: col, offset: rd.dec.InputOffset()}
}

func (rd *Reader) next() (xml.Token, position, error) {
	if s := rd.stash; s != nil {
		rd.stash = nil
		return s.tok, s.pos, s.err
	}
	pos := rd.position()
	tok, err := rd.dec.Token()
	return tok, pos, err
}

// Read returns the next node, or io.EOF at the end of the document.
func (rd *Reader) Read() (Node, error) {
	tok, pos, err := rd.next()
	if err != nil {
		return Node{}, rd.wrap(err, pos)
	}
	n := Node{Line: pos.line, Column: pos.col, Depth: rd.open}
	switch t := tok.(type) {
	case xml.StartElement:
		n.Kind = NodeElement
		n.Name = qualified(t.Name)
		for _, a := range t.Attr {
			n.Attrs = append(n.Attrs, Attr{Name: qualified(a.Name), Value: a.Value})
		}
		after := rd.position()
		peek, perr := rd.dec.Token()
		if _, ok := peek.(xml.EndElement); ok && perr == nil && rd.dec.InputOffset() == after.offset {
			n.SelfClosing = true
			return n, nil
		}
		rd.stash = &stashed{tok: xml.CopyToken(peek), err: perr, pos: after}
		rd.open++
	case xml.EndElement:
		rd.open--
		n.Kind = NodeEndElement
		n.Name = qualified(t.Name)
		n.Depth = rd.open
	case xml.CharData:
		n.Value = string(t)
		switch {
		case bytes.HasPrefix(rd.src[pos.offset:], []byte("<![CDATA[")):
			n.Kind = NodeCDATA
		case strings.Trim(n.Value, " \t\r\n") == "":
			n.Kind = NodeWhitespace
		default:
			n.Kind = NodeText
		}
	case xml.Comment:
		n.Kind = NodeComment
		n.Value = string(t)
	case xml.ProcInst:
		n.Name = t.Target
		n.Value = string(t.Inst)
		if t.Target == "xml" {
			n.Kind = NodeXMLDeclaration
		} else {
			n.Kind = NodeProcessingInstruction
		}
	case xml.Directive:
		n.Kind = NodeDocumentType
		n.Value = string(t)
	default:
		return Node{}, &StructuralError{Line: pos.line, Column: pos.col, Msg: fmt.Sprintf("unsupported token %T", tok)}
	}
	return n, nil
}

func (rd *Reader) wrap(err error, pos position) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		line, col := rd.dec.InputPos()
		if se.Line > 0 {
			line = se.Line
		}
		return &StructuralError{Line: line, Column: col, Msg: se.Msg}
	}
	return &StructuralError{Line: pos.line, Column: pos.col, Msg: "malformed document", Err: err}
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
