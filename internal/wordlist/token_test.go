package wordlist

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) []Node {
	t.Helper()
	rd, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)
	var nodes []Node
	for {
		n, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return nodes
		}
		require.NoError(t, err)
		nodes = append(nodes, n)
	}
}

func TestReaderNodes(t *testing.T) {
	nodes := readAll(t, "<a>\n <b x=\"1\"/><c>t</c><![CDATA[z]]><!--m--></a>")

	kinds := make([]NodeKind, len(nodes))
	for i, n := range nodes {
		kinds[i] = n.Kind
	}
	assert.Equal(t, []NodeKind{
		NodeElement, NodeWhitespace, NodeElement, NodeElement, NodeText,
		NodeEndElement, NodeCDATA, NodeComment, NodeEndElement,
	}, kinds)

	a, b, c, text := nodes[0], nodes[2], nodes[3], nodes[4]
	assert.Equal(t, 0, a.Depth)
	assert.False(t, a.SelfClosing)

	assert.True(t, b.SelfClosing)
	assert.Equal(t, 1, b.Depth)
	assert.Equal(t, 2, b.Line)
	assert.Equal(t, 2, b.Column)
	v, ok := b.Attr("x")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	assert.False(t, c.SelfClosing)
	assert.Equal(t, 2, text.Depth)
	assert.Equal(t, "t", text.Value)

	assert.Equal(t, "z", nodes[6].Value)
	assert.Equal(t, "m", nodes[7].Value)
	assert.Equal(t, 0, nodes[8].Depth)
}

func TestReaderDeclarationAndBOM(t *testing.T) {
	rd, err := NewReader(strings.NewReader("\ufeff<?xml version=\"1.0\"?><a/>"))
	require.NoError(t, err)
	assert.True(t, rd.BOM)

	n, err := rd.Read()
	require.NoError(t, err)
	assert.Equal(t, NodeXMLDeclaration, n.Kind)

	n, err = rd.Read()
	require.NoError(t, err)
	assert.Equal(t, NodeElement, n.Kind)
	assert.True(t, n.SelfClosing)

	_, err = rd.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderEmptyElementIsNotSelfClosing(t *testing.T) {
	nodes := readAll(t, "<a></a>")
	require.Len(t, nodes, 2)
	assert.False(t, nodes[0].SelfClosing)
	assert.Equal(t, NodeEndElement, nodes[1].Kind)
}

func TestReaderSyntaxError(t *testing.T) {
	rd, err := NewReader(strings.NewReader("<a>\n<b></a>"))
	require.NoError(t, err)
	for {
		_, err = rd.Read()
		if err != nil {
			break
		}
	}
	var se *StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Line)
}
