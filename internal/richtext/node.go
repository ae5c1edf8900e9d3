// Package richtext renders editor documents stored as JSON node trees.
package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Format is the text formatting bitmask carried by text nodes.
type Format int

const (
	Bold Format = 1 << iota
	Italic
	Strikethrough
	Underline
	Code
)

// Has reports whether every bit of f2 is set.
func (f Format) Has(f2 Format) bool { return f&f2 == f2 }

// UnmarshalJSON accepts the numeric bitmask of text nodes. Element nodes use
// the same key for alignment strings, which decode to zero.
func (f *Format) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '-' && (data[0] < '0' || data[0] > '9') {
		*f = 0
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("richtext: format: %w", err)
	}
	*f = Format(n)
	return nil
}

// Media is the populated document behind an upload node.
type Media struct {
	URL      string `json:"url"`
	Alt      string `json:"alt,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// UnmarshalJSON decodes a populated media document. Unpopulated relation
// ids decode to an empty Media.
func (m *Media) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*m = Media{}
		return nil
	}
	type plain Media
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Media(p)
	return nil
}

// Node is one element of a rich-text tree.
type Node struct {
	Type     string
	Tag      string
	ListType string
	// Ordinal is the explicit number of a list item, zero when absent.
	Ordinal  int
	Text     string
	Format   Format
	URL      string
	NewTab   bool
	Upload   *Media
	Children []Node
}

type linkFields struct {
	URL    string `json:"url"`
	NewTab bool   `json:"newTab"`
}

type nodeJSON struct {
	Type     string          `json:"type"`
	Tag      string          `json:"tag,omitempty"`
	ListType string          `json:"listType,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Text     string          `json:"text,omitempty"`
	Format   Format          `json:"format,omitempty"`
	URL      string          `json:"url,omitempty"`
	NewTab   bool            `json:"newTab,omitempty"`
	Fields   *linkFields     `json:"fields,omitempty"`
	Children []Node          `json:"children,omitempty"`
}

// UnmarshalJSON decodes a node. "value" is a list item ordinal when numeric
// and the uploaded media document when it is an object; link targets may sit
// at the top level or under "fields".
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node{
		Type:     raw.Type,
		Tag:      raw.Tag,
		ListType: raw.ListType,
		Text:     raw.Text,
		Format:   raw.Format,
		URL:      raw.URL,
		NewTab:   raw.NewTab,
		Children: raw.Children,
	}
	if raw.Fields != nil {
		if n.URL == "" {
			n.URL = raw.Fields.URL
		}
		n.NewTab = n.NewTab || raw.Fields.NewTab
	}
	v := bytes.TrimSpace(raw.Value)
	if len(v) == 0 {
		return nil
	}
	switch v[0] {
	case '{':
		var m Media
		if err := json.Unmarshal(v, &m); err != nil {
			return fmt.Errorf("richtext: upload value: %w", err)
		}
		n.Upload = &m
	case '"', 'n':
		// unpopulated relation id or null
	default:
		var ordinal float64
		if err := json.Unmarshal(v, &ordinal); err == nil {
			n.Ordinal = int(ordinal)
		}
	}
	return nil
}

// MarshalJSON writes the node back in the editor layout.
func (n Node) MarshalJSON() ([]byte, error) {
	raw := nodeJSON{
		Type:     n.Type,
		Tag:      n.Tag,
		ListType: n.ListType,
		Text:     n.Text,
		URL:      n.URL,
		NewTab:   n.NewTab,
		Children: n.Children,
	}
	var format *int
	if n.Type == "text" {
		f := int(n.Format)
		format = &f
	}
	switch {
	case n.Upload != nil:
		b, err := json.Marshal(n.Upload)
		if err != nil {
			return nil, err
		}
		raw.Value = b
	case n.Ordinal != 0:
		raw.Value = json.RawMessage(fmt.Sprint(n.Ordinal))
	}
	return json.Marshal(struct {
		nodeJSON
		Format *int `json:"format,omitempty"`
	}{raw, format})
}

// Content is a rich-text field value: empty, legacy pre-rendered HTML, or a
// node tree.
type Content struct {
	html string
	root *Node
}

// FromHTML wraps pre-rendered markup. It is emitted verbatim.
func FromHTML(s string) Content { return Content{html: s} }

// FromNode wraps a node tree.
func FromNode(n Node) Content { return Content{root: &n} }

// IsZero reports whether the content renders nothing.
func (c Content) IsZero() bool { return c.root == nil && c.html == "" }

// Root returns the tree, or nil for empty and legacy content.
func (c Content) Root() *Node { return c.root }

// UnmarshalJSON accepts null, a JSON string, {"root": {...}} or a bare node.
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = Content{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &c.html)
	case '{':
		var wrapped struct {
			Root *Node `json:"root"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		if wrapped.Root != nil {
			c.root = wrapped.Root
			return nil
		}
		var n Node
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		c.root = &n
		return nil
	default:
		return fmt.Errorf("richtext: unsupported content %.20s", data)
	}
}

// MarshalJSON writes the same shapes UnmarshalJSON reads.
func (c Content) MarshalJSON() ([]byte, error) {
	switch {
	case c.root != nil:
		return json.Marshal(struct {
			Root *Node `json:"root"`
		}{c.root})
	case c.html != "":
		return json.Marshal(c.html)
	default:
		return []byte("null"), nil
	}
}
