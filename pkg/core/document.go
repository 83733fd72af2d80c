package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PanelType selects the renderer family of a panel.
type PanelType string

// Recognized panel types. Any other value renders as a structural dump.
const (
	PanelData     PanelType = "data"
	PanelLinePlot PanelType = "lineplot"
	PanelImage    PanelType = "image"
	PanelFile     PanelType = "file"
)

// PanelDescriptor describes one named entry of a Document.
type PanelDescriptor struct {
	Type   PanelType
	Data   *Value
	Index  string // independent-variable field, optional
	Slider string // discriminator field for step playback, optional
}

// Document maps panel names to descriptors in insertion order.
// A Document is immutable once handed to a renderer; a refetch replaces it.
type Document struct {
	names  []string
	panels map[string]*PanelDescriptor
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{panels: map[string]*PanelDescriptor{}}
}

// Add appends a panel. Re-adding a name replaces its descriptor in place.
func (d *Document) Add(name string, desc *PanelDescriptor) {
	if _, ok := d.panels[name]; !ok {
		d.names = append(d.names, name)
	}
	d.panels[name] = desc
}

// Names returns panel names in document order.
func (d *Document) Names() []string {
	if d == nil {
		return nil
	}
	return d.names
}

// Panel returns the descriptor for name.
func (d *Document) Panel(name string) (*PanelDescriptor, bool) {
	if d == nil {
		return nil, false
	}
	p, ok := d.panels[name]
	return p, ok
}

// Len returns the number of panels.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// MarshalJSON encodes the document as {"name": {"type", "data", "index", "slider"}}.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range d.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(name)
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(d.panels[name].toValue().Compact())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *PanelDescriptor) toValue() *Value {
	m := NewMap()
	m.Set("data", p.Data)
	m.Set("type", String(string(p.Type)))
	if p.Index != "" {
		m.Set("index", String(p.Index))
	} else {
		m.Set("index", Null())
	}
	if p.Slider != "" {
		m.Set("slider", String(p.Slider))
	} else {
		m.Set("slider", Null())
	}
	return m
}

// ParseDocument decodes a document as served by the data endpoint.
// Entries that are not objects become descriptors without a type, which
// render as a structural dump of the entry.
func ParseDocument(data []byte) (*Document, error) {
	root, err := ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if !root.IsMap() {
		return nil, fmt.Errorf("decoding document: expected object, got %s", root.Kind())
	}
	doc := NewDocument()
	for _, name := range root.Keys() {
		entry, _ := root.Get(name)
		doc.Add(name, DescriptorFromValue(entry))
	}
	return doc, nil
}

// DescriptorFromValue reads a descriptor out of a decoded panel entry.
func DescriptorFromValue(entry *Value) *PanelDescriptor {
	if !entry.IsMap() {
		return &PanelDescriptor{Data: entry}
	}
	desc := &PanelDescriptor{}
	if data, ok := entry.Get("data"); ok {
		desc.Data = data
	}
	if t, ok := entry.Get("type"); ok && t.Kind() == KindString {
		desc.Type = PanelType(t.Text())
	}
	desc.Index = fieldName(entry, "index")
	desc.Slider = fieldName(entry, "slider")
	return desc
}

// fieldName accepts a field given as a string or as a list whose first string
// item names the field.
func fieldName(entry *Value, key string) string {
	v, ok := entry.Get(key)
	if !ok {
		return ""
	}
	switch v.Kind() {
	case KindString:
		return v.Text()
	case KindList:
		for _, item := range v.Items() {
			if item.Kind() == KindString {
				return item.Text()
			}
		}
	}
	return ""
}
