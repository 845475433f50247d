// Package envelope implements the binary envelope carried by routed
// payloads. An envelope holds the work-unit identifier, an optional target,
// the owner key and an ordered list of name/value tags.
//
// Wire layout (big endian):
//
//	byte    version (currently 1)
//	field   id, target, owner  (uint16 length + bytes each)
//	uint16  tag count
//	field   name, value per tag
//
// Tag order is part of the encoding and is preserved on parse.
package envelope

import (
	"encoding/binary"
	"fmt"
)

// Version is the only supported envelope version.
const Version = 1

// Tag is a single name/value pair.
type Tag struct {
	Name  string
	Value string
}

// Item is a parsed envelope.
type Item struct {
	ID     string
	Target string
	Owner  string
	Tags   []Tag
}

// Tag returns the value of the first tag matching any of the given names,
// scanning in encoding order.
func (i *Item) Tag(names ...string) (string, bool) {
	for _, tag := range i.Tags {
		for _, name := range names {
			if tag.Name == name {
				return tag.Value, true
			}
		}
	}
	return "", false
}

// Parse decodes a binary envelope.
func Parse(data []byte) (*Item, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty envelope")
	}
	if data[0] != Version {
		return nil, fmt.Errorf("unsupported envelope version %d", data[0])
	}

	d := decoder{buf: data, off: 1}
	item := &Item{}

	var err error
	if item.ID, err = d.field("id"); err != nil {
		return nil, err
	}
	if item.Target, err = d.field("target"); err != nil {
		return nil, err
	}
	if item.Owner, err = d.field("owner"); err != nil {
		return nil, err
	}

	count, err := d.uint16("tag count")
	if err != nil {
		return nil, err
	}
	for n := 0; n < int(count); n++ {
		var tag Tag
		if tag.Name, err = d.field("tag name"); err != nil {
			return nil, err
		}
		if tag.Value, err = d.field("tag value"); err != nil {
			return nil, err
		}
		item.Tags = append(item.Tags, tag)
	}

	if d.off != len(d.buf) {
		return nil, fmt.Errorf("envelope has %d trailing bytes", len(d.buf)-d.off)
	}
	return item, nil
}

// Encode serializes the item into its binary form.
func (i *Item) Encode() []byte {
	buf := []byte{Version}
	buf = appendField(buf, i.ID)
	buf = appendField(buf, i.Target)
	buf = appendField(buf, i.Owner)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(i.Tags)))
	for _, tag := range i.Tags {
		buf = appendField(buf, tag.Name)
		buf = appendField(buf, tag.Value)
	}
	return buf
}

func appendField(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) uint16(what string) (uint16, error) {
	if d.off+2 > len(d.buf) {
		return 0, fmt.Errorf("envelope truncated reading %s", what)
	}
	v := binary.BigEndian.Uint16(d.buf[d.off:])
	d.off += 2
	return v, nil
}

func (d *decoder) field(what string) (string, error) {
	n, err := d.uint16(what)
	if err != nil {
		return "", err
	}
	if d.off+int(n) > len(d.buf) {
		return "", fmt.Errorf("envelope truncated reading %s", what)
	}
	s := string(d.buf[d.off : d.off+int(n)])
	d.off += int(n)
	return s, nil
}
