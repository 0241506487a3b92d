package printer

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// ESC/POS control bytes
const (
	esc = 0x1B
	gs  = 0x1D
	lf  = 0x0A
)

// Align is the argument of the ESC a command
type Align byte

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// DefaultWidth is the character width of 58mm paper. 80mm paper fits 48.
const DefaultWidth = 32

// Document accumulates an ESC/POS receipt. Widths are counted in runes so
// accented service names line up with ASCII ones.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a document with the printer reset sequence
func NewDocument(width int) *Document {
	if width <= 0 {
		width = DefaultWidth
	}
	d := &Document{width: width}
	d.buf.Write([]byte{esc, '@'})
	return d
}

// Width returns the character width of a line
func (d *Document) Width() int {
	return d.width
}

// Align sets the alignment of the following lines
func (d *Document) Align(a Align) *Document {
	d.buf.Write([]byte{esc, 'a', byte(a)})
	return d
}

// Bold switches emphasized printing
func (d *Document) Bold(on bool) *Document {
	d.buf.Write([]byte{esc, 'E', flag(on)})
	return d
}

// Double switches double width and height
func (d *Document) Double(on bool) *Document {
	size := byte(0x00)
	if on {
		size = 0x11
	}
	d.buf.Write([]byte{gs, '!', size})
	return d
}

// Line writes s as is
func (d *Document) Line(s string) *Document {
	d.write(s)
	return d
}

// Blank writes n empty lines
func (d *Document) Blank(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(lf)
	}
	return d
}

// Rule writes a full-width line of dashes
func (d *Document) Rule() *Document {
	d.write(strings.Repeat("-", d.width))
	return d
}

// Pair writes key on the left and value flush right
func (d *Document) Pair(key, value string) *Document {
	d.pad(key, value)
	return d
}

// Item writes "qty x name" with the line total flush right. Names that do
// not fit continue on indented lines below.
func (d *Document) Item(qty, name, total string) *Document {
	lines := wrap(qty+"x "+name, d.width-runeLen(total)-1, d.width-2)
	d.pad(lines[0], total)
	for _, l := range lines[1:] {
		d.write("  " + l)
	}
	return d
}

// Note writes an indented detail line under an item, cut to the width
func (d *Document) Note(s string) *Document {
	d.write(truncate("  "+s, d.width))
	return d
}

// Finish feeds paper past the tear bar and cuts
func (d *Document) Finish(feed int) *Document {
	d.Blank(feed)
	d.buf.Write([]byte{gs, 'V', 0x01})
	return d
}

// Bytes returns the accumulated stream
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func (d *Document) write(s string) {
	d.buf.WriteString(s)
	d.buf.WriteByte(lf)
}

func (d *Document) pad(left, right string) {
	spaces := d.width - runeLen(left) - runeLen(right)
	if spaces < 1 {
		spaces = 1
	}
	d.write(left + strings.Repeat(" ", spaces) + right)
}

func flag(on bool) byte {
	if on {
		return 1
	}
	return 0
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}

// wrap splits s on spaces into lines of at most first runes for the first
// line and rest runes afterwards. Words longer than a line are cut.
func wrap(s string, first, rest int) []string {
	limit := max(first, 1)
	rest = max(rest, 1)

	var lines []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > 0 {
			need := len(w)
			if len(cur) > 0 {
				need++
			}
			if len(cur)+need <= limit {
				if len(cur) > 0 {
					cur = append(cur, ' ')
				}
				cur = append(cur, w...)
				break
			}
			if len(cur) == 0 {
				cur = append(cur, w[:limit]...)
				w = w[limit:]
			}
			lines = append(lines, string(cur))
			cur = cur[:0]
			limit = rest
		}
	}
	if len(cur) > 0 || len(lines) == 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
