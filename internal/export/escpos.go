package export

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const (
	esc = 0x1B
	gs  = 0x1D
	lf  = 0x0A
)

type align byte

const (
	alignLeft   align = 0
	alignCenter align = 1
)

const (
	fontNormal byte = 0x00
	fontDouble byte = 0x11
)

// escposDoc accumulates an ESC/POS byte stream. width is the line width in
// characters: 32 on 58mm paper, 48 on 80mm.
type escposDoc struct {
	buf   bytes.Buffer
	width int
}

func newESCPOSDoc(width int) *escposDoc {
	if width <= 0 {
		width = 32
	}
	d := &escposDoc{width: width}
	d.buf.Write([]byte{esc, '@'})
	return d
}

func (d *escposDoc) align(a align) *escposDoc {
	d.buf.Write([]byte{esc, 'a', byte(a)})
	return d
}

func (d *escposDoc) bold(on bool) *escposDoc {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{esc, 'E', b})
	return d
}

func (d *escposDoc) fontSize(size byte) *escposDoc {
	d.buf.Write([]byte{gs, '!', size})
	return d
}

func (d *escposDoc) text(s string) *escposDoc {
	d.buf.WriteString(s)
	d.buf.WriteByte(lf)
	return d
}

func (d *escposDoc) separator() *escposDoc {
	return d.text(strings.Repeat("-", d.width))
}

// keyValue prints key flush left and value flush right on one line.
// The key is cut when both do not fit.
func (d *escposDoc) keyValue(key, value string) *escposDoc {
	room := d.width - utf8.RuneCountInString(value) - 1
	if room < 1 {
		room = 1
	}
	key = truncate(key, room)
	spaces := d.width - utf8.RuneCountInString(key) - utf8.RuneCountInString(value)
	if spaces < 1 {
		spaces = 1
	}
	return d.text(key + strings.Repeat(" ", spaces) + value)
}

func (d *escposDoc) feed(n int) *escposDoc {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(lf)
	}
	return d
}

func (d *escposDoc) partialCut() *escposDoc {
	d.buf.Write([]byte{gs, 'V', 0x01})
	return d
}

func (d *escposDoc) bytes() []byte { return d.buf.Bytes() }

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
