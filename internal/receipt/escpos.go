package receipt

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ESC/POS command bytes.
var (
	cmdInit        = []byte{0x1B, 0x40}
	cmdCodePage850 = []byte{0x1B, 0x74, 0x02}
	cmdBoldOn      = []byte{0x1B, 0x45, 0x01}
	cmdBoldOff     = []byte{0x1B, 0x45, 0x00}
	cmdFeedCut     = []byte{0x1D, 0x56, 0x42, 0x00}
)

type align byte

const (
	alignLeft   align = 0
	alignCenter align = 1
	alignRight  align = 2
)

// encoder accumulates an ESC/POS byte stream. Text is transcoded to code page
// 850; characters it cannot represent become '?'.
type encoder struct {
	buf bytes.Buffer
	enc *encoding.Encoder
}

func newEncoder() *encoder {
	e := &encoder{enc: encoding.ReplaceUnsupported(charmap.CodePage850.NewEncoder())}
	e.buf.Write(cmdInit)
	e.buf.Write(cmdCodePage850)
	return e
}

func (e *encoder) align(a align) *encoder {
	e.buf.Write([]byte{0x1B, 0x61, byte(a)})
	return e
}

func (e *encoder) bold(on bool) *encoder {
	if on {
		e.buf.Write(cmdBoldOn)
	} else {
		e.buf.Write(cmdBoldOff)
	}
	return e
}

func (e *encoder) line(s string) *encoder {
	b, err := e.enc.Bytes([]byte(s))
	if err != nil {
		b = []byte(strings.Map(asciiOnly, s))
	}
	e.buf.Write(b)
	e.buf.WriteByte('\n')
	return e
}

func (e *encoder) newline() *encoder {
	e.buf.WriteByte('\n')
	return e
}

func (e *encoder) cut() *encoder {
	e.buf.Write(cmdFeedCut)
	return e
}

func (e *encoder) bytes() []byte { return e.buf.Bytes() }

func asciiOnly(r rune) rune {
	if r < 0x80 {
		return r
	}
	return '?'
}

// Encode renders r as an ESC/POS byte stream: bold centered header, timestamp,
// one line per item, right-aligned total, centered footer, feed and cut.
func Encode(r Receipt, l Layout) []byte {
	width := l.Width
	if width <= 0 {
		width = 32
	}
	rule := strings.Repeat("-", width/2)

	e := newEncoder()
	e.align(alignCenter).bold(true).line(l.StoreName)
	if r.Title != "" {
		e.line(r.Title)
	}
	e.bold(false)

	e.align(alignLeft).line(l.FormatTime(r.Time))
	if r.ClientName != "" {
		e.line("Client: " + r.ClientName)
	}
	e.line(rule)
	for _, it := range r.Lines {
		e.line(fmt.Sprintf("%s ... %d x %s", it.Name, it.Quantity, it.UnitPrice.StringFixed(2)))
	}
	e.line(rule)

	e.align(alignRight).bold(true).line(fmt.Sprintf("TOTAL: %s %s", r.Total.StringFixed(2), l.Currency)).bold(false)
	e.align(alignCenter).line(l.Footer)
	e.newline().newline()
	e.cut()
	return e.bytes()
}
