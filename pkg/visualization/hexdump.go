/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: hexdump.go
Description: Hex dump rendering. Plain dumps, dumps with structure start bytes marked,
and terminal dumps where every byte is coloured by its character class.
*/

package visualization

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/kleascm/hexaminer/pkg/core"
)

// DefaultWidth is the number of bytes per line when a non-positive width is given
const DefaultWidth = 16

// ByteClass groups byte values for colouring
type ByteClass int

const (
	ClassUpper ByteClass = iota
	ClassLower
	ClassDigit
	ClassSpace
	ClassPunct
	ClassNull
	ClassControl
	ClassExtendedControl
	ClassHigh
)

// String returns the class name
func (c ByteClass) String() string {
	switch c {
	case ClassUpper:
		return "uppercase"
	case ClassLower:
		return "lowercase"
	case ClassDigit:
		return "digit"
	case ClassSpace:
		return "space"
	case ClassPunct:
		return "punctuation"
	case ClassNull:
		return "null"
	case ClassControl:
		return "control"
	case ClassExtendedControl:
		return "extended control"
	default:
		return "high"
	}
}

// ClassifyByte returns the colouring class of b
func ClassifyByte(b byte) ByteClass {
	switch {
	case b >= 'A' && b <= 'Z':
		return ClassUpper
	case b >= 'a' && b <= 'z':
		return ClassLower
	case b >= '0' && b <= '9':
		return ClassDigit
	case b == ' ':
		return ClassSpace
	case b > ' ' && b <= '~':
		return ClassPunct
	case b == 0:
		return ClassNull
	case b < ' ':
		return ClassControl
	case b >= 0x7F && b <= 0x9F:
		return ClassExtendedControl
	default:
		return ClassHigh
	}
}

// palette maps each byte class to a terminal colour
type palette struct {
	offset  *color.Color
	classes map[ByteClass]*color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		offset: color.New(color.FgHiBlack),
		classes: map[ByteClass]*color.Color{
			ClassUpper:           color.New(color.FgGreen),
			ClassLower:           color.New(color.FgCyan),
			ClassDigit:           color.New(color.FgYellow),
			ClassSpace:           color.New(color.FgHiBlack),
			ClassPunct:           color.New(color.FgMagenta),
			ClassNull:            color.New(color.FgRed, color.Faint),
			ClassControl:         color.New(color.FgRed),
			ClassExtendedControl: color.New(color.FgYellow, color.Faint),
			ClassHigh:            color.New(color.FgBlue),
		},
	}

	all := []*color.Color{p.offset}
	for _, c := range p.classes {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// FormatHexDump renders data as "offset  hex  ascii" lines. offset labels the first byte.
func FormatHexDump(data []byte, offset int64, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}

	var sb strings.Builder
	pos := offset
	for i := 0; i < len(data); i += width {
		line := data[i:min(i+width, len(data))]

		hex := make([]string, len(line))
		for j, b := range line {
			hex[j] = fmt.Sprintf("%02x", b)
		}

		sb.WriteString(fmt.Sprintf("%08x  %-*s  %s\n", pos, width*3-1, strings.Join(hex, " "), printable(line)))
		pos += int64(len(line))
	}

	return sb.String()
}

// HighlightStructures renders data with the first byte of every structure in result
// (children included) wrapped in brackets. Structure offsets index into data.
func HighlightStructures(data []byte, result *core.AnalysisResult, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}

	starts := make(map[int64]bool)
	if result != nil {
		collectStarts(result.Structures, starts)
	}

	var sb strings.Builder
	for i := 0; i < len(data); i += width {
		line := data[i:min(i+width, len(data))]

		var hex strings.Builder
		for j, b := range line {
			if starts[int64(i+j)] {
				hex.WriteString(fmt.Sprintf("[%02x]", b))
			} else {
				hex.WriteString(fmt.Sprintf(" %02x ", b))
			}
		}
		hex.WriteString(strings.Repeat("    ", width-len(line)))

		sb.WriteString(fmt.Sprintf("%08x  %s  %s\n", i, hex.String(), printable(line)))
	}

	return sb.String()
}

func collectStarts(structures []core.Structure, starts map[int64]bool) {
	for _, s := range structures {
		starts[s.Offset] = true
		collectStarts(s.Children, starts)
	}
}

// ColorizedHexDump writes a dump to w with bytes coloured by ClassifyByte.
// When colors is false the layout is the same without escape codes.
func ColorizedHexDump(w io.Writer, data []byte, offset int64, width int, colors bool) error {
	if width <= 0 {
		width = DefaultWidth
	}
	p := newPalette(colors)

	pos := offset
	for i := 0; i < len(data); i += width {
		line := data[i:min(i+width, len(data))]

		if _, err := p.offset.Fprintf(w, "%08X  ", pos); err != nil {
			return err
		}

		for _, b := range line {
			if _, err := p.classes[ClassifyByte(b)].Fprintf(w, "%02X ", b); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, strings.Repeat("   ", width-len(line))+" "); err != nil {
			return err
		}

		for _, b := range line {
			if _, err := p.classes[ClassifyByte(b)].Fprint(w, string(printableByte(b))); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		pos += int64(len(line))
	}

	return nil
}

func printable(line []byte) string {
	out := make([]byte, len(line))
	for i, b := range line {
		out[i] = printableByte(b)
	}
	return string(out)
}

func printableByte(b byte) byte {
	if b >= 0x20 && b <= 0x7E {
		return b
	}
	return '.'
}
