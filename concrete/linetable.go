package concrete

import (
	"bytes"
	"fmt"

	"github.com/go-python/pybc/opcode"
)

// LineEntry is one resolved (code-range, location) group: a run of
// instructions sharing the same location. ByteStart/ByteLen always address
// true bytes; the 3.11+ wire format counts in 2-byte code units instead,
// so encodeLocationEntries/decodeLocationEntries convert at the codec
// boundary and every other caller only ever sees bytes.
type LineEntry struct {
	ByteStart, ByteLen int
	Line               int // Absent (abstract.Absent) if this run has no line at all; only the 3.11+ codec round-trips it
	EndLine            int // 3.11+ only; equals Line when absent in earlier formats
	StartCol, EndCol   int // 3.11+ only; Absent in earlier formats
}

const noSource = -1

// ErrMalformedLineTable is returned when a packed line table cannot be
// decoded.
type ErrMalformedLineTable struct{ Reason string }

func (e ErrMalformedLineTable) Error() string {
	return "concrete: malformed line table: " + e.Reason
}

// EncodeLineTable packs entries (ordered, contiguous, non-overlapping) into
// the format version v uses, per spec §6.
func EncodeLineTable(v opcode.Version, firstLineno int, entries []LineEntry) []byte {
	switch {
	case v == opcode.V311 || v == opcode.V312:
		return encodeLocationEntries(entries)
	default:
		return encodeLnotab(firstLineno, entries, v == opcode.V310)
	}
}

// DecodeLineTable unpacks raw, produced for version v starting at
// firstLineno, into ordered LineEntry groups.
func DecodeLineTable(v opcode.Version, firstLineno int, raw []byte) ([]LineEntry, error) {
	switch {
	case v == opcode.V311 || v == opcode.V312:
		return decodeLocationEntries(raw)
	default:
		return decodeLnotab(firstLineno, raw)
	}
}

// --- pre-3.11 (lnotab) format: pairs of (byte_delta u8, line_delta i8) ---
//
// A line delta that doesn't fit in i8 is saturated across multiple pairs
// with a zero byte_delta, and negative deltas are written and read as-is;
// 3.8, 3.9 and 3.10 share the same emit/parse loop below, and negative
// deltas are not rejected on read for 3.8/3.9 input. "No source" runs are
// not represented in this format: encodeLnotab keeps the previous line
// active for an entry whose Line is noSource, and decodeLnotab never
// yields a noSource line.
//
// A pair's byte_delta bytes run at whatever line is already active when
// the pair is read; line_delta then advances the active line for
// whatever comes next (decodeLnotab below). So a LineEntry's own line
// must already be active before its byte_delta is emitted: the line_delta
// that reaches entry i's line has to travel on entry i-1's pair, one
// pair ahead of the entry it makes active.

func encodeLnotab(firstLineno int, entries []LineEntry, allowNegative bool) []byte {
	_ = allowNegative
	buf := new(bytes.Buffer)
	line := firstLineno
	resolve := func(l int) int {
		if l == noSource {
			return line
		}
		return l
	}
	for i, e := range entries {
		if target := resolve(e.Line); target != line {
			emitLnotabPair(buf, 0, target-line)
			line = target
		}
		lineDelta := 0
		if i+1 < len(entries) {
			lineDelta = resolve(entries[i+1].Line) - line
		}
		emitLnotabPair(buf, e.ByteLen, lineDelta)
		line += lineDelta
	}
	return buf.Bytes()
}

func emitLnotabPair(buf *bytes.Buffer, addrDelta, lineDelta int) {
	for addrDelta > 255 {
		buf.WriteByte(255)
		buf.WriteByte(0)
		addrDelta -= 255
	}
	for lineDelta > 127 {
		buf.WriteByte(byte(addrDelta))
		buf.WriteByte(127)
		addrDelta = 0
		lineDelta -= 127
	}
	for lineDelta < -128 {
		buf.WriteByte(byte(addrDelta))
		buf.WriteByte(0x80) // -128 as an i8
		addrDelta = 0
		lineDelta += 128
	}
	buf.WriteByte(byte(addrDelta))
	buf.WriteByte(byte(int8(lineDelta)))
}

func decodeLnotab(firstLineno int, raw []byte) ([]LineEntry, error) {
	if len(raw)%2 != 0 {
		return nil, ErrMalformedLineTable{Reason: "odd-length lnotab"}
	}
	var out []LineEntry
	addr := 0
	line := firstLineno
	for i := 0; i+1 < len(raw); i += 2 {
		addrDelta := int(raw[i])
		lineDelta := int(int8(raw[i+1]))
		if addrDelta > 0 {
			out = appendLineRun(out, addr, addrDelta, line)
			addr += addrDelta
		}
		line += lineDelta
	}
	return out, nil
}

func appendLineRun(out []LineEntry, start, length, line int) []LineEntry {
	if n := len(out); n > 0 && out[n-1].Line == line && out[n-1].ByteStart+out[n-1].ByteLen == start {
		out[n-1].ByteLen += length
		return out
	}
	return append(out, LineEntry{ByteStart: start, ByteLen: length, Line: line, EndLine: line, StartCol: noSource, EndCol: noSource})
}

// --- 3.11+ location entries ---
//
// First byte: 0x80 | code<<3 | (length-1), where length (1..8) is the
// number of code units the entry covers. code selects which of the
// following varint-encoded fields are present.

const (
	locNone      = 0 // no line/column information at all
	locNoColumns = 1 // line-delta only; no columns
	locOneLine   = 2 // line-delta (end_line == line after delta); both columns
	locLong      = 3 // line-delta, end-line-delta, both columns
)

func encodeLocationEntries(entries []LineEntry) []byte {
	buf := new(bytes.Buffer)
	line := 0
	for _, e := range entries {
		remaining := e.ByteLen / 2 // wire format counts in 2-byte code units
		for remaining > 0 {
			chunk := remaining
			if chunk > 8 {
				chunk = 8
			}
			remaining -= chunk

			var code int
			switch {
			case e.Line == noSource:
				code = locNone
			case e.StartCol == noSource:
				code = locNoColumns
			case e.EndLine == e.Line:
				code = locOneLine
			default:
				code = locLong
			}
			buf.WriteByte(0x80 | byte(code<<3) | byte(chunk-1))

			switch code {
			case locNone:
				// no further bytes
			case locNoColumns:
				writeZigzag(buf, int64(e.Line-line))
				line = e.Line
			case locOneLine:
				writeZigzag(buf, int64(e.Line-line))
				line = e.Line
				writeVarUint(buf, uint64(e.StartCol))
				writeVarUint(buf, uint64(e.EndCol))
			case locLong:
				writeZigzag(buf, int64(e.Line-line))
				line = e.Line
				writeVarUint(buf, uint64(e.EndLine-e.Line))
				writeVarUint(buf, uint64(e.StartCol))
				writeVarUint(buf, uint64(e.EndCol))
			}
		}
	}
	return buf.Bytes()
}

func decodeLocationEntries(raw []byte) ([]LineEntry, error) {
	r := bytes.NewReader(raw)
	var out []LineEntry
	line := 0
	addr := 0
	for r.Len() > 0 {
		first, _ := r.ReadByte()
		if first&0x80 == 0 {
			return nil, ErrMalformedLineTable{Reason: fmt.Sprintf("entry byte %#x missing marker bit", first)}
		}
		code := int(first>>3) & 0xf
		units := int(first&0x7) + 1
		length := units * 2 // LineEntry addresses true bytes; the wire format counts code units

		entry := LineEntry{ByteStart: addr, ByteLen: length, StartCol: noSource, EndCol: noSource}
		switch code {
		case locNone:
			entry.Line, entry.EndLine = noSource, noSource
		case locNoColumns:
			delta, err := readZigzag(r)
			if err != nil {
				return nil, ErrMalformedLineTable{Reason: err.Error()}
			}
			line += int(delta)
			entry.Line, entry.EndLine = line, line
		case locOneLine:
			delta, err := readZigzag(r)
			if err != nil {
				return nil, ErrMalformedLineTable{Reason: err.Error()}
			}
			line += int(delta)
			entry.Line, entry.EndLine = line, line
			sc, err := readVarUint(r)
			if err != nil {
				return nil, ErrMalformedLineTable{Reason: err.Error()}
			}
			ec, err := readVarUint(r)
			if err != nil {
				return nil, ErrMalformedLineTable{Reason: err.Error()}
			}
			entry.StartCol, entry.EndCol = int(sc), int(ec)
		case locLong:
			delta, err := readZigzag(r)
			if err != nil {
				return nil, ErrMalformedLineTable{Reason: err.Error()}
			}
			line += int(delta)
			entry.Line = line
			endDelta, err := readVarUint(r)
			if err != nil {
				return nil, ErrMalformedLineTable{Reason: err.Error()}
			}
			entry.EndLine = line + int(endDelta)
			sc, err := readVarUint(r)
			if err != nil {
				return nil, ErrMalformedLineTable{Reason: err.Error()}
			}
			ec, err := readVarUint(r)
			if err != nil {
				return nil, ErrMalformedLineTable{Reason: err.Error()}
			}
			entry.StartCol, entry.EndCol = int(sc), int(ec)
		default:
			return nil, ErrMalformedLineTable{Reason: fmt.Sprintf("unknown location code %d", code)}
		}
		addr += length
		if n := len(out); n > 0 && out[n-1].Line == entry.Line && out[n-1].EndLine == entry.EndLine &&
			out[n-1].StartCol == entry.StartCol && out[n-1].EndCol == entry.EndCol {
			out[n-1].ByteLen += length
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func writeZigzag(buf *bytes.Buffer, v int64) {
	writeVarUint(buf, uint64((v<<1)^(v>>63)))
}

func readZigzag(r *bytes.Reader) (int64, error) {
	u, err := readVarUint(r)
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -(int64(u) & 1), nil
}
