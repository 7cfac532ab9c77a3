package concrete

import "bytes"

// ExceptionTableEntry is one decoded record from a 3.11+ exception table:
// an instruction-indexed (not byte-indexed) region [Start, Stop] whose
// unwinding handler begins at Target.
type ExceptionTableEntry struct {
	Start      int // first covered instruction index, inclusive
	Stop       int // last covered instruction index, inclusive
	Target     int // handler entry instruction index
	PushLasti  bool
	StackDepth int
}

// EncodeExceptionTable packs entries into the varint format of spec §6:
// four varints per entry (start, length, target, depth_and_lasti), with
// start/length/target measured in instructions. Entries must already be
// ordered ascending by Start, ties broken by ascending Stop (spec §4.3.4).
func EncodeExceptionTable(entries []ExceptionTableEntry) []byte {
	if len(entries) == 0 {
		return nil
	}
	buf := new(bytes.Buffer)
	for _, e := range entries {
		length := e.Stop - e.Start + 1
		depthAndLasti := uint64(e.StackDepth) << 1
		if e.PushLasti {
			depthAndLasti |= 1
		}
		writeVarUint(buf, uint64(e.Start))
		writeVarUint(buf, uint64(length))
		writeVarUint(buf, uint64(e.Target))
		writeVarUint(buf, depthAndLasti)
	}
	return buf.Bytes()
}

// ErrMalformedExceptionTable is returned when raw cannot be decoded as a
// well-formed sequence of four-varint entries.
type ErrMalformedExceptionTable struct{ Reason string }

func (e ErrMalformedExceptionTable) Error() string {
	return "concrete: malformed exception table: " + e.Reason
}

// DecodeExceptionTable unpacks raw into ordered entries.
func DecodeExceptionTable(raw []byte) ([]ExceptionTableEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	r := bytes.NewReader(raw)
	var out []ExceptionTableEntry
	for r.Len() > 0 {
		start, err := readVarUint(r)
		if err != nil {
			return nil, ErrMalformedExceptionTable{Reason: err.Error()}
		}
		length, err := readVarUint(r)
		if err != nil {
			return nil, ErrMalformedExceptionTable{Reason: err.Error()}
		}
		target, err := readVarUint(r)
		if err != nil {
			return nil, ErrMalformedExceptionTable{Reason: err.Error()}
		}
		depthAndLasti, err := readVarUint(r)
		if err != nil {
			return nil, ErrMalformedExceptionTable{Reason: err.Error()}
		}
		if length == 0 {
			return nil, ErrMalformedExceptionTable{Reason: "zero-length region"}
		}
		out = append(out, ExceptionTableEntry{
			Start:      int(start),
			Stop:       int(start + length - 1),
			Target:     int(target),
			PushLasti:  depthAndLasti&1 != 0,
			StackDepth: int(depthAndLasti >> 1),
		})
	}
	return out, nil
}
