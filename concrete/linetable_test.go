package concrete

import (
	"testing"

	"github.com/go-python/pybc/opcode"
	"github.com/stretchr/testify/require"
)

func TestLineTableRoundTripLnotab(t *testing.T) {
	for _, v := range []opcode.Version{opcode.V38, opcode.V39, opcode.V310} {
		entries := []LineEntry{
			{ByteStart: 0, ByteLen: 4, Line: 1, EndLine: 1, StartCol: noSource, EndCol: noSource},
			{ByteStart: 4, ByteLen: 6, Line: 3, EndLine: 3, StartCol: noSource, EndCol: noSource},
			{ByteStart: 10, ByteLen: 2, Line: 3, EndLine: 3, StartCol: noSource, EndCol: noSource},
		}
		raw := EncodeLineTable(v, 1, entries)
		got, err := DecodeLineTable(v, 1, raw)
		require.NoError(t, err, "version %s", v)
		require.Len(t, got, 2, "version %s: adjacent same-line runs should merge", v)
		require.Equal(t, 0, got[0].ByteStart)
		require.Equal(t, 4, got[0].ByteLen)
		require.Equal(t, 1, got[0].Line)
		require.Equal(t, 4, got[1].ByteStart)
		require.Equal(t, 8, got[1].ByteLen)
		require.Equal(t, 3, got[1].Line)
	}
}

func TestLineTableLnotabLargeDelta(t *testing.T) {
	v := opcode.V38
	entries := []LineEntry{
		{ByteStart: 0, ByteLen: 600, Line: 1, EndLine: 1, StartCol: noSource, EndCol: noSource},
		{ByteStart: 600, ByteLen: 2, Line: 400, EndLine: 400, StartCol: noSource, EndCol: noSource},
	}
	raw := EncodeLineTable(v, 1, entries)
	got, err := DecodeLineTable(v, 1, raw)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 0, got[0].ByteStart)
	require.Equal(t, 600, got[0].ByteLen)
	require.Equal(t, 1, got[0].Line)
	require.Equal(t, 600, got[1].ByteStart)
	require.Equal(t, 400, got[1].Line)
}

// TestLineTableRoundTripLocationEntries guards the byte/code-unit boundary
// at encodeLocationEntries/decodeLocationEntries: ByteStart/ByteLen must
// come back in true bytes despite the wire format counting 2-byte code
// units.
func TestLineTableRoundTripLocationEntries(t *testing.T) {
	v := opcode.V311
	entries := []LineEntry{
		{ByteStart: 0, ByteLen: 6, Line: 1, EndLine: 1, StartCol: 0, EndCol: 10},
		{ByteStart: 6, ByteLen: 4, Line: 2, EndLine: 3, StartCol: 4, EndCol: 12},
		{ByteStart: 10, ByteLen: 2, Line: noSource, EndLine: noSource, StartCol: noSource, EndCol: noSource},
	}
	raw := EncodeLineTable(v, 1, entries)
	got, err := DecodeLineTable(v, 1, raw)
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Equal(t, 0, got[0].ByteStart)
	require.Equal(t, 6, got[0].ByteLen)
	require.Equal(t, 1, got[0].Line)
	require.Equal(t, 0, got[0].StartCol)
	require.Equal(t, 10, got[0].EndCol)

	require.Equal(t, 6, got[1].ByteStart)
	require.Equal(t, 4, got[1].ByteLen)
	require.Equal(t, 2, got[1].Line)
	require.Equal(t, 3, got[1].EndLine)

	require.Equal(t, 10, got[2].ByteStart)
	require.Equal(t, 2, got[2].ByteLen)
	require.Equal(t, noSource, got[2].Line)
}

// TestLineTableLocationEntriesWideRun exercises the 8-code-unit chunk cap:
// a 20-code-unit (40-byte) run must split into three wire entries that
// decode back into one merged LineEntry.
func TestLineTableLocationEntriesWideRun(t *testing.T) {
	v := opcode.V312
	entries := []LineEntry{
		{ByteStart: 0, ByteLen: 40, Line: 5, EndLine: 5, StartCol: noSource, EndCol: noSource},
	}
	raw := EncodeLineTable(v, 1, entries)
	got, err := DecodeLineTable(v, 1, raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 0, got[0].ByteStart)
	require.Equal(t, 40, got[0].ByteLen)
	require.Equal(t, 5, got[0].Line)
}

func TestExceptionTableRoundTrip(t *testing.T) {
	entries := []ExceptionTableEntry{
		{Start: 0, Stop: 2, Target: 10, PushLasti: true, StackDepth: 1},
		{Start: 5, Stop: 5, Target: 10, PushLasti: false, StackDepth: 0},
	}
	raw := EncodeExceptionTable(entries)
	got, err := DecodeExceptionTable(raw)
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestExceptionTableEmpty(t *testing.T) {
	raw := EncodeExceptionTable(nil)
	require.Nil(t, raw)
	got, err := DecodeExceptionTable(raw)
	require.NoError(t, err)
	require.Nil(t, got)
}
