/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: elf_test.go
Description: Tests for the ELF header analyzer across classes, data encodings and
truncated inputs.
*/

package analyzers_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/hexaminer/pkg/analyzers"
	"github.com/kleascm/hexaminer/pkg/core"
)

// elfHeader builds a minimal ELF header for the given class (1 or 2). The data encoding
// byte is only stamped into the ident; fields are always written little-endian.
func elfHeader(class, encoding byte, machine uint16) []byte {
	order := binary.LittleEndian

	size := 52
	if class == 2 {
		size = 64
	}
	h := make([]byte, size)
	copy(h, []byte{0x7F, 'E', 'L', 'F', class, encoding, 1, 0})

	order.PutUint16(h[16:], 2) // ET_EXEC
	order.PutUint16(h[18:], machine)
	order.PutUint32(h[20:], 1)
	if class == 2 {
		order.PutUint64(h[24:], 0x401000)
		order.PutUint64(h[32:], 64)
		order.PutUint16(h[52:], 64)
		order.PutUint16(h[56:], 9)
	} else {
		order.PutUint32(h[24:], 0x8048000)
		order.PutUint32(h[28:], 52)
		order.PutUint16(h[40:], 52)
		order.PutUint16(h[44:], 7)
	}
	return h
}

func elfField(t *testing.T, r *core.AnalysisResult, key string) core.Value {
	t.Helper()
	header, ok := r.Properties.Get("ELF_Header")
	require.True(t, ok)
	v, ok := header.Map.Get(key)
	require.True(t, ok, "missing %s", key)
	return v
}

func TestELF64LittleEndian(t *testing.T) {
	data := elfHeader(2, 1, 0x3E)
	a := analyzers.NewELFAnalyzer()
	require.True(t, a.CanAnalyze(data, 0))

	r, err := a.Analyze(data, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, analyzers.StructuralConfidence, r.Confidence)
	assert.Equal(t, "ELF File", r.DataType)

	require.Len(t, r.Structures, 1)
	s := r.Structures[0]
	assert.Equal(t, "ELF Header", s.Name)
	assert.Equal(t, int64(64), s.Size)
	assert.Equal(t, "Elf64_Ehdr", s.Type)
	require.Len(t, s.Children, 1)
	assert.Equal(t, int64(16), s.Children[0].Size)

	assert.Equal(t, "64-bit", elfField(t, r, "Class").String())
	assert.Equal(t, "Little Endian", elfField(t, r, "Data").String())
	assert.Equal(t, uint64(0x401000), elfField(t, r, "Entry").Uint)
	assert.Equal(t, uint64(64), elfField(t, r, "HeaderSize").Uint)
	assert.Equal(t, uint64(9), elfField(t, r, "ProgramHeaderCount").Uint)

	machine, _ := r.Properties.Get("Machine_Name")
	assert.Equal(t, "x86_64", machine.String())
	fileType, _ := r.Properties.Get("File_Type")
	assert.Equal(t, "EXEC", fileType.String())
}

func TestELF32(t *testing.T) {
	data := elfHeader(1, 1, 0x03)
	r, err := analyzers.NewELFAnalyzer().Analyze(data, 0, -1)
	require.NoError(t, err)

	require.Len(t, r.Structures, 1)
	assert.Equal(t, int64(52), r.Structures[0].Size)
	assert.Equal(t, "Elf32_Ehdr", r.Structures[0].Type)
	assert.Equal(t, uint64(0x8048000), elfField(t, r, "Entry").Uint)
	assert.Equal(t, uint64(7), elfField(t, r, "ProgramHeaderCount").Uint)
}

func TestELFBigEndianDataByte(t *testing.T) {
	data := elfHeader(2, 2, 0x08)
	r, err := analyzers.NewELFAnalyzer().Analyze(data, 0, -1)
	require.NoError(t, err)

	// The data byte is reported but fields still decode little-endian
	assert.Equal(t, "Big Endian", elfField(t, r, "Data").String())
	assert.Equal(t, uint64(2), elfField(t, r, "Type").Uint)
	assert.Equal(t, uint64(0x08), elfField(t, r, "Machine").Uint)
	assert.Equal(t, uint64(0x401000), elfField(t, r, "Entry").Uint)
	assert.Equal(t, uint64(9), elfField(t, r, "ProgramHeaderCount").Uint)

	machine, _ := r.Properties.Get("Machine_Name")
	assert.Equal(t, "MIPS", machine.String())
	fileType, _ := r.Properties.Get("File_Type")
	assert.Equal(t, "EXEC", fileType.String())
}

func TestELFAtOffset(t *testing.T) {
	data := append(make([]byte, 32), elfHeader(2, 1, 0xB7)...)
	a := analyzers.NewELFAnalyzer()
	assert.False(t, a.CanAnalyze(data, 0))
	require.True(t, a.CanAnalyze(data, 32))

	r, err := a.Analyze(data, 32, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(32), r.Structures[0].Offset)
	assert.Equal(t, int64(32), r.Structures[0].Children[0].Offset)
}

func TestELFTruncated(t *testing.T) {
	data := elfHeader(2, 1, 0x3E)[:20]
	a := analyzers.NewELFAnalyzer()
	require.True(t, a.CanAnalyze(data, 0), "the magic alone makes the analyzer applicable")

	r, err := a.Analyze(data, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, analyzers.DegradedConfidence, r.Confidence)
	assert.Empty(t, r.Structures)
	msg, failed := r.Err()
	assert.True(t, failed)
	assert.Contains(t, msg, "end of data")
}

func TestELFUnknownMachine(t *testing.T) {
	r, err := analyzers.NewELFAnalyzer().Analyze(elfHeader(2, 1, 0x1234), 0, -1)
	require.NoError(t, err)
	machine, _ := r.Properties.Get("Machine_Name")
	assert.Equal(t, "unknown(0x1234)", machine.String())
}

func TestELFCanAnalyzeRejects(t *testing.T) {
	a := analyzers.NewELFAnalyzer()
	assert.False(t, a.CanAnalyze([]byte{0x7F, 'E', 'L'}, 0))
	assert.False(t, a.CanAnalyze([]byte("MZ\x90\x00"), 0))
}
