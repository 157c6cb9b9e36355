/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: elf.go
Description: ELF header analyzer. Decodes the 16-byte identification block and the fixed
file header that follows it, switching between the 32-bit and 64-bit layouts on the class
byte. Cursor failures from truncated buffers are reported inside the result.
*/

package analyzers

import (
	"encoding/binary"
	"fmt"

	"github.com/kleascm/hexaminer/pkg/core"
)

const (
	elfIdentSize    = 16
	elfHeaderSize32 = 52
	elfHeaderSize64 = 64

	elfClass32 = 1
	elfClass64 = 2

	elfDataLSB = 1
	elfDataMSB = 2

	// StructuralConfidence is reported when a structural decode succeeds
	StructuralConfidence = 0.95
	// DegradedConfidence is reported when a structural decode fails part way
	DegradedConfidence = 0.3
)

var elfMagic = []byte{0x7F, 0x45, 0x4C, 0x46}

var elfMachines = map[uint16]string{
	0x00:  "None",
	0x02:  "SPARC",
	0x03:  "x86",
	0x08:  "MIPS",
	0x14:  "PowerPC",
	0x15:  "PowerPC64",
	0x16:  "S390",
	0x28:  "ARM",
	0x2B:  "SPARCv9",
	0x32:  "IA-64",
	0x3E:  "x86_64",
	0xB7:  "ARM64",
	0xF3:  "RISC-V",
	0xF7:  "BPF",
	0x102: "LoongArch",
}

var elfTypes = map[uint16]string{
	0: "NONE",
	1: "REL",
	2: "EXEC",
	3: "DYN",
	4: "CORE",
}

// ELFAnalyzer decodes Linux/Unix ELF headers
type ELFAnalyzer struct{}

// NewELFAnalyzer creates a new ELF analyzer
func NewELFAnalyzer() *ELFAnalyzer {
	return &ELFAnalyzer{}
}

// Name returns the analyzer name
func (a *ELFAnalyzer) Name() string {
	return "ELF (Executable and Linkable Format) Analyzer"
}

// Description returns a description of the analyzer
func (a *ELFAnalyzer) Description() string {
	return "Analyzes Linux/Unix ELF binaries"
}

// CanAnalyze requires the ELF magic at offset
func (a *ELFAnalyzer) CanAnalyze(data []byte, offset int) bool {
	return core.HasPrefixAt(data, offset, elfMagic)
}

// Analyze decodes the ELF header
func (a *ELFAnalyzer) Analyze(data []byte, offset, length int) (*core.AnalysisResult, error) {
	result := core.NewAnalysisResult(a.Name(), "ELF File", int64(offset))
	result.Confidence = StructuralConfidence

	view, err := core.Slice(data, offset, length)
	if err != nil {
		result.Fail(err, DegradedConfidence)
		return result, nil
	}
	result.Length = int64(len(view))

	if err := a.readHeader(core.NewReader(view), int64(offset), result); err != nil {
		result.Fail(err, DegradedConfidence)
	}

	return result, nil
}

// readHeader decodes the identification block and the class-dependent header fields
func (a *ELFAnalyzer) readHeader(r *core.Reader, base int64, result *core.AnalysisResult) error {
	header := core.NewProperties()

	magic, err := r.ReadBytes(4)
	if err != nil {
		return err
	}
	header.SetString("Magic", string(magic))

	class, err := r.ReadByte()
	if err != nil {
		return err
	}
	header.SetString("Class", elfClassName(class))

	dataEncoding, err := r.ReadByte()
	if err != nil {
		return err
	}
	header.SetString("Data", elfDataName(dataEncoding))

	for _, name := range []string{"Version", "OS/ABI", "ABI_Version"} {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		header.SetUint(name, uint64(b))
	}

	// EI_PAD
	if _, err := r.ReadBytes(7); err != nil {
		return err
	}

	// Fields are little-endian whatever EI_DATA reports; Data is informational only
	order := binary.LittleEndian
	is64Bit := class == elfClass64

	fileType, err := r.ReadUint16(order)
	if err != nil {
		return err
	}
	header.SetUint("Type", uint64(fileType))

	machine, err := r.ReadUint16(order)
	if err != nil {
		return err
	}
	header.SetUint("Machine", uint64(machine))

	version, err := r.ReadUint32(order)
	if err != nil {
		return err
	}
	header.SetUint("Version2", uint64(version))

	for _, name := range []string{"Entry", "ProgramHeaderOffset", "SectionHeaderOffset"} {
		v, err := readWord(r, order, is64Bit)
		if err != nil {
			return err
		}
		header.SetUint(name, v)
	}

	flags, err := r.ReadUint32(order)
	if err != nil {
		return err
	}
	header.SetUint("Flags", uint64(flags))

	for _, name := range []string{
		"HeaderSize",
		"ProgramHeaderEntrySize",
		"ProgramHeaderCount",
		"SectionHeaderEntrySize",
		"SectionHeaderCount",
		"SectionHeaderStringIndex",
	} {
		v, err := r.ReadUint16(order)
		if err != nil {
			return err
		}
		header.SetUint(name, uint64(v))
	}

	size := int64(elfHeaderSize32)
	headerType := "Elf32_Ehdr"
	if is64Bit {
		size = elfHeaderSize64
		headerType = "Elf64_Ehdr"
	}

	result.AddStructure(core.Structure{
		Name:   "ELF Header",
		Offset: base,
		Size:   size,
		Type:   headerType,
		Children: []core.Structure{
			{Name: "ELF Identification", Offset: base, Size: elfIdentSize, Type: "e_ident"},
		},
	})

	result.Properties.Set("ELF_Header", core.MapValue(header))
	result.Properties.SetString("Machine_Name", elfMachineName(machine))
	result.Properties.SetString("File_Type", elfTypeName(fileType))

	return nil
}

// readWord reads an address-sized field: 8 bytes for ELFCLASS64, 4 otherwise
func readWord(r *core.Reader, order binary.ByteOrder, is64Bit bool) (uint64, error) {
	if is64Bit {
		return r.ReadUint64(order)
	}
	v, err := r.ReadUint32(order)
	return uint64(v), err
}

func elfClassName(class byte) string {
	switch class {
	case elfClass32:
		return "32-bit"
	case elfClass64:
		return "64-bit"
	default:
		return "Unknown"
	}
}

func elfDataName(encoding byte) string {
	switch encoding {
	case elfDataLSB:
		return "Little Endian"
	case elfDataMSB:
		return "Big Endian"
	default:
		return "Unknown"
	}
}

func elfMachineName(machine uint16) string {
	if name, ok := elfMachines[machine]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%X)", machine)
}

func elfTypeName(t uint16) string {
	if name, ok := elfTypes[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%X)", t)
}
