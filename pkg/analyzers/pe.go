/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pe.go
Description: Portable Executable header analyzer. Decodes the legacy DOS header, follows
e_lfanew to the NT signature and decodes the COFF file header when the signature is
present. A missing signature keeps the DOS header result (partial success).
*/

package analyzers

import (
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/kleascm/hexaminer/pkg/core"
)

const (
	peMinSize        = 64
	peLfanewOffset   = 60
	peDOSHeaderSize  = 64
	peFileHeaderSize = 24
	peSignature      = 0x00004550 // "PE\0\0"
)

var peDOSMagic = []byte{0x4D, 0x5A}

var peDOSFields = []string{
	"e_magic", "e_cblp", "e_cp", "e_crlc", "e_cparhdr", "e_minalloc", "e_maxalloc",
	"e_ss", "e_sp", "e_csum", "e_ip", "e_cs", "e_lfarlc", "e_ovno",
}

var peMachines = map[uint16]string{
	pe.IMAGE_FILE_MACHINE_UNKNOWN: "Unknown",
	pe.IMAGE_FILE_MACHINE_I386:    "x86",
	pe.IMAGE_FILE_MACHINE_AMD64:   "x86_64",
	pe.IMAGE_FILE_MACHINE_ARM:     "ARM",
	pe.IMAGE_FILE_MACHINE_ARMNT:   "ARMv7 Thumb-2",
	pe.IMAGE_FILE_MACHINE_ARM64:   "ARM64",
	pe.IMAGE_FILE_MACHINE_IA64:    "IA-64",
	pe.IMAGE_FILE_MACHINE_RISCV64: "RISC-V 64",
}

var peCharacteristics = []struct {
	flag uint16
	name string
}{
	{pe.IMAGE_FILE_RELOCS_STRIPPED, "RELOCS_STRIPPED"},
	{pe.IMAGE_FILE_EXECUTABLE_IMAGE, "EXECUTABLE_IMAGE"},
	{pe.IMAGE_FILE_LINE_NUMS_STRIPPED, "LINE_NUMS_STRIPPED"},
	{pe.IMAGE_FILE_LOCAL_SYMS_STRIPPED, "LOCAL_SYMS_STRIPPED"},
	{pe.IMAGE_FILE_LARGE_ADDRESS_AWARE, "LARGE_ADDRESS_AWARE"},
	{pe.IMAGE_FILE_32BIT_MACHINE, "32BIT_MACHINE"},
	{pe.IMAGE_FILE_DEBUG_STRIPPED, "DEBUG_STRIPPED"},
	{pe.IMAGE_FILE_SYSTEM, "SYSTEM"},
	{pe.IMAGE_FILE_DLL, "DLL"},
	{pe.IMAGE_FILE_UP_SYSTEM_ONLY, "UP_SYSTEM_ONLY"},
}

// PEAnalyzer decodes Windows PE headers (EXE, DLL)
type PEAnalyzer struct{}

// NewPEAnalyzer creates a new PE analyzer
func NewPEAnalyzer() *PEAnalyzer {
	return &PEAnalyzer{}
}

// Name returns the analyzer name
func (a *PEAnalyzer) Name() string {
	return "PE (Portable Executable) Analyzer"
}

// Description returns a description of the analyzer
func (a *PEAnalyzer) Description() string {
	return "Analyzes Windows PE files (EXE, DLL)"
}

// CanAnalyze requires a full DOS header starting with "MZ"
func (a *PEAnalyzer) CanAnalyze(data []byte, offset int) bool {
	if offset < 0 || len(data)-offset < peMinSize {
		return false
	}
	return core.HasPrefixAt(data, offset, peDOSMagic)
}

// Analyze decodes the DOS header and, when present, the PE file header
func (a *PEAnalyzer) Analyze(data []byte, offset, length int) (*core.AnalysisResult, error) {
	result := core.NewAnalysisResult(a.Name(), "PE File", int64(offset))
	result.Confidence = StructuralConfidence

	view, err := core.Slice(data, offset, length)
	if err != nil {
		result.Fail(err, DegradedConfidence)
		return result, nil
	}
	result.Length = int64(len(view))

	r := core.NewReader(view)
	lfanew, err := a.readDOSHeader(r, int64(offset), result)
	if err != nil {
		result.Fail(err, DegradedConfidence)
		return result, nil
	}

	r.Seek(int64(lfanew))
	if err := a.readFileHeader(r, int64(offset), result); err != nil {
		if errors.Is(err, core.ErrMalformedHeader) {
			result.Properties.SetString("Warning", err.Error())
			return result, nil
		}
		result.Fail(err, DegradedConfidence)
	}

	return result, nil
}

// readDOSHeader decodes IMAGE_DOS_HEADER and returns e_lfanew
func (a *PEAnalyzer) readDOSHeader(r *core.Reader, base int64, result *core.AnalysisResult) (uint32, error) {
	header := core.NewProperties()

	for _, name := range peDOSFields {
		v, err := r.ReadUint16(binary.LittleEndian)
		if err != nil {
			return 0, err
		}
		header.SetUint(name, uint64(v))
	}

	r.Seek(peLfanewOffset)
	lfanew, err := r.ReadUint32(binary.LittleEndian)
	if err != nil {
		return 0, err
	}
	header.SetUint("e_lfanew", uint64(lfanew))

	result.AddStructure(core.Structure{
		Name:   "DOS Header",
		Offset: base,
		Size:   peDOSHeaderSize,
		Type:   "IMAGE_DOS_HEADER",
	})
	result.Properties.Set("DOS_Header", core.MapValue(header))

	return lfanew, nil
}

// readFileHeader validates the NT signature and decodes IMAGE_FILE_HEADER
func (a *PEAnalyzer) readFileHeader(r *core.Reader, base int64, result *core.AnalysisResult) error {
	start := r.Position()

	signature, err := r.ReadUint32(binary.LittleEndian)
	if err != nil {
		return err
	}
	if signature != peSignature {
		return fmt.Errorf("PE signature 0x%08X at 0x%X: %w", signature, start, core.ErrMalformedHeader)
	}

	header := core.NewProperties()

	machine, err := r.ReadUint16(binary.LittleEndian)
	if err != nil {
		return err
	}
	header.SetUint("Machine", uint64(machine))

	sections, err := r.ReadUint16(binary.LittleEndian)
	if err != nil {
		return err
	}
	header.SetUint("NumberOfSections", uint64(sections))

	timestamp, err := r.ReadUint32(binary.LittleEndian)
	if err != nil {
		return err
	}
	header.SetUint("TimeDateStamp", uint64(timestamp))

	for _, name := range []string{"PointerToSymbolTable", "NumberOfSymbols"} {
		v, err := r.ReadUint32(binary.LittleEndian)
		if err != nil {
			return err
		}
		header.SetUint(name, uint64(v))
	}

	optionalSize, err := r.ReadUint16(binary.LittleEndian)
	if err != nil {
		return err
	}
	header.SetUint("SizeOfOptionalHeader", uint64(optionalSize))

	characteristics, err := r.ReadUint16(binary.LittleEndian)
	if err != nil {
		return err
	}
	header.SetUint("Characteristics", uint64(characteristics))

	result.AddStructure(core.Structure{
		Name:   "PE File Header",
		Offset: base + start,
		Size:   peFileHeaderSize,
		Type:   "IMAGE_FILE_HEADER",
	})

	result.Properties.Set("File_Header", core.MapValue(header))
	result.Properties.SetString("Machine_Name", peMachineName(machine))
	result.Properties.SetString("Timestamp", time.Unix(int64(timestamp), 0).UTC().Format(time.RFC3339))
	result.Properties.Set("Characteristics_Flags", core.StringList(peCharacteristicNames(characteristics)))

	return nil
}

func peMachineName(machine uint16) string {
	if name, ok := peMachines[machine]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%X)", machine)
}

func peCharacteristicNames(characteristics uint16) []string {
	names := make([]string, 0)
	for _, c := range peCharacteristics {
		if characteristics&c.flag != 0 {
			names = append(names, c.name)
		}
	}
	return names
}
