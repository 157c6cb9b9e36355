/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: signature.go
Description: File signature analyzer. Matches the buffer against a static, ordered catalog
of magic byte signatures at fixed offsets. Every match is reported; the first match in
catalog order is the primary format.
*/

package analyzers

import (
	"github.com/kleascm/hexaminer/pkg/core"
)

// Signature is a magic byte pattern expected at a fixed offset from the analysis start
type Signature struct {
	Key         string
	Pattern     []byte
	Offset      int
	Description string
}

// signatures is the process-wide catalog. Order is the primary-format tie-break.
var signatures = []Signature{
	{"PNG", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, 0, "PNG Image"},
	{"JPEG", []byte{0xFF, 0xD8, 0xFF}, 0, "JPEG Image"},
	{"GIF87", []byte{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, 0, "GIF87a Image"},
	{"GIF89", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, 0, "GIF89a Image"},
	{"PDF", []byte{0x25, 0x50, 0x44, 0x46}, 0, "PDF Document"},
	{"ZIP", []byte{0x50, 0x4B, 0x03, 0x04}, 0, "ZIP Archive"},
	{"ZIP_EMPTY", []byte{0x50, 0x4B, 0x05, 0x06}, 0, "Empty ZIP Archive"},
	{"RAR", []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}, 0, "RAR Archive"},
	{"7Z", []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, 0, "7-Zip Archive"},
	{"SQLITE", []byte("SQLite format 3\x00"), 0, "SQLite Database"},
	{"MP3", []byte{0x49, 0x44, 0x33}, 0, "MP3 Audio (ID3v2)"},
	{"MP3_MPEG", []byte{0xFF, 0xFB}, 0, "MP3 Audio (MPEG)"},
	{"WAV", []byte{0x52, 0x49, 0x46, 0x46}, 0, "WAV Audio"},
	{"AVI", []byte{0x52, 0x49, 0x46, 0x46}, 0, "AVI Video"},
	{"MZ", []byte{0x4D, 0x5A}, 0, "MS-DOS/Windows Executable"},
	{"ELF", []byte{0x7F, 0x45, 0x4C, 0x46}, 0, "ELF Executable"},
	{"MACH_O_32", []byte{0xFE, 0xED, 0xFA, 0xCE}, 0, "Mach-O 32-bit"},
	{"MACH_O_64", []byte{0xFE, 0xED, 0xFA, 0xCF}, 0, "Mach-O 64-bit"},
	{"CLASS", []byte{0xCA, 0xFE, 0xBA, 0xBE}, 0, "Java Class File"},
	{"TAR", []byte{0x75, 0x73, 0x74, 0x61, 0x72}, 257, "TAR Archive"},
	{"GZIP", []byte{0x1F, 0x8B}, 0, "GZIP Compressed"},
	{"BZ2", []byte{0x42, 0x5A, 0x68}, 0, "BZIP2 Compressed"},
	{"XZ", []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, 0, "XZ Compressed"},
	{"GGUF", []byte{0x47, 0x47, 0x55, 0x46}, 0, "GGUF GPT-Generated Unified Format"},
	{"EWF-E01", []byte{0x45, 0x57, 0x46, 0x01}, 0, "Expert Witness Format E01"},
	{"EWF-AD1", []byte{0x45, 0x57, 0x46, 0x02}, 0, "Expert Witness Format AD1"},
	{"EWF-S01", []byte{0x45, 0x57, 0x46, 0x03}, 0, "Expert Witness Format S01"},
	{"EWF-S02", []byte{0x45, 0x57, 0x46, 0x04}, 0, "Expert Witness Format S02"},
	{"VMDK", []byte{0x4B, 0x44, 0x4D, 0x56}, 0, "VMware Virtual Disk"},
	{"VHD", []byte{0xEB, 0x00, 0x00, 0x00}, 0, "Virtual Hard Disk"},
	{"ISO", []byte{0x43, 0x44, 0x30, 0x30}, 32769, "ISO9660 CD/DVD Image"},
}

// Signatures returns a copy of the catalog in match order
func Signatures() []Signature {
	out := make([]Signature, len(signatures))
	for i, sig := range signatures {
		out[i] = sig
		out[i].Pattern = append([]byte(nil), sig.Pattern...)
	}
	return out
}

const (
	// SignatureConfidence is reported when at least one signature matched
	SignatureConfidence = 0.9

	signatureDataType = "File Signature Detection"
	noSignatureStatus = "No known file signatures detected"
)

// SignatureAnalyzer identifies file types by magic number signatures
type SignatureAnalyzer struct{}

// NewSignatureAnalyzer creates a new signature analyzer
func NewSignatureAnalyzer() *SignatureAnalyzer {
	return &SignatureAnalyzer{}
}

// Name returns the analyzer name
func (a *SignatureAnalyzer) Name() string {
	return "File Signature Analyzer"
}

// Description returns a description of the analyzer
func (a *SignatureAnalyzer) Description() string {
	return "Identifies file types by magic number signatures"
}

// CanAnalyze is true whenever there is at least one byte at offset
func (a *SignatureAnalyzer) CanAnalyze(data []byte, offset int) bool {
	return offset >= 0 && offset < len(data)
}

// Analyze checks every catalog entry against the slice and records all matches
func (a *SignatureAnalyzer) Analyze(data []byte, offset, length int) (*core.AnalysisResult, error) {
	result := core.NewAnalysisResult(a.Name(), signatureDataType, int64(offset))

	view, err := core.Slice(data, offset, length)
	if err != nil {
		result.Fail(err, 0.0)
		return result, nil
	}
	result.Length = int64(len(view))

	matches := make([]string, 0)
	for _, sig := range signatures {
		if !core.HasPrefixAt(view, sig.Offset, sig.Pattern) {
			continue
		}
		matches = append(matches, sig.Key)
		description := core.StringValue(sig.Description)
		result.AddStructure(core.Structure{
			Name:   sig.Key + " Signature",
			Offset: int64(offset + sig.Offset),
			Size:   int64(len(sig.Pattern)),
			Type:   "File Signature",
			Value:  &description,
		})
	}

	if len(matches) > 0 {
		result.Confidence = SignatureConfidence
		result.Properties.Set("Detected_Formats", core.StringList(matches))
		result.Properties.SetString("Primary_Format", matches[0])
	} else {
		result.Properties.SetString(core.PropStatus, noSignatureStatus)
	}

	return result, nil
}
