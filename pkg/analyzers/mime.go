/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: mime.go
Description: MIME type analyzer backed by the filetype matcher set. Offered to the engine
through the plugin registry as an additional analyzer variant; it complements the static
signature catalog with MIME and extension information.
*/

package analyzers

import (
	"github.com/h2non/filetype"

	"github.com/kleascm/hexaminer/pkg/core"
)

// MIMEConfidence is reported when the matcher recognises the buffer
const MIMEConfidence = 0.8

// mimeHeaderSize is how much of the slice the matchers need to see
const mimeHeaderSize = 8192

// MIMEAnalyzer classifies the buffer by MIME type
type MIMEAnalyzer struct{}

// NewMIMEAnalyzer creates a new MIME analyzer
func NewMIMEAnalyzer() *MIMEAnalyzer {
	return &MIMEAnalyzer{}
}

// Name returns the analyzer name
func (a *MIMEAnalyzer) Name() string {
	return "MIME Type Analyzer"
}

// Description returns a description of the analyzer
func (a *MIMEAnalyzer) Description() string {
	return "Classifies data by MIME type using filetype matchers"
}

// CanAnalyze is true whenever there is at least one byte at offset
func (a *MIMEAnalyzer) CanAnalyze(data []byte, offset int) bool {
	return offset >= 0 && offset < len(data)
}

// Analyze matches the head of the slice
func (a *MIMEAnalyzer) Analyze(data []byte, offset, length int) (*core.AnalysisResult, error) {
	result := core.NewAnalysisResult(a.Name(), "MIME Type", int64(offset))

	view, err := core.Slice(data, offset, length)
	if err != nil {
		result.Fail(err, 0.0)
		return result, nil
	}
	result.Length = int64(len(view))

	head := view
	if len(head) > mimeHeaderSize {
		head = head[:mimeHeaderSize]
	}

	kind, err := filetype.Match(head)
	if err != nil {
		result.Fail(err, 0.0)
		return result, nil
	}
	if kind == filetype.Unknown {
		result.Properties.SetString(core.PropStatus, "Unknown MIME type")
		return result, nil
	}

	result.Confidence = MIMEConfidence
	result.DataType = kind.MIME.Value
	result.Properties.SetString("MIME", kind.MIME.Value)
	result.Properties.SetString("MIME_Type", kind.MIME.Type)
	result.Properties.SetString("MIME_Subtype", kind.MIME.Subtype)
	result.Properties.SetString("Extension", kind.Extension)
	result.Properties.SetString("Category", mimeCategory(head))

	return result, nil
}

func mimeCategory(head []byte) string {
	switch {
	case filetype.IsImage(head):
		return "image"
	case filetype.IsVideo(head):
		return "video"
	case filetype.IsAudio(head):
		return "audio"
	case filetype.IsArchive(head):
		return "archive"
	case filetype.IsDocument(head):
		return "document"
	case filetype.IsFont(head):
		return "font"
	case filetype.IsApplication(head):
		return "application"
	default:
		return "other"
	}
}
