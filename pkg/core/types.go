/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core types for the Hexaminer analysis engine. Defines the analyzer contract,
the per-invocation analysis result, decoded structures and the buffer slice helper used
by every analyzer to scope its reads.
*/

package core

import "fmt"

// Analyzer is the capability shared by every format analyzer.
// CanAnalyze is a cheap applicability test; Analyze performs the full decode.
// Built-in analyzers report decode problems inside the result and return a nil error;
// a non-nil error tells the engine the analyzer itself failed.
type Analyzer interface {
	Name() string
	Description() string
	CanAnalyze(data []byte, offset int) bool
	Analyze(data []byte, offset, length int) (*AnalysisResult, error)
}

// Common property keys
const (
	PropError  = "Error"
	PropStatus = "Status"
)

// DataTypeError is the data type of synthetic results produced for failed analyzers
const DataTypeError = "Error"

// AnalysisResult is produced by exactly one analyzer invocation
type AnalysisResult struct {
	AnalyzerName string      `json:"analyzer_name"` // Identity of the producing analyzer
	DataType     string      `json:"data_type"`     // Human-readable classification
	Offset       int64       `json:"offset"`        // Absolute start offset
	Length       int64       `json:"length"`        // Length of the analyzed slice
	Confidence   float64     `json:"confidence"`    // Ranking heuristic in [0,1]
	Properties   *Properties `json:"properties"`    // Ordered named properties
	Structures   []Structure `json:"structures"`    // Decoded regions in emission order
}

// NewAnalysisResult creates an empty result for the given analyzer
func NewAnalysisResult(analyzer, dataType string, offset int64) *AnalysisResult {
	return &AnalysisResult{
		AnalyzerName: analyzer,
		DataType:     dataType,
		Offset:       offset,
		Properties:   NewProperties(),
		Structures:   make([]Structure, 0),
	}
}

// NewErrorResult builds the zero-confidence result that stands in for a failed analyzer
func NewErrorResult(analyzer string, offset int64, err error) *AnalysisResult {
	result := NewAnalysisResult(analyzer, DataTypeError, offset)
	if err != nil {
		result.Properties.SetString(PropError, err.Error())
	} else {
		result.Properties.SetString(PropError, ErrAnalyzerFailure.Error())
	}
	return result
}

// AddStructure appends a decoded structure
func (r *AnalysisResult) AddStructure(s Structure) {
	r.Structures = append(r.Structures, s)
}

// Fail records a decode error and lowers the confidence
func (r *AnalysisResult) Fail(err error, confidence float64) {
	r.Properties.SetString(PropError, err.Error())
	r.Confidence = confidence
}

// Err returns the recorded error message, if any
func (r *AnalysisResult) Err() (string, bool) {
	v, ok := r.Properties.Get(PropError)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// Structure is a named, typed region inside the analyzed buffer.
// Offsets are absolute. Children lie within the parent span.
type Structure struct {
	Name     string      `json:"name"`
	Offset   int64       `json:"offset"`
	Size     int64       `json:"size"`
	Type     string      `json:"type"`
	Value    *Value      `json:"value,omitempty"`
	Children []Structure `json:"children,omitempty"`
}

// End returns the first offset past the structure
func (s Structure) End() int64 {
	return s.Offset + s.Size
}

// Contains reports whether the absolute offset falls inside the structure
func (s Structure) Contains(offset int64) bool {
	return offset >= s.Offset && offset < s.End()
}

// String renders "Name @ 0xOFF (N bytes)"
func (s Structure) String() string {
	return fmt.Sprintf("%s @ 0x%X (%d bytes)", s.Name, s.Offset, s.Size)
}

// Slice returns the view data[offset:offset+length]. A negative length means "to the end".
// ErrEndOfData is returned when the window does not fit inside data.
func Slice(data []byte, offset, length int) ([]byte, error) {
	if offset < 0 || offset > len(data) {
		return nil, fmt.Errorf("offset %d outside buffer of %d bytes: %w", offset, len(data), ErrEndOfData)
	}
	if length < 0 {
		return data[offset:], nil
	}
	if length > len(data)-offset {
		return nil, fmt.Errorf("length %d at offset %d exceeds buffer of %d bytes: %w", length, offset, len(data), ErrEndOfData)
	}
	return data[offset : offset+length], nil
}

// HasPrefixAt reports whether data holds prefix starting at offset
func HasPrefixAt(data []byte, offset int, prefix []byte) bool {
	if offset < 0 || len(data)-offset < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if data[offset+i] != b {
			return false
		}
	}
	return true
}
