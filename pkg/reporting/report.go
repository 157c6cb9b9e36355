/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Analysis report model. A Report bundles the ranked results of one analysis
run with its flattened structure map, a session ID and source metadata, and converts
itself into ordered dictionaries for export.
*/

package reporting

import (
	"time"

	"github.com/Velocidex/ordereddict"
	"github.com/google/uuid"

	"github.com/kleascm/hexaminer/pkg/core"
	"github.com/kleascm/hexaminer/pkg/engine"
)

// Version is stamped into exported reports
const Version = "1.0.0"

// Report is the exportable outcome of one analysis run
type Report struct {
	SessionID   string                 `json:"session_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Version     string                 `json:"version"`
	Source      string                 `json:"source"`
	Offset      int64                  `json:"offset"`
	Size        int64                  `json:"size"`
	Results     []*core.AnalysisResult `json:"results"`
	Structures  []core.Structure       `json:"structures"`
}

// NewReport wraps ranked results. Structures are flattened into offset order.
func NewReport(source string, offset, size int64, results []*core.AnalysisResult) *Report {
	if results == nil {
		results = make([]*core.AnalysisResult, 0)
	}
	return &Report{
		SessionID:   uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Version:     Version,
		Source:      source,
		Offset:      offset,
		Size:        size,
		Results:     results,
		Structures:  engine.FlattenStructures(results),
	}
}

// Best returns the top-ranked result, or nil
func (r *Report) Best() *core.AnalysisResult {
	if len(r.Results) == 0 {
		return nil
	}
	return r.Results[0]
}

// Dict converts the report into an ordered dictionary of plain values
func (r *Report) Dict() *ordereddict.Dict {
	results := make([]interface{}, 0, len(r.Results))
	for _, result := range r.Results {
		results = append(results, ResultDict(result))
	}

	return ordereddict.NewDict().
		Set("session_id", r.SessionID).
		Set("generated_at", r.GeneratedAt.Format(time.RFC3339)).
		Set("version", r.Version).
		Set("source", r.Source).
		Set("offset", r.Offset).
		Set("size", r.Size).
		Set("results", results).
		Set("structures", structureList(r.Structures))
}

// ResultDict converts one result, keeping property order
func ResultDict(result *core.AnalysisResult) *ordereddict.Dict {
	return ordereddict.NewDict().
		Set("analyzer", result.AnalyzerName).
		Set("data_type", result.DataType).
		Set("offset", result.Offset).
		Set("length", result.Length).
		Set("confidence", result.Confidence).
		Set("properties", result.Properties.Dict()).
		Set("structures", structureList(result.Structures))
}

// StructureDict converts one structure and its children
func StructureDict(s core.Structure) *ordereddict.Dict {
	dict := ordereddict.NewDict().
		Set("name", s.Name).
		Set("offset", s.Offset).
		Set("size", s.Size).
		Set("type", s.Type)
	if s.Value != nil {
		dict.Set("value", s.Value.Interface())
	}
	if len(s.Children) > 0 {
		dict.Set("children", structureList(s.Children))
	}
	return dict
}

func structureList(structures []core.Structure) []interface{} {
	list := make([]interface{}, 0, len(structures))
	for _, s := range structures {
		list = append(list, StructureDict(s))
	}
	return list
}
