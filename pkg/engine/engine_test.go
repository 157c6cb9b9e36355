/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine_test.go
Description: Tests for the analysis engine: ranking, failure isolation, structure
extraction and registration.
*/

package engine_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/hexaminer/pkg/analyzers"
	"github.com/kleascm/hexaminer/pkg/core"
	"github.com/kleascm/hexaminer/pkg/engine"
)

// stubAnalyzer is a configurable analyzer for engine tests
type stubAnalyzer struct {
	name       string
	applies    bool
	confidence float64
	structures []core.Structure
	dataType   string
	err        error
	panicMsg   string
	panicOnCan bool
}

func (s *stubAnalyzer) Name() string        { return s.name }
func (s *stubAnalyzer) Description() string { return "stub" }

func (s *stubAnalyzer) CanAnalyze(data []byte, offset int) bool {
	if s.panicOnCan {
		panic("boom")
	}
	return s.applies
}

func (s *stubAnalyzer) Analyze(data []byte, offset, length int) (*core.AnalysisResult, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return nil, s.err
	}
	dataType := s.dataType
	if dataType == "" {
		dataType = "Stub"
	}
	r := core.NewAnalysisResult(s.name, dataType, int64(offset))
	r.Confidence = s.confidence
	for _, st := range s.structures {
		r.AddStructure(st)
	}
	return r, nil
}

func names(results []*core.AnalysisResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.AnalyzerName)
	}
	return out
}

func TestAnalyzeDataRanksByConfidence(t *testing.T) {
	e := engine.NewEmptyEngine(nil)
	e.RegisterAnalyzer(&stubAnalyzer{name: "low", applies: true, confidence: 0.2})
	e.RegisterAnalyzer(&stubAnalyzer{name: "tie-a", applies: true, confidence: 0.7})
	e.RegisterAnalyzer(&stubAnalyzer{name: "skipped", applies: false, confidence: 1.0})
	e.RegisterAnalyzer(&stubAnalyzer{name: "high", applies: true, confidence: 0.9})
	e.RegisterAnalyzer(&stubAnalyzer{name: "tie-b", applies: true, confidence: 0.7})

	results := e.AnalyzeData([]byte{1, 2, 3}, 0, -1)
	assert.Equal(t, []string{"high", "tie-a", "tie-b", "low"}, names(results))
}

func TestAnalyzerFailuresAreIsolated(t *testing.T) {
	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)

	e := engine.NewEmptyEngine(logger)
	e.RegisterAnalyzer(&stubAnalyzer{name: "panics", applies: true, panicMsg: "index out of range"})
	e.RegisterAnalyzer(&stubAnalyzer{name: "errors", applies: true, err: errors.New("broken decoder")})
	e.RegisterAnalyzer(&stubAnalyzer{name: "works", applies: true, confidence: 0.5})

	results := e.AnalyzeData([]byte{0}, 0, -1)
	require.Len(t, results, 3)
	assert.Equal(t, "works", results[0].AnalyzerName)

	for _, r := range results[1:] {
		assert.Equal(t, core.DataTypeError, r.DataType)
		assert.Equal(t, 0.0, r.Confidence)
		msg, failed := r.Err()
		assert.True(t, failed)
		assert.Contains(t, msg, r.AnalyzerName)
	}

	panicked := results[1]
	assert.Equal(t, "panics", panicked.AnalyzerName)
	msg, _ := panicked.Err()
	assert.Contains(t, msg, "index out of range")

	assert.Contains(t, logs.String(), "Analyzer failed")
}

func TestCanAnalyzePanicIsIsolated(t *testing.T) {
	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)

	e := engine.NewEmptyEngine(logger)
	e.RegisterAnalyzer(&stubAnalyzer{name: "canpanic", panicOnCan: true})
	e.RegisterAnalyzer(&stubAnalyzer{name: "works", applies: true, confidence: 0.5})

	results := e.AnalyzeData([]byte{0}, 0, -1)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"works", "canpanic"}, names(results))

	failed := results[1]
	assert.Equal(t, core.DataTypeError, failed.DataType)
	assert.Equal(t, 0.0, failed.Confidence)
	msg, ok := failed.Err()
	require.True(t, ok)
	assert.Equal(t, "canpanic: panic: boom", msg)
	assert.Contains(t, logs.String(), "Analyzer failed")
}

func TestErrorDataTypeIsNotAFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)

	e := engine.NewEmptyEngine(logger)
	e.RegisterAnalyzer(&stubAnalyzer{name: "plugin", applies: true, confidence: 0.6, dataType: core.DataTypeError})

	results := e.AnalyzeData([]byte{0}, 0, -1)
	require.Len(t, results, 1)
	assert.Equal(t, core.DataTypeError, results[0].DataType)
	assert.Equal(t, 0.6, results[0].Confidence)
	assert.NotContains(t, logs.String(), "Analyzer failed")
}

func TestGetBestMatch(t *testing.T) {
	e := engine.NewEmptyEngine(nil)
	assert.Nil(t, e.GetBestMatch([]byte{1}, 0, -1))

	e.RegisterAnalyzer(&stubAnalyzer{name: "a", applies: true, confidence: 0.4})
	e.RegisterAnalyzer(&stubAnalyzer{name: "b", applies: true, confidence: 0.6})

	best := e.GetBestMatch([]byte{1}, 0, -1)
	require.NotNil(t, best)
	assert.Equal(t, "b", best.AnalyzerName)
}

func TestExtractStructuresOrderedByOffset(t *testing.T) {
	e := engine.NewEmptyEngine(nil)
	e.RegisterAnalyzer(&stubAnalyzer{name: "first", applies: true, confidence: 0.9, structures: []core.Structure{
		{Name: "C", Offset: 40, Size: 4},
		{Name: "A", Offset: 0, Size: 8},
	}})
	e.RegisterAnalyzer(&stubAnalyzer{name: "second", applies: true, confidence: 0.1, structures: []core.Structure{
		{Name: "B", Offset: 16, Size: 8},
		{Name: "A2", Offset: 0, Size: 2},
	}})

	structures := e.ExtractStructures(make([]byte, 64), 0, -1)
	got := make([]string, 0, len(structures))
	for _, s := range structures {
		got = append(got, s.Name)
	}
	assert.Equal(t, []string{"A", "A2", "B", "C"}, got)
}

func TestRegisterAnalyzer(t *testing.T) {
	e := engine.NewEmptyEngine(nil)
	e.RegisterAnalyzer(nil)
	assert.Empty(t, e.Analyzers())

	e.RegisterAnalyzer(&stubAnalyzer{name: "x"})
	list := e.Analyzers()
	require.Len(t, list, 1)

	list[0] = nil
	assert.NotNil(t, e.Analyzers()[0], "returned slice is a copy")

	assert.Len(t, engine.NewEngine(nil).Analyzers(), len(analyzers.Default()))
}

func TestEngineRanksPEAboveSignature(t *testing.T) {
	data := make([]byte, 0x80+24)
	copy(data, "MZ")
	binary.LittleEndian.PutUint32(data[60:], 0x80)
	copy(data[0x80:], "PE\x00\x00")
	binary.LittleEndian.PutUint16(data[0x84:], 0x8664)

	results := engine.NewEngine(nil).AnalyzeData(data, 0, -1)
	require.Len(t, results, 2)
	assert.Equal(t, "PE (Portable Executable) Analyzer", results[0].AnalyzerName)
	assert.Equal(t, analyzers.StructuralConfidence, results[0].Confidence)
	assert.Equal(t, "File Signature Analyzer", results[1].AnalyzerName)

	structures := engine.FlattenStructures(results)
	require.Len(t, structures, 3)
	assert.Equal(t, "DOS Header", structures[0].Name)
	assert.Equal(t, int64(0x80), structures[2].Offset)
}

func TestEngineNoApplicableAnalyzer(t *testing.T) {
	results := engine.NewEngine(nil).AnalyzeData([]byte{}, 0, -1)
	assert.Empty(t, results)
}

func TestEngineSkipsPEOnShortMZBuffer(t *testing.T) {
	data := make([]byte, 63)
	copy(data, "MZ")

	results := engine.NewEngine(nil).AnalyzeData(data, 0, -1)
	require.Len(t, results, 1)
	assert.Equal(t, "File Signature Analyzer", results[0].AnalyzerName)
	for _, r := range results {
		assert.NotEqual(t, "PE (Portable Executable) Analyzer", r.AnalyzerName)
	}

	data = append(data, 0)
	results = engine.NewEngine(nil).AnalyzeData(data, 0, -1)
	assert.Equal(t, "PE (Portable Executable) Analyzer", results[0].AnalyzerName)
}
