/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Analysis engine. Runs every registered analyzer over a buffer, isolates
per-analyzer failures behind a boundary that turns them into zero-confidence results,
ranks results by confidence and flattens their structures into offset order.
*/

package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kleascm/hexaminer/pkg/analyzers"
	"github.com/kleascm/hexaminer/pkg/core"
	"github.com/kleascm/hexaminer/pkg/logging"
)

// Engine orchestrates the registered analyzers over one buffer at a time.
// The analyzer loop is sequential; registration order only matters for tie-breaks.
type Engine struct {
	analyzers []core.Analyzer
	logger    *logrus.Logger
	mu        sync.RWMutex
}

// NewEngine creates an engine with the built-in analyzers registered
// (signature catalog, PE, ELF). A nil logger discards log output.
func NewEngine(logger *logrus.Logger) *Engine {
	e := NewEmptyEngine(logger)
	for _, a := range analyzers.Default() {
		e.RegisterAnalyzer(a)
	}
	return e
}

// NewEmptyEngine creates an engine with no analyzers registered
func NewEmptyEngine(logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		analyzers: make([]core.Analyzer, 0, 4),
		logger:    logger,
	}
}

// RegisterAnalyzer appends an analyzer. Plugin-supplied analyzers go through here and
// get the same failure isolation as the built-ins.
func (e *Engine) RegisterAnalyzer(a core.Analyzer) {
	if a == nil {
		return
	}
	e.mu.Lock()
	e.analyzers = append(e.analyzers, a)
	e.mu.Unlock()

	e.logger.WithField("analyzer", analyzerName(a)).Debug("Analyzer registered")
}

// Analyzers returns the registered analyzers in registration order
func (e *Engine) Analyzers() []core.Analyzer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]core.Analyzer, len(e.analyzers))
	copy(out, e.analyzers)
	return out
}

// AnalyzeData runs every applicable analyzer over data[offset:offset+length]
// (length < 0 means to the end) and returns the results ranked by confidence,
// highest first. Equal confidences keep registration order.
func (e *Engine) AnalyzeData(data []byte, offset, length int) []*core.AnalysisResult {
	scanID := uuid.New().String()
	start := time.Now()
	log := e.logger.WithFields(logrus.Fields{
		"scan_id": scanID,
		"offset":  offset,
		"length":  length,
		"size":    len(data),
	})
	log.Debug("Starting analysis")

	results := make([]*core.AnalysisResult, 0)
	for _, a := range e.Analyzers() {
		result, applied, failed := e.runAnalyzer(a, data, offset, length)
		if !applied {
			continue
		}
		if failed {
			msg, _ := result.Err()
			log.WithFields(logrus.Fields{
				"analyzer": result.AnalyzerName,
				"error":    msg,
			}).Warn("Analyzer failed")
		}
		results = append(results, result)
	}

	RankResults(results)

	log.WithFields(logrus.Fields{
		"results":  len(results),
		"duration": time.Since(start),
	}).Debug("Analysis complete")

	return results
}

// runAnalyzer is the per-analyzer failure boundary. Errors and panics from either
// CanAnalyze or Analyze become a synthetic zero-confidence result with failed set.
func (e *Engine) runAnalyzer(a core.Analyzer, data []byte, offset, length int) (result *core.AnalysisResult, applied, failed bool) {
	name := analyzerName(a)
	defer func() {
		if r := recover(); r != nil {
			err := core.NewAnalyzerError(name, fmt.Errorf("panic: %v", r))
			result, applied, failed = core.NewErrorResult(name, int64(offset), err), true, true
		}
	}()

	if !a.CanAnalyze(data, offset) {
		return nil, false, false
	}

	res, err := a.Analyze(data, offset, length)
	if err != nil {
		return core.NewErrorResult(name, int64(offset), core.NewAnalyzerError(name, err)), true, true
	}
	if res == nil {
		return nil, false, false
	}
	return res, true, false
}

// analyzerName reads the analyzer identity, falling back to its Go type
func analyzerName(a core.Analyzer) (name string) {
	defer func() {
		if r := recover(); r != nil {
			name = fmt.Sprintf("%T", a)
		}
	}()
	return a.Name()
}

// GetBestMatch returns the highest-ranked result, or nil when no analyzer applied
func (e *Engine) GetBestMatch(data []byte, offset, length int) *core.AnalysisResult {
	results := e.AnalyzeData(data, offset, length)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// ExtractStructures analyzes the buffer and returns every structure from every result,
// ordered by absolute offset
func (e *Engine) ExtractStructures(data []byte, offset, length int) []core.Structure {
	return FlattenStructures(e.AnalyzeData(data, offset, length))
}

// RankResults sorts results by confidence, highest first, keeping input order for ties
func RankResults(results []*core.AnalysisResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
}

// FlattenStructures collects the structures of all results in result order and sorts
// them by offset, keeping emission order for equal offsets
func FlattenStructures(results []*core.AnalysisResult) []core.Structure {
	structures := make([]core.Structure, 0)
	for _, result := range results {
		structures = append(structures, result.Structures...)
	}
	sort.SliceStable(structures, func(i, j int) bool {
		return structures[i].Offset < structures[j].Offset
	})
	return structures
}
