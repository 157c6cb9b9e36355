/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scanner.go
Description: Configurable pattern scanner. Runs the selected finders over a buffer and
collects the matches per category in a fixed order.
*/

package patterns

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/hexaminer/pkg/logging"
)

// Kind selects a finder
type Kind string

const (
	KindStrings Kind = "strings"
	KindEmails  Kind = "emails"
	KindURLs    Kind = "urls"
	KindCards   Kind = "cards"
	KindEntropy Kind = "entropy"
)

// AllKinds lists every finder in report order
var AllKinds = []Kind{KindStrings, KindEmails, KindURLs, KindCards, KindEntropy}

// ParseKind resolves a finder name, case-insensitively
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range AllKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown pattern kind: %s", name)
}

// ScanConfig tunes the scanner
type ScanConfig struct {
	MinStringLength      int     `json:"min_string_length"`
	EntropyWindow        int     `json:"entropy_window"`
	HighEntropyThreshold float64 `json:"high_entropy_threshold"`
	LowEntropyThreshold  float64 `json:"low_entropy_threshold"`
}

// DefaultScanConfig returns the stock thresholds
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		MinStringLength:      DefaultMinStringLength,
		EntropyWindow:        DefaultEntropyWindow,
		HighEntropyThreshold: HighEntropyThreshold,
		LowEntropyThreshold:  LowEntropyThreshold,
	}
}

// Validate checks the configuration
func (c ScanConfig) Validate() error {
	if c.MinStringLength < 1 {
		return fmt.Errorf("min string length must be positive, got %d", c.MinStringLength)
	}
	if c.EntropyWindow < 1 {
		return fmt.Errorf("entropy window must be positive, got %d", c.EntropyWindow)
	}
	if c.LowEntropyThreshold < 0 || c.HighEntropyThreshold > 8 {
		return fmt.Errorf("entropy thresholds must lie within [0, 8]")
	}
	if c.LowEntropyThreshold > c.HighEntropyThreshold {
		return fmt.Errorf("low entropy threshold %.2f exceeds high threshold %.2f",
			c.LowEntropyThreshold, c.HighEntropyThreshold)
	}
	return nil
}

// Category is the result of one finder
type Category struct {
	Kind    Kind           `json:"kind"`
	Matches []PatternMatch `json:"matches"`
}

// Report holds the categories that were scanned, in AllKinds order
type Report struct {
	Size       int           `json:"size"`
	Duration   time.Duration `json:"duration"`
	Categories []Category    `json:"categories"`
}

// Get returns the matches for a kind, nil if it was not scanned
func (r *Report) Get(kind Kind) []PatternMatch {
	for _, c := range r.Categories {
		if c.Kind == kind {
			return c.Matches
		}
	}
	return nil
}

// Total counts all matches
func (r *Report) Total() int {
	total := 0
	for _, c := range r.Categories {
		total += len(c.Matches)
	}
	return total
}

// Scanner runs the configured finders
type Scanner struct {
	config ScanConfig
	logger *logrus.Logger
}

// NewScanner creates a scanner. A nil logger discards log output.
func NewScanner(config ScanConfig, logger *logrus.Logger) *Scanner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scanner{config: config, logger: logger}
}

// Config returns the scanner configuration
func (s *Scanner) Config() ScanConfig {
	return s.config
}

// Scan runs the requested finders, or all of them when none are given
func (s *Scanner) Scan(data []byte, kinds ...Kind) *Report {
	start := time.Now()
	if len(kinds) == 0 {
		kinds = AllKinds
	}

	requested := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		requested[k] = true
	}

	report := &Report{Size: len(data), Categories: make([]Category, 0, len(kinds))}
	for _, kind := range AllKinds {
		if !requested[kind] {
			continue
		}
		matches := s.run(data, kind)
		report.Categories = append(report.Categories, Category{Kind: kind, Matches: matches})

		s.logger.WithFields(logrus.Fields{
			"kind":    kind,
			"matches": len(matches),
		}).Debug("Pattern finder complete")
	}
	report.Duration = time.Since(start)

	return report
}

func (s *Scanner) run(data []byte, kind Kind) []PatternMatch {
	switch kind {
	case KindStrings:
		return FindStrings(data, s.config.MinStringLength)
	case KindEmails:
		return FindEmails(data)
	case KindURLs:
		return FindURLs(data)
	case KindCards:
		return FindCreditCards(data)
	case KindEntropy:
		return findEntropyAnomalies(data, s.config.EntropyWindow,
			s.config.HighEntropyThreshold, s.config.LowEntropyThreshold)
	default:
		return nil
	}
}
