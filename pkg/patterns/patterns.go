/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: patterns.go
Description: Content pattern finders. Printable string runs, email addresses, URLs,
Luhn-checked payment card numbers and sliding-window Shannon entropy anomalies.
All offsets are byte offsets into the scanned buffer.
*/

package patterns

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Match types
const (
	TypeString      = "ASCII String"
	TypeEmail       = "Email Address"
	TypeURL         = "URL"
	TypeCreditCard  = "Credit Card Number"
	TypeHighEntropy = "High Entropy (Possible Encryption/Compression)"
	TypeLowEntropy  = "Low Entropy (Repetitive Data)"
)

const (
	// DefaultMinStringLength is used when FindStrings gets a non-positive length
	DefaultMinStringLength = 4
	// DefaultEntropyWindow is used when FindEntropyAnomalies gets a non-positive window
	DefaultEntropyWindow = 256
	// HighEntropyThreshold flags windows above it
	HighEntropyThreshold = 7.5
	// LowEntropyThreshold flags windows below it
	LowEntropyThreshold = 1.0
)

var (
	emailPattern      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	urlPattern        = regexp.MustCompile("https?://[^\\s\\x00-\\x1f\\x7f<>\"{}|\\\\^`\\[\\]]+")
	creditCardPattern = regexp.MustCompile(`\b(?:\d{4}[-\s]?\d{6}[-\s]?\d{5}|\d{4}(?:[-\s]?\d{4}){2}[-\s]?\d{1,7})\b`)
)

// PatternMatch is one finding in a buffer
type PatternMatch struct {
	Type   string `json:"type" yaml:"type"`
	Offset int    `json:"offset" yaml:"offset"`
	Length int    `json:"length" yaml:"length"`
	Value  string `json:"value" yaml:"value"`
}

// String renders the match for listings
func (m PatternMatch) String() string {
	return fmt.Sprintf("0x%08X: %s", m.Offset, m.Value)
}

// FindStrings returns runs of printable ASCII (0x20-0x7E) at least minLength long
func FindStrings(data []byte, minLength int) []PatternMatch {
	if minLength <= 0 {
		minLength = DefaultMinStringLength
	}

	matches := make([]PatternMatch, 0)
	start := -1

	flush := func(end int) {
		if start >= 0 && end-start >= minLength {
			matches = append(matches, PatternMatch{
				Type:   TypeString,
				Offset: start,
				Length: end - start,
				Value:  string(data[start:end]),
			})
		}
		start = -1
	}

	for i, b := range data {
		if isPrintable(b) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(data))

	return matches
}

// FindEmails returns email-like tokens
func FindEmails(data []byte) []PatternMatch {
	return findRegex(data, emailPattern, TypeEmail)
}

// FindURLs returns http and https URLs
func FindURLs(data []byte) []PatternMatch {
	return findRegex(data, urlPattern, TypeURL)
}

// FindCreditCards returns card-number groupings that pass the Luhn check.
// Candidates failing the checksum are dropped.
func FindCreditCards(data []byte) []PatternMatch {
	matches := make([]PatternMatch, 0)
	for _, m := range findRegex(data, creditCardPattern, TypeCreditCard) {
		if IsValidLuhn(stripSeparators(m.Value)) {
			matches = append(matches, m)
		}
	}
	return matches
}

// IsValidLuhn checks a 13 to 19 digit number against the Luhn checksum
func IsValidLuhn(number string) bool {
	if len(number) < 13 || len(number) > 19 {
		return false
	}

	sum := 0
	alternate := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')
		if alternate {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		alternate = !alternate
	}

	return sum%10 == 0
}

// ShannonEntropy returns the base-2 entropy of the byte histogram, 0 for empty input
func ShannonEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}

	var frequencies [256]int
	for _, b := range data {
		frequencies[b]++
	}

	entropy := 0.0
	length := float64(len(data))
	for _, count := range frequencies {
		if count == 0 {
			continue
		}
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// FindEntropyAnomalies slides a window with half-window stride and reports windows
// above HighEntropyThreshold or below LowEntropyThreshold. A trailing remainder shorter
// than a full window is not scanned.
func FindEntropyAnomalies(data []byte, windowSize int) []PatternMatch {
	return findEntropyAnomalies(data, windowSize, HighEntropyThreshold, LowEntropyThreshold)
}

func findEntropyAnomalies(data []byte, windowSize int, high, low float64) []PatternMatch {
	if windowSize <= 0 {
		windowSize = DefaultEntropyWindow
	}
	stride := windowSize / 2
	if stride < 1 {
		stride = 1
	}

	matches := make([]PatternMatch, 0)
	for i := 0; i+windowSize <= len(data); i += stride {
		entropy := ShannonEntropy(data[i : i+windowSize])

		var kind string
		switch {
		case entropy > high:
			kind = TypeHighEntropy
		case entropy < low:
			kind = TypeLowEntropy
		default:
			continue
		}

		matches = append(matches, PatternMatch{
			Type:   kind,
			Offset: i,
			Length: windowSize,
			Value:  fmt.Sprintf("Entropy: %.2f", entropy),
		})
	}
	return matches
}

func findRegex(data []byte, pattern *regexp.Regexp, kind string) []PatternMatch {
	text := asciiText(data)
	matches := make([]PatternMatch, 0)
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		matches = append(matches, PatternMatch{
			Type:   kind,
			Offset: loc[0],
			Length: loc[1] - loc[0],
			Value:  text[loc[0]:loc[1]],
		})
	}
	return matches
}

// asciiText decodes one byte per character; bytes outside 7-bit ASCII become '?'
// so regex indices stay byte offsets
func asciiText(data []byte) string {
	buf := make([]byte, len(data))
	for i, b := range data {
		if b >= 0x80 {
			b = '?'
		}
		buf[i] = b
	}
	return string(buf)
}

func stripSeparators(s string) string {
	return strings.NewReplacer("-", "", " ", "", "\t", "", "\n", "", "\r", "", "\f", "", "\v", "").Replace(s)
}

func isPrintable(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}
