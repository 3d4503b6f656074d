package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// WordFilter scans free text (feedback prompts, photo captions) against a
// blocked-word list. It is an explicit object with its own load/teardown
// rather than package-level state, so tests and callers control its
// lifecycle.
type WordFilter struct {
	mu    sync.RWMutex
	words []string
}

// NewWordFilter builds a filter from the given words. Empty entries are
// dropped; the rest are normalized the same way scanned text is.
func NewWordFilter(words []string) *WordFilter {
	f := &WordFilter{}
	f.Replace(words)
	return f
}

// NewWordFilterFromFile loads one word per line, ignoring blanks and
// #-comments.
func NewWordFilterFromFile(path string) (*WordFilter, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer file.Close()
	return newWordFilterFromReader(file)
}

func newWordFilterFromReader(r io.Reader) (*WordFilter, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return NewWordFilter(words), nil
}

// Replace swaps the word list in place (e.g., after a config reload).
func (f *WordFilter) Replace(words []string) {
	normalized := make([]string, 0, len(words))
	for _, w := range words {
		w = normalizeForScan(w)
		if w != "" {
			normalized = append(normalized, w)
		}
	}
	f.mu.Lock()
	f.words = normalized
	f.mu.Unlock()
}

// Close releases the word list. The filter scans nothing afterwards.
func (f *WordFilter) Close() {
	f.mu.Lock()
	f.words = nil
	f.mu.Unlock()
}

// Match returns the first blocked word found in text, or "" if the text is
// clean. Matching is a substring scan over normalized text.
func (f *WordFilter) Match(text string) string {
	haystack := normalizeForScan(text)
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, w := range f.words {
		if strings.Contains(haystack, w) {
			return w
		}
	}
	return ""
}

// Allowed reports whether text contains no blocked words.
func (f *WordFilter) Allowed(text string) bool {
	return f.Match(text) == ""
}

// normalizeForScan folds the text so lookalike spellings can't slip past the
// scan: NFKC unicode normalization, ASCII transliteration, lowercase.
func normalizeForScan(text string) string {
	text = norm.NFKC.String(text)
	text = unidecode.Unidecode(text)
	return strings.ToLower(strings.TrimSpace(text))
}
