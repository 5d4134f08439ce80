package analysis

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"tubelens-backend/internal/models"
)

const (
	maxKeywords      = 20
	minKeywordLength = 3
)

// KeywordExtractor counts frequent terms. Tokens keep ASCII letters, digits, underscore and
// the letters of the configured scripts.
type KeywordExtractor struct {
	scripts []*unicode.RangeTable
}

// HangulSyllables covers precomposed syllables only (U+AC00..U+D7A3). Bare jamo such as
// "ㅋㅋㅋ" are dropped.
const HangulSyllables = "HangulSyllables"

var hangulSyllables = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0xAC00, Hi: 0xD7A3, Stride: 1}},
}

// extraScripts are accepted alongside the unicode.Scripts names.
var extraScripts = map[string]*unicode.RangeTable{
	HangulSyllables: hangulSyllables,
}

// DefaultScripts is used when no script is configured.
var DefaultScripts = []string{HangulSyllables}

func NewKeywordExtractor(scriptNames ...string) (*KeywordExtractor, error) {
	if len(scriptNames) == 0 {
		scriptNames = DefaultScripts
	}
	tables := make([]*unicode.RangeTable, 0, len(scriptNames))
	for _, name := range scriptNames {
		table, ok := extraScripts[name]
		if !ok {
			table, ok = unicode.Scripts[name]
		}
		if !ok {
			return nil, fmt.Errorf("unknown unicode script %q", name)
		}
		tables = append(tables, table)
	}
	return &KeywordExtractor{scripts: tables}, nil
}

// Extract returns up to 20 terms ordered by descending frequency, ties in first-seen order.
func (k *KeywordExtractor) Extract(videos []models.VideoRecord) []string {
	var b strings.Builder
	for i, v := range videos {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v.Title)
		b.WriteByte(' ')
		b.WriteString(v.Description)
		b.WriteByte(' ')
		b.WriteString(v.Transcript)
	}

	counts := k.Count(b.String())
	if len(counts) > maxKeywords {
		counts = counts[:maxKeywords]
	}
	words := make([]string, len(counts))
	for i, c := range counts {
		words[i] = c.Word
	}
	return words
}

// TermCount is a term with its number of occurrences.
type TermCount struct {
	Word  string
	Count int
}

// Count tokenizes text and returns every kept term ordered like Extract.
func (k *KeywordExtractor) Count(text string) []TermCount {
	index := make(map[string]int)
	var counts []TermCount

	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := k.clean(field)
		if len([]rune(word)) < minKeywordLength {
			continue
		}
		if i, ok := index[word]; ok {
			counts[i].Count++
			continue
		}
		index[word] = len(counts)
		counts = append(counts, TermCount{Word: word, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

func (k *KeywordExtractor) clean(token string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII {
			if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
				return r
			}
			return -1
		}
		if unicode.IsOneOf(k.scripts, r) && (unicode.IsLetter(r) || unicode.IsNumber(r)) {
			return r
		}
		return -1
	}, token)
}
