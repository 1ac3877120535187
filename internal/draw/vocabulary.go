package draw

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Thresholds are the word-count cutoffs used when repairing row boundaries
type Thresholds struct {
	ShortHazardWords     int `yaml:"short_hazard_words"`
	ShortSecondLineWords int `yaml:"short_second_line_words"`
}

// Vocabulary holds the curated word lists of the heuristic parser. A loaded
// Vocabulary is never modified and may be shared between goroutines.
type Vocabulary struct {
	HazardPrefixes       []string   `yaml:"hazard_prefixes"`
	HazardStopwords      []string   `yaml:"hazard_stopwords"`
	AmbiguousFirstLine   []string   `yaml:"ambiguous_first_line"`
	TopCategories        []string   `yaml:"top_categories"`
	CategoryPrefixes     []string   `yaml:"category_prefixes"`
	HazardCues           []string   `yaml:"hazard_cues"`
	TrailingConnectives  []string   `yaml:"trailing_connectives"`
	ContinuationWords    []string   `yaml:"continuation_words"`
	DisapprovalPhrases   []string   `yaml:"disapproval_phrases"`
	SignatureBoilerplate []string   `yaml:"signature_boilerplate"`
	Thresholds           Thresholds `yaml:"thresholds"`

	hazards    map[string]struct{}
	stopwords  map[string]struct{}
	ambiguous  map[string]struct{}
	connective map[string]struct{}
}

var (
	defaultVocabulary     *Vocabulary
	defaultVocabularyOnce sync.Once
)

// DefaultVocabulary returns the embedded word lists
func DefaultVocabulary() *Vocabulary {
	defaultVocabularyOnce.Do(func() {
		v, err := parseVocabulary(defaultVocabularyYAML, nil)
		if err != nil {
			panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
		}
		defaultVocabulary = v
	})
	return defaultVocabulary
}

// LoadVocabulary reads a YAML override. Keys present in the file replace the
// embedded lists, absent keys keep their defaults.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return parseVocabulary(data, DefaultVocabulary())
}

func parseVocabulary(data []byte, base *Vocabulary) (*Vocabulary, error) {
	v := &Vocabulary{}
	if base != nil {
		*v = *base
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if len(v.HazardPrefixes) == 0 {
		return nil, fmt.Errorf("vocabulary has no hazard_prefixes")
	}

	v.hazards = upperSet(v.HazardPrefixes)
	v.stopwords = upperSet(v.HazardStopwords)
	v.ambiguous = upperSet(v.AmbiguousFirstLine)
	v.connective = upperSet(v.TrailingConnectives)
	return v, nil
}

func upperSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToUpper(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}

// IsHazardWord reports whether an upper-cased token is a hazard prefix
func (v *Vocabulary) IsHazardWord(token string) bool {
	_, ok := v.hazards[token]
	return ok
}

// IsStopword reports whether an upper-cased token is a stopword
func (v *Vocabulary) IsStopword(token string) bool {
	_, ok := v.stopwords[token]
	return ok
}

// IsAmbiguousFirstLine reports whether a hazard word is ignored on line one
func (v *Vocabulary) IsAmbiguousFirstLine(token string) bool {
	_, ok := v.ambiguous[token]
	return ok
}

// IsTrailingConnective reports whether an upper-cased word leaves a phrase open
func (v *Vocabulary) IsTrailingConnective(token string) bool {
	_, ok := v.connective[token]
	return ok
}
