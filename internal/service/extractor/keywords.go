package extractor

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Lemmatizer reduces a lowercased word to its dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

type identityLemmatizer struct{}

func (identityLemmatizer) Lemma(word string) string { return word }

var (
	defaultLemmatizerOnce sync.Once
	defaultLemmatizer     Lemmatizer
)

// DefaultLemmatizer loads the English dictionary once. If it cannot be
// loaded, words are kept as-is.
func DefaultLemmatizer() Lemmatizer {
	defaultLemmatizerOnce.Do(func() {
		l, err := golem.New(en.New())
		if err != nil {
			defaultLemmatizer = identityLemmatizer{}
			return
		}
		defaultLemmatizer = l
	})
	return defaultLemmatizer
}

// extractKeywords returns the sorted set of lemmatized, stopword-free tokens.
func extractKeywords(message string, lemmatizer Lemmatizer) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(message), -1)

	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if _, stop := stopwords[token]; stop {
			continue
		}
		lemma := lemmatizer.Lemma(token)
		if lemma == "" {
			lemma = token
		}
		seen[strings.ToLower(lemma)] = struct{}{}
	}

	keywords := make([]string, 0, len(seen))
	for k := range seen {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}
