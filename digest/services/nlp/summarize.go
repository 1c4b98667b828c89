package nlp

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

const (
	numKeywords       = 10
	idealSentenceLen  = 20.0
	DefaultMaxSummary = 5
)

// Summarizer builds extractive summaries: sentences are ranked by title
// overlap, keyword density, length and position, and the best ones are
// returned in their original order.
type Summarizer struct {
	splitter SentenceSplitter
}

func NewSummarizer(splitter SentenceSplitter) *Summarizer {
	return &Summarizer{splitter: splitter}
}

// Summarize returns up to maxSentences sentences joined by newlines.
func (s *Summarizer) Summarize(title, text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSummary
	}
	sents := s.splitter.Split(text)
	if len(sents) == 0 {
		return ""
	}

	keys := Keywords(text)
	titleWords := SplitWords(title)

	type ranked struct {
		index int
		text  string
		score float64
	}
	ranks := make([]ranked, len(sents))
	for i, sent := range sents {
		words := SplitWords(sent)
		frequency := (sbs(words, keys) + dbs(words, keys)) / 2.0 * 10.0
		total := (titleScore(titleWords, words)*1.5 +
			frequency*2.0 +
			lengthScore(len(words))*1.0 +
			sentencePosition(i+1, len(sents))*1.0) / 4.0
		ranks[i] = ranked{index: i, text: sent, score: total}
	}

	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].score > ranks[j].score })
	if len(ranks) > maxSentences {
		ranks = ranks[:maxSentences]
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i].index < ranks[j].index })

	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.text
	}
	return strings.Join(out, "\n")
}

// SplitWords lowercases text, drops punctuation and splits on whitespace.
func SplitWords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, text)
	return strings.Fields(cleaned)
}

// Keywords returns the most frequent non-stopword terms weighted by their
// share of the text.
func Keywords(text string) map[string]float64 {
	words := SplitWords(text)
	if len(words) == 0 {
		return map[string]float64{}
	}
	numWords := len(words)

	freq := map[string]int{}
	for _, w := range words {
		if !isStopword(w) {
			freq[w]++
		}
	}

	type kv struct {
		word  string
		count int
	}
	all := make([]kv, 0, len(freq))
	for w, c := range freq {
		all = append(all, kv{w, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].word > all[j].word
	})
	if len(all) > numKeywords {
		all = all[:numKeywords]
	}

	keys := make(map[string]float64, len(all))
	for _, e := range all {
		keys[e.word] = float64(e.count)/float64(numWords)*1.5 + 1
	}
	return keys
}

// sbs is summation-based keyword density.
func sbs(words []string, keys map[string]float64) float64 {
	if len(words) == 0 {
		return 0
	}
	score := 0.0
	for _, w := range words {
		score += keys[w]
	}
	return (1.0 / float64(len(words)) * score) / 10.0
}

// dbs is density-based: keywords close to each other score higher.
func dbs(words []string, keys map[string]float64) float64 {
	if len(words) == 0 {
		return 0
	}
	sum := 0.0
	prevIdx, prevScore := -1, 0.0
	seen := map[string]bool{}
	for i, w := range words {
		score, ok := keys[w]
		if !ok {
			continue
		}
		seen[w] = true
		if prevIdx >= 0 {
			dif := float64(i - prevIdx)
			sum += (score * prevScore) / (dif * dif)
		}
		prevIdx, prevScore = i, score
	}
	k := float64(len(seen) + 1)
	return 1 / (k * (k + 1.0)) * sum
}

func lengthScore(n int) float64 {
	return 1 - math.Abs(idealSentenceLen-float64(n))/idealSentenceLen
}

func titleScore(title, sentence []string) float64 {
	if len(title) == 0 {
		return 0
	}
	titleSet := map[string]bool{}
	n := 0
	for _, w := range title {
		if !isStopword(w) {
			titleSet[w] = true
			n++
		}
	}
	count := 0.0
	for _, w := range sentence {
		if !isStopword(w) && titleSet[w] {
			count++
		}
	}
	return count / math.Max(float64(n), 1)
}

// sentencePosition favours the opening and the very end of an article.
func sentencePosition(i, size int) float64 {
	normalized := float64(i) / float64(size)
	switch {
	case normalized > 1.0:
		return 0
	case normalized > 0.9:
		return 0.15
	case normalized > 0.8:
		return 0.04
	case normalized > 0.7:
		return 0.04
	case normalized > 0.6:
		return 0.06
	case normalized > 0.5:
		return 0.04
	case normalized > 0.4:
		return 0.05
	case normalized > 0.3:
		return 0.08
	case normalized > 0.2:
		return 0.14
	case normalized > 0.1:
		return 0.23
	case normalized > 0:
		return 0.17
	default:
		return 0
	}
}
