package nlp

import (
	"regexp"
	"strings"

	"github.com/neurosnap/sentences"
)

type SentenceSplitter interface {
	Split(text string) []string
}

// PunktSplitter splits text with an unsupervised punkt model.
type PunktSplitter struct {
	tok *sentences.DefaultSentenceTokenizer
}

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Split tokenizes each paragraph on its own, so headings and list items
// without closing punctuation do not merge into the next sentence.
func (p *PunktSplitter) Split(text string) []string {
	var out []string
	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for _, s := range p.tok.Tokenize(para) {
			if t := strings.TrimSpace(s.Text); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
