package nlp

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any",
		"are", "as", "at", "be", "because", "been", "before", "being", "below", "between", "both",
		"but", "by", "can", "could", "did", "do", "does", "doing", "down", "during", "each", "even",
		"few", "for", "from", "further", "had", "has", "have", "having", "he", "her", "here", "hers",
		"herself", "him", "himself", "his", "how", "however", "i", "if", "in", "into", "is", "it",
		"its", "itself", "just", "like", "many", "may", "me", "might", "more", "most", "much", "must",
		"my", "myself", "new", "no", "nor", "not", "now", "of", "off", "on", "once", "one", "only",
		"or", "other", "our", "ours", "ourselves", "out", "over", "own", "said", "same", "say", "says",
		"she", "should", "since", "so", "some", "still", "such", "than", "that", "the", "their",
		"theirs", "them", "themselves", "then", "there", "these", "they", "this", "those", "through",
		"to", "too", "two", "under", "until", "up", "us", "very", "was", "we", "were", "what", "when",
		"where", "which", "while", "who", "whom", "why", "will", "with", "would", "year", "years",
		"yet", "you", "your", "yours", "yourself", "yourselves",
	} {
		stopwords[w] = struct{}{}
	}
}

func isStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}
