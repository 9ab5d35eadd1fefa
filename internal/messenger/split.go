package messenger

// MaxMessageLen is the Telegram message length limit.
const MaxMessageLen = 4096

// Split breaks text into chunks of at most limit runes. The cut point is the
// last newline at or below the limit, then the last space, then a hard cut.
// A newline or space used as a cut point is consumed, not carried over.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLen
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		cut, skip := limit, 0
		window := runes[:limit+1]
		if i := lastIndex(window, '\n'); i > 0 {
			cut, skip = i, 1
		} else if i := lastIndex(window, ' '); i > 0 {
			cut, skip = i, 1
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut+skip:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func lastIndex(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
