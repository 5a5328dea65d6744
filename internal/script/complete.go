package script

// Complete reports whether src ends outside any brace, bracket or quote, so
// an interactive shell can tell a finished command from one that continues
// on the next line.
func Complete(src string) bool {
	braces, brackets := 0, 0
	quoted := false
	wordStart := true
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\':
			if i+1 == len(src) {
				return false
			}
			i++
			wordStart = false
			continue
		case braces > 0:
			switch c {
			case '{':
				braces++
			case '}':
				braces--
			}
		case c == '{' && wordStart && !quoted:
			braces++
		case c == '"' && (quoted || wordStart):
			quoted = !quoted
		case c == '[':
			brackets++
		case c == ']' && brackets > 0:
			brackets--
		}
		wordStart = braces == 0 && !quoted && (c == ' ' || c == '\t' || c == '\n' || c == ';' || c == '[')
	}
	return braces == 0 && brackets == 0 && !quoted
}
