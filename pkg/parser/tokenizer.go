package parser

import (
	"log"
	"strings"
)

// MaxTokens is the largest number of tokens kept for one line. Further
// tokens are dropped with a warning.
const MaxTokens = 10000

// tokenLine is one non-empty physical line split at single spaces
type tokenLine struct {
	num    int
	tokens []string
}

// tokenize splits text into lines and the lines into tokens. A space ends
// a token and "\n", "\r" or the end of text ends a line. Empty tokens
// between two spaces are kept, a trailing empty token is not. Lines with
// no tokens are skipped, so "\r\n" counts as a single line end.
func tokenize(text string) []tokenLine {
	var (
		out     []tokenLine
		tokens  []string
		token   strings.Builder
		num     = 1
		tooLong bool
	)

	endLine := func() {
		if token.Len() > 0 && !tooLong {
			tokens = append(tokens, token.String())
		}
		if len(tokens) > 0 {
			out = append(out, tokenLine{num: num, tokens: tokens})
		}
		tokens = nil
		token.Reset()
		tooLong = false
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '\n':
			endLine()
			num++
		case '\r':
			endLine()
			if i+1 >= len(text) || text[i+1] != '\n' {
				num++
			}
		case ' ':
			if tooLong {
				continue
			}
			tokens = append(tokens, token.String())
			token.Reset()
			if len(tokens) >= MaxTokens {
				log.Printf("Too many tokens at line %d, the rest is ignored", num)
				tooLong = true
			}
		default:
			if !tooLong {
				token.WriteByte(c)
			}
		}
	}
	endLine()
	return out
}
