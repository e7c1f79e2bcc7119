package library

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	ErrCategoryNotTerminated  = errors.New("category not terminated with }")
	ErrMacroNameNotTerminated = errors.New("macro name not terminated with ]")
)

// HeaderLexer splits a library header line. Only single spaces separate
// the macro key from its long name, tabs belong to words.
var HeaderLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Punct", Pattern: `[\[\]{}]`},
	{Name: "Space", Pattern: ` +`},
	{Name: "Word", Pattern: `[^\[\]{} ]+`},
})

// Header is one "{category}" or "[KEY long name]" line
type Header struct {
	Category *CategoryHeader `  @@`
	Macro    *MacroHeader    `| @@`
}

// CategoryHeader is everything between "{" and the first "}"
type CategoryHeader struct {
	Name     []string `"{" @(Word | Space | "[" | "]" | "{")* "}"`
	Trailing []string `@(Word | Space | Punct)*`
}

// MacroHeader splits "[KEY long name]" at the first space
type MacroHeader struct {
	Key      []string `"[" @(Word | "{" | "}" | "[")*`
	LongName []string `@(Word | Space | "{" | "}" | "[")* "]"`
	Trailing []string `@(Word | Space | Punct)*`
}

// HeaderParser recognizes library header lines
type HeaderParser struct {
	parser *participle.Parser[Header]
}

// NewHeaderParser builds the header grammar
func NewHeaderParser() (*HeaderParser, error) {
	parser, err := participle.Build[Header](
		participle.Lexer(HeaderLexer),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build header parser: %w", err)
	}
	return &HeaderParser{parser: parser}, nil
}

var defaultHeaderParser = func() *HeaderParser {
	p, err := NewHeaderParser()
	if err != nil {
		panic(err)
	}
	return p
}()

// Category returns the trimmed category name of a "{...}" line
func (p *HeaderParser) Category(line string) (string, error) {
	h, err := p.parser.ParseString("", line)
	if err != nil || h.Category == nil {
		return "", ErrCategoryNotTerminated
	}
	return strings.TrimSpace(strings.Join(h.Category.Name, "")), nil
}

// Macro returns the key and the trimmed long name of a "[...]" line
func (p *HeaderParser) Macro(line string) (key, longName string, err error) {
	h, err := p.parser.ParseString("", line)
	if err != nil || h.Macro == nil {
		return "", "", ErrMacroNameNotTerminated
	}
	key = strings.TrimSpace(strings.Join(h.Macro.Key, ""))
	longName = strings.TrimSpace(strings.Join(h.Macro.LongName, ""))
	return key, longName, nil
}
