package primitives

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/layers"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/library"
)

// MaxMacroDepth bounds the nesting of macros inside macro bodies
const MaxMacroDepth = 16

// Env is what a primitive needs from the drawing it is parsed into
type Env struct {
	Library      library.Library
	Layers       []*layers.Layer
	TextFont     string
	TextFontSize int

	// Expand parses the body of a macro with the child environment. A nil
	// Expand leaves macros empty.
	Expand func(body string, env *Env) ([]Primitive, error)

	depth int
}

// Depth is the macro nesting level of the environment
func (e *Env) Depth() int { return e.depth }

// child returns the environment for the body of a macro
func (e *Env) child() (*Env, error) {
	if e.depth+1 > MaxMacroDepth {
		return nil, ErrMacroDepth
	}
	c := *e
	c.depth++
	return &c, nil
}

func (e *Env) visible(layer int) bool {
	if e.Layers == nil {
		return true
	}
	return layers.IsVisible(e.Layers, layer)
}

type constructor func(env *Env) Primitive

var constructors = map[string]constructor{
	"LI": func(env *Env) Primitive { return NewLine(env.TextFont, env.TextFontSize) },
	"BE": func(env *Env) Primitive { return NewBezier(env.TextFont, env.TextFontSize) },
	"RV": func(env *Env) Primitive { return NewRectangle(env.TextFont, env.TextFontSize) },
	"RP": func(env *Env) Primitive { return NewRectangle(env.TextFont, env.TextFontSize) },
	"EV": func(env *Env) Primitive { return NewOval(env.TextFont, env.TextFontSize) },
	"EP": func(env *Env) Primitive { return NewOval(env.TextFont, env.TextFontSize) },
	"PV": func(env *Env) Primitive { return NewPolygon(env.TextFont, env.TextFontSize) },
	"PP": func(env *Env) Primitive { return NewPolygon(env.TextFont, env.TextFontSize) },
	"CV": func(env *Env) Primitive { return NewComplexCurve(env.TextFont, env.TextFontSize) },
	"CP": func(env *Env) Primitive { return NewComplexCurve(env.TextFont, env.TextFontSize) },
	"PL": func(env *Env) Primitive { return NewPCBLine(env.TextFont, env.TextFontSize) },
	"PA": func(env *Env) Primitive { return NewPCBPad(env.TextFont, env.TextFontSize) },
	"SA": func(env *Env) Primitive { return NewConnection(env.TextFont, env.TextFontSize) },
	"TY": func(env *Env) Primitive { return NewAdvText() },
	"TE": func(env *Env) Primitive { return NewAdvText() },
	"MC": func(env *Env) Primitive { return NewMacro(env) },
}

// IsCommand reports whether cmd starts a primitive
func IsCommand(cmd string) bool {
	_, ok := constructors[cmd]
	return ok
}

// New creates an empty primitive for the command cmd
func New(cmd string, env *Env) (Primitive, error) {
	c, ok := constructors[cmd]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
	return c(env), nil
}

// Parse creates the primitive of a token row and reads it
func Parse(tokens []string, env *Env) (Primitive, error) {
	if len(tokens) == 0 {
		return nil, ErrTooFewTokens
	}
	p, err := New(tokens[0], env)
	if err != nil {
		return nil, err
	}
	if err := p.ParseTokens(tokens); err != nil {
		return nil, err
	}
	return p, nil
}
