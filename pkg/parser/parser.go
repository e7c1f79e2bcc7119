// Package parser reads FidoCadJ code into a model.Drawing. Lines are read
// one at a time with a single line of lookahead, so that an FCJ extension
// line and the TY rows of a name and value join the primitive they follow.
// Errors are isolated to the line they occur on.
package parser

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/model"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/primitives"
)

// LineError is a problem found on one line of the input
type LineError struct {
	Line    int    // 1-based
	Command string // first token of the line
	Err     error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Command, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Result describes one parsing pass
type Result struct {
	Drawing     *model.Drawing
	Defaults    DocumentDefaults
	Diagnostics []*LineError

	// Added is the number of primitives the pass added to the drawing
	Added int
}

// Parser fills a drawing from FidoCadJ code. Passes on the same Parser
// are serialized.
type Parser struct {
	mu       sync.Mutex
	drawing  *model.Drawing
	defaults DocumentDefaults
}

// New creates a parser for d. A nil d is replaced by an empty drawing with
// the standard layers.
func New(d *model.Drawing) *Parser {
	if d == nil {
		d = model.New(nil, nil)
	}
	return &Parser{drawing: d, defaults: DefaultDocumentDefaults()}
}

// Drawing returns the drawing the parser fills
func (p *Parser) Drawing() *model.Drawing { return p.drawing }

// Defaults returns the document sizes set by the last passes
func (p *Parser) Defaults() DocumentDefaults {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.defaults
}

// SetDefaults replaces the document sizes
func (p *Parser) SetDefaults(d DocumentDefaults) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaults = d
}

// ParseString replaces the content of the drawing with text
func (p *Parser) ParseString(text string) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.drawing.Clear()
	return p.run(text, false), nil
}

// AddString appends the primitives of text to the drawing. The new
// primitives are selected when selectNew is true.
func (p *Parser) AddString(text string, selectNew bool) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.run(text, selectNew), nil
}

// ParseReader replaces the content of the drawing with what r holds
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read drawing: %w", err)
	}
	return p.ParseString(string(data))
}

// ParseFile replaces the content of the drawing with the file at path
func (p *Parser) ParseFile(path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open drawing: %w", err)
	}
	defer file.Close()

	return p.ParseReader(file)
}

// run parses text into the drawing. The caller holds p.mu.
func (p *Parser) run(text string, selectNew bool) *Result {
	ps := newPass(p.drawing.Env(p.expand), "")
	ps.run(text)

	for _, prim := range ps.out {
		p.drawing.Add(prim, selectNew)
	}
	ps.pragmas.apply(&p.defaults, p.drawing.Layers)
	p.drawing.SortByLayer()

	return &Result{
		Drawing:     p.drawing,
		Defaults:    p.defaults,
		Diagnostics: ps.diags,
		Added:       len(ps.out),
	}
}

// expand parses a macro body with the environment of the macro. Errors in
// the body only lose the lines they occur on, unless the macros are nested
// too deeply.
func (p *Parser) expand(body string, env *primitives.Env) ([]primitives.Primitive, error) {
	ps := newPass(env, "macro body ")
	ps.run(body)
	for _, d := range ps.diags {
		if errors.Is(d, primitives.ErrMacroDepth) {
			return nil, d.Err
		}
	}
	return ps.out, nil
}

// RegisterConfiguration writes the FJC pragmas that restore the current
// document sizes and layer table. It is empty without extensions.
func (p *Parser) RegisterConfiguration(extensions bool) string {
	if !extensions {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return writePragmas(p.defaults, p.drawing.Layers)
}

// Text writes the whole drawing as FidoCadJ code
func (p *Parser) Text(extensions bool) string {
	var s strings.Builder
	s.WriteString(p.RegisterConfiguration(extensions))

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, prim := range p.drawing.Primitives() {
		s.WriteString(prim.String(extensions))
	}
	return s.String()
}

type state int

const (
	stateIdle state = iota
	stateAwaitingExtension
	stateAwaitingMacroName
	stateAwaitingMacroValue
)

// pending is the primitive held back by the lookahead
type pending struct {
	line   int
	tokens []string
	prim   primitives.Primitive // nil until built
	name   []string
}

// pass is the state of one parsing run over a buffer
type pass struct {
	env    *primitives.Env
	prefix string

	state   state
	pend    pending
	out     []primitives.Primitive
	diags   []*LineError
	pragmas pragmas
}

func newPass(env *primitives.Env, prefix string) *pass {
	return &pass{env: env, prefix: prefix}
}

// deferred are the commands whose row waits for a possible FCJ line
var deferred = map[string]bool{
	"LI": true, "BE": true, "MC": true,
	"RV": true, "RP": true, "EV": true, "EP": true,
	"PV": true, "PP": true, "CV": true, "CP": true,
	"PL": true, "PA": true, "SA": true,
}

// builtEarly are the deferred commands built before their FCJ line is seen
var builtEarly = map[string]bool{"PL": true, "PA": true, "SA": true}

func (ps *pass) run(text string) {
	for _, tl := range tokenize(text) {
		if err := ps.line(tl); err != nil {
			ps.fail(tl.num, tl.tokens[0], err)
		}
	}
	ps.drain()
}

// fail records an error on a line and drops what the lookahead held
func (ps *pass) fail(line int, cmd string, err error) {
	log.Printf("Error parsing %sline %d: %v", ps.prefix, line, err)
	ps.diags = append(ps.diags, &LineError{Line: line, Command: cmd, Err: err})
	ps.reset()
}

// drain emits the held back primitive. A failure is reported on the line
// the primitive started at.
func (ps *pass) drain() {
	if ps.state == stateIdle {
		return
	}
	if err := ps.flush(); err != nil {
		ps.fail(ps.pend.line, ps.pend.tokens[0], err)
	}
}

func (ps *pass) reset() {
	ps.state = stateIdle
	ps.pend = pending{}
}

func (ps *pass) line(tl tokenLine) error {
	cmd := tl.tokens[0]

	switch ps.state {
	case stateAwaitingExtension:
		if cmd == "FCJ" {
			return ps.extend(tl.tokens)
		}
		ps.drain()
	case stateAwaitingMacroName:
		if cmd == "TY" {
			ps.pend.name = tl.tokens
			ps.state = stateAwaitingMacroValue
			return nil
		}
		ps.drain()
	case stateAwaitingMacroValue:
		if cmd == "TY" {
			return ps.attach(tl.tokens)
		}
		ps.drain()
	}

	return ps.start(tl)
}

// start handles a line with nothing held back
func (ps *pass) start(tl tokenLine) error {
	cmd := tl.tokens[0]
	switch {
	case cmd == "FJC":
		return ps.pragmas.parse(tl.tokens)
	case deferred[cmd]:
		ps.pend = pending{line: tl.num, tokens: tl.tokens}
		if builtEarly[cmd] {
			prim, err := primitives.Parse(tl.tokens, ps.env)
			if err != nil {
				ps.pend = pending{}
				return err
			}
			ps.pend.prim = prim
		}
		ps.state = stateAwaitingExtension
	case cmd == "TY" || cmd == "TE":
		prim, err := primitives.Parse(tl.tokens, ps.env)
		if err != nil {
			return err
		}
		ps.out = append(ps.out, prim)
	}
	// FCJ without a primitive, [FIDOCAD] and unknown commands are ignored
	return nil
}

// extend merges an FCJ line into the held back primitive
func (ps *pass) extend(fcj []string) error {
	cached := ps.pend.tokens
	cmd := cached[0]

	switch {
	case cmd == "MC":
		prim, err := primitives.Parse(cached, ps.env)
		if err != nil {
			return err
		}
		ps.pend.prim = prim
		ps.state = stateAwaitingMacroName
		return nil
	case builtEarly[cmd]:
		ps.state = stateAwaitingMacroName
		return nil
	}

	combined := make([]string, 0, len(cached)+len(fcj))
	combined = append(combined, cached...)
	combined = append(combined, fcj...)
	prim, err := primitives.Parse(combined, ps.env)
	if err != nil {
		return err
	}
	ps.pend.prim = prim

	minLen := 2
	if cmd == "LI" || cmd == "BE" {
		minLen = 5
	}
	if len(combined)-1 > minLen && combined[len(combined)-1] == "1" {
		ps.state = stateAwaitingMacroName
		return nil
	}
	ps.emit()
	return nil
}

// attach applies the name and value rows and emits the primitive
func (ps *pass) attach(value []string) error {
	prim := ps.pend.prim
	if err := prim.SetNameTokens(ps.pend.name); err != nil {
		return err
	}
	if err := prim.SetValueTokens(value); err != nil {
		return err
	}
	ps.emit()
	return nil
}

// flush emits what the lookahead holds, with whatever text it has
func (ps *pass) flush() error {
	switch ps.state {
	case stateIdle:
		return nil
	case stateAwaitingExtension:
		if ps.pend.prim == nil {
			prim, err := primitives.Parse(ps.pend.tokens, ps.env)
			if err != nil {
				return err
			}
			ps.pend.prim = prim
		}
	case stateAwaitingMacroValue:
		if err := ps.pend.prim.SetNameTokens(ps.pend.name); err != nil {
			return err
		}
	}
	ps.emit()
	return nil
}

func (ps *pass) emit() {
	ps.out = append(ps.out, ps.pend.prim)
	ps.reset()
}
