//
// Copyright (c) 2018, Přemysl Janouch <p@janouch.name>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
// WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY
// SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
// WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION
// OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN
// CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
//

package aether

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// --- Session -----------------------------------------------------------------

// State is a state of the session loop.
type State int

const (
	// Idle is the state before the loop starts.
	Idle State = iota
	// AwaitingLine is the state of waiting for the next line of input.
	AwaitingLine
	// Evaluating is the state of waiting for the evaluator to finish.
	Evaluating
	// Terminated is the final state, reached at the end of input.
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingLine:
		return "awaiting line"
	case Evaluating:
		return "evaluating"
	case Terminated:
		return "terminated"
	}
	panic("unknown session state")
}

const (
	// PromptPrimary is shown when a new expression may start.
	PromptPrimary = "» "
	// PromptContinuation is shown while an expression spans more lines.
	PromptContinuation = "… "

	welcome  = "Welcome to Aether!"
	farewell = "\nCome back soon!\n"
)

// Session drives the read-evaluate-print cycle over an engine and a line
// source, neither of which it owns.
type Session struct {
	engine   *Engine
	lines    LineSource
	out      io.Writer
	styles   styles
	state    State
	pending  bool // an expression is being evaluated, possibly continued
	failures int  // number of failed evaluations
}

// NewSession returns a session in the Idle state. The engine is made to
// read continuation lines from the same line source.
func NewSession(engine *Engine, lines LineSource, out io.Writer) *Session {
	s := &Session{
		engine: engine,
		lines:  lines,
		out:    out,
		styles: newStyles(out),
	}
	engine.SetReader(s.readContinuation)
	return s
}

// Prompt returns the prompt to be shown for the next line.
func (s *Session) Prompt() string {
	if s.pending {
		return PromptContinuation
	}
	return PromptPrimary
}

// State returns the current state of the loop.
func (s *Session) State() State { return s.state }

// Failures returns the number of lines that failed to evaluate.
func (s *Session) Failures() int { return s.failures }

func (s *Session) readContinuation() (string, error) {
	return s.lines.ReadLine(s.Prompt())
}

func (s *Session) errorf(format string, a ...interface{}) {
	fmt.Fprintln(s.out, s.styles.error.Render(fmt.Sprintf(format, a...)))
}

// Step reads and evaluates a single line, and tells whether the loop
// should go on. Only the end of input terminates it.
func (s *Session) Step() bool {
	switch s.state {
	case Terminated:
		return false
	case Idle:
		s.state = AwaitingLine
	}

	line, err := s.lines.ReadLine(s.Prompt())
	if errors.Is(err, ErrInterrupted) {
		return true
	}
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.errorf("error: %s", err)
		}
		s.state = Terminated
		return false
	}
	if isBlank(line) {
		return true
	}

	s.state = Evaluating
	s.lines.AddHistory(line)

	s.pending = true
	result, err := s.engine.Evaluate(line)
	s.pending = false

	if err != nil {
		s.failures++
		s.errorf("Error: %s", err)
	} else if result != nil {
		PrintV(s.out, result)
		_, _ = io.WriteString(s.out, "\n")
	}
	s.state = AwaitingLine
	return true
}

// Loop runs the session until the end of input.
func (s *Session) Loop() {
	for s.Step() {
	}
}

// --- Lifecycle ---------------------------------------------------------------

// Config describes how to bring up an interactive session.
type Config struct {
	Out     io.Writer // output channel, standard output by default
	Prelude string    // path to a script to load at start-up, if any

	// OpenEngine creates the evaluator, NewEngine by default.
	OpenEngine func(out io.Writer) (*Engine, error)
	// OpenLines creates the line source, a Terminal by default. It is given
	// a function listing names for completion.
	OpenLines func(names func() []string) (LineSource, error)
}

func openTerminal(names func() []string) (LineSource, error) {
	t, err := OpenTerminal(names)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Run brings up an engine and a line source, runs a session over them until
// the end of input, then tears everything down in reverse order. Errors are
// only returned for failures to bring the session up, in which case
// everything acquired so far has already been released.
func Run(cfg Config) error {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.OpenEngine == nil {
		cfg.OpenEngine = NewEngine
	}
	if cfg.OpenLines == nil {
		cfg.OpenLines = openTerminal
	}

	engine, err := cfg.OpenEngine(cfg.Out)
	if err != nil {
		return fmt.Errorf("runtime initialization failed: %w", err)
	}
	defer engine.Close()

	if cfg.Prelude != "" {
		if err := engine.LoadFile(cfg.Prelude); err != nil {
			return fmt.Errorf("runtime initialization failed: %w", err)
		}
	}

	lines, err := cfg.OpenLines(engine.Names)
	if err != nil {
		return fmt.Errorf("line editor initialization failed: %w", err)
	}
	defer lines.Close()

	s := NewSession(engine, lines, cfg.Out)
	fmt.Fprintln(cfg.Out, s.styles.banner.Render(welcome))
	s.Loop()
	_, _ = io.WriteString(cfg.Out, farewell)
	return nil
}
