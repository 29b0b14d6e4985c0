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
	"strings"

	"github.com/dop251/goja"
)

// --- Engine ------------------------------------------------------------------

// ErrClosed is returned by an engine that has already been torn down.
var ErrClosed = errors.New("engine is closed")

// Reader supplies the next input line to an expression that is not complete
// yet. It returns io.EOF at the end of input.
type Reader func() (line string, err error)

// Engine is an evaluator context: a goja runtime holding the variable
// environment, together with a small invocation stack through which
// everything passes in and out of it.
type Engine struct {
	vm     *goja.Runtime
	stack  []goja.Value // invocation stack from the bottom
	bound  map[string]V // variables as last set from Go
	read   Reader       // source of continuation lines
	out    io.Writer    // output channel
	styles styles
	closed bool
}

// The evaluator's entry point, taking a single line of input.
const entryPoint = "doexpr"

// maxCallStackSize bounds recursion within the evaluator.
const maxCallStackSize = 10000

// NewEngine returns a new evaluator context with the prelude loaded,
// writing diagnostics and printed output to out.
func NewEngine(out io.Writer) (*Engine, error) {
	e := &Engine{
		vm:     goja.New(),
		bound:  make(map[string]V),
		out:    out,
		styles: newStyles(out),
	}
	e.vm.SetMaxCallStackSize(maxCallStackSize)

	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		"print": e.fnPrint,
	} {
		if err := e.vm.Set(name, fn); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	// Scripts must not be able to replace the entry point under our feet.
	if err := e.vm.GlobalObject().DefineDataProperty(entryPoint,
		e.vm.ToValue(e.fnDoExpr),
		goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE); err != nil {
		return nil, fmt.Errorf("%s: %w", entryPoint, err)
	}

	if err := e.Load("prelude", preludeComposed); err != nil {
		return nil, err
	}
	return e, nil
}

// Load runs a script in the global scope, typically at start-up.
func (e *Engine) Load(name, src string) error {
	if e.closed {
		return ErrClosed
	}
	if _, err := e.vm.RunScript(name, src); err != nil {
		return fmt.Errorf("%s: %s", name, errorMessage(err))
	}
	return nil
}

// LoadFile runs a script file in the global scope.
func (e *Engine) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return e.Load(path, string(src))
}

// SetReader installs the callback used to request further lines of input.
func (e *Engine) SetReader(read Reader) {
	e.read = read
}

// Names returns the enumerable global names, for completion.
func (e *Engine) Names() []string {
	if e.closed {
		return nil
	}
	return e.vm.GlobalObject().Keys()
}

// Close tears the engine down. It is safe to call more than once.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.vm.Interrupt(ErrClosed)
	e.setTop(0)
	e.read, e.bound = nil, nil
	return nil
}

// Closed tells whether Close has been called.
func (e *Engine) Closed() bool { return e.closed }

// --- Invocation stack --------------------------------------------------------

// Top returns the current depth of the invocation stack.
func (e *Engine) Top() int { return len(e.stack) }

func (e *Engine) push(v goja.Value) {
	e.stack = append(e.stack, v)
}

func (e *Engine) pop() goja.Value {
	v := e.stack[len(e.stack)-1]
	e.stack[len(e.stack)-1] = nil
	e.stack = e.stack[:len(e.stack)-1]
	return v
}

func (e *Engine) setTop(n int) {
	for len(e.stack) > n {
		e.pop()
	}
}

func (e *Engine) getGlobal(name string) {
	v := e.vm.Get(name)
	if v == nil {
		v = goja.Undefined()
	}
	e.push(v)
}

// setGlobal pops the top of the stack into a global variable.
func (e *Engine) setGlobal(name string) error {
	return e.vm.Set(name, e.pop())
}

// pcall calls the function lying below nargs arguments on the stack and
// replaces all of them with either the result or an error message.
// Failures inside the call never propagate further.
func (e *Engine) pcall(nargs int) (err error) {
	base := len(e.stack) - nargs - 1
	if nargs < 0 || base < 0 {
		panic("aether: pcall stack underflow")
	}

	fn := e.stack[base]
	args := append([]goja.Value(nil), e.stack[base+1:]...)
	e.setTop(base)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
		if err != nil {
			e.push(e.vm.ToValue(errorMessage(err)))
		}
	}()

	callable, ok := goja.AssertFunction(fn)
	if !ok {
		return errors.New("attempt to call a non-function value")
	}
	result, err := callable(goja.Undefined(), args...)
	if err != nil {
		return err
	}
	e.push(result)
	return nil
}

// --- Conversion --------------------------------------------------------------

// errorMessage extracts the text the evaluator associates with a failure.
func errorMessage(err error) string {
	var overflow *goja.StackOverflowError
	if errors.As(err, &overflow) {
		return "RangeError: Maximum call stack size exceeded"
	}
	var ex *goja.Exception
	if errors.As(err, &ex) && ex.Value() != nil {
		return safeString(ex.Value())
	}
	return err.Error()
}

// safeString renders a value even when its own toString() throws.
func safeString(v goja.Value) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = "[object]"
		}
	}()
	return v.String()
}

// toV converts a result of evaluation. Integral numbers become Int, other
// numbers Float; anything that is neither a number nor a string is kept
// as its textual rendering. Undefined and null have no value.
func toV(v goja.Value) V {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	switch x := v.Export().(type) {
	case int64:
		return Int(x)
	case float64:
		return Float(x)
	case string:
		return String(x)
	}
	return String(safeString(v))
}

func (e *Engine) fromV(v V) goja.Value {
	switch v := v.(type) {
	case Int:
		return e.vm.ToValue(int64(v))
	case Float:
		return e.vm.ToValue(float64(v))
	case String:
		return e.vm.ToValue(string(v))
	}
	return goja.Undefined()
}

// --- Continuation ------------------------------------------------------------

// skipQuoted returns the index of the quote terminating the string literal
// that starts at i, or of the end of its line when it is unterminated.
func skipQuoted(src string, i int) int {
	quote := src[i]
	for i++; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote, '\n':
			return i
		}
	}
	return len(src)
}

// incomplete tells whether src leaves a bracket, a block comment or
// a template literal open, so that more lines should be read before
// handing it to the parser. Mismatched brackets are the parser's business.
func incomplete(src string) bool {
	var open []byte // closing characters we are waiting for
	for i := 0; i < len(src); i++ {
		ch := src[i]
		if len(open) > 0 && open[len(open)-1] == '`' {
			switch {
			case ch == '\\':
				i++
			case ch == '`':
				open = open[:len(open)-1]
			case ch == '$' && i+1 < len(src) && src[i+1] == '{':
				open = append(open, '}')
				i++
			}
			continue
		}

		switch ch {
		case '\'', '"':
			i = skipQuoted(src, i)
		case '`':
			open = append(open, '`')
		case '/':
			if strings.HasPrefix(src[i:], "//") {
				if end := strings.IndexByte(src[i:], '\n'); end < 0 {
					i = len(src)
				} else {
					i += end
				}
			} else if strings.HasPrefix(src[i:], "/*") {
				end := strings.Index(src[i+2:], "*/")
				if end < 0 {
					return true
				}
				i += end + 3
			}
		case '(':
			open = append(open, ')')
		case '[':
			open = append(open, ']')
		case '{':
			open = append(open, '}')
		case ')', ']', '}':
			if len(open) == 0 || open[len(open)-1] != ch {
				return false
			}
			open = open[:len(open)-1]
		}
	}
	return len(open) > 0
}

func (e *Engine) readMore() (string, error) {
	if e.read == nil {
		return "", io.EOF
	}
	return e.read()
}

// --- Natives -----------------------------------------------------------------

func (e *Engine) fnDoExpr(call goja.FunctionCall) goja.Value {
	src := call.Argument(0).String()
	for incomplete(src) {
		line, err := e.readMore()
		if errors.Is(err, io.EOF) {
			panic(e.vm.ToValue("unexpected end of input"))
		} else if err != nil {
			panic(e.vm.ToValue(err.Error()))
		}
		src += "\n" + line
	}

	program, err := goja.Compile("<input>", src, false)
	if err != nil {
		panic(e.vm.ToValue(errorMessage(err)))
	}
	result, err := e.vm.RunProgram(program)
	var ex *goja.Exception
	if errors.As(err, &ex) && ex.Value() != nil {
		panic(ex.Value())
	} else if err != nil {
		panic(e.vm.ToValue(errorMessage(err)))
	}
	return result
}

func (e *Engine) fnPrint(call goja.FunctionCall) goja.Value {
	args := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		args[i] = arg.String()
	}
	if _, err := fmt.Fprintln(e.out, strings.Join(args, " ")); err != nil {
		panic(e.vm.NewGoError(fmt.Errorf("write failed: %w", err)))
	}
	return goja.Undefined()
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

var preludeComposed = `
var pi = Math.PI, e = Math.E;
function sqrt(x) { return Math.sqrt(x) }
function abs(x) { return Math.abs(x) }
function floor(x) { return Math.floor(x) }
function ceil(x) { return Math.ceil(x) }
function min() { return Math.min.apply(null, arguments) }
function max() { return Math.max.apply(null, arguments) }`
