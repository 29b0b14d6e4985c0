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
)

// --- Bridge ------------------------------------------------------------------

// ErrUnbalanced is returned when the invocation stack is found at a depth
// other than the expected one. The stack is restored before returning.
var ErrUnbalanced = errors.New("invocation stack is unbalanced")

// EvalError is a failure reported by the evaluator while evaluating input.
type EvalError struct {
	Message string // the evaluator's description of the failure
}

func (err *EvalError) Error() string { return err.Message }

// Evaluate passes a line to the evaluator's entry point under a protected
// call. The value is nil when the expression yields nothing, failures come
// back as *EvalError. The invocation stack must be empty before the call
// and is empty again after it, whatever the outcome.
func (e *Engine) Evaluate(line string) (V, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if e.Top() != 0 {
		e.setTop(0)
		return nil, ErrUnbalanced
	}

	e.getGlobal(entryPoint)
	e.push(e.vm.ToValue(line))
	failed := e.pcall(1) != nil
	result := e.pop()

	if e.Top() != 0 {
		e.setTop(0)
		return nil, ErrUnbalanced
	}
	if failed {
		return nil, &EvalError{Message: safeString(result)}
	}
	return toV(result), nil
}

// SetVar binds a value to a name in the variable environment, replacing any
// previous binding. A nil value leaves the name undefined.
func (e *Engine) SetVar(name string, v V) error {
	if e.closed {
		return ErrClosed
	}

	top := e.Top()
	e.push(e.fromV(v))
	err := e.setGlobal(name)
	if e.Top() != top {
		e.setTop(top)
		return ErrUnbalanced
	}
	if err != nil {
		return fmt.Errorf("cannot set %s: %s", name, errorMessage(err))
	}

	if v == nil {
		delete(e.bound, name)
	} else {
		e.bound[name] = v
	}
	return nil
}

// Lookup retrieves the value bound to a name, if there is any. Values set
// through SetVar come back as the same variant for as long as the script
// leaves them alone.
func (e *Engine) Lookup(name string) (V, bool) {
	if e.closed {
		return nil, false
	}

	e.getGlobal(name)
	value := e.pop()

	if v, ok := e.bound[name]; ok && e.fromV(v).StrictEquals(value) {
		return v, true
	}
	v := toV(value)
	return v, v != nil
}

// GetVar is like Lookup but reports undefined variables on the output
// channel. That is not an error, the result is simply nil.
func (e *Engine) GetVar(name string) V {
	v, ok := e.Lookup(name)
	if !ok {
		fmt.Fprintln(e.out, e.styles.warn.Render("Undefined variable "+name))
	}
	return v
}
