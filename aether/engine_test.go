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
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dop251/goja"
)

func newTestEngine(t *testing.T) (*Engine, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	e, err := NewEngine(&out)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e, &out
}

// feed returns a Reader handing out the given lines, then io.EOF.
func feed(lines ...string) Reader {
	return func() (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		line := lines[0]
		lines = lines[1:]
		return line, nil
	}
}

func TestEvaluate(t *testing.T) {
	e, _ := newTestEngine(t)
	tests := []struct {
		line string
		want V
	}{
		{"1+1", MakeInt(2)},
		{"-7", MakeInt(-7)},
		{"1.5 * 3", MakeFloat(4.5)},
		{"'a' + 'b'", MakeString("ab")},
		{"sqrt(2.25)", MakeFloat(1.5)},
		{"true", MakeString("true")},
		{"undefined", nil},
		{"null", nil},
		{"var unused = 1", nil},
	}
	for _, tt := range tests {
		got, err := e.Evaluate(tt.line)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.line, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %#v, want %#v", tt.line, got, tt.want)
		}
		if e.Top() != 0 {
			t.Errorf("%q: stack depth %d after the call", tt.line, e.Top())
		}
	}
}

func TestEvaluateKeepsBindings(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.Evaluate("var a = 3"); err != nil {
		t.Fatal(err)
	}
	got, err := e.Evaluate("a * 2")
	if err != nil {
		t.Fatal(err)
	}
	if !IsInt(got) || TakeInt(got) != 6 {
		t.Errorf("got %#v, want 6", got)
	}
}

func TestEvaluateErrors(t *testing.T) {
	e, _ := newTestEngine(t)
	tests := []struct {
		line     string
		contains string
	}{
		{"x+", ""},
		{"nosuch + 1", "nosuch is not defined"},
		{"throw 'boom'", "boom"},
		{"null.field", "TypeError"},
		{")", ""},
	}
	for _, tt := range tests {
		v, err := e.Evaluate(tt.line)
		var evalErr *EvalError
		if !errors.As(err, &evalErr) {
			t.Errorf("%q: got %#v, %v; want an evaluation error", tt.line, v, err)
			continue
		}
		if evalErr.Message == "" || !strings.Contains(evalErr.Message, tt.contains) {
			t.Errorf("%q: message %q does not mention %q",
				tt.line, evalErr.Message, tt.contains)
		}
		if e.Top() != 0 {
			t.Errorf("%q: stack depth %d after the call", tt.line, e.Top())
		}
	}

	// The engine carries on after failures.
	if v, err := e.Evaluate("40 + 2"); err != nil || FormatV(v) != "42" {
		t.Errorf("got %#v, %v after failures", v, err)
	}
}

func TestEvaluateRunawayRecursion(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Evaluate("function f() { return f() }; f()")
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("got %v, want an evaluation error", err)
	}
	if !strings.Contains(evalErr.Message, "Maximum call stack size exceeded") {
		t.Errorf("message %q", evalErr.Message)
	}
	if e.Top() != 0 {
		t.Errorf("stack depth %d after the call", e.Top())
	}
	if v, err := e.Evaluate("1+1"); err != nil || FormatV(v) != "2" {
		t.Errorf("got %#v, %v after the overflow", v, err)
	}
}

func TestEvaluateContinuation(t *testing.T) {
	e, _ := newTestEngine(t)
	tests := []struct {
		line  string
		more  []string
		want  string
		fails bool
	}{
		{"(1 +", []string{"2)"}, "3", false},
		{"max(1,", []string{"5,", "3)"}, "5", false},
		{"[1, 2", []string{"].length"}, "2", false},
		{"`a", []string{"b`"}, "a\nb", false},
		{"1 + /* note", []string{"*/ 1"}, "2", false},
		{"(1 +", nil, "unexpected end of input", true},
		{"'(' + 1", nil, "(1", false},
	}
	for _, tt := range tests {
		e.SetReader(feed(tt.more...))
		v, err := e.Evaluate(tt.line)
		switch {
		case tt.fails && err == nil:
			t.Errorf("%q: expected failure, got %#v", tt.line, v)
		case tt.fails && !strings.Contains(err.Error(), tt.want):
			t.Errorf("%q: error %q", tt.line, err)
		case !tt.fails && err != nil:
			t.Errorf("%q: unexpected error: %v", tt.line, err)
		case !tt.fails && FormatV(v) != tt.want:
			t.Errorf("%q: got %q, want %q", tt.line, FormatV(v), tt.want)
		}
		if e.Top() != 0 {
			t.Errorf("%q: stack depth %d after the call", tt.line, e.Top())
		}
	}
}

func TestEvaluateReaderError(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetReader(func() (string, error) { return "", ErrInterrupted })
	_, err := e.Evaluate("{")
	if err == nil || err.Error() != "interrupted" {
		t.Errorf("got %v, want interrupted", err)
	}

	e.SetReader(nil)
	if _, err := e.Evaluate("("); err == nil {
		t.Error("an incomplete expression without a reader succeeded")
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"", false},
		{"1 + 1", false},
		{"(", true},
		{"()", false},
		{"f(a, [b, {c: 1", true},
		{"'('", false},
		{`"\"("`, false},
		{"'unterminated (", false},
		{"// (", false},
		{"1 // (\n(", true},
		{"/* (", true},
		{"/* ( */ 1", false},
		{"`", true},
		{"`${", true},
		{"`${ {a: 1} }`", false},
		{")(", false},
		{"(]", false},
	}
	for _, tt := range tests {
		if got := incomplete(tt.src); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestUnbalancedStack(t *testing.T) {
	e, _ := newTestEngine(t)
	e.push(goja.Undefined())
	if _, err := e.Evaluate("1"); !errors.Is(err, ErrUnbalanced) {
		t.Errorf("got %v, want ErrUnbalanced", err)
	}
	if e.Top() != 0 {
		t.Errorf("stack depth %d, want it restored", e.Top())
	}
	if v, err := e.Evaluate("1"); err != nil || FormatV(v) != "1" {
		t.Errorf("got %#v, %v after recovery", v, err)
	}
}

func TestPCall(t *testing.T) {
	e, _ := newTestEngine(t)

	e.push(e.vm.ToValue(1))
	if err := e.pcall(0); err == nil {
		t.Error("calling a number succeeded")
	}
	if e.Top() != 1 {
		t.Errorf("stack depth %d, want 1", e.Top())
	}
	e.setTop(0)

	e.getGlobal("max")
	e.push(e.vm.ToValue(1))
	e.push(e.vm.ToValue(9))
	if err := e.pcall(2); err != nil {
		t.Fatal(err)
	}
	if e.Top() != 1 || FormatV(toV(e.pop())) != "9" {
		t.Error("unexpected call result")
	}

	e.push(e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		panic(errors.New("boom"))
	}))
	if err := e.pcall(0); err == nil {
		t.Error("a panicking call succeeded")
	}
	if e.Top() != 1 || !strings.Contains(e.pop().String(), "boom") {
		t.Error("the failure was not left on the stack")
	}
}

func TestVariables(t *testing.T) {
	e, _ := newTestEngine(t)
	tests := []struct {
		name string
		v    V
	}{
		{"a", MakeInt(5)},
		{"f", MakeFloat(2)},
		{"g", MakeFloat(0.25)},
		{"s", MakeString("text")},
	}
	for _, tt := range tests {
		if err := e.SetVar(tt.name, tt.v); err != nil {
			t.Fatalf("SetVar(%q): %v", tt.name, err)
		}
		if e.Top() != 0 {
			t.Errorf("SetVar(%q) left stack depth %d", tt.name, e.Top())
		}
		got := e.GetVar(tt.name)
		if got != tt.v {
			t.Errorf("GetVar(%q) = %#v, want %#v", tt.name, got, tt.v)
		}
		if e.Top() != 0 {
			t.Errorf("GetVar(%q) left stack depth %d", tt.name, e.Top())
		}
	}

	a := e.GetVar("a")
	if !IsInt(a) || TakeInt(a) != 5 {
		t.Errorf("a = %#v", a)
	}
}

func TestVariablesShared(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.SetVar("n", MakeInt(20)); err != nil {
		t.Fatal(err)
	}
	if v, err := e.Evaluate("n + 1"); err != nil || FormatV(v) != "21" {
		t.Errorf("got %#v, %v", v, err)
	}

	// Rebinding replaces the value, variant included.
	if _, err := e.Evaluate("n = 'twenty'"); err != nil {
		t.Fatal(err)
	}
	if v := e.GetVar("n"); !IsString(v) || TakeString(v) != "twenty" {
		t.Errorf("n = %#v", v)
	}
	if err := e.SetVar("n", MakeFloat(1.5)); err != nil {
		t.Fatal(err)
	}
	if v := e.GetVar("n"); !IsFloat(v) {
		t.Errorf("n = %#v", v)
	}

	if err := e.SetVar("n", nil); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Lookup("n"); ok {
		t.Error("n is still defined")
	}
}

func TestUndefinedVariable(t *testing.T) {
	e, out := newTestEngine(t)
	if v := e.GetVar("missing"); v != nil {
		t.Errorf("got %#v for an undefined variable", v)
	}
	if got, want := out.String(), "Undefined variable missing\n"; got != want {
		t.Errorf("output %q, want %q", got, want)
	}
	if e.Top() != 0 {
		t.Errorf("stack depth %d", e.Top())
	}

	out.Reset()
	if _, ok := e.Lookup("missing"); ok || out.Len() != 0 {
		t.Error("Lookup is expected to be silent")
	}
}

func TestPrint(t *testing.T) {
	e, out := newTestEngine(t)
	v, err := e.Evaluate(`print("a", 1, 'b')`)
	if err != nil || v != nil {
		t.Fatalf("got %#v, %v", v, err)
	}
	if out.String() != "a 1 b\n" {
		t.Errorf("output %q", out.String())
	}
}

func TestEntryPointProtected(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.Evaluate("doexpr = 1"); err != nil {
		t.Fatal(err)
	}
	if v, err := e.Evaluate("2"); err != nil || FormatV(v) != "2" {
		t.Errorf("got %#v, %v", v, err)
	}
}

func TestNames(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.Evaluate("var answer = 42"); err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, name := range e.Names() {
		names[name] = true
	}
	for _, name := range []string{"answer", "print", "sqrt", "pi"} {
		if !names[name] {
			t.Errorf("%q is missing from %v", name, e.Names())
		}
	}
	if names[entryPoint] {
		t.Error("the entry point is listed")
	}
}

func TestLoad(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Load("broken", "function ("); err == nil {
		t.Error("loading a broken script succeeded")
	}
	if err := e.LoadFile(filepath.Join(t.TempDir(), "missing.js")); err == nil {
		t.Error("loading a missing file succeeded")
	}

	path := filepath.Join(t.TempDir(), "prelude.js")
	if err := os.WriteFile(path, []byte("function twice(x) { return 2*x }"),
		0o644); err != nil {
		t.Fatal(err)
	}
	if err := e.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if v, err := e.Evaluate("twice(21)"); err != nil || FormatV(v) != "42" {
		t.Errorf("got %#v, %v", v, err)
	}
}

func TestClosed(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if !e.Closed() {
		t.Error("not closed")
	}
	if _, err := e.Evaluate("1"); !errors.Is(err, ErrClosed) {
		t.Errorf("Evaluate: %v", err)
	}
	if err := e.SetVar("a", MakeInt(1)); !errors.Is(err, ErrClosed) {
		t.Errorf("SetVar: %v", err)
	}
	if err := e.Load("x", "1"); !errors.Is(err, ErrClosed) {
		t.Errorf("Load: %v", err)
	}
	if e.Names() != nil {
		t.Error("a closed engine lists names")
	}
}
