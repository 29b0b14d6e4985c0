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
	"os"
	"strings"

	// This library is rather simplistic but it's going to serve us fine.
	"github.com/peterh/liner"
)

// Terminal is an interactive line source with line editing, history recall
// and completion of global names.
type Terminal struct {
	state   *liner.State
	history *History
}

// OpenTerminal puts the terminal under the control of a line editor.
// Names, if not nil, provides candidates for tab completion.
func OpenTerminal(names func() []string) (*Terminal, error) {
	if _, err := os.Stdin.Stat(); err != nil {
		return nil, fmt.Errorf("standard input unusable: %w", err)
	}

	t := &Terminal{
		state:   liner.NewLiner(),
		history: NewHistory(HistoryLimit),
	}
	t.state.SetCtrlCAborts(true)
	t.state.SetMultiLineMode(true)
	t.state.SetTabCompletionStyle(liner.TabPrints)
	if names != nil {
		t.state.SetWordCompleter(func(line string, pos int) (
			string, []string, string) {
			return complete(names(), line, pos)
		})
	}
	return t, nil
}

// complete offers the names that the word under the cursor is a prefix of.
func complete(names []string, line string, pos int) (
	head string, completions []string, tail string) {
	runes := []rune(line)
	if pos > len(runes) {
		pos = len(runes)
	}
	tail = string(runes[pos:])
	line = string(runes[:pos])

	lastDelimiter := strings.LastIndexAny(line, " \t()[]{};,+-*/%=<>!&|^~?:")
	if lastDelimiter > -1 {
		head, line = line[:lastDelimiter+1], line[lastDelimiter+1:]
	}

	for _, name := range names {
		if strings.HasPrefix(name, line) {
			completions = append(completions, name)
		}
	}
	return
}

// ReadLine implements LineSource.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	line, err := t.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrInterrupted
	}
	return line, err
}

// AddHistory implements LineSource.
func (t *Terminal) AddHistory(line string) {
	mirrorHistory(t.state, t.history, line)
}

// historyEditor is the part of a line editor that keeps its own history.
type historyEditor interface {
	AppendHistory(item string)
	ClearHistory()
}

// mirrorHistory records a line in the bounded log and keeps the editor's
// history a copy of it. Once the log is full, the editor is refilled so that
// evicted lines disappear from recall as well.
func mirrorHistory(editor historyEditor, h *History, line string) {
	if !h.Push(line) {
		return
	}
	if h.Len() == h.limit {
		editor.ClearHistory()
		for _, line := range h.Lines() {
			editor.AppendHistory(line)
		}
	} else {
		editor.AppendHistory(line)
	}
}

// Close implements LineSource, restoring the terminal.
func (t *Terminal) Close() error {
	return t.state.Close()
}
