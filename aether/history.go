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

import "strings"

// HistoryLimit is the number of lines the history log keeps.
const HistoryLimit = 100

// History is a bounded, insertion-ordered log of accepted input lines.
// Once full, every new line evicts the oldest one.
type History struct {
	lines []string
	limit int
}

// NewHistory returns an empty log keeping at most limit lines.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = HistoryLimit
	}
	return &History{limit: limit}
}

// Push appends a line unless it is blank, and tells whether the log changed.
func (h *History) Push(line string) bool {
	if isBlank(line) {
		return false
	}
	if len(h.lines) == h.limit {
		copy(h.lines, h.lines[1:])
		h.lines = h.lines[:len(h.lines)-1]
	}
	h.lines = append(h.lines, line)
	return true
}

// Len returns the number of lines in the log.
func (h *History) Len() int { return len(h.lines) }

// Lines returns a copy of the log from the oldest line.
func (h *History) Lines() []string {
	return append([]string(nil), h.lines...)
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
