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
	"bufio"
	"errors"
	"io"
	"strings"
)

// --- Line sources ------------------------------------------------------------

// ErrInterrupted is returned by a line source when the user abandons
// the line being edited.
var ErrInterrupted = errors.New("interrupted")

// LineSource supplies input lines one at a time.
type LineSource interface {
	// ReadLine shows the prompt and returns the next line, without its
	// terminating newline, or io.EOF at the end of input.
	ReadLine(prompt string) (string, error)
	// AddHistory records an accepted line for later recall.
	AddHistory(line string)
	// Close releases the source.
	Close() error
}

// ReaderSource reads lines from an io.Reader, optionally echoing prompts.
type ReaderSource struct {
	scanner *bufio.Scanner
	echo    io.Writer // where prompts go, if anywhere
	history *History
	closed  bool
}

// NewReaderSource returns a line source reading from r. Prompts are written
// to echo unless it is nil.
func NewReaderSource(r io.Reader, echo io.Writer) *ReaderSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1<<20)
	return &ReaderSource{
		scanner: scanner,
		echo:    echo,
		history: NewHistory(HistoryLimit),
	}
}

// ReadLine implements LineSource.
func (rs *ReaderSource) ReadLine(prompt string) (string, error) {
	if rs.closed {
		return "", io.EOF
	}
	if rs.echo != nil {
		if _, err := io.WriteString(rs.echo, prompt); err != nil {
			return "", err
		}
	}
	if !rs.scanner.Scan() {
		if err := rs.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(rs.scanner.Text(), "\r"), nil
}

// AddHistory implements LineSource.
func (rs *ReaderSource) AddHistory(line string) { rs.history.Push(line) }

// History returns the log of accepted lines.
func (rs *ReaderSource) History() *History { return rs.history }

// Close implements LineSource.
func (rs *ReaderSource) Close() error {
	rs.closed = true
	return nil
}
