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

// Program interpreter evaluates an Aether script line by line.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"janouch.name/aether/aether"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "interpreter [script [arg...]]",
	Short: "Non-interactive Aether interpreter",
	Long: `Evaluates every line of a script, or of standard input when no script
is given, printing results. Further arguments are available to the script
as arg1, arg2, ... and their count as argc.`,
	Args:          cobra.ArbitraryArgs,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in, args = f, args[1:]
		}
		return interpret(in, cmd.OutOrStdout(), args)
	},
}

func interpret(in io.Reader, out io.Writer, args []string) error {
	engine, err := aether.NewEngine(out)
	if err != nil {
		return fmt.Errorf("runtime library initialization failed: %w", err)
	}
	defer engine.Close()

	if prelude := os.Getenv("AETHER_PRELUDE"); prelude != "" {
		if err := engine.LoadFile(prelude); err != nil {
			return fmt.Errorf("runtime library initialization failed: %w", err)
		}
	}

	if err := engine.SetVar("argc", aether.MakeInt(int64(len(args)))); err != nil {
		return err
	}
	for i, arg := range args {
		name := fmt.Sprintf("arg%d", i+1)
		if err := engine.SetVar(name, aether.MakeString(arg)); err != nil {
			return err
		}
	}

	lines := aether.NewReaderSource(in, nil)
	defer lines.Close()

	s := aether.NewSession(engine, lines, out)
	s.Loop()
	if n := s.Failures(); n > 0 {
		return fmt.Errorf("%d line(s) failed to evaluate", n)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		style := lipgloss.NewRenderer(os.Stderr).NewStyle().
			Foreground(lipgloss.Color("196"))
		fmt.Fprintln(os.Stderr, style.Render(err.Error()))
		os.Exit(1)
	}
}
