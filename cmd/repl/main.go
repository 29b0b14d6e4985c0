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

// Program repl is an interactive Aether shell.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"janouch.name/aether/aether"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "repl",
	Short:         "Interactive Aether shell",
	Long:          `Reads Aether expressions line by line, evaluates them and prints results.`,
	Args:          cobra.NoArgs,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return aether.Run(aether.Config{
			Out:     cmd.OutOrStdout(),
			Prelude: os.Getenv("AETHER_PRELUDE"),
		})
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		style := lipgloss.NewRenderer(os.Stderr).NewStyle().
			Foreground(lipgloss.Color("196"))
		fmt.Fprintln(os.Stderr, style.Render(err.Error()))
		os.Exit(1)
	}
}
