package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stigoleg/wiggler/internal/cli"
)

// This small tool generates shell completions and a man page from the
// wiggler command tree.

const appName = "wiggler"

func main() {
	root := cli.NewRootCommand("docs")

	if err := writeCompletions(root, filepath.Join("docs", "completions")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := writeMan(root, "man"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func writeCompletions(root *cobra.Command, base string) error {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return err
	}

	var bash, zsh, fish bytes.Buffer
	if err := root.GenBashCompletionV2(&bash, true); err != nil {
		return err
	}
	if err := root.GenZshCompletion(&zsh); err != nil {
		return err
	}
	if err := root.GenFishCompletion(&fish, true); err != nil {
		return err
	}

	files := map[string][]byte{
		appName + ".bash": bash.Bytes(),
		"_" + appName:     zsh.Bytes(),
		appName + ".fish": fish.Bytes(),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(base, name), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func writeMan(root *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(".TH \"" + strings.ToUpper(appName) + "\" \"1\" \"\" \"wiggler\" \"User Commands\"\n")
	b.WriteString(".SH NAME\n" + appName + " \\- " + escape(root.Short) + "\n")
	b.WriteString(".SH SYNOPSIS\n.B " + appName + "\n[\\fIcommand\\fR] [\\fIflags\\fR]\n")
	b.WriteString(".SH DESCRIPTION\n" + escape(root.Long) + "\n")

	b.WriteString(".SH OPTIONS\n")
	writeFlags(&b, root.NonInheritedFlags())
	writeFlags(&b, root.PersistentFlags())

	b.WriteString(".SH COMMANDS\n")
	for _, c := range root.Commands() {
		if !c.IsAvailableCommand() {
			continue
		}
		b.WriteString(".TP\n\\fB" + appName + " " + escape(c.Use) + "\\fR\n" + escape(c.Short) + "\n")
		for _, sub := range c.Commands() {
			b.WriteString(".TP\n\\fB" + appName + " " + c.Name() + " " + escape(sub.Use) + "\\fR\n" + escape(sub.Short) + "\n")
		}
	}

	if root.Example != "" {
		b.WriteString(".SH EXAMPLES\n.nf\n" + escape(root.Example) + "\n.fi\n")
	}
	b.WriteString(".SH SEE ALSO\nProject homepage: https://github.com/stigoleg/wiggler\n")
	return os.WriteFile(filepath.Join(dir, appName+".1"), []byte(b.String()), 0o644)
}

func writeFlags(b *strings.Builder, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		names := "\\-\\-" + f.Name
		if f.Shorthand != "" {
			names = "\\-" + f.Shorthand + ", " + names
		}
		if t := f.Value.Type(); t != "bool" {
			names += " <" + t + ">"
		}
		b.WriteString(".TP\n\\fB" + names + "\\fR\n" + escape(f.Usage) + "\n")
	})
}

// escape protects roff control characters.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "-", "\\-")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, ".") || strings.HasPrefix(l, "'") {
			lines[i] = "\\&" + l
		}
	}
	return strings.Join(lines, "\n")
}
