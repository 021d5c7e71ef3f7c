package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// HelpData is what a command must expose to render its usage text.
type HelpData interface {
	Program() string
	Synopsis() string
	FlagSet() *flag.FlagSet
}

// UsageError renders a command's usage text as its error string, so the
// dispatcher can print it without exiting non-zero.
type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "usage: %s\n", e.of.Synopsis())
	if fs := e.of.FlagSet(); fs != nil {
		var flags []string
		fs.VisitAll(func(f *flag.Flag) {
			flags = append(flags, fmt.Sprintf("  -%s\n        %s (default %q)", f.Name, f.Usage, f.DefValue))
		})
		if len(flags) > 0 {
			sb.WriteString("flags:\n")
			sb.WriteString(strings.Join(flags, "\n"))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func usageFunc(h HelpData) func() {
	return func() {
		fmt.Fprintln(os.Stderr, (&UsageError{of: h}).Error())
	}
}

func (r *root) Synopsis() string {
	return r.program + ` [flags] <command>

commands:
  edit     open a floor plan for editing (requires a token)
  review   open a floor plan or shared link in read-only review mode
  pdf      generate the project PDF and wait for it
  ping     check server availability
  config   print the effective configuration
  version  print the version`
}

func (e *editCmd) Synopsis() string {
	return e.Program() + " edit [flags] <page-code>"
}

func (c *reviewCmd) Synopsis() string {
	return c.Program() + " review [flags] <page-code-or-url>"
}

func (p *pdfCmd) Synopsis() string {
	return p.Program() + " pdf [flags]"
}

func (p *pingCmd) Synopsis() string {
	return p.Program() + " ping"
}

func (c *configCmd) Synopsis() string {
	return c.Program() + " config"
}
