package command

import (
	"strings"
	"unicode"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining arguments with quotes removed.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string

	// starts holds the offset in RawArgs at which each argument begins.
	starts []int
}

// Parse splits a text line into a command and arguments. Double quotes group
// words into one argument, so layer, group and project names may contain
// spaces. Lines starting with '#' are comments, which lets the shell replay
// annotated command scripts.
//
// Postcondition: Returns a ParseResult. If line is blank or a comment,
// Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return ParseResult{}
	}

	end := strings.IndexFunc(line, unicode.IsSpace)
	if end < 0 {
		return ParseResult{Command: strings.ToLower(line)}
	}
	res := ParseResult{
		Command: strings.ToLower(line[:end]),
		RawArgs: strings.TrimSpace(line[end:]),
	}
	res.Args, res.starts = splitArgs(res.RawArgs)
	return res
}

// Rest returns the text from argument n to the end of the line. A single
// remaining argument is returned unquoted; otherwise the raw text is
// returned as typed so "layer-rename deck Lower  Deck" keeps its spacing.
//
// Postcondition: Returns "" when fewer than n+1 arguments were given.
func (r ParseResult) Rest(n int) string {
	if n < 0 || n >= len(r.Args) {
		return ""
	}
	if n == len(r.Args)-1 {
		return r.Args[n]
	}
	return r.RawArgs[r.starts[n]:]
}

// splitArgs splits s at unquoted whitespace. An unterminated quote runs to
// the end of s; "" yields an empty argument.
func splitArgs(s string) ([]string, []int) {
	var (
		args    []string
		starts  []int
		b       strings.Builder
		inQuote bool
		inArg   bool
	)
	for i, r := range s {
		switch {
		case r == '"':
			if !inArg {
				starts = append(starts, i)
				inArg = true
			}
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			if inArg {
				args = append(args, b.String())
				b.Reset()
				inArg = false
			}
		default:
			if !inArg {
				starts = append(starts, i)
				inArg = true
			}
			b.WriteRune(r)
		}
	}
	if inArg {
		args = append(args, b.String())
	}
	return args, starts
}
