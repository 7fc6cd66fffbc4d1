// Package highlight colors rendered diffs for terminal output.
package highlight

import (
	"bufio"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
)

type Highlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
	diff      chroma.Lexer
}

// New returns a highlighter for 256-color terminals. A nil *Highlighter
// writes text unchanged.
func New(theme Theme) *Highlighter {
	diff := lexers.Get("diff")
	if diff == nil {
		diff = lexers.Fallback
	}
	return &Highlighter{
		style:     theme.style(),
		formatter: formatters.TTY256,
		diff:      chroma.Coalesce(diff),
	}
}

// Write copies the rendered patch text to w. Header lines are colored as
// diff markup; changed and context lines are colored by the language of the
// file named in the preceding "diff --git" line.
func (h *Highlighter) Write(w io.Writer, text string) error {
	if h == nil {
		_, err := io.WriteString(w, text)
		return err
	}
	bw := bufio.NewWriter(w)
	var current chroma.Lexer
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		if path, ok := diffPathFromLine(body); ok {
			current = lexerForPath(path)
		}
		code, prefix, ok := diffLineCode(body)
		var err error
		if ok && current != nil {
			err = h.writeCode(bw, current, prefix, code)
		} else {
			err = h.format(bw, h.diff, body)
		}
		if err != nil {
			return err
		}
		if strings.HasSuffix(line, "\n") {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func (h *Highlighter) writeCode(w io.Writer, lexer chroma.Lexer, prefix byte, code string) error {
	marker := chroma.Token{Type: chroma.Text, Value: string(prefix)}
	switch prefix {
	case '+':
		marker.Type = chroma.GenericInserted
	case '-':
		marker.Type = chroma.GenericDeleted
	}
	tokens := []chroma.Token{marker}
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		tokens = append(tokens, chroma.Token{Type: chroma.Text, Value: code})
	} else {
		tokens = append(tokens, iterator.Tokens()...)
	}
	return h.formatter.Format(w, h.style, chroma.Literator(trimNewline(tokens)...))
}

func (h *Highlighter) format(w io.Writer, lexer chroma.Lexer, text string) error {
	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		_, err = io.WriteString(w, text)
		return err
	}
	return h.formatter.Format(w, h.style, chroma.Literator(trimNewline(iterator.Tokens())...))
}

// trimNewline drops the newline lexers append to their input.
func trimNewline(tokens []chroma.Token) []chroma.Token {
	for len(tokens) > 0 {
		last := &tokens[len(tokens)-1]
		trimmed := strings.TrimSuffix(last.Value, "\n")
		if trimmed == last.Value {
			break
		}
		if trimmed == "" {
			tokens = tokens[:len(tokens)-1]
			continue
		}
		last.Value = trimmed
		break
	}
	return tokens
}

func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// diffPathFromLine returns the new-side path of a "diff --git a/x b/y" line.
func diffPathFromLine(line string) (string, bool) {
	const prefix = "diff --git "
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	rest := line[len(prefix):]
	idx := strings.LastIndex(rest, " b/")
	if idx < 0 {
		return "", true
	}
	return rest[idx+len(" b/"):], true
}

func diffLineCode(line string) (string, byte, bool) {
	if line == "" {
		return "", 0, false
	}
	switch line[0] {
	case '+', '-', ' ':
		return line[1:], line[0], true
	default:
		return "", 0, false
	}
}
