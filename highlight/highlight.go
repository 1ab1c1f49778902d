// Package highlight renders stored cache values for terminal display:
// ANSI-highlighted JSON when the payload parses as JSON, plain text
// otherwise.
package highlight

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var (
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
)

func init() {
	lexer = lexers.Get("json")
	formatter = formatters.Get("terminal256")
	style = styles.Get("monokai")
}

// Value returns raw rendered for a terminal: ANSI-highlighted as JSON
// when it parses as JSON, plain UTF-8 text otherwise, and a hex dump for
// binary payloads that aren't valid text.
func Value(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if json.Valid(raw) {
		if highlighted, ok := highlightJSON(string(raw)); ok {
			return highlighted
		}
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	return hexDump(raw)
}

func highlightJSON(s string) (string, bool) {
	iterator, err := lexer.Tokenise(nil, s)
	if err != nil {
		return "", false
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", false
	}
	return strings.TrimRight(buf.String(), "\n"), true
}

func hexDump(raw []byte) string {
	var b strings.Builder
	for i, c := range raw {
		if i > 0 {
			b.WriteByte(' ')
		}
		const hex = "0123456789abcdef"
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0xf])
	}
	return b.String()
}
