package template

import (
	"strings"

	"github.com/vango-dev/weft/internal/errors"
)

// SplitMarkup splits template source written with ${name} holes into its
// static strings and the hole names, in order. "$${" escapes a literal "${".
func SplitMarkup(src string) (strs []string, names []string, err error) {
	var b strings.Builder
	for {
		i := strings.Index(src, "${")
		if i < 0 {
			b.WriteString(src)
			break
		}
		if i > 0 && src[i-1] == '$' {
			b.WriteString(src[:i-1])
			b.WriteString("${")
			src = src[i+2:]
			continue
		}
		end := strings.IndexByte(src[i:], '}')
		if end < 0 {
			return nil, nil, errors.New("E301").WithDetailf("unterminated hole at %q", abbreviate(src[i:]))
		}
		name := strings.TrimSpace(src[i+2 : i+end])
		if name == "" {
			return nil, nil, errors.New("E301").WithDetail("empty hole ${}")
		}
		b.WriteString(src[:i])
		strs = append(strs, b.String())
		names = append(names, name)
		b.Reset()
		src = src[i+end+1:]
	}
	strs = append(strs, b.String())
	return strs, names, nil
}

// Values maps hole names to binds, looking each name up in data. Missing
// names bind nil.
func Values(names []string, data map[string]any) []any {
	binds := make([]any, len(names))
	for i, name := range names {
		binds[i] = data[name]
	}
	return binds
}

func abbreviate(s string) string {
	if len(s) > 24 {
		return s[:24] + "..."
	}
	return s
}
