// Package template implements the plugin-facing string template
// language of spec.md §6.3: keyword substitution (#{key}), environment
// variables (${NAME}), IRC colour/attribute escapes (@{fg,bg,attr}),
// and strftime-style date formatting (%<fmt>).
package template

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Flags disables a subset of token kinds, per spec.md's "MAY disable
// any subset of these by flag".
type Flags struct {
	DisableKeywords bool
	DisableEnv      bool
	DisableColor    bool
	DisableDate     bool
}

// Expand renders a template against a keyword map using the current
// local time for %-date tokens.
func Expand(tpl string, keywords map[string]string, flags Flags) (string, error) {
	return expandAt(tpl, keywords, flags, time.Now())
}

func expandAt(tpl string, keywords map[string]string, flags Flags, now time.Time) (string, error) {
	var out strings.Builder
	r := []rune(tpl)
	i := 0
	for i < len(r) {
		c := r[i]
		switch c {
		case '#':
			if i+1 < len(r) && r[i+1] == '#' {
				out.WriteRune('#')
				i += 2
				continue
			}
			if flags.DisableKeywords || i+1 >= len(r) || r[i+1] != '{' {
				out.WriteRune(c)
				i++
				continue
			}
			key, next, err := readBraced(r, i+2, '#')
			if err != nil {
				return "", err
			}
			out.WriteString(keywords[key])
			i = next
		case '$':
			if i+1 < len(r) && r[i+1] == '$' {
				out.WriteRune('$')
				i += 2
				continue
			}
			if flags.DisableEnv || i+1 >= len(r) || r[i+1] != '{' {
				out.WriteRune(c)
				i++
				continue
			}
			key, next, err := readBraced(r, i+2, '$')
			if err != nil {
				return "", err
			}
			out.WriteString(os.Getenv(key))
			i = next
		case '@':
			if i+1 < len(r) && r[i+1] == '@' {
				out.WriteRune('@')
				i += 2
				continue
			}
			if flags.DisableColor || i+1 >= len(r) || r[i+1] != '{' {
				out.WriteRune(c)
				i++
				continue
			}
			spec, next, err := readBraced(r, i+2, '@')
			if err != nil {
				return "", err
			}
			out.WriteString(colorEscape(spec))
			i = next
		case '%':
			if i+1 < len(r) && r[i+1] == '%' {
				out.WriteRune('%')
				i += 2
				continue
			}
			if flags.DisableDate || i+1 >= len(r) {
				out.WriteRune(c)
				i++
				continue
			}
			verb := r[i+1]
			out.WriteString(strftime(now, verb))
			i += 2
		default:
			out.WriteRune(c)
			i++
		}
	}
	return out.String(), nil
}

func readBraced(r []rune, start int, introducer rune) (content string, next int, err error) {
	for i := start; i < len(r); i++ {
		if r[i] == '}' {
			return string(r[start:i]), i + 1, nil
		}
	}
	return "", 0, fmt.Errorf("unterminated %c{ construct", introducer)
}

// colorEscape renders "fg[,bg[,attr...]]" as an irssi-mIRC-style
// colour code; fields after bg are accepted but not rendered. An empty
// spec resets formatting.
func colorEscape(spec string) string {
	if spec == "" {
		return "\x0f"
	}
	parts := strings.Split(spec, ",")
	var b strings.Builder
	b.WriteByte(0x03)
	if len(parts) > 0 && parts[0] != "" {
		b.WriteString(pad2(parts[0]))
	}
	if len(parts) > 1 && parts[1] != "" {
		b.WriteByte(',')
		b.WriteString(pad2(parts[1]))
	}
	return b.String()
}

func pad2(s string) string {
	if n, err := strconv.Atoi(s); err == nil && n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return s
}

func strftime(t time.Time, verb rune) string {
	switch verb {
	case 'Y':
		return t.Format("2006")
	case 'm':
		return t.Format("01")
	case 'd':
		return t.Format("02")
	case 'H':
		return t.Format("15")
	case 'M':
		return t.Format("04")
	case 'S':
		return t.Format("05")
	case 'A':
		return t.Format("Monday")
	case 'a':
		return t.Format("Mon")
	case 'B':
		return t.Format("January")
	case 'b':
		return t.Format("Jan")
	default:
		return "%" + string(verb)
	}
}
