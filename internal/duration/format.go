package duration

import (
	"strconv"
	"strings"
)

// Unit lengths used when distributing a duration over the units of a pattern.
var formatUnits = []struct {
	token byte
	ms    int64
}{
	{'y', 365 * 24 * 60 * 60 * 1000},
	{'M', 30 * 24 * 60 * 60 * 1000},
	{'w', 7 * 24 * 60 * 60 * 1000},
	{'d', 24 * 60 * 60 * 1000},
	{'h', 60 * 60 * 1000},
	{'m', 60 * 1000},
	{'s', 1000},
	{'S', 1},
}

type formatToken struct {
	literal bool
	value   string
}

// Format renders ms using a token pattern such as "hh:mm:ss" or "h'h' m'm'".
//
// Tokens are runs of y, M, w, d, h, m, s or S; the run length is the zero padding.
// Text inside single quotes is copied verbatim. The duration is spread over the units
// present in the pattern from largest to smallest and the remainder is truncated.
func Format(ms int64, pattern string) string {
	tokens := tokenize(pattern)

	present := make(map[byte]bool)
	for _, tok := range tokens {
		if !tok.literal {
			present[tok.value[0]] = true
		}
	}

	values := make(map[byte]int64)
	remaining := ms
	for _, unit := range formatUnits {
		if !present[unit.token] {
			continue
		}
		values[unit.token] = remaining / unit.ms
		remaining -= values[unit.token] * unit.ms
	}

	var b strings.Builder
	for _, tok := range tokens {
		if tok.literal {
			b.WriteString(tok.value)
			continue
		}
		v, ok := values[tok.value[0]]
		if !ok {
			b.WriteString(tok.value)
			continue
		}
		b.WriteString(pad(v, len(tok.value)))
	}
	return b.String()
}

func tokenize(pattern string) []formatToken {
	var (
		tokens    []formatToken
		current   strings.Builder
		last      rune
		bracketed bool
	)
	flush := func(literal bool) {
		if current.Len() > 0 {
			tokens = append(tokens, formatToken{literal: literal, value: current.String()})
		}
		current.Reset()
	}

	for _, c := range pattern {
		switch {
		case c == '\'':
			flush(bracketed)
			last = 0
			bracketed = !bracketed
		case bracketed:
			current.WriteRune(c)
		case c == last:
			current.WriteRune(c)
		default:
			flush(false)
			current.WriteRune(c)
			last = c
		}
	}
	flush(bracketed)
	return tokens
}

func pad(v int64, width int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return sign + s
}
