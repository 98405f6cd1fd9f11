// Package duration extracts time-spent estimates from free text and formats them for reports.
package duration

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Scheme-less host.tld forms, so that paths like example.com/issue/2h do not count as time.
	urlPattern       = regexp.MustCompile(`[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&/=]*)`)
	separatorPattern = regexp.MustCompile(`(\d)[_,](\d)`)
	tokenPattern     = regexp.MustCompile(`(?i)((?:\d+\.?\d*|\d*\.?\d+)(?:e[-+]?\d+)?)\s*(\p{L}*)`)
)

const (
	millisecond = 1.0
	second      = 1000 * millisecond
	minute      = 60 * second
	hour        = 60 * minute
	day         = 24 * hour
	week        = 7 * day
	month       = day * 365.25 / 12
	year        = day * 365.25
)

// units maps unit spellings to their length in milliseconds. A bare number is milliseconds.
var units = map[string]float64{
	"":            millisecond,
	"nanosecond":  millisecond / 1e6,
	"ns":          millisecond / 1e6,
	"microsecond": millisecond / 1e3,
	"us":          millisecond / 1e3,
	"µs":          millisecond / 1e3,
	"μs":          millisecond / 1e3,
	"millisecond": millisecond,
	"ms":          millisecond,
	"second":      second,
	"sec":         second,
	"s":           second,
	"minute":      minute,
	"min":         minute,
	"m":           minute,
	"hour":        hour,
	"hr":          hour,
	"h":           hour,
	"day":         day,
	"d":           day,
	"week":        week,
	"wk":          week,
	"w":           week,
	"month":       month,
	"b":           month,
	"year":        year,
	"yr":          year,
	"y":           year,
}

func unitRatio(unit string) (float64, bool) {
	if ratio, ok := units[unit]; ok {
		return ratio, true
	}
	ratio, ok := units[strings.TrimSuffix(strings.ToLower(unit), "s")]
	return ratio, ok
}

// Parser turns free text into milliseconds. The zero value is ready to use.
type Parser struct {
	tally *Tally
}

// NewParser returns a Parser that does not record into any tally.
func NewParser() *Parser {
	return &Parser{}
}

// WithTally returns a copy of the parser that adds every computed duration to t.
func (p *Parser) WithTally(t *Tally) *Parser {
	return &Parser{tally: t}
}

// Compute sums the durations found in texts, in milliseconds. Empty texts are ignored.
func (p *Parser) Compute(texts ...string) int64 {
	var total float64
	for _, text := range texts {
		if text == "" {
			continue
		}
		total += parse(urlPattern.ReplaceAllString(text, ""))
	}

	ms := toMillis(total)
	if p != nil && p.tally != nil {
		p.tally.Add(ms)
	}
	return ms
}

// Compute is a convenience for NewParser().Compute.
func Compute(texts ...string) int64 {
	return NewParser().Compute(texts...)
}

// toMillis rounds ms to an int64, saturating at math.MaxInt64 for totals that do not fit.
func toMillis(ms float64) int64 {
	switch {
	case math.IsNaN(ms) || ms <= 0:
		return 0
	case ms >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(math.Round(ms))
}

// Sum adds durations, saturating at math.MaxInt64. Durations are never negative.
func Sum(values ...int64) int64 {
	var total int64
	for _, v := range values {
		if v > 0 && total > math.MaxInt64-v {
			return math.MaxInt64
		}
		total += v
	}
	return total
}

func parse(text string) float64 {
	text = separatorPattern.ReplaceAllString(text, "$1$2")

	var result float64
	for _, match := range tokenPattern.FindAllStringSubmatch(text, -1) {
		ratio, ok := unitRatio(match[2])
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		result += n * ratio
	}
	return result
}
