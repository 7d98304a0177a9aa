package services

import (
	"strconv"
	"strings"
	"unicode"
)

// meridiem suffixes, longest first so "AM" is not read as "A".
var meridiems = []string{"AM", "PM", "A", "P"}

// NormalizeTime turns free-text time of day ("915A", "3.45PM", "1215")
// into 24-hour "HH:MM". It returns ok=false, the missing marker, for input
// shorter than three characters. Anything else is best effort: input it
// cannot make sense of comes back truncated rather than rejected.
func NormalizeTime(raw string) (string, bool) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if len([]rune(s)) < 3 {
		return "", false
	}
	s = strings.ReplaceAll(strings.ToUpper(s), ".", ":")

	var suffix string
	body := []rune(s)
	for _, m := range meridiems {
		if strings.HasSuffix(s, m) {
			suffix = m[:1]
			body = []rune(strings.TrimSuffix(s, m))
			break
		}
	}

	if len(body) == 1 || len(body) == 3 || (len(body) > 1 && body[1] == ':') {
		body = append([]rune{'0'}, body...)
	}
	if len(body) > 3 && body[2] != ':' && unicode.IsDigit(body[3]) {
		body = append(append(append([]rune{}, body[:2]...), ':'), body[2:]...)
	}

	hours, err := strconv.Atoi(string(body[:min(2, len(body))]))
	if err != nil || len(body) < 2 {
		return head([]rune(s), 5), true
	}
	if suffix == "" {
		return head(body, 5), true
	}

	minutes := ":00"
	if len(body) > 2 {
		minutes = head(body[2:], 3)
	}
	if suffix == "P" && hours < 12 {
		hours += 12
	}
	return twoDigits(hours) + minutes, true
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func head(r []rune, n int) string {
	if len(r) < n {
		return string(r)
	}
	return string(r[:n])
}
