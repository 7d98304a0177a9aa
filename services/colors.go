package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"coralwatch-cleaner/models"
)

// hueOrder places the chart's hue families on a single axis for global
// averaging: B=0, E=1, D=2, C=3.
var hueOrder = []byte{'B', 'E', 'D', 'C'}

// Code is a Coral Health Chart code: a hue family letter and a brightness
// digit from 1 (lightest) to 6 (darkest).
type Code struct {
	Family     byte
	Brightness int
}

func (c Code) String() string {
	return string(c.Family) + strconv.Itoa(c.Brightness)
}

// ParseCode accepts codes like "B3" or " d5 ".
func ParseCode(s string) (Code, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 || hueOrdinal(s[0]) < 0 || s[1] < '1' || s[1] > '6' {
		return Code{}, fmt.Errorf("%w: %q", models.ErrInvalidColorCode, s)
	}
	return Code{Family: s[0], Brightness: int(s[1] - '0')}, nil
}

func hueOrdinal(family byte) int {
	for i, f := range hueOrder {
		if f == family {
			return i
		}
	}
	return -1
}

// AveragePerFamily collapses codes to one per hue family, each with the
// rounded mean brightness of that family. Families keep first-seen order.
func AveragePerFamily(codes []Code) []Code {
	var order []byte
	byFamily := make(map[byte][]float64)
	for _, c := range codes {
		if _, ok := byFamily[c.Family]; !ok {
			order = append(order, c.Family)
		}
		byFamily[c.Family] = append(byFamily[c.Family], float64(c.Brightness))
	}

	out := make([]Code, 0, len(order))
	for _, f := range order {
		out = append(out, Code{Family: f, Brightness: roundHalfUp(stat.Mean(byFamily[f], nil))})
	}
	return out
}

// AverageGlobal collapses codes into a single code by averaging hue
// ordinals and brightness independently. codes must not be empty.
func AverageGlobal(codes []Code) Code {
	hues := make([]float64, len(codes))
	levels := make([]float64, len(codes))
	for i, c := range codes {
		hues[i] = float64(hueOrdinal(c.Family))
		levels[i] = float64(c.Brightness)
	}
	hue := roundHalfUp(stat.Mean(hues, nil))
	return Code{Family: hueOrder[hue], Brightness: roundHalfUp(stat.Mean(levels, nil))}
}

// Average applies strategy to codes. Both strategies return a list so the
// result can feed MostCommonFamily and PairRanges alike.
func Average(strategy ColorStrategy, codes []Code) []Code {
	if len(codes) == 0 {
		return nil
	}
	if strategy == StrategyGlobal {
		return []Code{AverageGlobal(codes)}
	}
	return AveragePerFamily(codes)
}

// MostCommonFamily returns the hue family that occurs most often across
// the given lists. Ties go to the family encountered first.
func MostCommonFamily(lists ...[]Code) (byte, bool) {
	counts := make(map[byte]int)
	var order []byte
	for _, list := range lists {
		for _, c := range list {
			if counts[c.Family] == 0 {
				order = append(order, c.Family)
			}
			counts[c.Family]++
		}
	}
	if len(order) == 0 {
		return 0, false
	}
	best := order[0]
	for _, f := range order[1:] {
		if counts[f] > counts[best] {
			best = f
		}
	}
	return best, true
}

// PairRanges emits "light-dark" for every lightest/darkest pair sharing a
// hue family, in sorted order. Families present on one side only yield
// nothing.
func PairRanges(lightest, darkest []Code) []string {
	light := sortedCodes(lightest)
	dark := sortedCodes(darkest)

	var out []string
	for _, l := range light {
		for _, d := range dark {
			if l.Family == d.Family {
				out = append(out, l.String()+"-"+d.String())
			}
		}
	}
	return out
}

func sortedCodes(codes []Code) []Code {
	out := append([]Code(nil), codes...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func codeStrings(codes []Code) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.String()
	}
	return out
}

// roundHalfUp rounds to the nearest integer, halves away from zero.
func roundHalfUp(x float64) int {
	return int(decimal.NewFromFloat(x).Round(0).IntPart())
}

// meanRounded2 is the exact decimal mean of values rounded to two places,
// halves away from zero. values must not be empty.
func meanRounded2(values []float64) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2).InexactFloat64()
}
