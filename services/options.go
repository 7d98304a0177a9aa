package services

import (
	"fmt"
	"strings"

	"coralwatch-cleaner/palette"
)

// ColorStrategy selects how a group's colour codes collapse into
// representative codes.
type ColorStrategy string

const (
	// StrategyPerFamily averages brightness separately within each hue
	// family, yielding one code per family present.
	StrategyPerFamily ColorStrategy = "per-family"
	// StrategyGlobal averages hue ordinals and brightness across the whole
	// group, yielding a single code.
	StrategyGlobal ColorStrategy = "global"
)

// GroupBy selects the aggregation key.
type GroupBy string

const (
	// GroupByActivity yields one sample per survey activity; coral type
	// becomes a list field.
	GroupByActivity GroupBy = "activity"
	// GroupByActivityCoral yields one sample per activity and coral type.
	GroupByActivityCoral GroupBy = "activity-coral"
)

// PhotoFallback selects what a row with neither photo reference carries.
type PhotoFallback string

const (
	// PhotoPlaceholder writes models.NotRecorded.
	PhotoPlaceholder PhotoFallback = "placeholder"
	// PhotoAbsent leaves the photo empty.
	PhotoAbsent PhotoFallback = "absent"
)

// VaryingPolicy selects how a descriptive field (site, time, depth...) is
// reduced when its value differs between the rows of one group.
type VaryingPolicy string

const (
	// VaryingList keeps every row's value, in row order.
	VaryingList VaryingPolicy = "list"
	// VaryingFirst keeps the first row's value.
	VaryingFirst VaryingPolicy = "first"
)

// Options are the named policies the pipeline runs under.
type Options struct {
	Strategy      ColorStrategy
	GroupBy       GroupBy
	RequireDate   bool
	PhotoFallback PhotoFallback
	ColorFormat   palette.Format
	Varying       VaryingPolicy
}

// DefaultOptions mirrors the most complete cleaning script: coral-type
// grouping, per-family colour averaging and a mandatory observation date.
func DefaultOptions() Options {
	return Options{
		Strategy:      StrategyPerFamily,
		GroupBy:       GroupByActivityCoral,
		RequireDate:   true,
		PhotoFallback: PhotoPlaceholder,
		ColorFormat:   palette.FormatHex,
		Varying:       VaryingList,
	}
}

// ParseColorStrategy validates a colour strategy name. Case and "_" versus
// "-" are not significant.
func ParseColorStrategy(s string) (ColorStrategy, error) {
	switch v := ColorStrategy(normalise(s)); v {
	case StrategyPerFamily, StrategyGlobal:
		return v, nil
	}
	return "", fmt.Errorf("unknown colour strategy %q (want %s or %s)", s, StrategyPerFamily, StrategyGlobal)
}

// ParseGroupBy validates a grouping name.
func ParseGroupBy(s string) (GroupBy, error) {
	switch v := GroupBy(normalise(s)); v {
	case GroupByActivity, GroupByActivityCoral:
		return v, nil
	}
	return "", fmt.Errorf("unknown grouping %q (want %s or %s)", s, GroupByActivity, GroupByActivityCoral)
}

// ParsePhotoFallback validates a photo fallback name.
func ParsePhotoFallback(s string) (PhotoFallback, error) {
	switch v := PhotoFallback(normalise(s)); v {
	case PhotoPlaceholder, PhotoAbsent:
		return v, nil
	}
	return "", fmt.Errorf("unknown photo fallback %q (want %s or %s)", s, PhotoPlaceholder, PhotoAbsent)
}

// ParseVaryingPolicy validates a varying-field policy name.
func ParseVaryingPolicy(s string) (VaryingPolicy, error) {
	switch v := VaryingPolicy(normalise(s)); v {
	case VaryingList, VaryingFirst:
		return v, nil
	}
	return "", fmt.Errorf("unknown varying-field policy %q (want %s or %s)", s, VaryingList, VaryingFirst)
}

func normalise(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
}
