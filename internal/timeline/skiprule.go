package timeline

import (
	"strconv"
	"strings"
)

// shouldSkip evaluates a skip rule against the bucket of the reference
// date. Recognized forms:
//
//	"every k"   skip buckets whose index is not a multiple of k
//	"odd"       skip odd-indexed buckets
//	"even"      skip even-indexed buckets
//	label list  skip buckets whose label or index appears in the list
//
// The bucket index is the numeric component of the timeline chunk for the
// period (day-of-year, ISO week, month, quarter or year). Unknown rules
// never skip.
func shouldSkip(rule string, bucketIndex int, bucketLabel string) bool {
	rule = strings.TrimSpace(strings.ToLower(rule))
	if rule == "" {
		return false
	}

	fields := strings.FieldsFunc(rule, func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "every":
		if len(fields) != 2 {
			return false
		}
		k, err := strconv.Atoi(fields[1])
		if err != nil || k < 2 {
			return false
		}
		return bucketIndex%k != 0
	case "odd":
		return bucketIndex%2 == 1
	case "even":
		return bucketIndex%2 == 0
	default:
		label := strings.ToLower(bucketLabel)
		index := strconv.Itoa(bucketIndex)
		for _, f := range fields {
			if f == label || f == index {
				return true
			}
		}
		return false
	}
}

// KnownSkipRule reports whether the rule parses as one of the structured
// forms. Label lists are always considered known; this exists so input
// validation can reject obviously malformed "every" rules up front.
func KnownSkipRule(rule string) bool {
	rule = strings.TrimSpace(strings.ToLower(rule))
	if rule == "" {
		return false
	}
	fields := strings.Fields(rule)
	if fields[0] == "every" {
		if len(fields) != 2 {
			return false
		}
		k, err := strconv.Atoi(fields[1])
		return err == nil && k >= 2
	}
	return true
}
