package deckpdf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// fractionRe matches indicator text such as "3 / 12" or "3/12".
var fractionRe = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)

// parseFraction extracts the current and total slide numbers from
// "current / total" indicator text.
func parseFraction(text string) (current, total int, err error) {
	m := fractionRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q is not of the form \"n / total\"", ErrParse, text)
	}
	current, _ = strconv.Atoi(m[1])
	total, _ = strconv.Atoi(m[2])
	if current < 1 || total < 1 {
		return 0, 0, fmt.Errorf("%w: %q has a non-positive slide number", ErrParse, text)
	}
	return current, total, nil
}

// ParseFractionCurrent returns the left side of "current / total".
func ParseFractionCurrent(text string) (int, error) {
	cur, _, err := parseFraction(text)
	return cur, err
}

// ParseFractionTotal returns the right side of "current / total".
func ParseFractionTotal(text string) (int, error) {
	_, total, err := parseFraction(text)
	return total, err
}

// ParseNumber parses indicator text holding a single positive integer,
// such as the content of a page-number badge.
func ParseNumber(text string) (int, error) {
	s := strings.TrimSpace(text)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrParse, text)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %q is not a positive slide number", ErrParse, text)
	}
	return n, nil
}

// parseSlideRange converts a range expression to a set of 1-based slide
// numbers. Supported forms: "" (all), "3", "1-5", "1,3,5" and mixes of those.
func parseSlideRange(spec string, total int) (map[int]bool, error) {
	selected := make(map[int]bool)
	if strings.TrimSpace(spec) == "" {
		for p := 1; p <= total; p++ {
			selected[p] = true
		}
		return selected, nil
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid slide number: %s", bounds[0])
			}
			end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid slide number: %s", bounds[1])
			}
			if start < 1 || end > total || start > end {
				return nil, fmt.Errorf("slide range %d-%d out of bounds (1-%d)", start, end, total)
			}
			for p := start; p <= end; p++ {
				selected[p] = true
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid slide number: %s", part)
		}
		if p < 1 || p > total {
			return nil, fmt.Errorf("slide %d out of bounds (1-%d)", p, total)
		}
		selected[p] = true
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("slide range %q selects nothing", spec)
	}
	return selected, nil
}
