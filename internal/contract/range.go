package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/pmpulse/schema"
)

// rangeRe captures "N months" and the "Nm" shorthand.
var rangeRe = regexp.MustCompile(`^(\d+)\s*(months?|m)$`)

// ParseRange converts a user supplied selector into one of the accepted range selectors.
// An empty string selects the default range. Only 3, 6 and 12 months and "all" are accepted.
func ParseRange(s string) (schema.RangeSelector, error) {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")

	switch s {
	case "":
		return DefaultRange, nil
	case "all", "all time", "all-time":
		return schema.RangeAll, nil
	}

	matches := rangeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w %q: expected 3 months, 6 months, 12 months or all", ErrInvalidRange, s)
	}

	n, _ := strconv.Atoi(matches[1])
	sel := schema.RangeSelector(fmt.Sprintf("%d months", n))
	if _, ok := schema.RangeMonths[sel]; !ok {
		return "", fmt.Errorf("%w %q: expected 3 months, 6 months, 12 months or all", ErrInvalidRange, s)
	}
	return sel, nil
}

// RangeToMonths returns the trailing month count of a selector, parsing it first.
func RangeToMonths(s string) (schema.RangeSelector, int, error) {
	sel, err := ParseRange(s)
	if err != nil {
		return "", 0, err
	}
	return sel, schema.RangeMonths[sel], nil
}
