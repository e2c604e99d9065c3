// Package version tracks the build's semantic version and checks for newer
// releases.
package version

import (
	"fmt"
	"strings"
)

// Compare orders two semantic version strings, with or without a leading
// "v". Returns 1 if a > b, -1 if a < b, and 0 if equal.
func Compare(a, b string) (int, error) {
	parse := func(s string) ([3]int, error) {
		var v [3]int
		_, err := fmt.Sscanf(strings.TrimPrefix(s, "v"), "%d.%d.%d", &v[0], &v[1], &v[2])
		return v, err
	}

	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for i := range av {
		if av[i] > bv[i] {
			return 1, nil
		}

		if av[i] < bv[i] {
			return -1, nil
		}
	}

	return 0, nil
}
