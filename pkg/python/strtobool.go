// This file mimics `distutils.util.strtobool`.

package python

import (
	"fmt"
	"strings"
)

// StrToBool converts a string representation of truth to true or false.  True values are "y",
// "yes", "t", "true", "on", and "1"; false values are "n", "no", "f", "false", "off", and "0".
// Anything else is an error.
func StrToBool(str string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "n", "no", "f", "false", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid truth value %q", str)
	}
}
