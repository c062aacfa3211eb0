package util

import "strconv"

// ParseUintParam converts a path parameter to a uint, returning 0 on failure.
func ParseUintParam(s string) uint {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}
