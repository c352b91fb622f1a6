//go:build !mcu

package strconvx

import "strconv"

// FormatUint delegates straight through to strconv on host builds.
func FormatUint(u uint64, base int) string { return strconv.FormatUint(u, base) }
