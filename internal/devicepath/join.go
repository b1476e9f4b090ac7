// Package devicepath builds paths on the device filesystem.
//
// Device paths are always POSIX paths regardless of the host OS, so this
// package never uses path/filepath.
package devicepath

import "strings"

// Join combines base with each segment using "/" as the only separator.
// A segment beginning with "/" discards everything before it. Otherwise
// exactly one "/" separates the parts. With no segments, base is returned
// unchanged.
func Join(base string, segments ...string) string {
	out := base
	for _, seg := range segments {
		out = joinTwo(out, seg)
	}
	return out
}

func joinTwo(a, b string) string {
	if strings.HasPrefix(b, "/") {
		return b
	}
	if a == "" {
		return b
	}
	if !strings.HasSuffix(a, "/") {
		a += "/"
	}
	return a + b
}
