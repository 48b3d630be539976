//go:build !linux && !darwin && !freebsd

package util

// FreeSpace is not implemented on this platform.
func FreeSpace(string) (uint64, bool) {
	return 0, false
}
