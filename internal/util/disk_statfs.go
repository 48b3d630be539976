//go:build linux || darwin || freebsd

package util

import "golang.org/x/sys/unix"

// FreeSpace returns the bytes available to unprivileged users on the
// filesystem holding path. ok is false when it cannot be determined.
func FreeSpace(path string) (free uint64, ok bool) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, false
	}
	return uint64(st.Bavail) * uint64(st.Bsize), true
}
