//go:build unix

package sizecalc

import "golang.org/x/sys/unix"

// hardlinkKey stats path directly via unix.Stat to get its device+inode
// pair, used to avoid double-counting a file reached through more than
// one hardlink within the same tree.
func hardlinkKey(path string) ([2]uint64, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return [2]uint64{}, false
	}
	return [2]uint64{uint64(st.Dev), st.Ino}, true
}
