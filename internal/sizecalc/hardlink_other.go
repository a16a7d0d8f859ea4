//go:build !unix

package sizecalc

// hardlinkKey has no portable implementation outside unix-like platforms;
// callers simply skip dedup there and may overcount bytes shared via
// hardlinks, which Windows cache directories rarely use anyway.
func hardlinkKey(path string) ([2]uint64, bool) {
	return [2]uint64{}, false
}
