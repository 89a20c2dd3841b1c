//go:build !linux

package process

// awaitExit cannot observe exit without reaping here; the group is killed
// after Wait instead.
func awaitExit(pid int) bool {
	return false
}
