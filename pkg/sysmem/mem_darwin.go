//go:build darwin

package sysmem

import "golang.org/x/sys/unix"

// systemMemory reads hw.memsize and the free page count.
func systemMemory() (total, avail uint64, ok bool) {
	total, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0, 0, false
	}
	if free, err := unix.SysctlUint32("vm.page_free_count"); err == nil {
		avail = uint64(free) * uint64(unix.Getpagesize())
	}
	return total, avail, true
}
