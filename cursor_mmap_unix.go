//go:build unix

package rowcut

import (
	"errors"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// pageSize is the host's memory page size, used to round the guard-page
// placement described in the design notes.
var pageSize = os.Getpagesize()

// MappedCursor is the memory-mapped-file InputCursor backend. The entire
// file is visible from construction; Fill is always a no-op (false) since
// there is nothing more to read.
//
// The guard page immediately following the file's bytes is what makes
// CharClassSpanner's 16-byte loads defined at end-of-file. A naive
// "map the file, then map a guard page right after it" races against any
// other mapping request in the process. Instead mapWithGuardPage reserves
// one anonymous region covering file-size-rounded-up-to-a-page plus one
// extra page *first*, then overlays the file's contents onto the low
// portion with a fixed-address mapping in a single step. The anonymous
// tail page can never be concurrently claimed by another mapping, because
// it was reserved before the file mapping existed.
type MappedCursor struct {
	region   []byte // anonymous reservation: file bytes + guard page
	fileSize int
	readPos  int
}

// NewMappedCursor opens path read-only and maps its entire contents plus a
// trailing guard page. The file descriptor is closed once the mapping is
// installed; the mapping itself retains the inode reference.
func NewMappedCursor(path string) (*MappedCursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	size := int(info.Size())
	if info.Size() > DefaultMaxInputSize {
		return nil, &MapError{Path: path, Err: errors.New("file exceeds DefaultMaxInputSize")}
	}

	region, err := mapWithGuardPage(int(f.Fd()), size)
	if err != nil {
		return nil, &MapError{Path: path, Err: err}
	}

	if size > 0 {
		_ = unix.Madvise(region[:roundUpPage(size)], unix.MADV_SEQUENTIAL)
	}

	return &MappedCursor{region: region, fileSize: size}, nil
}

// mapWithGuardPage reserves an anonymous region sized
// round-up(size, pageSize) + pageSize, PROT_READ and zero-filled
// throughout, then overlays fd's contents onto the low portion with a
// MAP_FIXED mapping at the reservation's own address. The final page of
// the reservation is left as-is: still the anonymous, zero-filled,
// PROT_READ mapping it was reserved with, which is exactly what makes it
// a safe guard page — readable without fault, its contents meaningless.
func mapWithGuardPage(fd, size int) ([]byte, error) {
	rounded := roundUpPage(size)
	total := rounded + pageSize

	reservation, err := unix.Mmap(-1, 0, total, unix.PROT_READ, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}

	if size > 0 {
		addr := uintptr(unsafe.Pointer(&reservation[0]))
		_, _, errno := unix.Syscall6(unix.SYS_MMAP, addr, uintptr(size),
			uintptr(unix.PROT_READ), uintptr(unix.MAP_SHARED|unix.MAP_FIXED),
			uintptr(fd), 0)
		if errno != 0 {
			unix.Munmap(reservation)
			return nil, errno
		}
	}

	return reservation, nil
}

func roundUpPage(n int) int {
	if n == 0 {
		return 0
	}
	return (n + pageSize - 1) &^ (pageSize - 1)
}

func (c *MappedCursor) Buf() []byte { return c.region[c.readPos:] }

func (c *MappedCursor) Size() int { return c.fileSize - c.readPos }

func (c *MappedCursor) Consume(n int) {
	if n > c.Size() {
		n = c.Size()
	}
	c.readPos += n
}

// Fill always returns false: a MappedCursor's entire file is visible from
// construction, so there is never more to read.
func (c *MappedCursor) Fill() bool { return false }

// Close unmaps the file and its guard page.
func (c *MappedCursor) Close() error {
	if c.region == nil {
		return nil
	}
	err := unix.Munmap(c.region)
	c.region = nil
	return err
}
