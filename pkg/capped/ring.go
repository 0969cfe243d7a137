package capped

import (
	"encoding/binary"
	"fmt"
	"os"
)

const (
	// headerSize is the fixed on-disk header: u64 currentLength (LE),
	// u32 sizeKb (LE), 8 reserved zero bytes.
	headerSize = 20

	// blockHeaderSize is the u64 length prefix in front of every block.
	blockHeaderSize = 8
)

// fileRing owns the fixed-size backing file and maps logical write offsets
// to physical file offsets modulo the ring capacity. All fields are guarded
// by the store mutex; fileRing itself does no locking.
type fileRing struct {
	file *os.File // write handle, O_RDWR

	// currentLength is the total number of bytes ever written to the ring.
	// It is monotone for the lifetime of the file; the write head is
	// currentLength mod capacity.
	currentLength uint64
	sizeKb        uint32

	// dirty is set when currentLength advances past the last persisted
	// header, cleared by persistHeader.
	dirty bool
}

// openRing opens or creates the backing file and reads or initializes the
// header. The caller resizes afterwards if the persisted sizeKb differs from
// the requested one.
func openRing(path string, requestedSizeKb int) (*fileRing, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	r := &fileRing{file: file}
	if info.Size() < headerSize {
		r.sizeKb = uint32(requestedSizeKb)
		if err := r.persistHeader(); err != nil {
			file.Close()
			return nil, err
		}
		return r, nil
	}
	var header [headerSize]byte
	if _, err := file.ReadAt(header[:], 0); err != nil {
		file.Close()
		return nil, err
	}
	r.currentLength = binary.LittleEndian.Uint64(header[0:8])
	r.sizeKb = binary.LittleEndian.Uint32(header[8:12])
	if r.sizeKb == 0 {
		file.Close()
		return nil, fmt.Errorf("corrupt header in %s: zero capacity", path)
	}
	return r, nil
}

func (r *fileRing) capacity() uint64 {
	return uint64(r.sizeKb) * 1024
}

// logicalToPhysical returns the file offset backing the given logical
// offset.
func (r *fileRing) logicalToPhysical(logical uint64) int64 {
	return headerSize + int64(logical%r.capacity())
}

// isOverwritten reports whether the block starting at the given logical
// offset has been trampled by the wrapping write head. Ids outside
// [0, currentLength) are treated as overwritten.
func (r *fileRing) isOverwritten(id int64) bool {
	if id < 0 || uint64(id) >= r.currentLength {
		return true
	}
	return r.currentLength-uint64(id) > r.capacity()
}

func (r *fileRing) smallestLiveID() int64 {
	if r.currentLength <= r.capacity() {
		return 0
	}
	return int64(r.currentLength - r.capacity())
}

// advanceWriteHead commits delta bytes. Never shrinks.
func (r *fileRing) advanceWriteHead(delta uint64) {
	r.currentLength += delta
	r.dirty = true
}

// writeAt writes p at the given logical offset, splitting the write into two
// physical segments when it crosses the wrap boundary.
func (r *fileRing) writeAt(logical uint64, p []byte) error {
	for len(p) > 0 {
		n := r.capacity() - logical%r.capacity()
		if n > uint64(len(p)) {
			n = uint64(len(p))
		}
		if _, err := r.file.WriteAt(p[:n], r.logicalToPhysical(logical)); err != nil {
			return err
		}
		logical += n
		p = p[n:]
	}
	return nil
}

// readAt fills p from the given logical offset through the supplied read
// handle, mirroring the writer's wrap split.
func (r *fileRing) readAt(in *os.File, logical uint64, p []byte) error {
	for len(p) > 0 {
		n := r.capacity() - logical%r.capacity()
		if n > uint64(len(p)) {
			n = uint64(len(p))
		}
		if _, err := in.ReadAt(p[:n], r.logicalToPhysical(logical)); err != nil {
			return err
		}
		logical += n
		p = p[n:]
	}
	return nil
}

// persistHeader writes currentLength and sizeKb back to disk in a single
// small write. Readers never depend on the persisted header for offset math;
// they use the in-memory currentLength under the store lock.
func (r *fileRing) persistHeader() error {
	var header [headerSize]byte
	binary.LittleEndian.PutUint64(header[0:8], r.currentLength)
	binary.LittleEndian.PutUint32(header[8:12], r.sizeKb)
	if _, err := r.file.WriteAt(header[:], 0); err != nil {
		return err
	}
	r.dirty = false
	return nil
}

func (r *fileRing) close() error {
	return r.file.Close()
}
