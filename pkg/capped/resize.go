package capped

import (
	"encoding/binary"
	"os"
)

// resizeCopyChunk is the unit in which the live window is moved during a
// resize.
const resizeCopyChunk = 64 * 1024

// Resize changes the ring capacity while preserving as much of the live
// history as the new capacity permits. Block ids are stable: a block that
// still fits the new window reads back its original bytes, a block that no
// longer fits becomes expired. currentLength is preserved either way.
//
// Writes and reads are blocked for the duration by the store lock; a reader
// whose stream is mid-read across the resize surfaces an I/O error, since
// its file handle is replaced out from under it.
func (s *Store) Resize(newSizeKb int) error {
	if newSizeKb <= 0 {
		return opError("resize", ErrInvalidSize)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing.Load() {
		return nil
	}
	if newSizeKb == int(s.ring.sizeKb) {
		return nil
	}
	if err := s.in.Close(); err != nil {
		return opError("resize", err)
	}
	if err := s.resizeLocked(newSizeKb); err != nil {
		return opError("resize", err)
	}
	in, err := os.Open(s.path)
	if err != nil {
		return opError("resize", err)
	}
	s.in = in
	s.metrics.RecordResize()
	s.metrics.SetStoreState(s.ring.currentLength, s.ring.capacity())
	return nil
}

// resizeLocked rebuilds the backing file at the new capacity. Every live
// logical offset L keeps the mapping H + (L mod capacity), now with the new
// capacity, so the offset math stays uniform across the resize. On shrink
// the oldest bytes are dropped until the window fits.
func (s *Store) resizeLocked(newSizeKb int) error {
	ring := s.ring
	newCapacity := uint64(newSizeKb) * 1024

	start := uint64(ring.smallestLiveID())
	if ring.currentLength-start > newCapacity {
		start = ring.currentLength - newCapacity
	}

	tmpPath := s.path + ".resize"
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	var header [headerSize]byte
	binary.LittleEndian.PutUint64(header[0:8], ring.currentLength)
	binary.LittleEndian.PutUint32(header[8:12], uint32(newSizeKb))
	if _, err := tmp.WriteAt(header[:], 0); err != nil {
		tmp.Close()
		return err
	}

	buf := make([]byte, resizeCopyChunk)
	for logical := start; logical < ring.currentLength; {
		n := uint64(len(buf))
		if remaining := ring.currentLength - logical; n > remaining {
			n = remaining
		}
		// Clamp to both wrap boundaries so each copy is contiguous on
		// the source and the destination.
		if untilOldWrap := ring.capacity() - logical%ring.capacity(); n > untilOldWrap {
			n = untilOldWrap
		}
		if untilNewWrap := newCapacity - logical%newCapacity; n > untilNewWrap {
			n = untilNewWrap
		}
		if _, err := ring.file.ReadAt(buf[:n], ring.logicalToPhysical(logical)); err != nil {
			tmp.Close()
			return err
		}
		if _, err := tmp.WriteAt(buf[:n], headerSize+int64(logical%newCapacity)); err != nil {
			tmp.Close()
			return err
		}
		logical += n
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := ring.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return err
	}
	file, err := os.OpenFile(s.path, os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	ring.file = file
	ring.sizeKb = uint32(newSizeKb)
	ring.dirty = false
	return nil
}
