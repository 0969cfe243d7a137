package capped

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
)

// readBufferSize is the buffer between the locked ring reads and the snappy
// decoder, so the number of locked syscalls scales with block size / buffer
// size rather than block size / byte.
const readBufferSize = 32 * 1024

// CharSource is a restartable chunked stream of UTF-8 text supplied by a
// producer. Open may be called more than once; each call returns a fresh
// reader positioned at the start.
type CharSource interface {
	Open() (io.Reader, error)
}

// StringSource is a CharSource backed by an in-memory string.
type StringSource string

func (s StringSource) Open() (io.Reader, error) {
	return strings.NewReader(string(s)), nil
}

// SourceFunc adapts a function to the CharSource interface.
type SourceFunc func() (io.Reader, error)

func (f SourceFunc) Open() (io.Reader, error) {
	return f()
}

// blockStream is the lazy stream handed out by Store.Read. No file I/O
// happens until the first Read call; the expiry check is re-done at that
// point, so a block may disappear between IsExpired and consumption.
type blockStream struct {
	store       *Store
	id          int64
	overwritten string

	r io.Reader
}

func (b *blockStream) Read(p []byte) (int, error) {
	if b.r == nil {
		if b.store.IsExpired(b.id) {
			b.store.metrics.RecordExpiredRead()
			b.r = strings.NewReader(b.overwritten)
		} else {
			raw := &blockReader{store: b.store, id: b.id, blockLength: -1}
			b.r = snappy.NewReader(bufio.NewReaderSize(raw, readBufferSize))
		}
	}
	return b.r.Read(p)
}

func (b *blockStream) Close() error {
	return nil
}

// blockReader reads the compressed bytes of a single block through the ring.
// Every Read briefly takes the store mutex for its one read syscall and
// re-checks overwrite status, so a mid-read rollover is detected before any
// trampled byte can be returned.
type blockReader struct {
	store *Store
	id    int64
	in    *os.File // read handle the stream started on; nil until the first Read

	blockLength int64 // compressed payload length; -1 until the prefix is read
	consumed    int64
}

func (r *blockReader) Read(p []byte) (int, error) {
	if r.blockLength >= 0 && r.consumed == r.blockLength {
		return 0, io.EOF
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, blockError("read", r.id, ErrStoreClosed)
	}
	// A resize replaces the read handle; a stream that started on the old
	// one fails instead of continuing on the rebuilt file.
	if r.in == nil {
		r.in = s.in
	} else if r.in != s.in {
		return 0, blockError("read", r.id, os.ErrClosed)
	}
	if s.ring.isOverwritten(r.id) {
		s.metrics.RecordRolledOverRead()
		return 0, blockError("read", r.id, ErrBlockRolledOver)
	}
	if r.blockLength < 0 {
		var prefix [blockHeaderSize]byte
		if err := s.ring.readAt(s.in, uint64(r.id), prefix[:]); err != nil {
			return 0, blockError("read", r.id, err)
		}
		r.blockLength = int64(binary.LittleEndian.Uint64(prefix[:]))
		if r.blockLength == 0 {
			return 0, io.EOF
		}
	}
	// Clamp to the block boundary and to the wrap boundary; a block that
	// straddles the wrap is read in two physical segments.
	logical := uint64(r.id) + blockHeaderSize + uint64(r.consumed)
	n := int64(len(p))
	if remaining := r.blockLength - r.consumed; n > remaining {
		n = remaining
	}
	if untilWrap := int64(s.ring.capacity() - logical%s.ring.capacity()); n > untilWrap {
		n = untilWrap
	}
	if _, err := s.in.ReadAt(p[:n], s.ring.logicalToPhysical(logical)); err != nil {
		return 0, blockError("read", r.id, err)
	}
	r.consumed += n
	return int(n), nil
}
