package capped

import (
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
)

// blockWriter streams compressed bytes for one block into the ring. A block
// is framed by an 8-byte length prefix whose slot is reserved at startBlock
// and back-filled at endBlock, once the compressed byte count is known. The
// caller holds the store mutex for the whole encode.
type blockWriter struct {
	ring *fileRing

	// pending is the number of compressed bytes emitted for the
	// in-progress block. currentLength is not advanced until endBlock, so
	// a failed write leaves the partial bytes logically expired and they
	// get trampled by the next successful write.
	pending uint64
}

func (w *blockWriter) startBlock() {
	w.pending = 0
}

// Write lands compressed payload bytes after the reserved length slot. It is
// the sink underneath the snappy compressor.
func (w *blockWriter) Write(p []byte) (int, error) {
	logical := w.ring.currentLength + blockHeaderSize + w.pending
	if err := w.ring.writeAt(logical, p); err != nil {
		return 0, err
	}
	w.pending += uint64(len(p))
	return len(p), nil
}

// endBlock back-fills the length prefix, advances the write head past the
// whole block, and returns the new block's id.
func (w *blockWriter) endBlock() (int64, error) {
	id := int64(w.ring.currentLength)
	var prefix [blockHeaderSize]byte
	binary.LittleEndian.PutUint64(prefix[:], w.pending)
	if err := w.ring.writeAt(w.ring.currentLength, prefix[:]); err != nil {
		return 0, err
	}
	w.ring.advanceWriteHead(blockHeaderSize + w.pending)
	return id, nil
}

// encodeBlock pushes the producer's bytes through the framed snappy
// compressor into the ring and commits the block.
func (w *blockWriter) encodeBlock(in io.Reader) (id int64, uncompressed int64, err error) {
	w.startBlock()
	compressor := snappy.NewBufferedWriter(w)
	uncompressed, err = io.Copy(compressor, in)
	if err != nil {
		return 0, 0, err
	}
	// Close flushes the final frame; the framed format is self-terminating
	// given the exact compressed byte count recorded in the prefix.
	if err := compressor.Close(); err != nil {
		return 0, 0, err
	}
	id, err = w.endBlock()
	if err != nil {
		return 0, 0, err
	}
	return id, uncompressed, nil
}
