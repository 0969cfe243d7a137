package capped

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/probeq/profiledb/pkg/logging"
	"github.com/probeq/profiledb/pkg/metrics"
	"github.com/probeq/profiledb/pkg/scheduler"
	"github.com/probeq/profiledb/pkg/shutdown"
)

// headerFlushInterval bounds how often the in-memory header is written back
// to disk. Crash loss is bounded by one interval's worth of payload.
const headerFlushInterval = time.Second

// Store is a capped, append-only, compressed block store backed by a single
// fixed-size file that behaves as a circular log. Producers append
// variable-length byte streams; consumers retrieve them by block id, or
// discover that the ring's wrap-around has overwritten them.
//
// A single mutex serializes the writer and guards every read syscall on the
// reader handle, so readers coordinate with the writer at I/O granularity.
type Store struct {
	path string

	mu   sync.Mutex
	ring *fileRing
	out  *blockWriter
	in   *os.File // random-access read handle, replaced on resize

	// closing is set outside the lock so that threads queued on the lock
	// observe it as soon as they acquire it and abort quickly instead of
	// performing I/O through a closing handle.
	closing atomic.Bool
	closed  bool

	clock     scheduler.Clock
	lastFlush time.Time

	hook      *shutdown.Hook
	flushTask *scheduler.Task

	logger  logging.Logger
	metrics *metrics.Registry
}

// Open opens or creates the store file, recovers the header, registers the
// shutdown hook and schedules the periodic header flush. If the persisted
// capacity differs from requestedSizeKb the store is resized on open.
func Open(path string, requestedSizeKb int, sched *scheduler.Scheduler, clock scheduler.Clock, logger logging.Logger) (*Store, error) {
	if requestedSizeKb <= 0 {
		return nil, opError("open", ErrInvalidSize)
	}
	ring, err := openRing(path, requestedSizeKb)
	if err != nil {
		return nil, err
	}
	s := &Store{
		path:      path,
		ring:      ring,
		out:       &blockWriter{ring: ring},
		clock:     clock,
		lastFlush: clock.Now(),
		logger:    logger,
		metrics:   metrics.Default(),
	}
	if int(ring.sizeKb) != requestedSizeKb {
		if err := s.resizeLocked(requestedSizeKb); err != nil {
			ring.close()
			return nil, err
		}
	}
	in, err := os.Open(path)
	if err != nil {
		ring.close()
		return nil, err
	}
	s.in = in
	s.metrics.SetStoreState(ring.currentLength, ring.capacity())
	s.hook = shutdown.Register("capped-store", s.shutdownHook)
	if sched != nil {
		s.flushTask = sched.Schedule("capped-header-flush", headerFlushInterval, s.flushTick)
	}
	return s, nil
}

// Write appends one block containing the source's UTF-8 bytes, compressed,
// and returns its id. It returns ClosedSentinel when the store is closing.
func (s *Store) Write(source CharSource) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing.Load() {
		return ClosedSentinel, nil
	}
	in, err := source.Open()
	if err != nil {
		return 0, opError("write", err)
	}
	id, uncompressed, err := s.out.encodeBlock(in)
	if err != nil {
		return 0, opError("write", err)
	}
	s.metrics.RecordBlockWrite(int64(s.out.pending), uncompressed)
	s.metrics.SetStoreState(s.ring.currentLength, s.ring.capacity())
	return id, nil
}

// Read returns a lazy stream over the decompressed block. If the id is
// overwritten at consumption time the stream yields exactly the
// overwrittenResponse bytes. The stream is single-shot; re-reading requires
// a fresh Read call.
func (s *Store) Read(id int64, overwrittenResponse string) io.ReadCloser {
	return &blockStream{store: s, id: id, overwritten: overwrittenResponse}
}

// IsExpired reports whether the block id has been overwritten by the
// wrapping write head.
func (s *Store) IsExpired(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.isOverwritten(id)
}

// SmallestLiveID returns the smallest block id that is still addressable.
func (s *Store) SmallestLiveID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.smallestLiveID()
}

// FlushHeader persists the in-memory header so the wrap position survives a
// crash.
func (s *Store) FlushHeader() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return opError("flush", ErrStoreClosed)
	}
	return s.persistHeaderLocked()
}

func (s *Store) persistHeaderLocked() error {
	if err := s.ring.persistHeader(); err != nil {
		s.metrics.RecordHeaderFlush(false)
		return opError("flush", err)
	}
	s.lastFlush = s.clock.Now()
	s.metrics.RecordHeaderFlush(true)
	return nil
}

// flushTick is driven by the external scheduler. It skips clean headers and
// rate-limits itself with the injected clock in case the scheduler ticks
// faster than the configured bound.
func (s *Store) flushTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.ring.dirty {
		return
	}
	if s.clock.Now().Sub(s.lastFlush) < headerFlushInterval {
		return
	}
	if err := s.persistHeaderLocked(); err != nil {
		s.logger.Warn("capped store header flush failed",
			logging.Path(s.path), logging.Error(err))
	}
}

// Close flushes the header, closes both file handles and deregisters the
// shutdown hook. It is idempotent and safe to race with the hook.
func (s *Store) Close() error {
	s.closing.Store(true)
	err := s.closeFiles()
	if s.flushTask != nil {
		s.flushTask.Stop()
	}
	s.hook.Deregister()
	return err
}

func (s *Store) closeFiles() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.ring.persistHeader()
	if cerr := s.ring.close(); err == nil {
		err = cerr
	}
	if cerr := s.in.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return opError("close", err)
	}
	return nil
}

// shutdownHook runs on process termination. The closing flag is flipped
// before taking the lock so queued waiters abort as soon as they wake.
func (s *Store) shutdownHook() {
	s.closing.Store(true)
	if err := s.closeFiles(); err != nil {
		s.logger.Warn("capped store shutdown hook failed",
			logging.Path(s.path), logging.Error(err))
	}
}
