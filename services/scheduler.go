package services

import (
	"sync"
	"sync/atomic"
	"time"
)

// FrameInterval is the delay a render request waits so that edits arriving
// within the same frame share one render pass
const FrameInterval = 16 * time.Millisecond

// RenderScheduler coalesces render requests. Every request is followed by at
// least one render pass; requests made while a pass is pending join it.
type RenderScheduler struct {
	interval time.Duration
	render   func()
	after    func(time.Duration, func())

	mu      sync.Mutex
	pending bool
	gen     uint64

	passes atomic.Int64
}

// NewRenderScheduler creates a scheduler calling render on the next frame
func NewRenderScheduler(render func()) *RenderScheduler {
	return &RenderScheduler{
		interval: FrameInterval,
		render:   render,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Request asks for a render pass on the next frame
func (s *RenderScheduler) Request() {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = true
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.after(s.interval, func() { s.fire(gen) })
}

func (s *RenderScheduler) fire(gen uint64) {
	s.mu.Lock()
	if !s.pending || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.mu.Unlock()

	s.run()
}

// Flush runs the pending pass now instead of waiting for the frame.
// It reports whether a pass was pending.
func (s *RenderScheduler) Flush() bool {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return false
	}
	s.pending = false
	s.mu.Unlock()

	s.run()
	return true
}

// Pending reports whether a pass is waiting for its frame
func (s *RenderScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Passes returns how many render passes ran so far
func (s *RenderScheduler) Passes() int64 {
	return s.passes.Load()
}

func (s *RenderScheduler) run() {
	s.passes.Add(1)
	s.render()
}
