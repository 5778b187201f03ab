package autosave

import (
	"context"
	"sync"

	"github.com/fyrsmithlabs/notedraft/internal/recovery"
)

// recordingPrompt answers with a fixed decision and records every request.
type recordingPrompt struct {
	answer bool
	err    error

	mu       sync.Mutex
	requests []recovery.Request
}

func (p *recordingPrompt) Confirm(_ context.Context, req recovery.Request) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return p.answer, p.err
}

func (p *recordingPrompt) calls() []recovery.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]recovery.Request, len(p.requests))
	copy(out, p.requests)
	return out
}
