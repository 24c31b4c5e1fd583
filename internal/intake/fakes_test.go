package intake

import (
	"context"
	"sync"

	"github.com/richcards/leadrelay/internal/capi"
	"github.com/richcards/leadrelay/internal/notify"
	"github.com/richcards/leadrelay/internal/submissions"
)

type fakeStore struct {
	mu    sync.Mutex
	saved []*submissions.Submission
	err   error
}

func (s *fakeStore) Save(_ context.Context, sub *submissions.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, sub)
	return nil
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []notify.EmailMessage
	// errs maps recipient to the error returned for it.
	errs map[string]error
}

func (e *fakeEmail) Send(_ context.Context, msg notify.EmailMessage) (notify.SendResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, msg)
	if err := e.errs[msg.To]; err != nil {
		return notify.SendResult{}, err
	}
	return notify.SendResult{MessageID: "msg-" + msg.To}, nil
}

func (e *fakeEmail) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sent)
}

type fakeForwarder struct {
	mu     sync.Mutex
	events []capi.Event
	err    error
}

func (f *fakeForwarder) Send(_ context.Context, events ...capi.Event) (*capi.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	if f.err != nil {
		return nil, f.err
	}
	return &capi.Response{EventsReceived: len(events)}, nil
}

func (f *fakeForwarder) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}
