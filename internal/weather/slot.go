package weather

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// State is the slot's view of its latest invocation.
type State struct {
	Result
	Query      Query  `json:"query"`
	Generation uint64 `json:"generation"`
	Err        error  `json:"-"`
	Error      string `json:"error,omitempty"`
}

// Slot holds the state of one logical search. Every Run or Submit starts a
// new generation; an outcome is applied only while its generation is still
// the newest, so a slow stale response never overwrites fresher state.
type Slot struct {
	service  *Service
	recorder LastViewedRecorder
	logger   *zap.Logger

	mu    sync.Mutex
	gen   uint64
	state State

	inflight sync.WaitGroup
}

// NewSlot creates an idle slot. recorder may be nil.
func NewSlot(service *Service, recorder LastViewedRecorder, logger *zap.Logger) *Slot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Slot{
		service:  service,
		recorder: recorder,
		logger:   logger,
		state:    State{Result: Result{Status: StatusIdle}},
	}
}

// State returns the current state.
func (s *Slot) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run executes q synchronously and returns the outcome of this invocation,
// which is only published if no newer invocation started meanwhile.
func (s *Slot) Run(ctx context.Context, q Query) State {
	gen := s.begin(q)
	return s.execute(ctx, gen, q)
}

// Submit starts q in the background and returns its generation.
func (s *Slot) Submit(q Query) uint64 {
	gen := s.begin(q)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.execute(context.Background(), gen, q)
	}()
	return gen
}

// Relocalize re-submits the current query in lang. It reports false when the
// slot has never been used.
func (s *Slot) Relocalize(lang string) (uint64, bool) {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	if st.Status == StatusIdle || st.Query.Lang == lang {
		return st.Generation, false
	}
	return s.Submit(st.Query.WithLang(lang)), true
}

// Wait blocks until all submitted invocations have finished.
func (s *Slot) Wait() {
	s.inflight.Wait()
}

func (s *Slot) begin(q Query) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state = State{
		Result:     Result{Status: StatusPending},
		Query:      q,
		Generation: s.gen,
	}
	return s.gen
}

func (s *Slot) execute(ctx context.Context, gen uint64, q Query) State {
	res, err := s.service.Lookup(ctx, q)

	st := State{Result: res, Query: q, Generation: gen}
	if err != nil {
		st.Result = Result{Status: StatusError}
		st.Err = err
		st.Error = err.Error()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.logger.Debug("discarding superseded result",
			zap.Uint64("generation", gen), zap.Uint64("current", s.gen))
		return st
	}
	s.state = st

	if st.Status == StatusSuccess && s.recorder != nil {
		if _, err := s.recorder.RecordLastViewed(st.LocationID, st.DisplayName); err != nil {
			s.logger.Warn("failed to record last viewed city", zap.Error(err))
		}
	}
	return st
}
