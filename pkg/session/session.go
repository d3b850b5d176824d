// Package session runs the capture → processing → result cycle.
//
// A Machine owns the current image and analysis result. Captures are
// single-flight: a new capture is rejected with ErrBusy while one is being
// acquired or analyzed. Analysis runs in the background and its outcome is
// applied only if the session is still processing that same capture, so a
// response arriving after a cancel or reset is dropped.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/fishmeister1/iris/pkg/capture"
	"github.com/fishmeister1/iris/pkg/vision"
)

// Errors returned by transitions.
var (
	ErrBusy              = errors.New("session: capture or analysis already in progress")
	ErrInvalidTransition = errors.New("session: invalid transition")
	ErrNoAnalyzer        = errors.New("session: analyzer required")
)

// ZoomResetter is reset when the user starts over from a result.
type ZoomResetter interface {
	Reset()
}

// Snapshot is an immutable view of the session.
type Snapshot struct {
	Seq       uint64         `json:"seq"`
	Phase     Phase          `json:"phase"`
	CaptureID string         `json:"capture_id,omitempty"`
	Locator   string         `json:"locator,omitempty"`
	Origin    capture.Origin `json:"origin,omitempty"`
	MIMEType  string         `json:"mime_type,omitempty"`
	Result    *vision.Result `json:"result,omitempty"`
	Notice    *Notice        `json:"notice,omitempty"`
	StartedAt time.Time      `json:"started_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Options configures a Machine.
type Options struct {
	Analyzer vision.Analyzer
	Zoom     ZoomResetter
	Clock    clock.Clock
	Logger   *slog.Logger
}

// Machine is the single session of an iris process.
type Machine struct {
	analyzer vision.Analyzer
	zoom     ZoomResetter
	clock    clock.Clock
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	phase     Phase
	acquiring bool
	captureID string
	image     *capture.Image
	result    *vision.Result
	notice    *Notice
	startedAt time.Time
	updatedAt time.Time
	seq       uint64

	listeners map[int]func(Snapshot)
	nextID    int
	pending   []Snapshot

	dispatchMu sync.Mutex

	// inflight counts running analyses; idle is closed whenever it is zero.
	inflight int
	idle     chan struct{}
}

// New creates a Machine in the Capturing phase.
func New(opts Options) (*Machine, error) {
	if opts.Analyzer == nil {
		return nil, ErrNoAnalyzer
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)
	return &Machine{
		analyzer:  opts.Analyzer,
		zoom:      opts.Zoom,
		clock:     opts.Clock,
		logger:    opts.Logger.With("component", "session.machine"),
		ctx:       ctx,
		cancel:    cancel,
		phase:     Capturing,
		updatedAt: opts.Clock.Now(),
		listeners: make(map[int]func(Snapshot)),
		idle:      idle,
	}, nil
}

// Capture acquires an image from src and starts analyzing it.
//
// Permission refusals, cancellations and capture failures leave the session
// in Capturing and are returned unchanged; only the first and last raise a
// notice. On success the capture ID of the new Processing phase is returned.
func (m *Machine) Capture(ctx context.Context, src capture.Source) (string, error) {
	m.mu.Lock()
	if m.phase != Capturing || m.acquiring {
		m.mu.Unlock()
		return "", ErrBusy
	}
	m.acquiring = true
	m.mu.Unlock()

	img, err := src.Capture(ctx)

	m.mu.Lock()
	m.acquiring = false
	if err != nil {
		switch {
		case errors.Is(err, capture.ErrCancelled):
			m.logger.Debug("capture cancelled")
			m.mu.Unlock()
			return "", err
		case errors.Is(err, capture.ErrPermissionDenied):
			m.setNoticeLocked(permissionNotice)
		default:
			m.setNoticeLocked(captureNotice)
		}
		m.mu.Unlock()
		m.logger.Warn("capture failed", "error", err)
		m.flush()
		return "", err
	}

	id := m.beginLocked(img)
	m.mu.Unlock()

	m.flush()
	m.startAnalysis(id, img)
	return id, nil
}

// Submit starts analyzing an image that was acquired elsewhere.
func (m *Machine) Submit(img *capture.Image) (string, error) {
	if img == nil {
		return "", capture.ErrCaptureFailed
	}

	m.mu.Lock()
	if m.phase != Capturing || m.acquiring {
		m.mu.Unlock()
		return "", ErrBusy
	}
	id := m.beginLocked(img)
	m.mu.Unlock()

	m.flush()
	m.startAnalysis(id, img)
	return id, nil
}

// Cancel abandons the analysis in progress. The request is not aborted; its
// response is ignored when it arrives. No notice is shown and zoom is kept.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	if m.phase != Processing {
		m.mu.Unlock()
		return ErrInvalidTransition
	}
	id := m.captureID
	m.clearLocked()
	m.mu.Unlock()

	m.logger.Info("analysis cancelled", "capture_id", id)
	m.flush()
	return nil
}

// Reset closes the result and returns to the camera with zoom at 0.
// It is a no-op while Capturing and invalid while Processing. This is the
// only transition that resets zoom.
func (m *Machine) Reset() error {
	m.mu.Lock()
	switch m.phase {
	case Processing:
		m.mu.Unlock()
		return ErrInvalidTransition
	case Capturing:
		m.mu.Unlock()
		return nil
	}
	m.clearLocked()
	m.mu.Unlock()

	if m.zoom != nil {
		m.zoom.Reset()
	}
	m.logger.Debug("session reset")
	m.flush()
	return nil
}

// DismissNotice clears the current notice.
func (m *Machine) DismissNotice() {
	m.mu.Lock()
	if m.notice == nil {
		m.mu.Unlock()
		return
	}
	m.notice = nil
	m.touchLocked()
	m.mu.Unlock()
	m.flush()
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Image returns the current image, nil while Capturing.
func (m *Machine) Image() *capture.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.image
}

// Result returns the analysis result, nil unless in Result.
func (m *Machine) Result() *vision.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn to receive a Snapshot after every change, in order.
// fn must not block; it may read the Machine but must not call transitions
// synchronously. The returned func unsubscribes.
func (m *Machine) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Wait blocks until no analysis is running or ctx is done.
func (m *Machine) Wait(ctx context.Context) error {
	for {
		m.mu.Lock()
		idle, n := m.idle, m.inflight
		m.mu.Unlock()
		if n == 0 {
			return nil
		}
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close aborts any running analysis and waits for it to finish.
func (m *Machine) Close() error {
	m.cancel()
	return m.Wait(context.Background())
}

func (m *Machine) beginLocked(img *capture.Image) string {
	id := uuid.NewString()
	m.phase = Processing
	m.captureID = id
	m.image = img
	m.result = nil
	m.notice = nil
	m.startedAt = m.clock.Now()
	m.touchLocked()
	if m.inflight == 0 {
		m.idle = make(chan struct{})
	}
	m.inflight++

	m.logger.Info("processing",
		"capture_id", id,
		"origin", img.Origin,
		"bytes", img.Size(),
	)
	return id
}

func (m *Machine) startAnalysis(id string, img *capture.Image) {
	go func() {
		defer m.analysisDone()
		res, err := m.analyzer.Analyze(m.ctx, img.Data())
		m.complete(id, res, err)
	}()
}

func (m *Machine) analysisDone() {
	m.mu.Lock()
	m.inflight--
	if m.inflight == 0 {
		close(m.idle)
	}
	m.mu.Unlock()
}

// complete applies an analysis outcome if it still belongs to the session.
// A failure returns to Capturing with the analysis notice in a single
// change. Zoom is left where it was.
func (m *Machine) complete(id string, res *vision.Result, err error) {
	m.mu.Lock()
	if m.phase != Processing || m.captureID != id {
		m.mu.Unlock()
		m.logger.Debug("dropping stale analysis", "capture_id", id, "error", err)
		return
	}

	elapsed := m.clock.Since(m.startedAt)
	if err == nil && res == nil {
		err = vision.ErrMalformedResponse
	}
	if err != nil {
		m.clearFieldsLocked()
		n := analysisNotice
		m.notice = &n
		m.touchLocked()
		m.mu.Unlock()
		m.logger.Error("analysis failed", "capture_id", id, "error", err, "elapsed", elapsed)
		m.flush()
		return
	}

	m.phase = Result
	m.result = res
	m.touchLocked()
	m.mu.Unlock()

	m.logger.Info("analysis complete",
		"capture_id", id,
		"sources", len(res.Sources),
		"elapsed", elapsed,
	)
	m.flush()
}

func (m *Machine) clearLocked() {
	m.clearFieldsLocked()
	m.touchLocked()
}

func (m *Machine) clearFieldsLocked() {
	m.phase = Capturing
	m.captureID = ""
	m.image = nil
	m.result = nil
	m.startedAt = time.Time{}
}

func (m *Machine) setNoticeLocked(n Notice) {
	m.notice = &n
	m.touchLocked()
}

// touchLocked stamps the change and queues a snapshot for listeners.
func (m *Machine) touchLocked() {
	m.seq++
	m.updatedAt = m.clock.Now()
	if len(m.listeners) > 0 {
		m.pending = append(m.pending, m.snapshotLocked())
	}
}

func (m *Machine) snapshotLocked() Snapshot {
	s := Snapshot{
		Seq:       m.seq,
		Phase:     m.phase,
		CaptureID: m.captureID,
		Result:    m.result,
		StartedAt: m.startedAt,
		UpdatedAt: m.updatedAt,
	}
	if m.image != nil {
		s.Locator = m.image.Locator
		s.Origin = m.image.Origin
		s.MIMEType = m.image.MIMEType
	}
	if m.notice != nil {
		n := *m.notice
		s.Notice = &n
	}
	return s
}

// flush delivers queued snapshots. Only one goroutine dispatches at a time,
// so listeners see changes in the order they happened.
func (m *Machine) flush() {
	for {
		if !m.dispatchMu.TryLock() {
			return
		}
		for {
			m.mu.Lock()
			batch := m.pending
			m.pending = nil
			listeners := make([]func(Snapshot), 0, len(m.listeners))
			for _, fn := range m.listeners {
				listeners = append(listeners, fn)
			}
			m.mu.Unlock()

			if len(batch) == 0 {
				break
			}
			for _, s := range batch {
				for _, fn := range listeners {
					fn(s)
				}
			}
		}
		m.dispatchMu.Unlock()

		m.mu.Lock()
		more := len(m.pending) > 0
		m.mu.Unlock()
		if !more {
			return
		}
	}
}
