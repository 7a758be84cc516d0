package reader

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/readwave/readwave-backend/internal/logger"
)

// SettleDelay is the gap between updating the transport's boundary window
// and asking it to play when advancing with audio kept running. Playing
// synchronously would race the boundary update.
const SettleDelay = 250 * time.Millisecond

// ReadingController owns the sub-page index of the current segment and
// drives the audio transport's start/end window from the sub-page's
// alignment. Sub-pages are recomputed only when the segment identity
// changes; re-applying the same segment neither recomputes nor resets.
type ReadingController struct {
	mu    sync.Mutex
	log   *logger.Logger
	clock Clock

	transport   *Transport
	resolver    URLResolver
	opts        PaginateOpts
	enableAudio bool

	segmentID uuid.UUID
	epoch     uint64
	pages     []SubPage
	index     int
	loading   bool
	hasAudio  bool

	settleTimer Timer

	onPageChanged   func(index, total int)
	onAudioFinished func()
}

type ReadingControllerConfig struct {
	Log         *logger.Logger
	Clock       Clock
	Transport   *Transport
	Resolver    URLResolver
	Opts        PaginateOpts
	EnableAudio bool

	// OnPageChanged fires after the sub-page index moves or the sub-page
	// set is recomputed.
	OnPageChanged func(index, total int)
	// OnAudioFinished fires when the transport reaches the current
	// sub-page's end boundary. The owner routes it back through its
	// forward-navigation path with audio kept playing.
	OnAudioFinished func()
}

func NewReadingController(cfg ReadingControllerConfig) *ReadingController {
	r := &ReadingController{
		log:             cfg.Log.With("component", "ReadingController"),
		clock:           cfg.Clock,
		transport:       cfg.Transport,
		resolver:        cfg.Resolver,
		opts:            cfg.Opts,
		enableAudio:     cfg.EnableAudio,
		onPageChanged:   cfg.OnPageChanged,
		onAudioFinished: cfg.OnAudioFinished,
	}
	if r.transport != nil {
		r.transport.SetBoundaryHandler(r.handleBoundaryReached)
	}
	return r
}

// SetSegment mounts a segment: recomputes sub-pages, resets the index to
// zero and restarts the audio lifecycle. Applying the segment already
// mounted is a no-op so re-renders never reset reading position. autoPlay
// starts narration as soon as the audio resource is ready.
func (r *ReadingController) SetSegment(ctx context.Context, seg Segment, autoPlay bool) {
	r.mu.Lock()
	if seg.ID == r.segmentID && seg.ID != uuid.Nil {
		r.mu.Unlock()
		return
	}
	r.epoch++
	myEpoch := r.epoch
	r.cancelSettleLocked()
	r.segmentID = seg.ID
	r.index = 0
	r.loading = true

	if seg.IsText() {
		r.pages = Paginate(seg.Text, seg.Alignment, r.opts)
	} else {
		// Section segments render a single title card.
		r.pages = []SubPage{{Text: seg.Title}}
	}
	hasAudio := r.enableAudio && seg.IsText() && seg.AudioPath != ""
	r.hasAudio = hasAudio
	r.loading = hasAudio
	pageCount := len(r.pages)
	onChanged := r.onPageChanged
	r.mu.Unlock()

	// Stop whatever the previous segment was playing.
	if r.transport != nil {
		r.transport.Unload()
	}

	if onChanged != nil {
		onChanged(0, pageCount)
	}

	if !hasAudio || r.transport == nil {
		return
	}
	go r.loadAudio(ctx, seg.AudioPath, myEpoch, autoPlay)
}

// loadAudio runs off the caller's goroutine: signed-URL resolution and the
// player attach can both be slow. The epoch captured at dispatch is checked
// before any shared state is touched so a slow load for a segment the user
// already left changes nothing.
func (r *ReadingController) loadAudio(ctx context.Context, audioPath string, epoch uint64, autoPlay bool) {
	if err := r.transport.Load(ctx, audioPath, r.resolver); err != nil {
		r.mu.Lock()
		if epoch == r.epoch {
			r.loading = false
			r.hasAudio = false
		}
		r.mu.Unlock()
		return
	}

	r.mu.Lock()
	if epoch != r.epoch {
		r.mu.Unlock()
		return
	}
	r.loading = false
	window := r.currentWindowLocked()
	r.mu.Unlock()

	r.applyWindow(window)
	if autoPlay && window != nil {
		r.transport.Play()
	}
}

func (r *ReadingController) PageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

func (r *ReadingController) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

func (r *ReadingController) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Current returns the sub-page being shown, or false when none exists yet.
func (r *ReadingController) Current() (SubPage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index < 0 || r.index >= len(r.pages) {
		return SubPage{}, false
	}
	return r.pages[r.index], true
}

// SetIndex moves to the given sub-page, clamped into range, and pushes its
// audio window to the transport. With keepAudioPlaying set and a window
// present, playback resumes after the settle delay instead of immediately.
func (r *ReadingController) SetIndex(index int, keepAudioPlaying bool) {
	r.mu.Lock()
	if len(r.pages) == 0 {
		r.mu.Unlock()
		return
	}
	r.cancelSettleLocked()
	if index < 0 {
		index = 0
	}
	if index > len(r.pages)-1 {
		index = len(r.pages) - 1
	}
	r.index = index
	window := r.currentWindowLocked()
	hasAudio := r.hasAudio
	myEpoch := r.epoch
	pageCount := len(r.pages)
	onChanged := r.onPageChanged

	var settle Timer
	if keepAudioPlaying && hasAudio && window != nil {
		settle = r.clock.AfterFunc(SettleDelay, func() {
			r.settlePlay(myEpoch)
		})
	}
	r.settleTimer = settle
	r.mu.Unlock()

	if hasAudio {
		r.applyWindow(window)
	}
	if onChanged != nil {
		onChanged(index, pageCount)
	}
}

func (r *ReadingController) settlePlay(epoch uint64) {
	r.mu.Lock()
	if epoch != r.epoch {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	r.transport.Play()
}

func (r *ReadingController) currentWindowLocked() *AudioWindow {
	if r.index < 0 || r.index >= len(r.pages) {
		return nil
	}
	return r.pages[r.index].Audio
}

func (r *ReadingController) applyWindow(window *AudioWindow) {
	if r.transport == nil {
		return
	}
	if window == nil {
		r.transport.SetBoundary(nil, nil)
		return
	}
	start := window.Start
	end := window.End
	r.transport.SetBoundary(&start, &end)
}

// handleBoundaryReached is the transport's boundary signal. It is raised to
// the owner, whose forward-navigation path (with audio kept playing)
// produces continuous narration across sub-page boundaries.
func (r *ReadingController) handleBoundaryReached() {
	r.mu.Lock()
	if r.loading {
		r.mu.Unlock()
		return
	}
	handler := r.onAudioFinished
	r.mu.Unlock()
	if handler != nil {
		handler()
	}
}

// StopAudio pauses playback without tearing the resource down.
func (r *ReadingController) StopAudio() {
	r.mu.Lock()
	r.cancelSettleLocked()
	r.mu.Unlock()
	if r.transport != nil {
		r.transport.Pause()
	}
}

// Close cancels timers and releases the audio resource.
func (r *ReadingController) Close() {
	r.mu.Lock()
	r.epoch++
	r.cancelSettleLocked()
	r.mu.Unlock()
	if r.transport != nil {
		r.transport.Unload()
	}
}

func (r *ReadingController) cancelSettleLocked() {
	if r.settleTimer != nil {
		r.settleTimer.Stop()
		r.settleTimer = nil
	}
}
