package reader

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/readwave/readwave-backend/internal/logger"
)

// TransportState is the lifecycle of the single audio resource a transport
// wraps.
type TransportState int

const (
	TransportIdle TransportState = iota
	TransportLoading
	TransportReady
	TransportPlaying
	TransportPaused
	TransportUnloaded
	TransportError
)

func (s TransportState) String() string {
	switch s {
	case TransportLoading:
		return "loading"
	case TransportReady:
		return "ready"
	case TransportPlaying:
		return "playing"
	case TransportPaused:
		return "paused"
	case TransportUnloaded:
		return "unloaded"
	case TransportError:
		return "error"
	default:
		return "idle"
	}
}

// Player is the device-facing side of the transport: the thing that can
// actually emit sound. Operations run to completion or failure once issued;
// the transport discards stale results rather than aborting them.
type Player interface {
	Load(ctx context.Context, url string) error
	Play() error
	Pause() error
	Seek(position float64) error
	Release() error
}

// URLResolver turns an opaque storage path into a playable URL. A nil
// resolver or an empty resolved URL means "no audio", not an error.
type URLResolver interface {
	ResolveAudioURL(ctx context.Context, path string) (string, error)
}

// SeekTolerance is how far the reported position may drift from a
// requested start before the transport bothers seeking, in seconds.
const SeekTolerance = 0.1

// Transport wraps exactly one playable audio resource at a time. It owns
// the load/unload lifecycle, a start/end playback window, and a one-shot
// boundary signal fired when the position crosses the window's end. The
// signal does not pause playback; the owner decides what happens next.
type Transport struct {
	mu     sync.Mutex
	log    *logger.Logger
	player Player

	state    TransportState
	epoch    uint64
	position float64
	start    *float64
	end      *float64

	boundaryFired bool
	onBoundary    func()
}

func NewTransport(log *logger.Logger, player Player) *Transport {
	return &Transport{
		log:    log.With("component", "Transport"),
		player: player,
		state:  TransportIdle,
	}
}

// SetBoundaryHandler registers the owner's boundary-reached callback. It is
// invoked without the transport lock held, at most once per boundary window.
func (t *Transport) SetBoundaryHandler(f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onBoundary = f
}

func (t *Transport) State() TransportState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Transport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// Load releases any previously attached resource and attaches the one at
// url, resolving it first when it is not already absolute. The epoch
// captured at entry guards the slow parts: if the transport was unloaded or
// re-loaded while resolution or attach was in flight, the stale result is
// released instead of exposed.
func (t *Transport) Load(ctx context.Context, url string, resolver URLResolver) error {
	t.mu.Lock()
	t.epoch++
	myEpoch := t.epoch
	t.state = TransportLoading
	t.position = 0
	t.boundaryFired = false
	t.mu.Unlock()

	// Release old resource before the new one attaches.
	if err := t.player.Release(); err != nil {
		t.log.Warn("Failed to release previous audio resource", "error", err)
	}

	resolved := url
	if resolver != nil && !isAbsoluteURL(url) {
		var err error
		resolved, err = resolver.ResolveAudioURL(ctx, url)
		if err != nil || resolved == "" {
			t.failLoad(myEpoch, "Audio URL resolution failed", err)
			return err
		}
	}

	t.mu.Lock()
	if t.epoch != myEpoch {
		t.mu.Unlock()
		t.log.Debug("Discarding stale audio load", "url", url)
		return nil
	}
	t.mu.Unlock()

	if err := t.player.Load(ctx, resolved); err != nil {
		t.failLoad(myEpoch, "Audio load failed", err)
		return err
	}

	t.mu.Lock()
	if t.epoch != myEpoch {
		t.mu.Unlock()
		// A newer load or unload superseded this one while the player was
		// attaching; hand the resource back instead of exposing it.
		t.log.Debug("Releasing audio resource loaded for a stale epoch", "url", url)
		_ = t.player.Release()
		return nil
	}
	t.state = TransportReady
	t.mu.Unlock()
	return nil
}

func (t *Transport) failLoad(epoch uint64, msg string, err error) {
	t.log.Warn(msg, "error", err)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.epoch != epoch {
		return
	}
	t.state = TransportError
}

// Play starts playback, seeking to the configured start position first when
// the transport drifted beyond the seek tolerance. Calling it while already
// playing or before a resource is ready is a no-op, not an error.
func (t *Transport) Play() {
	t.mu.Lock()
	if t.state != TransportReady && t.state != TransportPaused {
		t.mu.Unlock()
		return
	}
	seekTo := -1.0
	if t.start != nil && math.Abs(t.position-*t.start) > SeekTolerance {
		seekTo = *t.start
	}
	t.mu.Unlock()

	if seekTo >= 0 {
		if err := t.player.Seek(seekTo); err != nil {
			t.log.Warn("Audio seek before play failed", "position", seekTo, "error", err)
		} else {
			t.mu.Lock()
			t.position = seekTo
			t.mu.Unlock()
		}
	}
	if err := t.player.Play(); err != nil {
		t.log.Warn("Audio play failed", "error", err)
		return
	}
	t.mu.Lock()
	if t.state == TransportReady || t.state == TransportPaused {
		t.state = TransportPlaying
	}
	t.mu.Unlock()
}

// Pause is a no-op unless playing.
func (t *Transport) Pause() {
	t.mu.Lock()
	if t.state != TransportPlaying {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	if err := t.player.Pause(); err != nil {
		t.log.Warn("Audio pause failed", "error", err)
		return
	}
	t.mu.Lock()
	if t.state == TransportPlaying {
		t.state = TransportPaused
	}
	t.mu.Unlock()
}

// SetBoundary updates the active start/end window and re-arms the boundary
// signal. While paused, a start that differs from the current position by
// more than the tolerance triggers an immediate seek so the next play
// begins in the right place.
func (t *Transport) SetBoundary(start, end *float64) {
	t.mu.Lock()
	t.start = start
	t.end = end
	t.boundaryFired = false
	seekTo := -1.0
	if (t.state == TransportPaused || t.state == TransportReady) &&
		start != nil && math.Abs(t.position-*start) > SeekTolerance {
		seekTo = *start
	}
	t.mu.Unlock()

	if seekTo >= 0 {
		if err := t.player.Seek(seekTo); err != nil {
			t.log.Warn("Audio seek on boundary update failed", "position", seekTo, "error", err)
			return
		}
		t.mu.Lock()
		t.position = seekTo
		t.mu.Unlock()
	}
}

// Tick ingests one position report from the player. While playing, crossing
// the end boundary fires the one-shot boundary signal; a natural
// end-of-resource with no end boundary configured fires the same signal.
func (t *Transport) Tick(position float64, ended bool) {
	t.mu.Lock()
	t.position = position
	fire := false
	if t.state == TransportPlaying && !t.boundaryFired {
		if t.end != nil && position >= *t.end {
			fire = true
		} else if ended && t.end == nil {
			fire = true
		}
	}
	if fire {
		t.boundaryFired = true
	}
	if ended && t.state == TransportPlaying {
		t.state = TransportPaused
	}
	handler := t.onBoundary
	t.mu.Unlock()

	if fire && handler != nil {
		handler()
	}
}

// Unload releases the current resource and invalidates any in-flight load.
func (t *Transport) Unload() {
	t.mu.Lock()
	t.epoch++
	t.state = TransportUnloaded
	t.start = nil
	t.end = nil
	t.position = 0
	t.boundaryFired = false
	t.mu.Unlock()

	if err := t.player.Release(); err != nil {
		t.log.Warn("Failed to release audio resource", "error", err)
	}
}

func isAbsoluteURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
