package reader

import (
	"context"
	"errors"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func newReadyTransport(t *testing.T, player *fakePlayer) *Transport {
	t.Helper()
	tr := NewTransport(testLogger(), player)
	if err := tr.Load(context.Background(), "https://cdn.example.com/a.mp3", nil); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if tr.State() != TransportReady {
		t.Fatalf("expected ready, got %v", tr.State())
	}
	return tr
}

func TestTransport_PlayIsNoOpBeforeLoad(t *testing.T) {
	player := &fakePlayer{}
	tr := NewTransport(testLogger(), player)
	tr.Play()
	if player.plays != 0 {
		t.Fatalf("expected no play call on idle transport")
	}
}

func TestTransport_PlaySeeksToStartBeyondTolerance(t *testing.T) {
	player := &fakePlayer{}
	tr := newReadyTransport(t, player)

	tr.SetBoundary(floatPtr(12.0), floatPtr(20.0))
	// SetBoundary on a ready transport already seeks to start.
	if len(player.seeks) != 1 || player.seeks[0] != 12.0 {
		t.Fatalf("expected immediate seek to 12.0, got %v", player.seeks)
	}

	tr.Play()
	if player.plays != 1 {
		t.Fatalf("expected play, got %d", player.plays)
	}
	// Position now matches start; a second play must not seek again.
	tr.Pause()
	tr.Play()
	if len(player.seeks) != 1 {
		t.Fatalf("expected no extra seek within tolerance, got %v", player.seeks)
	}
}

func TestTransport_PauseIsNoOpUnlessPlaying(t *testing.T) {
	player := &fakePlayer{}
	tr := newReadyTransport(t, player)
	tr.Pause()
	if player.pauses != 0 {
		t.Fatalf("expected no pause call while ready")
	}
	tr.Play()
	tr.Pause()
	if player.pauses != 1 {
		t.Fatalf("expected exactly one pause, got %d", player.pauses)
	}
}

func TestTransport_BoundarySignalFiresOnce(t *testing.T) {
	player := &fakePlayer{}
	tr := newReadyTransport(t, player)

	fired := 0
	tr.SetBoundaryHandler(func() { fired++ })
	tr.SetBoundary(floatPtr(0), floatPtr(5.0))
	tr.Play()

	tr.Tick(4.0, false)
	if fired != 0 {
		t.Fatalf("boundary fired early")
	}
	tr.Tick(5.1, false)
	tr.Tick(5.2, false)
	if fired != 1 {
		t.Fatalf("expected one boundary signal, got %d", fired)
	}
}

func TestTransport_BoundaryRearmsOnNewWindow(t *testing.T) {
	player := &fakePlayer{}
	tr := newReadyTransport(t, player)

	fired := 0
	tr.SetBoundaryHandler(func() { fired++ })
	tr.SetBoundary(floatPtr(0), floatPtr(5.0))
	tr.Play()
	tr.Tick(6.0, false)

	tr.SetBoundary(floatPtr(6.0), floatPtr(10.0))
	tr.Play()
	tr.Tick(10.5, false)
	if fired != 2 {
		t.Fatalf("expected boundary to re-arm per window, got %d", fired)
	}
}

func TestTransport_NaturalEndFiresWithoutEndBoundary(t *testing.T) {
	player := &fakePlayer{}
	tr := newReadyTransport(t, player)

	fired := 0
	tr.SetBoundaryHandler(func() { fired++ })
	tr.SetBoundary(floatPtr(0), nil)
	tr.Play()
	tr.Tick(42.0, true)
	if fired != 1 {
		t.Fatalf("expected natural-end signal, got %d", fired)
	}
	if tr.State() != TransportPaused {
		t.Fatalf("expected paused after resource end, got %v", tr.State())
	}
}

func TestTransport_LoadFailureEntersErrorState(t *testing.T) {
	player := &fakePlayer{loadErr: errors.New("decode failed")}
	tr := NewTransport(testLogger(), player)
	if err := tr.Load(context.Background(), "https://cdn.example.com/bad.mp3", nil); err == nil {
		t.Fatalf("expected load error")
	}
	if tr.State() != TransportError {
		t.Fatalf("expected error state, got %v", tr.State())
	}
	if player.releases == 0 {
		t.Fatalf("expected old resource released on failed load")
	}
	// Transport operations stay harmless in error state.
	tr.Play()
	if player.plays != 0 {
		t.Fatalf("play must be a no-op in error state")
	}
}

func TestTransport_StaleLoadIsDiscarded(t *testing.T) {
	player := &fakePlayer{}
	tr := NewTransport(testLogger(), player)

	resolver := newBlockingResolver("https://signed.example.com/segment-a.mp3")
	done := make(chan struct{})
	go func() {
		_ = tr.Load(context.Background(), "books/1/segment-a.mp3", resolver)
		close(done)
	}()

	<-resolver.started
	// User navigates to segment B while A's signed URL is still resolving.
	if err := tr.Load(context.Background(), "https://cdn.example.com/segment-b.mp3", nil); err != nil {
		t.Fatalf("load b failed: %v", err)
	}
	close(resolver.release)
	<-done

	loads := player.loadedURLs()
	if len(loads) != 1 || loads[0] != "https://cdn.example.com/segment-b.mp3" {
		t.Fatalf("stale load must not attach, got %v", loads)
	}
	if tr.State() != TransportReady {
		t.Fatalf("expected segment B ready, got %v", tr.State())
	}
}

func TestTransport_UnloadInvalidatesInFlightLoad(t *testing.T) {
	player := &fakePlayer{}
	tr := NewTransport(testLogger(), player)

	resolver := newBlockingResolver("https://signed.example.com/late.mp3")
	done := make(chan struct{})
	go func() {
		_ = tr.Load(context.Background(), "books/1/late.mp3", resolver)
		close(done)
	}()

	<-resolver.started
	tr.Unload()
	close(resolver.release)
	<-done

	if got := player.loadedURLs(); len(got) != 0 {
		t.Fatalf("unmounted transport must not attach, got %v", got)
	}
	if tr.State() != TransportUnloaded {
		t.Fatalf("expected unloaded, got %v", tr.State())
	}
}
