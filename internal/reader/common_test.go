package reader

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/readwave/readwave-backend/internal/logger"
)

func testLogger() *logger.Logger { return logger.NewNop() }

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Time
	f        func()
	stopped  bool
	fired    bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock drives AfterFunc timers manually via Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, deadline: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.deadline.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

// fakePlayer records every transport command it receives.
type fakePlayer struct {
	mu       sync.Mutex
	loads    []string
	plays    int
	pauses   int
	seeks    []float64
	releases int
	loadErr  error
}

func (p *fakePlayer) Load(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return p.loadErr
	}
	p.loads = append(p.loads, url)
	return nil
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
	return nil
}

func (p *fakePlayer) Seek(position float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seeks = append(p.seeks, position)
	return nil
}

func (p *fakePlayer) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releases++
	return nil
}

func (p *fakePlayer) loadedURLs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.loads))
	copy(out, p.loads)
	return out
}

// blockingResolver parks every resolution until released, to simulate a
// slow signed-URL round trip. started closes when the first resolution
// begins so tests can order operations around the in-flight load.
type blockingResolver struct {
	startOnce sync.Once
	started   chan struct{}
	release   chan struct{}
	result    string
}

func newBlockingResolver(result string) *blockingResolver {
	return &blockingResolver{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  result,
	}
}

func (r *blockingResolver) ResolveAudioURL(_ context.Context, _ string) (string, error) {
	r.startOnce.Do(func() { close(r.started) })
	<-r.release
	return r.result, nil
}

type staticResolver struct{ result string }

func (r staticResolver) ResolveAudioURL(_ context.Context, _ string) (string, error) {
	return r.result, nil
}
