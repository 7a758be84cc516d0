package reader

import "time"

// Timer is a cancellable delayed call. Controllers keep the handle of every
// timer they schedule and stop it on any transition that supersedes it.
type Timer interface {
	Stop() bool
}

// Clock abstracts timer scheduling so tests can drive auto-advance and
// settle delays without sleeping.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func NewClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
