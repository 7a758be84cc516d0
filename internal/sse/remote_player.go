package sse

import (
	"context"

	"github.com/google/uuid"

	"github.com/readwave/readwave-backend/internal/logger"
)

// AudioCommand is the playback instruction pushed to the device. The
// device executes it against its local audio element and reports positions
// back over the tick endpoint.
type AudioCommand struct {
	Action   string  `json:"action"`
	URL      string  `json:"url,omitempty"`
	Position float64 `json:"position,omitempty"`
}

const (
	AudioActionLoad    = "load"
	AudioActionPlay    = "play"
	AudioActionPause   = "pause"
	AudioActionSeek    = "seek"
	AudioActionRelease = "release"
)

// RemotePlayer drives the device's audio element over the user's SSE
// channel. Commands are fire-and-forget: the hub drops them if no client
// is connected, and the device's position ticks are the only feedback.
type RemotePlayer struct {
	log    *logger.Logger
	hub    *SSEHub
	userID uuid.UUID
}

func NewRemotePlayer(log *logger.Logger, hub *SSEHub, userID uuid.UUID) *RemotePlayer {
	return &RemotePlayer{
		log:    log.With("component", "RemotePlayer", "user_id", userID),
		hub:    hub,
		userID: userID,
	}
}

func (p *RemotePlayer) send(cmd AudioCommand) {
	p.hub.Broadcast(SSEMessage{
		Channel: UserChannel(p.userID),
		Event:   SSEEventAudioCommand,
		Data:    cmd,
	})
}

func (p *RemotePlayer) Load(_ context.Context, url string) error {
	p.send(AudioCommand{Action: AudioActionLoad, URL: url})
	return nil
}

func (p *RemotePlayer) Play() error {
	p.send(AudioCommand{Action: AudioActionPlay})
	return nil
}

func (p *RemotePlayer) Pause() error {
	p.send(AudioCommand{Action: AudioActionPause})
	return nil
}

func (p *RemotePlayer) Seek(position float64) error {
	p.send(AudioCommand{Action: AudioActionSeek, Position: position})
	return nil
}

func (p *RemotePlayer) Release() error {
	p.send(AudioCommand{Action: AudioActionRelease})
	return nil
}
