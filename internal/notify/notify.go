// Package notify carries change events from the write path to subscribed
// clients. One event per successful mutation, published after the store write
// is acknowledged; delivery is at-most-once best-effort with no replay.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"songcatalog/internal/store"
)

// Group is the broadcast group song change events are published to.
const Group = "songs"

// EventType tags the kind of mutation an event describes.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event is the change-notification contract. Deleted events carry both the
// removed record's id and its last-known snapshot so subscribers can update
// derived views without a follow-up fetch.
type Event struct {
	Type      EventType   `json:"type"`
	Song      *store.Song `json:"song,omitempty"`
	SongID    string      `json:"songId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Created builds the event for a newly stored song.
func Created(song store.Song) Event {
	return Event{Type: EventCreated, Song: &song, Timestamp: time.Now().UTC()}
}

// Updated builds the event for a mutated song.
func Updated(song store.Song) Event {
	return Event{Type: EventUpdated, Song: &song, Timestamp: time.Now().UTC()}
}

// Deleted builds the event for a removed song.
func Deleted(song store.Song) Event {
	return Event{Type: EventDeleted, Song: &song, SongID: song.ID, Timestamp: time.Now().UTC()}
}

// Name returns the wire event name, e.g. "song-created".
func (e Event) Name() string {
	return "song-" + string(e.Type)
}

// Message is the JSON frame delivered to subscribers.
type Message struct {
	Event string `json:"event"`
	Data  Event  `json:"data"`
}

// Encode renders the wire frame for an event.
func Encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(Message{Event: e.Name(), Data: e})
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", e.Name(), err)
	}
	return payload, nil
}

// Broadcaster publishes events to every current subscriber of the group.
type Broadcaster interface {
	Publish(ctx context.Context, event Event) error
}

// Sink accepts encoded frames for a broadcast group. *ws.Hub satisfies it.
type Sink interface {
	Broadcast(group string, payload []byte)
}

// HubBroadcaster publishes events straight to the local hub. It is the
// single-instance path; multi-instance deployments go through Redis instead.
type HubBroadcaster struct {
	sink Sink
}

// NewHubBroadcaster wires a broadcaster to the given sink.
func NewHubBroadcaster(sink Sink) *HubBroadcaster {
	return &HubBroadcaster{sink: sink}
}

// Publish encodes the event and hands it to the sink.
func (b *HubBroadcaster) Publish(_ context.Context, event Event) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}
	b.sink.Broadcast(Group, payload)
	return nil
}
