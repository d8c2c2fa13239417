// Package feed folds the game server's live event stream into a bounded,
// newest-first sequence of feed items, grouping conference runs into one item.
package feed

import (
	"fmt"
	"slices"
	"time"

	"github.com/adamavenir/wolfwatch/internal/core"
	"github.com/adamavenir/wolfwatch/internal/types"
)

// MaxItems bounds the feed; older items are evicted from the tail.
const MaxItems = 200

// Update describes what one live event changed.
type Update struct {
	// Item is the new top-level item, or the conference that was opened, closed or appended to.
	Item types.FeedItem
	// Message is set when the event was appended to the live conference. It points
	// at the stored copy and stays valid until the conference grows again.
	Message *types.Message
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithAgents sets the directory used to resolve agent names and roles.
func WithAgents(dir AgentDirectory) Option {
	return func(r *Reducer) { r.agents = dir }
}

// WithClock sets the clock used for events that carry no timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Reducer) { r.now = now }
}

// WithIDs sets the item ID source. IDs must be unique for the reducer's lifetime.
func WithIDs(newID func(prefix string) string) Option {
	return func(r *Reducer) { r.newID = newID }
}

// Reducer owns the feed. It is not safe for concurrent use.
type Reducer struct {
	items  []types.FeedItem
	active *types.ConferenceItem

	agents AgentDirectory
	now    func() time.Time
	newID  func(prefix string) string
	seq    int
}

// NewReducer returns an empty feed.
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{now: time.Now}
	r.newID = r.guid
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reducer) guid(prefix string) string {
	id, err := core.GenerateGUID(prefix)
	if err != nil {
		r.seq++
		return fmt.Sprintf("%s-%d-%d", prefix, r.now().UnixMilli(), r.seq)
	}
	return id
}

// Historical replaces the feed with a replay of events given newest-first.
// A conference left open by the batch becomes the live conference.
func (r *Reducer) Historical(events []types.Event) {
	r.items = r.items[:0]
	r.active = nil

	for i := len(events) - 1; i >= 0; i-- {
		evt := events[i]
		switch evt.Type {
		case types.EventConferenceStart:
			if r.active != nil {
				closeConference(r.active, r.when(evt))
			}
			r.active = r.newConference(evt, false)
			r.items = append(r.items, r.active)
		case types.EventConferenceEnd:
			if r.active != nil {
				closeConference(r.active, r.when(evt))
				r.active = nil
			}
		case types.EventMemory:
			r.items = append(r.items, r.toMemory(evt))
		default:
			msg, ok := r.toMessage(evt)
			if !ok {
				continue
			}
			if r.active != nil {
				r.active.Conference.Messages = append(r.active.Conference.Messages, msg)
				continue
			}
			r.items = append(r.items, &types.MessageItem{Message: msg})
		}
	}

	if r.active != nil {
		r.active.Conference.IsLive = true
	}
	slices.Reverse(r.items)
	r.trim()
}

// Ingest applies one live event. It reports false when the event changed nothing,
// including unknown event types.
func (r *Reducer) Ingest(evt types.Event) (Update, bool) {
	switch evt.Type {
	case types.EventConferenceStart:
		if r.active != nil {
			closeConference(r.active, r.when(evt))
		}
		r.active = r.newConference(evt, true)
		r.push(r.active)
		return Update{Item: r.active}, true

	case types.EventConferenceEnd:
		if r.active == nil {
			return Update{}, false
		}
		ended := r.active
		closeConference(ended, r.when(evt))
		r.active = nil
		return Update{Item: ended}, true

	case types.EventMemory:
		item := r.toMemory(evt)
		r.push(item)
		return Update{Item: item}, true
	}

	msg, ok := r.toMessage(evt)
	if !ok {
		return Update{}, false
	}
	if r.active != nil {
		msgs := append(r.active.Conference.Messages, msg)
		r.active.Conference.Messages = msgs
		return Update{Item: r.active, Message: &msgs[len(msgs)-1]}, true
	}
	item := &types.MessageItem{Message: msg}
	r.push(item)
	return Update{Item: item}, true
}

// AddSystemMessage inserts a viewer-local notice at the front of the feed.
func (r *Reducer) AddSystemMessage(content string) *types.MessageItem {
	item := &types.MessageItem{Message: types.Message{
		ID:        r.newID("sys"),
		Timestamp: r.now().UnixMilli(),
		Agent:     agentSystem,
		Role:      agentSystem,
		Content:   content,
	}}
	r.push(item)
	return item
}

// Items returns the feed newest-first. The slice is a copy; the items are shared.
func (r *Reducer) Items() []types.FeedItem {
	return slices.Clone(r.items)
}

// Len returns the number of items in the feed.
func (r *Reducer) Len() int {
	return len(r.items)
}

// Active returns the live conference, or nil.
func (r *Reducer) Active() *types.ConferenceItem {
	return r.active
}

// Find looks an item up by ID. The live conference is found even after it
// scrolled out of the window.
func (r *Reducer) Find(id string) (types.FeedItem, bool) {
	for _, item := range r.items {
		if item.ItemID() == id {
			return item, true
		}
	}
	if r.active != nil && r.active.ItemID() == id {
		return r.active, true
	}
	return nil, false
}

func (r *Reducer) taken(id string) bool {
	_, ok := r.Find(id)
	return ok
}

func (r *Reducer) push(item types.FeedItem) {
	r.items = slices.Insert(r.items, 0, item)
	r.trim()
}

func (r *Reducer) trim() {
	if len(r.items) <= MaxItems {
		return
	}
	clear(r.items[MaxItems:])
	r.items = r.items[:MaxItems]
}
