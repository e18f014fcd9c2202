package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Directory is the authoritative in-memory map of who is in which channel's
// realtime session. It holds no history and survives nothing: entries exist
// only while a connection (or an explicit REST leave) says they should.
type Directory struct {
	mu       sync.RWMutex
	channels map[uint]map[uint]Participant

	now func() time.Time
}

func NewDirectory() *Directory {
	return &Directory{
		channels: make(map[uint]map[uint]Participant),
		now:      time.Now,
	}
}

// Add upserts a participant. A second authenticate for the same
// (channel, user) pair replaces the prior entry rather than duplicating it.
// The stored participant is returned with its JoinedAt stamped.
func (d *Directory) Add(p Participant) Participant {
	if p.MediaState == (MediaState{}) {
		p.MediaState = DefaultMediaState()
	}
	p.JoinedAt = d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[p.ChannelID]
	if !ok {
		ch = make(map[uint]Participant)
		d.channels[p.ChannelID] = ch
	}
	ch[p.UserID] = p
	return p
}

// Remove deletes the participant and prunes the channel map once it empties.
// A non-empty sessionID only removes the entry that still carries it, so a
// stale connection's teardown cannot evict a fresh re-authentication.
func (d *Directory) Remove(channelID, userID uint, sessionID string) (Participant, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return Participant{}, false
	}
	p, ok := ch[userID]
	if !ok {
		return Participant{}, false
	}
	if sessionID != "" && p.SessionID != sessionID {
		return Participant{}, false
	}

	delete(ch, userID)
	if len(ch) == 0 {
		delete(d.channels, channelID)
	}
	return p, true
}

// UpdateMedia merges the non-empty fields of delta into the participant's
// media state. The second return is false when no entry exists.
func (d *Directory) UpdateMedia(channelID, userID uint, delta MediaState) (Participant, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return Participant{}, false
	}
	p, ok := ch[userID]
	if !ok {
		return Participant{}, false
	}

	p.MediaState = p.MediaState.merge(delta)
	ch[userID] = p
	return p, true
}

// Get returns the participant for the pair, if present.
func (d *Directory) Get(channelID, userID uint) (Participant, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return Participant{}, false
	}
	p, ok := ch[userID]
	return p, ok
}

// Snapshot returns a copy of the channel roster sorted by display name, then
// user ID. Callers never see the directory's own maps.
func (d *Directory) Snapshot(channelID uint) []Participant {
	d.mu.RLock()
	ch := d.channels[channelID]
	roster := lo.Values(ch)
	d.mu.RUnlock()

	sort.Slice(roster, func(i, j int) bool {
		if roster[i].DisplayName != roster[j].DisplayName {
			return roster[i].DisplayName < roster[j].DisplayName
		}
		return roster[i].UserID < roster[j].UserID
	})
	return roster
}

// Count reports the roster size for one channel.
func (d *Directory) Count(channelID uint) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.channels[channelID])
}

// Totals reports how many channels have live sessions and how many
// participants they hold overall.
func (d *Directory) Totals() (channels, participants int) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	channels = len(d.channels)
	for _, ch := range d.channels {
		participants += len(ch)
	}
	return channels, participants
}
