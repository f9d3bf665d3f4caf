// Package location keeps the last-known position reported by each
// client, plus the roster of clients ever seen.
package location

import (
	"encoding/json"
	"sync"
	"time"
)

// Location is one observation. The zero value doubles as the sentinel
// returned for clients that have never reported.
type Location struct {
	// Degrees.
	Latitude float64 `json:"latitude"`
	// Degrees.
	Longitude float64 `json:"longitude"`
	// Meters.
	Accuracy float64 `json:"accuracy"`
	// Seconds since the unix epoch.
	Time int64 `json:"time"`
}

// Client is a roster entry.
type Client struct {
	ID   int64
	Name string
}

// MarshalJSON renders a roster entry as an [id, name] pair.
func (c Client) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.ID, c.Name})
}

// Store holds per-client last positions. Positions live in a sync.Map
// so updates for different clients never block each other; the roster
// is append-and-scan only and a single mutex suffices.
type Store struct {
	last sync.Map // int64 -> Location

	rosterLock sync.Mutex
	roster     []Client

	nowTime func() time.Time
}

// StoreOption modifies a Store at construction time.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = now
	}
}

func NewStore(options ...StoreOption) *Store {
	s := &Store{nowTime: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Update replaces the client's record with the given observation,
// stamped with the current wall-clock time, and returns that stamp.
// The first update for a client also appends it to the roster; Swap
// reports the previous value so the append happens exactly once even
// under concurrent first updates.
func (s *Store) Update(client Client, latitude, longitude, accuracy float64) int64 {
	now := s.nowTime().Unix()

	_, existed := s.last.Swap(client.ID, Location{
		Latitude:  latitude,
		Longitude: longitude,
		Accuracy:  accuracy,
		Time:      now,
	})

	if !existed {
		s.rosterLock.Lock()
		s.roster = append(s.roster, client)
		s.rosterLock.Unlock()
	}

	return now
}

// Get returns the client's last observation, or the zero sentinel if
// it has never reported. Absence is not an error.
func (s *Store) Get(clientID int64) Location {
	v, ok := s.last.Load(clientID)
	if !ok {
		return Location{}
	}
	return v.(Location)
}

// ListKnown returns the roster in first-seen order.
func (s *Store) ListKnown() []Client {
	s.rosterLock.Lock()
	defer s.rosterLock.Unlock()

	out := make([]Client, len(s.roster))
	copy(out, s.roster)
	return out
}
