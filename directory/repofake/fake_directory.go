// Package repofake provides an in-memory directory for tests.
package repofake

import (
	"context"
	"sync"

	"github.com/lastseenhq/lastseen/directory"
)

var _ directory.Directory = (*FakeDirectory)(nil)

type FakeDirectory struct {
	lock        sync.RWMutex
	users       map[string]string // email -> display name
	clients     map[string]directory.ClientInfo
	unavailable bool
}

func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		users:   make(map[string]string),
		clients: make(map[string]directory.ClientInfo),
	}
}

func (d *FakeDirectory) AddUser(email, name string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.users[email] = name
}

func (d *FakeDirectory) AddClient(key string, info directory.ClientInfo) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.clients[key] = info
}

// SetUnavailable makes every lookup fail with ErrUnavailable.
func (d *FakeDirectory) SetUnavailable(unavailable bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.unavailable = unavailable
}

func (d *FakeDirectory) LookupUserByEmail(_ context.Context, email string) (string, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.unavailable {
		return "", directory.ErrUnavailable
	}
	name, ok := d.users[email]
	if !ok {
		return "", directory.ErrNotAuthorized
	}
	return name, nil
}

func (d *FakeDirectory) LookupClientByKey(_ context.Context, key string) (directory.ClientInfo, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.unavailable {
		return directory.ClientInfo{}, directory.ErrUnavailable
	}
	info, ok := d.clients[key]
	if !ok {
		return directory.ClientInfo{}, directory.ErrNotAuthorized
	}
	return info, nil
}
