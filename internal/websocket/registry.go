package websocket

import "sync"

// Registry is the authoritative presence map: identity -> set of live
// connections, with a reverse index so teardown never scans.
// Invariants: an identity key exists only while its set is non-empty,
// and a connection is bound to at most one identity.
type Registry struct {
	mu         sync.RWMutex
	identities map[string]map[*Client]struct{} // forward: identity → connections
	owners     map[*Client]string              // reverse: connection → identity
}

func NewRegistry() *Registry {
	return &Registry{
		identities: make(map[string]map[*Client]struct{}),
		owners:     make(map[*Client]string),
	}
}

// Register binds c to identity. Registering the same connection under
// the same identity again is a no-op. A connection already bound to a
// different identity is rebound; released reports that identity if the
// rebind took its last connection away.
func (r *Registry) Register(identity string, c *Client) (cameOnline bool, released string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.owners[c]; ok {
		if prev == identity {
			return false, ""
		}
		if r.removeLocked(prev, c) {
			released = prev
		}
	}

	set, ok := r.identities[identity]
	if !ok {
		set = make(map[*Client]struct{})
		r.identities[identity] = set
	}
	set[c] = struct{}{}
	r.owners[c] = identity
	return len(set) == 1, released
}

// Unregister removes c from whichever identity it is bound to.
// Safe for connections that never registered.
func (r *Registry) Unregister(c *Client) (identity string, wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.owners[c]
	if !ok {
		return "", false
	}
	delete(r.owners, c)
	return identity, r.removeLocked(identity, c)
}

// removeLocked deletes c from identity's set, dropping the entry when
// the set empties. Caller holds r.mu.
func (r *Registry) removeLocked(identity string, c *Client) bool {
	set, ok := r.identities[identity]
	if !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.identities, identity)
		return true
	}
	return false
}

// ConnectionsFor returns a snapshot of the live connections for
// identity. The registry may mutate concurrently after return.
func (r *Registry) ConnectionsFor(identity string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.identities[identity]
	if len(set) == 0 {
		return nil
	}
	conns := make([]*Client, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}

func (r *Registry) IsOnline(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.identities[identity]) > 0
}

// OnlineIdentities returns a snapshot of every identity that currently
// holds at least one live connection.
func (r *Registry) OnlineIdentities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.identities))
	for identity := range r.identities {
		ids = append(ids, identity)
	}
	return ids
}

// IdentityOf reports the identity c is bound to, if any.
func (r *Registry) IdentityOf(c *Client) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.owners[c]
	return identity, ok
}
