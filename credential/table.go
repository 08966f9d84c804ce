package credential

import "sort"

// Table is the in-memory session map: sessionID -> *Record, with a secondary
// index userID -> session IDs maintained on every mutation. Lookup by user is
// an equality match against the index, never a hash scan.
//
// Table performs no locking of its own. The owning manager serializes all
// access; see the authcore package.
type Table struct {
	records map[string]*Record
	byUser  map[string]map[string]struct{}
}

// NewTable creates an empty [Table].
func NewTable() *Table {
	return &Table{
		records: make(map[string]*Record),
		byUser:  make(map[string]map[string]struct{}),
	}
}

// Load replaces the table contents with a decoded map, rebuilding the user
// index. Used once at startup.
func (t *Table) Load(records map[string]*Record) {
	t.records = make(map[string]*Record, len(records))
	t.byUser = make(map[string]map[string]struct{})
	for id, rec := range records {
		if rec == nil || rec.SessionID != id {
			continue
		}
		t.Set(rec)
	}
}

// Get returns the record for sessionID, or nil.
func (t *Table) Get(sessionID string) *Record {
	return t.records[sessionID]
}

// GetByUserID returns the record owned by userID together with the number of
// matching sessions. A count above one means left-over caller state; the
// returned record is then the one with the lowest sessionID so repeated calls
// stay deterministic.
func (t *Table) GetByUserID(userID string) (*Record, int) {
	if userID == "" {
		return nil, 0
	}
	ids := t.byUser[userID]
	switch len(ids) {
	case 0:
		return nil, 0
	case 1:
		for id := range ids {
			return t.records[id], 1
		}
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)
	return t.records[sorted[0]], len(sorted)
}

// SessionIDsForUser returns every session ID owned by userID.
func (t *Table) SessionIDsForUser(userID string) []string {
	ids := t.byUser[userID]
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Set inserts or replaces the record keyed by its SessionID and keeps the
// user index consistent, including when an update changes the owning user.
func (t *Table) Set(rec *Record) {
	if rec == nil || rec.SessionID == "" {
		return
	}

	if old := t.records[rec.SessionID]; old != nil && old.UserID != rec.UserID {
		t.unindex(old.UserID, old.SessionID)
	}

	t.records[rec.SessionID] = rec
	if rec.UserID != "" {
		set := t.byUser[rec.UserID]
		if set == nil {
			set = make(map[string]struct{}, 1)
			t.byUser[rec.UserID] = set
		}
		set[rec.SessionID] = struct{}{}
	}
}

// Remove deletes the record for sessionID and returns it, or nil if absent.
func (t *Table) Remove(sessionID string) *Record {
	rec := t.records[sessionID]
	if rec == nil {
		return nil
	}
	delete(t.records, sessionID)
	t.unindex(rec.UserID, sessionID)
	return rec
}

// RemoveAll clears the table and the user index.
func (t *Table) RemoveAll() {
	t.records = make(map[string]*Record)
	t.byUser = make(map[string]map[string]struct{})
}

// All returns every record, ordered by sessionID.
func (t *Table) All() []*Record {
	ids := make([]string, 0, len(t.records))
	for id := range t.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.records[id])
	}
	return out
}

// Snapshot returns a shallow copy of the primary map, suitable for encoding.
func (t *Table) Snapshot() map[string]*Record {
	out := make(map[string]*Record, len(t.records))
	for id, rec := range t.records {
		out[id] = rec
	}
	return out
}

// Len reports the number of stored records.
func (t *Table) Len() int {
	return len(t.records)
}

func (t *Table) unindex(userID, sessionID string) {
	if userID == "" {
		return
	}
	set := t.byUser[userID]
	if set == nil {
		return
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(t.byUser, userID)
	}
}
