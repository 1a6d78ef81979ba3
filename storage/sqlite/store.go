// Package sqlite provides a durable, schema-on-init persistence layer for
// the ConsentRegistry and IntentRegistry, plus an append-only event log,
// backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"time"

	_ "modernc.org/sqlite"

	"flowkernel/core/events"
	"flowkernel/crypto"
	"flowkernel/flow/consent"
	"flowkernel/flow/intent"
)

// Store is a durable sqlite-backed implementation of flow/consent.Store and
// events.Emitter (recording every emitted event to an append-only audit
// table). Its flow/intent.Store view is the IntentStore returned by Intents.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures the kernel schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS consent_entries (
            auth_hash TEXT PRIMARY KEY,
            owner TEXT NOT NULL,
            owner_set INTEGER NOT NULL,
            revoked INTEGER NOT NULL,
            pulled_total TEXT NOT NULL,
            cap TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS consent_executors (
            executor TEXT PRIMARY KEY,
            trusted INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS intent_entries (
            intent_hash TEXT PRIMARY KEY,
            owner TEXT NOT NULL,
            owner_set INTEGER NOT NULL,
            revoked INTEGER NOT NULL,
            moved_so_far TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS event_log (
            sequence INTEGER PRIMARY KEY AUTOINCREMENT,
            type TEXT NOT NULL,
            attributes TEXT NOT NULL,
            recorded_at TIMESTAMP NOT NULL
        );`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func hashToHex(h crypto.Hash) string  { return hex.EncodeToString(h[:]) }
func addrToHex(a crypto.Address) string { return hex.EncodeToString(a[:]) }

func hexToHash(s string) (crypto.Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return crypto.Hash{}, err
	}
	return crypto.HashFromBytes(b)
}

func hexToAddr(s string) (crypto.Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return crypto.Address{}, err
	}
	return crypto.NewAddress(b)
}

// GetEntry implements flow/consent.Store.
func (s *Store) GetEntry(authHash crypto.Hash) (*consent.Entry, bool, error) {
	row := s.db.QueryRow(`SELECT owner, owner_set, revoked, pulled_total, cap FROM consent_entries WHERE auth_hash = ?`, hashToHex(authHash))
	var owner string
	var ownerSet, revoked int
	var pulledTotal string
	var capStr sql.NullString
	if err := row.Scan(&owner, &ownerSet, &revoked, &pulledTotal, &capStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	ownerAddr, err := hexToAddr(owner)
	if err != nil {
		return nil, false, err
	}
	pulled, ok := new(big.Int).SetString(pulledTotal, 10)
	if !ok {
		pulled = big.NewInt(0)
	}
	var cap *big.Int
	if capStr.Valid && capStr.String != "" {
		cap, _ = new(big.Int).SetString(capStr.String, 10)
	}
	return &consent.Entry{Owner: ownerAddr, OwnerSet: ownerSet != 0, Revoked: revoked != 0, PulledTotal: pulled, Cap: cap}, true, nil
}

// PutEntry implements flow/consent.Store.
func (s *Store) PutEntry(authHash crypto.Hash, e *consent.Entry) error {
	pulled := "0"
	if e.PulledTotal != nil {
		pulled = e.PulledTotal.String()
	}
	var capStr sql.NullString
	if e.Cap != nil {
		capStr = sql.NullString{String: e.Cap.String(), Valid: true}
	}
	_, err := s.db.Exec(`INSERT INTO consent_entries (auth_hash, owner, owner_set, revoked, pulled_total, cap)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(auth_hash) DO UPDATE SET owner=excluded.owner, owner_set=excluded.owner_set,
            revoked=excluded.revoked, pulled_total=excluded.pulled_total, cap=excluded.cap`,
		hashToHex(authHash), addrToHex(e.Owner), boolToInt(e.OwnerSet), boolToInt(e.Revoked), pulled, capStr)
	return err
}

// IsTrustedExecutor implements flow/consent.Store.
func (s *Store) IsTrustedExecutor(executor crypto.Address) (bool, error) {
	row := s.db.QueryRow(`SELECT trusted FROM consent_executors WHERE executor = ?`, addrToHex(executor))
	var trusted int
	if err := row.Scan(&trusted); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return trusted != 0, nil
}

// SetTrustedExecutor marks executor as a trusted (or untrusted) caller of
// ConsentRegistry.RecordPull.
func (s *Store) SetTrustedExecutor(executor crypto.Address, trusted bool) error {
	_, err := s.db.Exec(`INSERT INTO consent_executors (executor, trusted) VALUES (?, ?)
        ON CONFLICT(executor) DO UPDATE SET trusted=excluded.trusted`, addrToHex(executor), boolToInt(trusted))
	return err
}

// GetIntentEntry loads an intent entry; IntentStore.GetEntry exposes it as
// flow/intent.Store.
func (s *Store) GetIntentEntry(intentHash crypto.Hash) (*intent.Entry, bool, error) {
	row := s.db.QueryRow(`SELECT owner, owner_set, revoked, moved_so_far FROM intent_entries WHERE intent_hash = ?`, hashToHex(intentHash))
	var owner string
	var ownerSet, revoked int
	var movedStr string
	if err := row.Scan(&owner, &ownerSet, &revoked, &movedStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	ownerAddr, err := hexToAddr(owner)
	if err != nil {
		return nil, false, err
	}
	moved, ok := new(big.Int).SetString(movedStr, 10)
	if !ok {
		moved = big.NewInt(0)
	}
	return &intent.Entry{Owner: ownerAddr, OwnerSet: ownerSet != 0, Revoked: revoked != 0, MovedSoFar: moved}, true, nil
}

// PutIntentEntry stores an intent entry; IntentStore exposes it as
// flow/intent.Store.
func (s *Store) PutIntentEntry(intentHash crypto.Hash, e *intent.Entry) error {
	moved := "0"
	if e.MovedSoFar != nil {
		moved = e.MovedSoFar.String()
	}
	_, err := s.db.Exec(`INSERT INTO intent_entries (intent_hash, owner, owner_set, revoked, moved_so_far)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(intent_hash) DO UPDATE SET owner=excluded.owner, owner_set=excluded.owner_set,
            revoked=excluded.revoked, moved_so_far=excluded.moved_so_far`,
		hashToHex(intentHash), addrToHex(e.Owner), boolToInt(e.OwnerSet), boolToInt(e.Revoked), moved)
	return err
}

// IntentStore adapts Store to the flow/intent.Store interface (distinct
// method names are required because *Store already implements
// flow/consent.Store's GetEntry/PutEntry against a different entry type).
type IntentStore struct {
	store *Store
}

// Intents returns an flow/intent.Store view over s.
func (s *Store) Intents() *IntentStore { return &IntentStore{store: s} }

// GetEntry implements flow/intent.Store.
func (is *IntentStore) GetEntry(intentHash crypto.Hash) (*intent.Entry, bool, error) {
	return is.store.GetIntentEntry(intentHash)
}

// PutEntry implements flow/intent.Store.
func (is *IntentStore) PutEntry(intentHash crypto.Hash, e *intent.Entry) error {
	return is.store.PutIntentEntry(intentHash, e)
}

// Emit implements events.Emitter, appending every event to the audit log.
func (s *Store) Emit(ev events.Event) {
	payload, ok := ev.(events.Payload)
	if !ok {
		return
	}
	typed := payload.Event()
	attrs, err := json.Marshal(typed.Attributes)
	if err != nil {
		return
	}
	_, _ = s.db.Exec(`INSERT INTO event_log (type, attributes, recorded_at) VALUES (?, ?, ?)`, typed.Type, string(attrs), time.Now().UTC())
}

// ListEvents returns events recorded after (exclusive) the supplied
// sequence number, oldest first, for indexer catch-up.
func (s *Store) ListEvents(ctx context.Context, afterSequence int64, limit int) ([]LoggedEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sequence, type, attributes, recorded_at FROM event_log WHERE sequence > ? ORDER BY sequence ASC LIMIT ?`, afterSequence, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoggedEvent
	for rows.Next() {
		var le LoggedEvent
		var attrs string
		if err := rows.Scan(&le.Sequence, &le.Type, &attrs, &le.RecordedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(attrs), &le.Attributes); err != nil {
			return nil, err
		}
		out = append(out, le)
	}
	return out, rows.Err()
}

// LoggedEvent is a row read back from the audit log.
type LoggedEvent struct {
	Sequence   int64
	Type       string
	Attributes map[string]string
	RecordedAt time.Time
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
