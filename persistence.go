package authsession

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Record keys, as seen by the DurableStore before KeyPrefix is applied.
const (
	KeyToken      = "token"
	KeyExpiration = "expiration"
	KeyUserID     = "userId"
	KeyUserName   = "userName"
)

// ExpirationLayout is the ISO-8601 layout used for the persisted expiration instant.
const ExpirationLayout = "2006-01-02T15:04:05.000Z"

// SessionRecord is the durable shadow of an authenticated session.
type SessionRecord struct {
	Token          string
	UserID         string
	UserName       string
	ExpirationDate time.Time
	// RawExpiration keeps the stored string so unparsable values can be reported.
	RawExpiration string
}

// FormatExpiration renders t the way it is persisted.
func FormatExpiration(t time.Time) string {
	return t.UTC().Format(ExpirationLayout)
}

// ParseExpiration accepts ExpirationLayout as well as any RFC 3339 instant.
func ParseExpiration(s string) (time.Time, error) {
	if t, err := time.Parse(ExpirationLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// recordStore maps a SessionRecord onto the four keys of a DurableStore.
type recordStore struct {
	kv     DurableStore
	prefix string
}

func newRecordStore(kv DurableStore, prefix string) *recordStore {
	return &recordStore{kv: kv, prefix: prefix}
}

func (s *recordStore) key(name string) string {
	return s.prefix + name
}

func (s *recordStore) save(ctx context.Context, rec SessionRecord) error {
	pairs := [...][2]string{
		{KeyToken, rec.Token},
		{KeyExpiration, FormatExpiration(rec.ExpirationDate)},
		{KeyUserID, rec.UserID},
		{KeyUserName, rec.UserName},
	}
	for _, p := range pairs {
		if err := s.kv.Set(ctx, s.key(p[0]), p[1]); err != nil {
			return fmt.Errorf("%w: set %s: %v", ErrStoreUnavailable, p[0], err)
		}
	}
	return nil
}

// load returns ErrSessionNotFound when the token or the expiration is missing. An
// expiration that does not parse is returned with a zero ExpirationDate, which the
// caller treats as stale.
func (s *recordStore) load(ctx context.Context) (*SessionRecord, error) {
	token, ok, err := s.kv.Get(ctx, s.key(KeyToken))
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, KeyToken, err)
	}
	if !ok || token == "" {
		return nil, ErrSessionNotFound
	}
	rawExp, ok, err := s.kv.Get(ctx, s.key(KeyExpiration))
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, KeyExpiration, err)
	}
	if !ok || rawExp == "" {
		return nil, ErrSessionNotFound
	}

	rec := &SessionRecord{Token: token, RawExpiration: rawExp}
	if exp, err := ParseExpiration(rawExp); err == nil {
		rec.ExpirationDate = exp
	}

	// userId and userName are optional in the record; an absent value restores as "".
	if rec.UserID, _, err = s.kv.Get(ctx, s.key(KeyUserID)); err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, KeyUserID, err)
	}
	if rec.UserName, _, err = s.kv.Get(ctx, s.key(KeyUserName)); err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, KeyUserName, err)
	}
	return rec, nil
}

// clear removes every key and reports all failures joined together.
func (s *recordStore) clear(ctx context.Context) error {
	var errs []error
	for _, name := range [...]string{KeyToken, KeyExpiration, KeyUserID, KeyUserName} {
		if err := s.kv.Remove(ctx, s.key(name)); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, errors.Join(errs...))
	}
	return nil
}
