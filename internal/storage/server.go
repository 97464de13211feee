package storage

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"vacationRentalWebsite/internal/services"
)

const sidKey = "sid"

// ValueStore persists session values server side, keyed by session id
type ValueStore interface {
	Get(ctx context.Context, sid string) (map[string]string, error)
	// Put replaces every value of sid in one operation
	Put(ctx context.Context, sid string, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, sid string) error
	Close() error
}

// ServerBackend keeps only an opaque session id in the cookie and the token
// and user record in a ValueStore.
type ServerBackend struct {
	cookies *sessions.CookieStore
	name    string
	values  ValueStore
	ttl     time.Duration
}

func NewServerBackend(cookies *sessions.CookieStore, name string, values ValueStore, ttl time.Duration) *ServerBackend {
	return &ServerBackend{cookies: cookies, name: name, values: values, ttl: ttl}
}

func (b *ServerBackend) Open(w http.ResponseWriter, r *http.Request) services.Store {
	return &serverSession{
		ctx:     r.Context(),
		jar:     newCookieJar(b.cookies, b.name, w, r),
		backend: b,
	}
}

func (b *ServerBackend) Close() error {
	return b.values.Close()
}

type serverSession struct {
	ctx     context.Context
	jar     *cookieJar
	backend *ServerBackend
}

func (s *serverSession) sid() (string, error) {
	sess, err := s.jar.session()
	if err != nil {
		return "", err
	}
	sid, _ := sess.Values[sidKey].(string)
	return sid, nil
}

func (s *serverSession) Load() (map[string]string, error) {
	sid, err := s.sid()
	if err != nil {
		return nil, err
	}
	if sid == "" {
		return map[string]string{}, nil
	}
	return s.backend.values.Get(s.ctx, sid)
}

func (s *serverSession) Save(values map[string]string) error {
	sid, _ := s.sid()
	if sid == "" {
		sid = uuid.NewString()
	}
	if err := s.backend.values.Put(s.ctx, sid, values, s.backend.ttl); err != nil {
		return err
	}
	sess := s.jar.fresh()
	sess.Values[sidKey] = sid
	return s.jar.save(sess)
}

func (s *serverSession) Clear() error {
	sid, _ := s.sid()
	var err error
	if sid != "" {
		err = s.backend.values.Delete(s.ctx, sid)
	}
	if cookieErr := s.jar.expire(); err == nil {
		err = cookieErr
	}
	return err
}
