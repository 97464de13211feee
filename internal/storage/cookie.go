package storage

import (
	"net/http"

	"github.com/gorilla/sessions"

	"vacationRentalWebsite/internal/services"
)

// Backend opens the persisted half of a session for one request
type Backend interface {
	Open(w http.ResponseWriter, r *http.Request) services.Store
	Close() error
}

// CookieBackend keeps token and user directly in a signed, encrypted cookie
type CookieBackend struct {
	store *sessions.CookieStore
	name  string
}

// NewCookieBackend wraps a configured gorilla cookie store
func NewCookieBackend(store *sessions.CookieStore, name string) *CookieBackend {
	return &CookieBackend{store: store, name: name}
}

func (b *CookieBackend) Open(w http.ResponseWriter, r *http.Request) services.Store {
	return &cookieSession{jar: newCookieJar(b.store, b.name, w, r)}
}

func (b *CookieBackend) Close() error { return nil }

type cookieSession struct {
	jar *cookieJar
}

func (s *cookieSession) Load() (map[string]string, error) {
	sess, err := s.jar.session()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, key := range []string{services.KeyToken, services.KeyUser} {
		if v, ok := sess.Values[key].(string); ok && v != "" {
			out[key] = v
		}
	}
	return out, nil
}

func (s *cookieSession) Save(values map[string]string) error {
	sess := s.jar.fresh()
	for k, v := range values {
		sess.Values[k] = v
	}
	return s.jar.save(sess)
}

func (s *cookieSession) Clear() error {
	return s.jar.expire()
}

// cookieJar wraps one named gorilla session for the lifetime of a request.
// A cookie that fails to decode is reported once by session() and then
// replaced on the next write.
type cookieJar struct {
	store *sessions.CookieStore
	name  string
	w     http.ResponseWriter
	r     *http.Request
	sess  *sessions.Session
	err   error
}

func newCookieJar(store *sessions.CookieStore, name string, w http.ResponseWriter, r *http.Request) *cookieJar {
	return &cookieJar{store: store, name: name, w: w, r: r}
}

func (j *cookieJar) session() (*sessions.Session, error) {
	if j.sess == nil && j.err == nil {
		j.sess, j.err = j.store.Get(j.r, j.name)
	}
	return j.sess, j.err
}

// fresh returns the current session, or a new empty one if the cookie was unreadable
func (j *cookieJar) fresh() *sessions.Session {
	sess, err := j.session()
	if err != nil || sess == nil {
		sess = sessions.NewSession(j.store, j.name)
		j.sess, j.err = sess, nil
	}
	opts := *j.store.Options
	sess.Options = &opts
	sess.IsNew = false
	return sess
}

func (j *cookieJar) save(sess *sessions.Session) error {
	return sess.Save(j.r, j.w)
}

func (j *cookieJar) expire() error {
	sess := j.fresh()
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(j.r, j.w)
}
