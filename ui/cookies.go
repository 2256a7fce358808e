package ui

import (
	"net/http"

	"claimsportal/ports"

	"github.com/gin-gonic/gin"
)

const cookieMaxAge = 7 * 24 * 60 * 60

// cookieStorage keeps the session keys in browser cookies. Writes are mirrored in
// memory so a value set earlier in the request is visible to later reads.
type cookieStorage struct {
	c       *gin.Context
	secure  bool
	pending map[string]*string
}

var _ ports.ClientStorage = (*cookieStorage)(nil)

func newCookieStorage(c *gin.Context, secure bool) *cookieStorage {
	return &cookieStorage{c: c, secure: secure, pending: map[string]*string{}}
}

func (s *cookieStorage) Get(key string) (string, bool, error) {
	if v, ok := s.pending[key]; ok {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}
	v, err := s.c.Cookie(key)
	if err != nil {
		if err == http.ErrNoCookie {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *cookieStorage) Set(key, value string) error {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, value, cookieMaxAge, "/", "", s.secure, true)
	s.pending[key] = &value
	return nil
}

func (s *cookieStorage) Remove(keys ...string) error {
	for _, key := range keys {
		s.c.SetSameSite(http.SameSiteLaxMode)
		s.c.SetCookie(key, "", -1, "/", "", s.secure, true)
		s.pending[key] = nil
	}
	return nil
}
