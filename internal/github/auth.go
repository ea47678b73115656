package github

import (
	"context"
	"sync"
	"time"
)

// tokenSource produces the value placed in the Authorization header.
type tokenSource interface {
	Token(ctx context.Context) (string, error)
}

// staticToken is a personal or oauth token passed in by the user.
type staticToken string

func (t staticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

type tokenCache struct {
	mu      sync.Mutex
	token   string
	expires time.Time
}

func (c *tokenCache) get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.expires) {
		return c.token, true
	}
	return "", false
}

func (c *tokenCache) set(token string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	c.expires = time.Now().Add(ttl)
}
