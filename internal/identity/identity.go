// Package identity resolves the self-declared actor behind a request.
// Nothing here verifies credentials.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
)

// HeaderSessionID carries the id returned by session registration.
const HeaderSessionID = "X-Session-Id"

// Resolver maps a request to an actor; nil means guest.
type Resolver interface {
	Resolve(r *http.Request) (*domain.Actor, error)
}

// SessionResolver looks the header value up in the document's sessions.
type SessionResolver struct {
	store store.DocumentStore
}

func NewSessionResolver(s store.DocumentStore) *SessionResolver {
	return &SessionResolver{store: s}
}

func (s *SessionResolver) Resolve(r *http.Request) (*domain.Actor, error) {
	id := strings.TrimSpace(r.Header.Get(HeaderSessionID))
	if id == "" {
		return nil, nil
	}
	return s.Lookup(r.Context(), id)
}

// Lookup returns the actor for a session id, or nil if unknown.
func (s *SessionResolver) Lookup(ctx context.Context, id string) (*domain.Actor, error) {
	doc, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	for _, sess := range doc.Sessions {
		if sess.ID == id {
			return sess.Actor(), nil
		}
	}
	return nil, nil
}

// Guest resolves every request to the guest identity.
type Guest struct{}

func (Guest) Resolve(*http.Request) (*domain.Actor, error) { return nil, nil }
