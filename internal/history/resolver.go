package history

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/diogo/chatweb/internal/models"
)

// SessionLister lists a user's sessions, newest first; api.Client satisfies it
type SessionLister interface {
	ListSessions(ctx context.Context, userID models.UserID) ([]models.SessionInfo, error)
}

// Resolver resolves user-friendly references to session ids
type Resolver struct {
	lister SessionLister
	userID models.UserID
}

// NewResolver creates a resolver over userID's sessions
func NewResolver(lister SessionLister, userID models.UserID) *Resolver {
	return &Resolver{lister: lister, userID: userID}
}

// Resolve converts a reference to a session id
//
// Supported references:
//   - "@last" - most recently updated session
//   - "@first" - oldest session
//   - "1", "2", "3" - by position in the listing (1-based)
//   - "#42" - session id
//   - "substring" - match on summary text (error if several match)
func (r *Resolver) Resolve(ctx context.Context, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("empty reference")
	}

	sessions, err := r.lister.ListSessions(ctx, r.userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return 0, fmt.Errorf("no sessions found")
	}

	switch strings.ToLower(ref) {
	case "@last":
		return sessions[0].ID, nil
	case "@first":
		return sessions[len(sessions)-1].ID, nil
	}

	if strings.HasPrefix(ref, "#") {
		id, err := strconv.ParseInt(ref[1:], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid session id %q", ref)
		}
		for _, s := range sessions {
			if s.ID == id {
				return id, nil
			}
		}
		return 0, fmt.Errorf("session not found: %s", ref)
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(sessions) {
			return 0, fmt.Errorf("index %d out of range (1-%d)", index, len(sessions))
		}
		return sessions[index-1].ID, nil
	}

	refLower := strings.ToLower(ref)
	var matches []models.SessionInfo
	for _, s := range sessions {
		if strings.Contains(strings.ToLower(s.SummaryText()), refLower) {
			matches = append(matches, s)
		}
	}

	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("no session matching '%s'", ref)
	case 1:
		return matches[0].ID, nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = fmt.Sprintf("#%d", m.ID)
		}
		return 0, fmt.Errorf("multiple sessions match '%s': %s. Use an id or be more specific",
			ref, strings.Join(ids, ", "))
	}
}

// ListAliases returns information about supported references
func ListAliases() string {
	return `Supported references:
  @last          Most recently updated session
  @first         Oldest session
  1, 2, 3        By position (1-based, from most recent)
  #42            Session id
  "text"         Search by summary text`
}
