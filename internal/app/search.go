package app

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"mythoughts/internal/backend"
)

// prefixSentinel is appended to a prefix to form the exclusive upper
// bound of a range query (a high private-use code point).
const prefixSentinel = "\uf8ff"

// FilterThoughts returns the thoughts whose title, description or tag
// contains query, ignoring case. A blank query returns feed unchanged.
func FilterThoughts(feed []Thought, query string) []Thought {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return feed
	}
	out := make([]Thought, 0, len(feed))
	for _, t := range feed {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(strings.ToLower(t.Tag), q) {
			out = append(out, t)
		}
	}
	return out
}

// SearchResult is the author lookup view model. It replaces the feed
// display until cleared.
type SearchResult struct {
	Query    string
	User     Profile
	Matches  []Profile
	Thoughts []Thought
}

// AuthorSearch looks up a user by email prefix and lists their thoughts.
type AuthorSearch struct {
	store backend.DocumentStore
	log   *zap.Logger

	mu     sync.Mutex
	result *SearchResult
	seq    uint64
}

func NewAuthorSearch(store backend.DocumentStore, log *zap.Logger) *AuthorSearch {
	return &AuthorSearch{store: store, log: log}
}

// Lookup runs the two-step query. The first profile in store order is the
// designated match. ErrNotFound means no profile matched; the previous
// result is cleared in that case. A blank query is Clear.
func (s *AuthorSearch) Lookup(ctx context.Context, query string) (SearchResult, error) {
	q := strings.TrimSpace(query)
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	if q == "" {
		s.Clear()
		return SearchResult{}, nil
	}

	docs, err := s.store.RangeQuery(ctx, backend.Users, "email", q, q+prefixSentinel)
	if err != nil {
		s.log.Error("user search failed", zap.String("query", q), zap.Error(err))
		return SearchResult{}, backendErr("search users", err)
	}

	matches := make([]Profile, 0, len(docs))
	for _, d := range docs {
		p, err := decodeProfile(d)
		if err != nil {
			s.log.Warn("skipping undecodable profile", zap.String("id", d.ID), zap.Error(err))
			continue
		}
		matches = append(matches, p)
	}
	if len(matches) == 0 {
		s.settle(seq, nil)
		return SearchResult{Query: q}, ErrNotFound
	}

	user := matches[0]
	tdocs, err := s.store.QueryWhere(ctx, backend.Thoughts, fieldCreatedByID, user.ID, feedOrder)
	if err != nil {
		s.log.Error("author thoughts query failed", zap.String("uid", user.ID), zap.Error(err))
		return SearchResult{}, backendErr("search thoughts", err)
	}
	thoughts := make([]Thought, 0, len(tdocs))
	for _, d := range tdocs {
		t, err := decodeThought(d)
		if err != nil {
			s.log.Warn("skipping undecodable thought", zap.String("id", d.ID), zap.Error(err))
			continue
		}
		thoughts = append(thoughts, t)
	}

	res := SearchResult{Query: q, User: user, Matches: matches, Thoughts: thoughts}
	s.settle(seq, &res)
	return res, nil
}

// settle stores r unless a newer lookup or a Clear started meanwhile.
func (s *AuthorSearch) settle(seq uint64, r *SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.seq {
		s.result = r
	}
}

// Clear restores the canonical feed display.
func (s *AuthorSearch) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.result = nil
}

// Active reports whether a search result replaces the feed.
func (s *AuthorSearch) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil
}

// Result returns the current search result, if any.
func (s *AuthorSearch) Result() (SearchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return SearchResult{}, false
	}
	return *s.result, true
}

// Displayed picks what the feed area shows: the search result when one is
// active, the live feed otherwise.
func (s *AuthorSearch) Displayed(feed []Thought) []Thought {
	if r, ok := s.Result(); ok {
		return r.Thoughts
	}
	return feed
}
