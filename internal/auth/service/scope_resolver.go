package service

import (
	"context"
	"slices"
)

// staticScopeResolver returns the same scope list for every username.
type staticScopeResolver struct {
	scopes []string
}

// NewStaticScopeResolver creates a ScopeResolver that answers with a fixed
// scope list. With no arguments the list is empty, which is the default until
// a real authorization model is attached.
func NewStaticScopeResolver(scopes ...string) ScopeResolver {
	return &staticScopeResolver{scopes: scopes}
}

// Resolve returns a copy of the configured scopes so callers cannot mutate
// the resolver's state.
func (s *staticScopeResolver) Resolve(_ context.Context, _ string) ([]string, error) {
	if len(s.scopes) == 0 {
		return []string{}, nil
	}
	return slices.Clone(s.scopes), nil
}
