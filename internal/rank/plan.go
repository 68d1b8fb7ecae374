package rank

import (
	"context"
	"strings"
)

// Strategy says who computes the global order of a result set.
type Strategy int

const (
	// NativeSort lets storage order, skip and limit.
	NativeSort Strategy = iota
	// DelegatedRank orders by an id sequence computed outside storage.
	DelegatedRank
)

func (s Strategy) String() string {
	if s == DelegatedRank {
		return "delegated"
	}
	return "native"
}

// Source names where a delegated order comes from.
type Source string

const (
	SourceMostFavorited Source = "mostFavorited"
	SourceMostViewed    Source = "mostViewed"
	SourceRelevance     Source = "relevance"
	SourceMetadataOrder Source = "metadata"
	SourceUserRole      Source = "userRole"
	SourceUserName      Source = "userName"
)

// SortKey is one native ordering column.
type SortKey struct {
	Column string
	Desc   bool
}

// Token is one comma-separated element of a sort specification.
type Token struct {
	Field string
	Desc  bool
	Raw   string
}

// Ranked is the minimal view of a primary record a Ranker needs.
type Ranked struct {
	ID      string
	OwnerID string
}

// Ranker computes an order from the materialised result set.
type Ranker interface {
	Rank(ctx context.Context, records []Ranked) ([]string, error)
}

// Plan is the outcome of resolving a sort specification.
//
// For DelegatedRank exactly one of IDs or Ranker is set: IDs when the order
// was supplied by a collaborator up front, Ranker when it can only be
// computed once the full match set is known.
type Plan struct {
	Strategy Strategy
	Native   []SortKey
	Source   Source
	Desc     bool
	IDs      []string
	Ranker   Ranker
}

// Parse splits a sort specification into tokens. `-` means descending,
// `+` or no prefix ascending. Empty tokens are skipped.
func Parse(spec string) []Token {
	var out []Token
	for _, raw := range strings.Split(spec, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t := Token{Raw: raw}
		switch raw[0] {
		case '-':
			t.Desc = true
			raw = raw[1:]
		case '+':
			raw = raw[1:]
		}
		t.Field = strings.TrimSpace(raw)
		if t.Field == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SearchKeyword returns the token, as written by the caller, that the search
// collaborator must order by, or "" when the sort does not ask for relevance
// or metadata order.
func SearchKeyword(tokens []Token) string {
	for _, t := range tokens {
		if t.Field == keywordRelevance || t.Field == keywordMetadata {
			return t.Raw
		}
	}
	return ""
}
