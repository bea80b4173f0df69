package model

// GlobalMaxResults is the hard cap on entries returned by the HTTP surface,
// regardless of the caller-supplied n.
const GlobalMaxResults = 100

// MaxSearchTextLength bounds the substring query text.
const MaxSearchTextLength = 200

// MaxContinuationTokenLength bounds a continuation token's on-wire length.
const MaxContinuationTokenLength = 200

// MaxPathLength bounds the requested file path.
const MaxPathLength = 1000

// Query is the only query variant LogServ ships today: a plain substring
// match. It is modeled as a struct rather than a bare string so that a
// future variant (regex, fielded predicates) can be added as a second field
// plus one branch in engine.MatchQuery without touching any caller.
type Query struct {
	Text string
}

// SearchOptions is the normalized parameter set for a single scan, whether
// built fresh from query parameters or decoded out of a continuation token.
type SearchOptions struct {
	MaxResults int
	Query      *Query
	ResumeFrom *int64
}

// LocalResult is the output of one local scan.
type LocalResult struct {
	Entries    []string
	ResumeFrom *int64
}
