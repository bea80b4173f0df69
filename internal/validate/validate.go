// Package validate implements the Request Validator/Normalizer: it turns
// raw HTTP method/path/query values into the shapes the Local Handler and
// Aggregator can safely hand to the Continuation Codec and Search Engine.
package validate

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coffersTech/logserv/internal/apierr"
	"github.com/coffersTech/logserv/internal/model"
)

// Request is the validated, not-yet-fully-normalized shape of an inbound
// GET: either {Path, Cont} for a continuation page, or {Path, N, S} for a
// fresh search.
type Request struct {
	Path string
	Cont string
	N    string
	S    string
}

// ResolvePath joins urlPath onto baseDir and rejects anything that would
// escape baseDir or exceed MAX_PATH_LENGTH. It does not check that the
// file exists; that is the Chunk Reader's job.
func ResolvePath(urlPath, baseDir string) (string, error) {
	if urlPath == "" || len(urlPath) > model.MaxPathLength {
		return "", apierr.NotFoundErr()
	}

	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", apierr.NotFoundErr()
	}
	resolved, err := filepath.Abs(filepath.Join(base, urlPath))
	if err != nil {
		return "", apierr.NotFoundErr()
	}

	if resolved != base && !strings.HasPrefix(resolved, base+string(filepath.Separator)) {
		return "", apierr.NotFoundErr()
	}
	return resolved, nil
}

// ParseRequest validates the HTTP method and query-parameter shape:
// GET only, cont mutually exclusive with n/s, each within its length cap.
func ParseRequest(method, urlPath string, q url.Values, baseDir string) (Request, error) {
	if method != http.MethodGet {
		return Request{}, apierr.NotFoundErr()
	}

	path, err := ResolvePath(urlPath, baseDir)
	if err != nil {
		return Request{}, err
	}

	cont := q.Get("cont")
	if cont != "" {
		if len(cont) > model.MaxContinuationTokenLength {
			return Request{}, apierr.Validationf("continuation token exceeds maximum length")
		}
		if q.Get("n") != "" || q.Get("s") != "" {
			return Request{}, apierr.Validationf("continuation may not be combined with n or s")
		}
		return Request{Path: path, Cont: cont}, nil
	}

	s := q.Get("s")
	if len(s) > model.MaxSearchTextLength {
		return Request{}, apierr.Validationf("search text exceeds maximum length")
	}

	return Request{Path: path, N: q.Get("n"), S: s}, nil
}

// NormalizeSearchOptions builds SearchOptions from the raw n/s parameters
// of a fresh (non-continuation) request: n must parse as an integer >= 1
// when present, and is clamped to GlobalMaxResults; absent n defaults to
// GlobalMaxResults.
func NormalizeSearchOptions(n, s string) (model.SearchOptions, error) {
	max := model.GlobalMaxResults
	if n != "" {
		v, err := strconv.Atoi(n)
		if err != nil || v < 1 {
			return model.SearchOptions{}, apierr.Validationf("n must be an integer greater than or equal to 1")
		}
		max = v
	}
	if max > model.GlobalMaxResults {
		max = model.GlobalMaxResults
	}

	var q *model.Query
	if s != "" {
		q = &model.Query{Text: s}
	}

	return model.SearchOptions{MaxResults: max, Query: q}, nil
}

// ClampSearchOptions re-applies the defensive bounds a continuation token
// is supposed to already satisfy, matching the validator's second
// normalization pass over decoded SearchOptions.
func ClampSearchOptions(opts model.SearchOptions) model.SearchOptions {
	if opts.MaxResults < 1 || opts.MaxResults > model.GlobalMaxResults {
		opts.MaxResults = model.GlobalMaxResults
	}
	if opts.Query != nil && len(opts.Query.Text) > model.MaxSearchTextLength {
		text := opts.Query.Text[:model.MaxSearchTextLength]
		opts.Query = &model.Query{Text: text}
	}
	return opts
}
