// Package token implements the Continuation Codec: the opaque,
// base64-of-JSON tokens that let a client resume a local scan or an
// aggregator fan-out at its earliest unread position.
//
// Decoding parses untrusted token JSON defensively with a pooled
// fastjson.Parser, checking each field's Type() before trusting it,
// rather than unmarshaling straight into a Go struct and hoping for the
// best.
package token

import (
	"encoding/base64"
	"encoding/json"

	"github.com/valyala/fastjson"

	"github.com/coffersTech/logserv/internal/apierr"
	"github.com/coffersTech/logserv/internal/model"
)

var parserPool fastjson.ParserPool

// CheckLength rejects an oversized token before any decode attempt, per
// the on-wire length cap.
func CheckLength(tok string) error {
	if len(tok) > model.MaxContinuationTokenLength {
		return apierr.Validationf("continuation token exceeds maximum length")
	}
	return nil
}

// EncodeLocal mints the token for a single-host continuation: a JSON array
// of [resumeFrom, maxResults, query] where query is null or {"text": ...}.
func EncodeLocal(resumeFrom int64, maxResults int, q *model.Query) string {
	var queryJSON any
	if q != nil {
		queryJSON = map[string]string{"text": q.Text}
	}
	raw, _ := json.Marshal([]any{resumeFrom, maxResults, queryJSON})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeLocal parses a local continuation token, rejecting anything that
// is not an array of exactly three elements shaped as the encoder produces.
func DecodeLocal(tok string) (resumeFrom int64, maxResults int, q *model.Query, err error) {
	if err := CheckLength(tok); err != nil {
		return 0, 0, nil, err
	}

	raw, decErr := base64.RawURLEncoding.DecodeString(tok)
	if decErr != nil {
		return 0, 0, nil, invalidToken()
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, perr := p.ParseBytes(raw)
	if perr != nil {
		return 0, 0, nil, invalidToken()
	}

	arr, aerr := v.Array()
	if aerr != nil || len(arr) != 3 {
		return 0, 0, nil, invalidToken()
	}

	resumeFrom, err0 := arr[0].Int64()
	maxResults, err1 := arr[1].Int()
	if err0 != nil || err1 != nil {
		return 0, 0, nil, invalidToken()
	}

	switch arr[2].Type() {
	case fastjson.TypeNull:
		q = nil
	case fastjson.TypeObject:
		if !arr[2].Exists("text") || arr[2].Get("text").Type() != fastjson.TypeString {
			return 0, 0, nil, invalidToken()
		}
		q = &model.Query{Text: string(arr[2].GetStringBytes("text"))}
	default:
		return 0, 0, nil, invalidToken()
	}

	return resumeFrom, maxResults, q, nil
}

// EncodeAggregator mints the multiplexed aggregator token: base64 of a
// JSON array of {host, cont} objects, one per peer still paginating.
func EncodeAggregator(tokens []model.SecondaryToken) string {
	raw, _ := json.Marshal(tokens)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeAggregator parses a multiplexed aggregator token, rejecting any
// element that is not an object with string-typed host and cont fields.
func DecodeAggregator(tok string) ([]model.SecondaryToken, error) {
	if err := CheckLength(tok); err != nil {
		return nil, err
	}

	raw, decErr := base64.RawURLEncoding.DecodeString(tok)
	if decErr != nil {
		return nil, invalidToken()
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, perr := p.ParseBytes(raw)
	if perr != nil {
		return nil, invalidToken()
	}

	arr, aerr := v.Array()
	if aerr != nil {
		return nil, invalidToken()
	}

	out := make([]model.SecondaryToken, 0, len(arr))
	for _, elem := range arr {
		if elem.Type() != fastjson.TypeObject {
			return nil, invalidToken()
		}
		if !elem.Exists("host") || !elem.Exists("cont") {
			return nil, invalidToken()
		}
		if elem.Get("host").Type() != fastjson.TypeString || elem.Get("cont").Type() != fastjson.TypeString {
			return nil, invalidToken()
		}
		out = append(out, model.SecondaryToken{
			Host: string(elem.GetStringBytes("host")),
			Cont: string(elem.GetStringBytes("cont")),
		})
	}
	return out, nil
}

func invalidToken() error {
	return apierr.Validationf("invalid continuation token")
}
