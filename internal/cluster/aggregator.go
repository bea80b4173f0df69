// Package cluster implements the Aggregator: fans a validated request out
// to a fixed list of peer LogServ instances and merges their outcomes.
package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coffersTech/logserv/internal/model"
	"github.com/coffersTech/logserv/internal/token"
	"github.com/coffersTech/logserv/internal/validate"
)

// GlobalTimeout bounds the whole fan-out: peers still in flight past this
// deadline are aborted and demoted to a messages[] entry.
const GlobalTimeout = 5 * time.Second

// Aggregator holds the ordered, read-only list of peer hosts a query
// fans out to.
type Aggregator struct {
	peers  []string
	client *http.Client
}

// NewAggregator builds an Aggregator over peers, in the order they should
// appear in merged responses.
func NewAggregator(peers []string) *Aggregator {
	return &Aggregator{
		peers:  peers,
		client: &http.Client{},
	}
}

// peerTask is one peer's planned outbound request: either a fresh search
// (host + normalized n/s) or a continuation (host + that peer's own cont).
type peerTask struct {
	host string
	cont string // non-empty iff this is a continuation leg
}

// Search validates r, fans it out to every relevant peer under a shared
// deadline, and merges the outcomes into an AggregatorResult. It never
// returns an error for a peer-level failure; those are swept into Result.
func (a *Aggregator) Search(r *http.Request, baseDir string) (model.AggregatorResult, error) {
	req, err := validate.ParseRequest(r.Method, r.URL.Path, r.URL.Query(), baseDir)
	if err != nil {
		return model.AggregatorResult{}, err
	}

	tasks, freshN, freshS, err := a.plan(req)
	if err != nil {
		return model.AggregatorResult{}, err
	}

	ctx, cancel := context.WithTimeout(r.Context(), GlobalTimeout)
	defer cancel()

	outcomes := make([]peerOutcome, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			outcomes[i] = a.fetch(gctx, t, r.URL.Path, freshN, freshS)
			return nil
		})
	}
	// fetch always recovers into an outcome rather than failing the group,
	// so Wait never actually returns an error here.
	_ = g.Wait()

	return merge(outcomes), nil
}

// plan decides, per the aggregator's per-request protocol, which peers to
// contact and with what parameters: every configured peer on a fresh
// search, or only the peers named in a continuation's mux token.
func (a *Aggregator) plan(req validate.Request) (tasks []peerTask, n, s string, err error) {
	if req.Cont == "" {
		opts, err := validate.NormalizeSearchOptions(req.N, req.S)
		if err != nil {
			return nil, "", "", err
		}
		tasks = make([]peerTask, len(a.peers))
		for i, host := range a.peers {
			tasks[i] = peerTask{host: host}
		}
		n = fmt.Sprintf("%d", opts.MaxResults)
		if opts.Query != nil {
			s = opts.Query.Text
		}
		return tasks, n, s, nil
	}

	secondary, err := token.DecodeAggregator(req.Cont)
	if err != nil {
		return nil, "", "", err
	}
	tasks = make([]peerTask, len(secondary))
	for i, st := range secondary {
		tasks[i] = peerTask{host: st.Host, cont: st.Cont}
	}
	return tasks, "", "", nil
}

type peerOutcome struct {
	host    string
	entries []string
	cont    string
	message string // non-empty iff this peer contributed to messages[]
}

// fetch issues one peer's GET and classifies the outcome: success,
// peer-reported error, or transport/timeout failure. It never returns a
// non-nil error; every failure mode is captured in the returned outcome.
func (a *Aggregator) fetch(ctx context.Context, t peerTask, path, n, s string) peerOutcome {
	u := buildPeerURL(t, path, n, s)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return peerOutcome{host: t.host, message: "Unknown error occured."}
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return peerOutcome{host: t.host, message: ctx.Err().Error()}
		}
		return peerOutcome{host: t.host, message: err.Error()}
	}
	defer resp.Body.Close()

	var body struct {
		Entries []string `json:"entries"`
		Cont    string   `json:"cont"`
		Error   string   `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return peerOutcome{host: t.host, message: "Unknown error occured."}
	}

	if resp.StatusCode != http.StatusOK {
		msg := body.Error
		if msg == "" {
			msg = "Unknown error occured."
		}
		return peerOutcome{host: t.host, message: msg}
	}

	return peerOutcome{host: t.host, entries: body.Entries, cont: body.Cont}
}

// buildPeerURL points the inbound request's own path at the peer's host
// (which may carry a port), always over plain http; see the open question
// on peer URL construction recorded in DESIGN.md.
func buildPeerURL(t peerTask, path, n, s string) string {
	u := &url.URL{Scheme: "http", Host: t.host, Path: path}
	q := url.Values{}
	if t.cont != "" {
		q.Set("cont", t.cont)
	} else {
		if n != "" {
			q.Set("n", n)
		}
		if s != "" {
			q.Set("s", s)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// merge concatenates peer outcomes in peer order.
func merge(outcomes []peerOutcome) model.AggregatorResult {
	result := model.AggregatorResult{
		Messages: []model.AggregatorMessage{},
		Entries:  []model.AggregatorEntry{},
	}
	var secondary []model.SecondaryToken

	for _, o := range outcomes {
		if o.message != "" {
			result.Messages = append(result.Messages, model.AggregatorMessage{Host: o.host, Message: o.message})
		}
		for _, e := range o.entries {
			result.Entries = append(result.Entries, model.AggregatorEntry{Host: o.host, Entry: e})
		}
		if o.cont != "" {
			secondary = append(secondary, model.SecondaryToken{Host: o.host, Cont: o.cont})
		}
	}

	if len(secondary) > 0 {
		cont := token.EncodeAggregator(secondary)
		result.Cont = &cont
	}
	return result
}
