// Package gprofiler is a client for the g:Profiler g:GOSt functional
// enrichment service. The statistics (hypergeometric test with
// Benjamini-Hochberg correction) are computed by the service.
package gprofiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/vibe-ora/internal/ora"
)

// DefaultBaseURL is the public g:Profiler instance.
const DefaultBaseURL = "https://biit.cs.ut.ee/gprofiler"

const profilePath = "/api/gost/profile/"

// Request holds the per-query parameters.
type Request struct {
	Organism   string
	Sources    []ora.Source
	IncludeIEA bool
}

// Result is the decoded service response.
type Result struct {
	Terms          []ora.Term
	ServiceVersion string
	Unmapped       []string // input symbols the service could not resolve
}

// Client sends profile queries to a g:Profiler instance.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
	logger     *zap.Logger
}

// New creates a client for the instance at baseURL (DefaultBaseURL when
// empty). version is sent in the User-Agent.
func New(baseURL, version string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "vibe-ora/" + version,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		backoff: time.Second,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for request and retry messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetRetries configures bounded retry of transport failures. Attempt i
// (1-based) waits backoff*2^(i-1) first. The default is no retry.
func (c *Client) SetRetries(n int, backoff time.Duration) {
	c.retries = max(n, 0)
	c.backoff = backoff
}

// Profile runs one enrichment query for genes and returns every term the
// service reports, unfiltered.
func (c *Client) Profile(ctx context.Context, genes []string, req Request) (*Result, error) {
	if len(genes) == 0 {
		return nil, &ora.ConfigError{Field: "input", Msg: "gene list is empty"}
	}

	body, err := json.Marshal(profileRequest{
		Organism:                    req.Organism,
		Query:                       genes,
		Sources:                     ora.SourceCodes(req.Sources),
		UserThreshold:               1.0,
		SignificanceThresholdMethod: "fdr",
		NoIEA:                       !req.IncludeIEA,
		DomainScope:                 "annotated",
	})
	if err != nil {
		return nil, fmt.Errorf("encode profile request: %w", err)
	}

	var resp *profileResponse
	for attempt := 0; ; attempt++ {
		resp, err = c.post(ctx, body)
		if err == nil || !ora.IsRetryable(err) || attempt >= c.retries {
			break
		}
		wait := c.backoff << attempt
		c.logger.Warn("enrichment request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))
		if err := sleep(ctx, wait); err != nil {
			return nil, &ora.TransportError{Err: err}
		}
	}
	if err != nil {
		return nil, err
	}

	return c.convert(genes, resp), nil
}

func (c *Client) post(ctx context.Context, body []byte) (*profileResponse, error) {
	url := c.baseURL + profilePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("posting profile query", zap.String("url", url))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ora.TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ora.TransportError{StatusCode: resp.StatusCode, Err: errors.New(errorMessage(msg, resp.Status))}
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ora.ServiceError{StatusCode: resp.StatusCode, Msg: errorMessage(msg, resp.Status)}
	}

	var pr profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, &ora.ServiceError{Msg: fmt.Sprintf("decode profile response: %v", err)}
	}
	return &pr, nil
}

// errorMessage extracts the service's message from an error body.
func errorMessage(body []byte, status string) string {
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Message != "" {
		return er.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return status
}

// convert maps response records to ora.Term values.
func (c *Client) convert(genes []string, pr *profileResponse) *Result {
	res := &Result{
		ServiceVersion: pr.Meta.Version,
		Unmapped:       pr.Meta.GenesMetadata.Failed,
		Terms:          make([]ora.Term, 0, len(pr.Result)),
	}

	for _, r := range pr.Result {
		if r.PValue == nil || r.Native == "" {
			c.logger.Warn("skipping term without identifier or p-value", zap.String("term", r.Native))
			continue
		}
		adj := *r.PValue

		nominal := hypergeomSF(r.IntersectionSize, r.EffectiveDomainSize, r.TermSize, r.QuerySize)
		if math.IsNaN(nominal) || nominal > adj {
			nominal = adj
		}

		res.Terms = append(res.Terms, ora.Term{
			ID:                  r.Native,
			Name:                r.Name,
			Source:              ora.Source(r.Source),
			PValue:              nominal,
			AdjustedPValue:      adj,
			IntersectionSize:    r.IntersectionSize,
			TermSize:            r.TermSize,
			QuerySize:           r.QuerySize,
			EffectiveDomainSize: r.EffectiveDomainSize,
			Precision:           r.Precision,
			Recall:              r.Recall,
			Genes:               hitGenes(genes, pr.Meta.GenesMetadata.Query[r.Query], r.Intersections),
			Description:         r.Description,
		})
	}
	return res
}

// hitGenes returns the input symbols with evidence for a term. The
// intersections slice is aligned with q.ENSGs.
func hitGenes(genes []string, q queryMetadata, intersections [][]string) []string {
	if len(intersections) == 0 {
		return nil
	}
	hit := make(map[string]bool)
	for i, ev := range intersections {
		if len(ev) > 0 && i < len(q.ENSGs) {
			hit[q.ENSGs[i]] = true
		}
	}

	var out []string
	for _, g := range genes {
		for _, id := range q.Mapping[g] {
			if hit[id] {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
