// Package probe checks public signup pages for the tell-tale responses a
// registered email address provokes, plus the WHOIS record of the address
// domain. Everything here is best effort, a site that answers strangely
// yields an unknown finding, never an error.
package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/maildive/maildive/internal/log"
	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/parallel"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// concurrent site probes per Check call
	probeLimit = 4
	// bodies past this point cannot change the verdict
	maxBody = 512 << 10
)

// Words a signup form answers with when the address already has an account,
// and words meaning the address was accepted as new. Checked against the
// lowercased response body.
var (
	registeredWords = []string{
		"already exists", "already registered", "email taken",
		"email already", "account exists", "user exists", "bereits",
	}
	availableWords = []string{
		"success", "welcome", "verification sent", "check your email",
		"erfolgreich",
	}
)

// Prober drives the signup page checks for one configuration.
type Prober struct {
	client *http.Client
	ua     string
	sites  []Site
}

// New builds a Prober from the probes section of cfg. Missing settings fall
// back to the built-in catalog and defaults.
func New(cfg model.Config) *Prober {
	timeout := defaultTimeout
	ua := defaultUserAgent
	sites := DefaultSites()
	if p := cfg.Probes; p != nil {
		if p.Timeout != nil {
			if d, err := time.ParseDuration(*p.Timeout); err == nil {
				timeout = d
			}
		}
		if p.UserAgent != nil {
			ua = *p.UserAgent
		}
		sites = filterSites(sites, p.Sites)
	}
	return &Prober{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				// a redirect after the form post is itself an answer
				return http.ErrUseLastResponse
			},
		},
		ua:    ua,
		sites: sites,
	}
}

// WithSites replaces the probed site catalog. This method exists for unit
// testing only.
func (p *Prober) WithSites(sites ...Site) *Prober {
	p.sites = sites
	return p
}

// Check probes every configured site for email and returns the findings
// ordered by site name.
func (p *Prober) Check(ctx context.Context, email model.EmailAddr) []model.ProbeFinding {
	findings := make([]model.ProbeFinding, 0, len(p.sites))
	seq := parallel.Map(ctx, probeLimit, p.sites, func(ctx context.Context, s Site) (model.ProbeFinding, error) {
		return p.checkOne(ctx, email, s), nil
	})
	for f, err := range seq {
		if err != nil {
			continue
		}
		findings = append(findings, f)
	}
	slices.SortFunc(findings, func(a, b model.ProbeFinding) int {
		return strings.Compare(a.Site, b.Site)
	})
	return findings
}

// checkOne loads the signup page, submits the form with the probed address
// and classifies whatever comes back.
func (p *Prober) checkOne(ctx context.Context, email model.EmailAddr, site Site) model.ProbeFinding {
	ctx = log.ContextAttrs(ctx, slog.String("site", site.Name))
	finding := model.ProbeFinding{Site: site.Name, URL: site.SignupURL}
	started := time.Now()
	defer func() {
		finding.Elapsed = time.Since(started).Seconds()
	}()

	status, err := p.loadPage(ctx, site)
	if err != nil {
		finding.Status = model.ProbeError
		finding.Detail = err.Error()
		return finding
	}
	if status != http.StatusOK {
		finding.Status = model.ProbeError
		finding.Detail = fmt.Sprintf("signup page answered HTTP %d", status)
		return finding
	}

	status, body, err := p.submitForm(ctx, email, site)
	if err != nil {
		finding.Status = model.ProbeError
		finding.Detail = err.Error()
		return finding
	}
	switch status {
	case http.StatusOK, http.StatusFound,
		http.StatusBadRequest, http.StatusUnprocessableEntity:
		finding.Status, finding.Detail = classify(body)
	default:
		finding.Status = model.ProbeError
		finding.Detail = fmt.Sprintf("form post answered HTTP %d", status)
	}
	slog.DebugContext(ctx, "site probed", "status", string(finding.Status))
	return finding
}

func (p *Prober) loadPage(ctx context.Context, site Site) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, site.SignupURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", p.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		_ = resp.Body.Close()
	}()
	return resp.StatusCode, nil
}

func (p *Prober) submitForm(ctx context.Context, email model.EmailAddr, site Site) (int, string, error) {
	field := site.EmailField
	if field == "" {
		field = "email"
	}
	form := url.Values{
		field:      {email.String()},
		"password": {"TestPass123!"},
		"username": {fmt.Sprintf("user_%d", time.Now().Unix())},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, site.SignupURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("User-Agent", p.ua)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", site.SignupURL)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(body), nil
}

func classify(body string) (model.ProbeStatus, string) {
	lower := strings.ToLower(body)
	for _, w := range registeredWords {
		if strings.Contains(lower, w) {
			return model.ProbeRegistered, fmt.Sprintf("signup form matched %q", w)
		}
	}
	for _, w := range availableWords {
		if strings.Contains(lower, w) {
			return model.ProbeAvailable, fmt.Sprintf("signup form matched %q", w)
		}
	}
	return model.ProbeUnknown, "form accepted the address, no decisive answer"
}
