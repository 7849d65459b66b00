package probe

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"github.com/maildive/maildive/internal/model"
)

// whoisTimeout bounds the registry query.
const whoisTimeout = 10 * time.Second

// Lookup fetches the WHOIS record of domain and digests it into the handful
// of fields the report shows.
func Lookup(ctx context.Context, domain string) (*model.DomainRecord, error) {
	c := whois.NewClient()
	c.SetTimeout(whoisTimeout)
	raw, err := c.Whois(domain)
	if err != nil {
		return nil, fmt.Errorf("whois %s: %w", domain, err)
	}
	return ParseRecord(ctx, domain, raw), nil
}

// ParseRecord digests a raw WHOIS answer. When the structured parser gives
// up, the shown fields are grabbed with regular expressions instead, WHOIS
// output is too irregular to insist on one format.
func ParseRecord(ctx context.Context, domain, raw string) *model.DomainRecord {
	rec := &model.DomainRecord{Domain: domain}

	parsed, err := whoisparser.Parse(raw)
	if err == nil {
		if parsed.Registrar != nil {
			rec.Registrar = parsed.Registrar.Name
		}
		if parsed.Domain != nil {
			rec.Created = parsed.Domain.CreatedDate
			rec.Expires = parsed.Domain.ExpirationDate
			rec.NameServers = parsed.Domain.NameServers
			rec.Statuses = parsed.Domain.Status
		}
		return rec
	}
	slog.DebugContext(ctx, "whois parser gave up, using the regex fallback",
		"domain", domain, "error", err)

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	rec.Registrar = firstMatch(text,
		`Registrar:\s*(.+)`,
		`Registrar Name:\s*(.+)`,
		`Sponsoring Registrar:\s*(.+)`)
	rec.Created = firstMatch(text,
		`Creation Date:\s*(.+)`,
		`Created On:\s*(.+)`,
		`Registered On:\s*(.+)`)
	rec.Expires = firstMatch(text,
		`Registry Expiry Date:\s*(.+)`,
		`Registrar Registration Expiration Date:\s*(.+)`,
		`Expiration Date:\s*(.+)`)
	rec.NameServers = allMatches(text, `Name Server:\s*(.+)`)
	rec.Statuses = allMatches(text, `Domain Status:\s*(.+)`)
	return rec
}

// firstMatch tries patterns in order and returns the first submatch.
func firstMatch(text string, patterns ...string) string {
	for _, p := range patterns {
		re := regexp.MustCompile(`(?im)` + p)
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// allMatches returns every deduplicated submatch of pattern.
func allMatches(text, pattern string) []string {
	re := regexp.MustCompile(`(?im)` + pattern)
	seen := make(map[string]struct{})
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		v := strings.TrimSpace(m[1])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
