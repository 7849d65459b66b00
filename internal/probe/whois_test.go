package probe_test

import (
	"strings"
	"testing"

	"github.com/maildive/maildive/internal/probe"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	t.Parallel()
	raw := `Domain Name: EXAMPLE.COM
   Registry Domain ID: 2336799_DOMAIN_COM-VRSN
   Registrar WHOIS Server: whois.iana.org
   Registrar URL: http://res-dom.iana.org
   Updated Date: 2024-08-14T07:01:34Z
   Creation Date: 1995-08-14T04:00:00Z
   Registry Expiry Date: 2026-08-13T04:00:00Z
   Registrar: RESERVED-Internet Assigned Numbers Authority
   Registrar IANA ID: 376
   Domain Status: clientDeleteProhibited https://icann.org/epp#clientDeleteProhibited
   Name Server: A.IANA-SERVERS.NET
   Name Server: B.IANA-SERVERS.NET
   DNSSEC: signedDelegation
`
	rec := probe.ParseRecord(t.Context(), "example.com", raw)
	require.Equal(t, "example.com", rec.Domain)
	require.Contains(t, rec.Registrar, "Internet Assigned Numbers Authority")
	require.Contains(t, rec.Created, "1995-08-14")
	require.Contains(t, rec.Expires, "2026-08-13")
	require.Len(t, rec.NameServers, 2)
	require.Equal(t, "a.iana-servers.net", strings.ToLower(rec.NameServers[0]))
	require.NotEmpty(t, rec.Statuses)
}

func TestParseRecord_Fallback(t *testing.T) {
	t.Parallel()
	// irregular enough that only the line probes can pick it apart
	raw := "% punk registry, best effort output\r\n" +
		"Registrar: Example Registrar GmbH\r\n" +
		"Creation Date: 2001-01-01\r\n" +
		"Registry Expiry Date: 2030-01-01\r\n" +
		"Name Server: ns1.example.net\r\n" +
		"Name Server: ns2.example.net\r\n" +
		"Domain Status: active\r\n"

	rec := probe.ParseRecord(t.Context(), "example.net", raw)
	require.Equal(t, "example.net", rec.Domain)
	require.Equal(t, "Example Registrar GmbH", rec.Registrar)
	require.Equal(t, "2001-01-01", rec.Created)
	require.Equal(t, "2030-01-01", rec.Expires)
	require.Len(t, rec.NameServers, 2)
	require.Contains(t, rec.Statuses, "active")
}

func TestParseRecord_NotFound(t *testing.T) {
	t.Parallel()
	rec := probe.ParseRecord(t.Context(), "no-such-domain.example",
		"No match for domain \"NO-SUCH-DOMAIN.EXAMPLE\".")
	require.Equal(t, "no-such-domain.example", rec.Domain)
	require.Empty(t, rec.Registrar)
	require.Empty(t, rec.NameServers)
	require.Empty(t, rec.Statuses)
}
