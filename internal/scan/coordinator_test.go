package scan_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/maildive/maildive/internal/dispatch"
	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/probe"
	"github.com/maildive/maildive/internal/scan"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeTool answers like an external tool without forking anything.
type fakeTool struct {
	kind      model.ToolKind
	available bool
	delay     time.Duration
	fail      bool

	mu   sync.Mutex
	seen []string
}

var _ dispatch.Adapter = (*fakeTool)(nil)

func (f *fakeTool) Kind() model.ToolKind {
	return f.kind
}

func (f *fakeTool) Probe(_ context.Context) model.ToolAvailability {
	return model.ToolAvailability{Tool: f.kind, Available: f.available}
}

func (f *fakeTool) Run(_ context.Context, job model.ScanJob) model.ToolRunResult {
	f.mu.Lock()
	f.seen = append(f.seen, job.Query)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return model.ToolRunResult{
		ScanID:    job.ScanID,
		Tool:      f.kind,
		Query:     job.Query,
		Succeeded: !f.fail,
		Stdout:    "ok",
	}
}

// usernameTool is a fakeTool which wants the local part and announces its run
// budget, the way the osint adapters do.
type usernameTool struct {
	fakeTool
	budget time.Duration
}

func (u *usernameTool) LocalPart() bool {
	return true
}

func (u *usernameTool) Timeout() time.Duration {
	return u.budget
}

func offConfig() model.Config {
	off := false
	return model.Config{
		Probes: &model.Probes{Enabled: &off},
		Whois:  &model.Whois{Enabled: &off},
	}
}

func TestScan(t *testing.T) {
	t.Parallel()
	synctest.Test(t, func(t *testing.T) {
		maigret := &usernameTool{
			fakeTool: fakeTool{kind: model.ToolMaigret, available: true, delay: 10 * time.Millisecond},
			budget:   time.Minute,
		}
		sherlock := &fakeTool{kind: model.ToolSherlock}
		holehe := &fakeTool{kind: model.ToolHolehe, available: true, delay: 5 * time.Millisecond}

		c, err := scan.New(offConfig())
		require.NoError(t, err)
		c = c.WithAdapters(maigret, sherlock, holehe)

		require.NoError(t, c.Start(t.Context()))
		defer c.Shutdown(t.Context())

		rep, err := c.Scan(t.Context(), model.MustParseEmail("jane.doe@example.com"))
		require.NoError(t, err)

		_, err = uuid.Parse(rep.SessionID)
		require.NoError(t, err)
		require.Equal(t, "jane.doe@example.com", rep.Email.String())
		require.Equal(t, 10*time.Millisecond, rep.Finished.Sub(rep.Started))

		require.Len(t, rep.Availability, 3)
		require.True(t, rep.Availability[model.ToolMaigret].Available)
		require.False(t, rep.Availability[model.ToolSherlock].Available)

		require.Len(t, rep.Tools, 3)

		mg := rep.Tools[model.ToolMaigret]
		require.False(t, mg.Skipped)
		require.True(t, mg.Result.Succeeded)
		require.Equal(t, "jane.doe", mg.Result.Query)
		require.InDelta(t, 0.01, mg.Elapsed, 1e-9)

		hh := rep.Tools[model.ToolHolehe]
		require.False(t, hh.Skipped)
		require.Equal(t, "jane.doe@example.com", hh.Result.Query)

		sh := rep.Tools[model.ToolSherlock]
		require.True(t, sh.Skipped)
		require.Contains(t, sh.SkipNote, "tool unavailable")

		require.Empty(t, rep.Probes)
		require.Nil(t, rep.Whois)
		require.Equal(t, 2, rep.SucceededTools())
	})
}

func TestScan_MergesProbes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = io.WriteString(w, "that account already exists")
			return
		}
		_, _ = io.WriteString(w, "<form>sign up</form>")
	}))
	defer srv.Close()

	cfg := offConfig()
	probesOn := true
	cfg.Probes.Enabled = &probesOn

	holehe := &fakeTool{kind: model.ToolHolehe, available: true}
	c, err := scan.New(cfg)
	require.NoError(t, err)
	c = c.WithAdapters(holehe).
		WithProber(probe.New(cfg).WithSites(probe.Site{
			Name:       "example",
			SignupURL:  srv.URL,
			EmailField: "email",
		}))

	require.NoError(t, c.Start(t.Context()))
	defer c.Shutdown(t.Context())

	rep, err := c.Scan(t.Context(), model.MustParseEmail("jane.doe@example.com"))
	require.NoError(t, err)

	require.Len(t, rep.Probes, 1)
	require.Equal(t, "example", rep.Probes[0].Site)
	require.Equal(t, model.ProbeRegistered, rep.Probes[0].Status)
	require.Equal(t, []string{"example"}, rep.RegisteredSites())
	require.Nil(t, rep.Whois)
	require.True(t, rep.Tools[model.ToolHolehe].Result.Succeeded)
}

func TestScan_Errors(t *testing.T) {
	t.Parallel()

	c, err := scan.New(offConfig())
	require.NoError(t, err)
	c = c.WithAdapters(&fakeTool{kind: model.ToolHolehe, available: true})

	_, err = c.Scan(t.Context(), model.EmailAddr{})
	require.ErrorIs(t, err, model.ErrInvalidEmail)

	_, err = c.Scan(t.Context(), model.MustParseEmail("jane@example.com"))
	require.ErrorContains(t, err, "not running")

	require.NoError(t, c.Start(t.Context()))
	c.Shutdown(t.Context())

	_, err = c.Scan(t.Context(), model.MustParseEmail("jane@example.com"))
	require.ErrorContains(t, err, "not running")
}

func TestNew_BadOverride(t *testing.T) {
	t.Parallel()

	cfg := offConfig()
	cfg.Tools = []model.ToolConfig{{Name: "spiderfoot"}}
	_, err := scan.New(cfg)
	require.ErrorContains(t, err, `unknown tool "spiderfoot"`)
}
