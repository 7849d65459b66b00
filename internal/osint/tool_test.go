package osint_test

import (
	"strings"
	"testing"
	"time"

	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/osint"
	"github.com/stretchr/testify/require"
)

func TestSpecs(t *testing.T) {
	t.Parallel()
	yml := `
version: 0
tools:
  - name: holehe
    enabled: false
  - name: maigret
    timeout: 240s
    args: [--print-found, --pdf]
service: {}
`
	cfg, err := model.LoadConfig(strings.NewReader(yml))
	require.NoError(t, err)

	specs, err := osint.Specs(cfg)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	byKind := make(map[model.ToolKind]osint.Spec, len(specs))
	for _, s := range specs {
		byKind[s.Kind] = s
	}
	require.NotContains(t, byKind, model.ToolHolehe)

	maigret := byKind[model.ToolMaigret]
	require.Equal(t, 240*time.Second, maigret.Timeout)
	require.Equal(t, []string{"--print-found", "--pdf"}, maigret.Args)
	require.True(t, maigret.LocalPart)

	sherlock := byKind[model.ToolSherlock]
	require.Equal(t, 180*time.Second, sherlock.Timeout)
	require.Equal(t, "sherlock", sherlock.Command)
}

func TestDefaultSpecs(t *testing.T) {
	t.Parallel()
	specs := osint.DefaultSpecs()
	require.Len(t, specs, len(model.Kinds()))
	for i, spec := range specs {
		require.Equal(t, model.Kinds()[i], spec.Kind)
		require.NotZero(t, spec.Timeout)
		require.NotEmpty(t, spec.ProbeArgs)
	}
}
