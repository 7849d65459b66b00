package model_test

import (
	"strings"
	"testing"

	"github.com/maildive/maildive/internal/model"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig(t *testing.T) {
	yml := `
version: 0
tools:
  - name: maigret
    enabled: true
    timeout: 240s
  - name: holehe
    enabled: false
probes:
  enabled: true
  timeout: 15s
reports:
  dir: /tmp/reports
  formats: [json, pdf]
history:
  enabled: true
  path: /tmp/maildive.db
watch:
  schedule: "*/30 * * * *"
  queries:
    - jane.doe@example.com
  webhook:
    url: https://example.com/hook
    auth:
      type: static_token
      token: ABC123
service:
  verbose: true
  log: stderr
`
	cfg, err := model.LoadConfig(strings.NewReader(yml))
	require.NoError(t, err)
	require.Len(t, cfg.Tools, 2)
	require.Equal(t, "maigret", cfg.Tools[0].Name)
	require.NotNil(t, cfg.Tools[0].Timeout)
	require.Equal(t, "240s", *cfg.Tools[0].Timeout)
	require.NotNil(t, cfg.Tools[1].Enabled)
	require.False(t, *cfg.Tools[1].Enabled)
	require.NotNil(t, cfg.Probes)
	require.NotNil(t, cfg.Reports)
	require.Equal(t, []string{model.FormatJSON, model.FormatPDF}, cfg.Reports.Formats)
	require.NotNil(t, cfg.Watch)
	require.Equal(t, "*/30 * * * *", cfg.Watch.Schedule)
	require.NotNil(t, cfg.Watch.Webhook)
	require.Equal(t, "https://example.com/hook", cfg.Watch.Webhook.URL)
	require.Equal(t, model.AuthTypeStaticToken, cfg.Watch.Webhook.Auth.Type)
	require.Equal(t, "ABC123", cfg.Watch.Webhook.Auth.Token)
	require.NotNil(t, cfg.Service.Log)
	require.Equal(t, model.LogStderr, *cfg.Service.Log)
}

func TestLoadConfig_Fail(t *testing.T) {
	// Missing required auth.token for static_token
	yml := `
version: 0
watch:
  schedule: "0 8 * * *"
  webhook:
    url: https://example.com/hook
    auth:
      type: static_token
service: {}
`
	_, err := model.LoadConfig(strings.NewReader(yml))
	require.Error(t, err)
	require.EqualError(t, err, "#Config.watch.webhook.auth.token: incomplete value string")
}

func TestLoadConfig_UnknownTool(t *testing.T) {
	yml := `
version: 0
tools:
  - name: spiderfoot
service: {}
`
	_, err := model.LoadConfig(strings.NewReader(yml))
	require.Error(t, err)
}

func TestLoadConfig_BadTimeout(t *testing.T) {
	yml := `
version: 0
tools:
  - name: sherlock
    timeout: 3 minutes
service: {}
`
	_, err := model.LoadConfig(strings.NewReader(yml))
	require.ErrorContains(t, err, `tool "sherlock" timeout`)
}

func TestLoadConfig_BadSchedule(t *testing.T) {
	yml := `
version: 0
watch:
  schedule: every now and then
service: {}
`
	_, err := model.LoadConfig(strings.NewReader(yml))
	require.ErrorContains(t, err, "watch schedule")
}

func TestLoadConfig_DuplicateTool(t *testing.T) {
	yml := `
version: 0
tools:
  - name: holehe
  - name: holehe
service: {}
`
	_, err := model.LoadConfig(strings.NewReader(yml))
	require.ErrorContains(t, err, `tool "holehe" configured twice`)
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	raw, err := yaml.Marshal(model.DefaultConfig())
	require.NoError(t, err)

	cfg, err := model.LoadConfig(strings.NewReader(string(raw)))
	require.NoError(t, err)
	require.NotNil(t, cfg.Probes)
	require.NotNil(t, cfg.Probes.Enabled)
	require.True(t, *cfg.Probes.Enabled)
	require.NotNil(t, cfg.Reports)
	require.NotNil(t, cfg.Reports.Dir)
	require.Equal(t, "reports", *cfg.Reports.Dir)
	require.Equal(t, []string{model.FormatJSON, model.FormatText}, cfg.Reports.Formats)
}
