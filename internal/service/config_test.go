package service_test

import (
	"strings"
	"testing"

	"github.com/maildive/maildive/internal/service"
	"github.com/spf13/viper"

	"github.com/stretchr/testify/require"
)

const serviceConfig = `
service:
  verbose: true
  log: stderr
`

func TestParseOptions(t *testing.T) {
	// can't be parallel as touches the viper package
	viper.SetConfigType("yaml")
	err := viper.ReadConfig(strings.NewReader(serviceConfig))
	require.NoError(t, err)

	opts, err := service.ParseOptions("service")
	require.NoError(t, err)
	require.True(t, opts.Verbose)
	require.Equal(t, "stderr", opts.Log)
}
