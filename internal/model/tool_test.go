package model_test

import (
	"testing"

	"github.com/maildive/maildive/internal/model"
	"github.com/stretchr/testify/require"
)

func TestParseToolKind(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"maigret", " Sherlock ", "HOLEHE"} {
		kind, err := model.ParseToolKind(s)
		require.NoError(t, err)
		require.Contains(t, model.Kinds(), kind)
	}

	_, err := model.ParseToolKind("recon-ng")
	require.ErrorContains(t, err, `unknown tool "recon-ng"`)
}
