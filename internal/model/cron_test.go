package model_test

import (
	"testing"
	"time"

	"github.com/maildive/maildive/internal/model"
	"github.com/stretchr/testify/require"
)

func TestParseCron(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		expr     string
		interval time.Duration
	}{
		{"* * * * *", time.Minute},
		{"*/30 * * * *", 30 * time.Minute},
		{"@hourly", time.Hour},
		{"@every 90s", 90 * time.Second},
	}
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			t.Parallel()
			interval, err := model.ParseCron(tc.expr)
			require.NoError(t, err)
			require.Equal(t, tc.interval, interval)
		})
	}
}

func TestParseCron_Fail(t *testing.T) {
	t.Parallel()
	for _, expr := range []string{"", "often", "61 * * * *", "* * * * * *"} {
		t.Run(expr, func(t *testing.T) {
			t.Parallel()
			_, err := model.ParseCron(expr)
			require.Error(t, err)
		})
	}
}
