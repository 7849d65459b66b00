package model_test

import (
	"testing"

	"github.com/maildive/maildive/internal/model"
	"github.com/stretchr/testify/require"
)

func TestParseEmail(t *testing.T) {
	t.Parallel()
	e, err := model.ParseEmail(" jane.doe@example.com ")
	require.NoError(t, err)
	require.Equal(t, "jane.doe@example.com", e.String())
	require.Equal(t, "jane.doe", e.Local())
	require.Equal(t, "example.com", e.Domain())
	require.Equal(t, "jane_doe_at_example_com", e.Slug())
	require.False(t, e.IsZero())
}

func TestParseEmail_Fail(t *testing.T) {
	t.Parallel()
	for _, s := range []string{
		"",
		"jane.doe",
		"@example.com",
		"jane@",
		"jane@localhost",
		"jane doe@example.com",
	} {
		t.Run(s, func(t *testing.T) {
			t.Parallel()
			_, err := model.ParseEmail(s)
			require.ErrorIs(t, err, model.ErrInvalidEmail)
		})
	}
}

func TestEmailText(t *testing.T) {
	t.Parallel()
	e := model.MustParseEmail("jane.doe@example.com")
	text, err := e.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "jane.doe@example.com", string(text))

	var parsed model.EmailAddr
	require.True(t, parsed.IsZero())
	require.NoError(t, parsed.UnmarshalText(text))
	require.Equal(t, e, parsed)

	require.Error(t, parsed.UnmarshalText([]byte("not-an-email")))
}
