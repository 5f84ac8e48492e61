package validators

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=3", nil)
	value, err := ParseQueryInt(r, "page", 1, 1, 1000)
	require.NoError(t, err)
	require.Equal(t, 3, value)

	r = httptest.NewRequest("GET", "/", nil)
	value, err = ParseQueryInt(r, "page", 1, 1, 1000)
	require.NoError(t, err)
	require.Equal(t, 1, value)
}

func TestParseQueryIntRejectsBadInput(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=abc", nil)
	_, err := ParseQueryInt(r, "page", 1, 1, 1000)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	r = httptest.NewRequest("GET", "/?page=5000", nil)
	_, err = ParseQueryInt(r, "page", 1, 1, 1000)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestParseQueryInt64(t *testing.T) {
	r := httptest.NewRequest("GET", "/?movie_id=157336", nil)
	value, err := ParseQueryInt64(r, "movie_id", 0)
	require.NoError(t, err)
	require.EqualValues(t, 157336, value)

	r = httptest.NewRequest("GET", "/", nil)
	value, err = ParseQueryInt64(r, "movie_id", 42)
	require.NoError(t, err)
	require.EqualValues(t, 42, value)

	r = httptest.NewRequest("GET", "/?movie_id=not-a-number", nil)
	_, err = ParseQueryInt64(r, "movie_id", 0)
	require.Error(t, err)
}
