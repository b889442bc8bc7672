package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/bracket-engine/repositories"
	"github.com/Dosada05/bracket-engine/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	testCases := []struct {
		err    error
		status int
	}{
		{services.ErrNotConfigured, http.StatusNotFound},
		{fmt.Errorf("%w: player u1", services.ErrNotRegistered), http.StatusNotFound},
		{repositories.ErrResultNotFound, http.StatusNotFound},
		{services.ErrFull, http.StatusConflict},
		{fmt.Errorf("%w: round 2", services.ErrNoSuchMatch), http.StatusConflict},
		{services.ErrHostRegistrationClosed, http.StatusConflict},
		{services.ErrSelfInvite, http.StatusBadRequest},
		{services.ErrInvalidCapacity, http.StatusBadRequest},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestReadJSON(t *testing.T) {
	var dst struct {
		Count int `json:"count"`
	}
	read := func(body string) error {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return readJSON(httptest.NewRecorder(), r, &dst)
	}

	require.NoError(t, read(`{"count": 3}`))
	assert.Equal(t, 3, dst.Count)

	assert.ErrorContains(t, read(``), "must not be empty")
	assert.ErrorContains(t, read(`{"count": "x"}`), `field "count"`)
	assert.ErrorContains(t, read(`{"other": 1}`), "unknown key")
	assert.ErrorContains(t, read(`{"count": 1}{}`), "single JSON value")
	assert.ErrorContains(t, read(`{"count": `), "badly-formed")
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=7&bad=x", nil)

	v, err := queryInt(r, "limit", 20)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = queryInt(r, "missing", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	_, err = queryInt(r, "bad", 20)
	assert.Error(t, err)
}
