package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageParamsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/contacts", nil)
	page, limit, err := pageParams(r)
	require.NoError(t, err)
	assert.Equal(t, 0, page)
	assert.Equal(t, 10, limit)
}

func TestPageParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/contacts?page=3&limit=25", nil)
	page, limit, err := pageParams(r)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)

	for _, q := range []string{"page=-1", "page=abc", "limit=0", "limit=101"} {
		r := httptest.NewRequest("GET", "/contacts?"+q, nil)
		_, _, err := pageParams(r)
		assert.ErrorIs(t, err, errBadQuery, q)
	}
}

func TestParseSort(t *testing.T) {
	allowed := map[string]string{"name": "name", "created_at": "created_at"}

	r := httptest.NewRequest("GET", "/contacts", nil)
	s, err := parseSort(r, allowed, "name")
	require.NoError(t, err)
	assert.Equal(t, sortSpec{Field: "name"}, s)

	r = httptest.NewRequest("GET", "/contacts?sort=created_at,desc", nil)
	s, err = parseSort(r, allowed, "name")
	require.NoError(t, err)
	assert.Equal(t, sortSpec{Field: "created_at", Desc: true}, s)

	r = httptest.NewRequest("GET", "/contacts?sort=name", nil)
	s, err = parseSort(r, allowed, "created_at")
	require.NoError(t, err)
	assert.Equal(t, sortSpec{Field: "name"}, s)

	r = httptest.NewRequest("GET", "/contacts?sort=ssn,asc", nil)
	_, err = parseSort(r, allowed, "name")
	assert.ErrorIs(t, err, errBadQuery, "field outside the allow-list")

	r = httptest.NewRequest("GET", "/contacts?sort=name,sideways", nil)
	_, err = parseSort(r, allowed, "name")
	assert.ErrorIs(t, err, errBadQuery)
}
