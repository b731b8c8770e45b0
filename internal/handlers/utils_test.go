package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Swevix/WebRGZ/internal/services"
	"github.com/Swevix/WebRGZ/internal/store"
	"github.com/Swevix/WebRGZ/types"
)

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/listings", nil)
	page, limit, offset, err := parsePagination(req)
	require.NoError(t, err)
	require.Equal(t, 1, page)
	require.Equal(t, defaultPageSize, limit)
	require.Equal(t, 0, offset)

	req = httptest.NewRequest(http.MethodGet, "/listings?page=3&limit=7", nil)
	page, limit, offset, err = parsePagination(req)
	require.NoError(t, err)
	require.Equal(t, 3, page)
	require.Equal(t, 7, limit)
	require.Equal(t, 14, offset)

	req = httptest.NewRequest(http.MethodGet, "/listings?limit=9999", nil)
	_, limit, _, err = parsePagination(req)
	require.NoError(t, err)
	require.Equal(t, maxPageSize, limit)

	for _, query := range []string{"page=0", "page=abc", "limit=0", "limit=x", "page=9999999999"} {
		req = httptest.NewRequest(http.MethodGet, "/listings?"+query, nil)
		_, _, _, err = parsePagination(req)
		require.Error(t, err, "query %q", query)
	}
}

func TestParseAdminFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/listings", nil)
	filter, page, err := parseAdminFilter(req)
	require.NoError(t, err)
	require.Equal(t, 1, page)
	require.Equal(t, adminPageSize, filter.Limit)
	require.Equal(t, 0, filter.Offset)
	require.Nil(t, filter.Status)
	require.Empty(t, filter.Query)

	url := "/admin/listings?status=draft&q=sedan&price_min=20000&price_max=50000.50&page=3"
	req = httptest.NewRequest(http.MethodGet, url, nil)
	filter, page, err = parseAdminFilter(req)
	require.NoError(t, err)
	require.Equal(t, 3, page)
	require.Equal(t, adminPageSize, filter.Limit)
	require.Equal(t, 2*adminPageSize, filter.Offset)
	require.Equal(t, "sedan", filter.Query)
	require.NotNil(t, filter.Status)
	require.Equal(t, types.StatusDraft, *filter.Status)
	require.NotNil(t, filter.PriceMin)
	require.Equal(t, types.Price(2000000), *filter.PriceMin)
	require.NotNil(t, filter.PriceMax)
	require.Equal(t, types.Price(5000050), *filter.PriceMax)

	req = httptest.NewRequest(http.MethodGet, "/admin/listings?status=published&limit=9999", nil)
	filter, _, err = parseAdminFilter(req)
	require.NoError(t, err)
	require.Equal(t, maxPageSize, filter.Limit)
	require.Equal(t, types.StatusPublished, *filter.Status)

	for _, query := range []string{
		"status=archived",
		"price_min=cheap",
		"price_max=1.999",
		"page=0",
		"page=9999999999",
		"limit=0",
	} {
		req = httptest.NewRequest(http.MethodGet, "/admin/listings?"+query, nil)
		_, _, err = parseAdminFilter(req)
		require.Error(t, err, "query %q", query)
	}
}

func TestWriteServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad input", services.ErrValidation), http.StatusBadRequest},
		{services.ErrInvalidToken, http.StatusBadRequest},
		{services.ErrUnauthenticated, http.StatusUnauthorized},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{store.ErrNotFound, http.StatusNotFound},
		{store.ErrDuplicateSlug, http.StatusConflict},
		{store.ErrDuplicate, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		recorder := httptest.NewRecorder()
		writeServiceError(recorder, tc.err, "fallback")
		require.Equal(t, tc.want, recorder.Code, "error %v", tc.err)
	}
}
