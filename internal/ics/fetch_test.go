package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchOneUsesConditionalRequests(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), srv.Client())
	src := Source{ID: "team", URL: srv.URL + "/team.ics"}

	first, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, sampleICS, string(first.Body))

	second, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, sampleICS, string(second.Body))
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchOneFallsBackToCacheOnServerError(t *testing.T) {
	fail := atomic.Bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), srv.Client())
	src := Source{ID: "team", URL: srv.URL}

	_, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)

	fail.Store(true)
	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
}

func TestFetchOneRejectsOversizedBody(t *testing.T) {
	big := atomic.Bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if big.Load() {
			_, _ = w.Write([]byte(sampleICS + strings.Repeat("X", len(sampleICS))))
			return
		}
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), srv.Client())
	f.maxBytes = int64(len(sampleICS))
	src := Source{ID: "team", URL: srv.URL}

	big.Store(true)
	_, err := f.FetchOne(context.Background(), src)
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	big.Store(false)
	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, sampleICS, string(res.Body), "a body exactly at the limit is accepted")

	big.Store(true)
	res, err = f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, sampleICS, string(res.Body), "the oversized body is not cached")
}

func TestFetchAllCollectsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.ics" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), srv.Client())
	results, errs := f.FetchAll(context.Background(), []Source{
		{ID: "ok", URL: srv.URL + "/ok.ics"},
		{ID: "missing", URL: srv.URL + "/missing.ics"},
		{ID: "empty"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Source.ID)
	assert.Len(t, errs, 2)
}
