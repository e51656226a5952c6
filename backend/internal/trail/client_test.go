package trail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	apperrors "studio-journal/backend/pkg/errors"
)

const trailJSON = `{
	"slug": "parking-lot-reform",
	"contentType": "essay",
	"sources": [{"id": 3, "title": "The High Cost of Free Parking", "slug": "high-cost", "creator": "Donald Shoup",
		"sourceType": "book", "url": "", "publication": "", "publicAnnotation": "", "role": "primary", "keyQuote": ""}],
	"backlinks": [{"contentType": "field_note", "contentSlug": "note-42", "contentTitle": "Curb Cuts",
		"sharedSources": [{"sourceId": 3, "sourceTitle": "The High Cost of Free Parking"}]}],
	"thread": null,
	"mentions": []
}`

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, opts...), srv
}

func TestGetTrail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/trail/parking-lot-reform/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, trailJSON)
	})

	tr, err := c.GetTrail(context.Background(), "parking-lot-reform")
	require.NoError(t, err)
	assert.Equal(t, "essay", tr.ContentType)
	require.Len(t, tr.Sources, 1)
	assert.Equal(t, "Donald Shoup", tr.Sources[0].Creator)
	require.Len(t, tr.Backlinks, 1)
	assert.Equal(t, 3, tr.Backlinks[0].SharedSources[0].SourceID)
	assert.Nil(t, tr.Thread)
	assert.Empty(t, tr.ApprovedSuggestions)
}

func TestFetchSourceGraph_ServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	assert.Nil(t, c.FetchSourceGraph(context.Background()))

	_, err := c.GetSourceGraph(context.Background())
	fe, ok := apperrors.AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.FetchKindStatus, fe.Kind)
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	assert.Equal(t, EndpointGraph, fe.Endpoint)
}

func TestFetch_MalformedJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"nodes": [`)
	})

	assert.Nil(t, c.FetchSourceGraph(context.Background()))

	_, err := c.GetSourceGraph(context.Background())
	fe, ok := apperrors.AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.FetchKindDecode, fe.Kind)
}

func TestFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL)

	assert.Nil(t, c.FetchTrail(context.Background(), "x"))
	assert.Equal(t, []ActivityDay{}, c.FetchActivity(context.Background(), 30))
	assert.Equal(t, []ThreadSummary{}, c.FetchActiveThreads(context.Background()))

	_, err := c.GetTrail(context.Background(), "x")
	fe, ok := apperrors.AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.FetchKindNetwork, fe.Kind)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeTrail))
}

func TestFetchActivity_ClampsDays(t *testing.T) {
	var got string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("days")
		_, _ = io.WriteString(w, `[{"date": "2024-03-01", "sources": 2, "links": 1, "entries": 0}]`)
	}, WithCacheTTL(0))

	days := c.FetchActivity(context.Background(), 5000)
	assert.Equal(t, "730", got)
	require.Len(t, days, 1)
	assert.Equal(t, ActivityDay{Date: "2024-03-01", Sources: 2, Links: 1}, days[0])

	c.FetchActivity(context.Background(), 0)
	assert.Equal(t, "365", got)
}

func TestFetchActiveThreads(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		_, _ = io.WriteString(w, `[{"title": "Parking", "slug": "parking", "description": "", "status": "active",
			"started_date": "2024-01-05", "entry_count": 7, "tags": ["urbanism"]}]`)
	})

	threads := c.FetchActiveThreads(context.Background())
	require.Len(t, threads, 1)
	assert.Equal(t, 7, threads[0].EntryCount)
	require.NotNil(t, threads[0].StartedDate)
	assert.Equal(t, "2024-01-05", *threads[0].StartedDate)
}

func TestFetch_NullBodyIsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	})

	assert.Equal(t, []ThreadSummary{}, c.FetchActiveThreads(context.Background()))
}

func TestGet_CachesSuccessfulReads(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = io.WriteString(w, `{"nodes": [], "edges": []}`)
	})

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.cache.now = func() time.Time { return now }

	require.NotNil(t, c.FetchSourceGraph(context.Background()))
	require.NotNil(t, c.FetchSourceGraph(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	now = now.Add(defaultCacheTTL)
	require.NotNil(t, c.FetchSourceGraph(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGet_FailuresAreNotCached(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"nodes": [{"id": "source:a", "type": "source", "label": "A", "slug": "a"}], "edges": []}`)
	})

	assert.Nil(t, c.FetchSourceGraph(context.Background()))
	g := c.FetchSourceGraph(context.Background())
	require.NotNil(t, g)
	assert.Len(t, g.Nodes, 1)
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	var calls int32
	st := DefaultBreakerSettings(zap.NewNop())
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 2 }

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithBreakerSettings(st))

	for i := 0; i < 5; i++ {
		assert.Nil(t, c.FetchSourceGraph(context.Background()))
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	_, err := c.GetSourceGraph(context.Background())
	fe, ok := apperrors.AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.FetchKindUnavailable, fe.Kind)
}

func TestBreaker_IgnoresNotFound(t *testing.T) {
	st := DefaultBreakerSettings(zap.NewNop())
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 1 }

	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}, WithBreakerSettings(st))

	for i := 0; i < 3; i++ {
		assert.Nil(t, c.FetchTrail(context.Background(), "missing"))
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func validSuggestion() SourceSuggestion {
	return SourceSuggestion{
		Title:             "Flint Water Advisory Task Force Report",
		URL:               "https://example.com/report",
		RelevanceNote:     "Covers the same failures.",
		TargetContentType: "essay",
		TargetSlug:        "flint-infrastructure",
		RecaptchaToken:    "token",
	}
}

func TestSubmitSourceSuggestion(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/suggest/source/", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "token", body["recaptcha_token"])
		assert.Equal(t, "flint-infrastructure", body["target_slug"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"status": "received", "id": 1}`)
	})

	assert.True(t, c.SubmitSourceSuggestion(context.Background(), validSuggestion()))
}

func TestSubmitSourceSuggestion_Rejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	assert.False(t, c.SubmitSourceSuggestion(context.Background(), validSuggestion()))

	missingToken := validSuggestion()
	missingToken.RecaptchaToken = ""
	assert.False(t, c.SubmitSourceSuggestion(context.Background(), missingToken))
}

func validConnectionSuggestion() ConnectionSuggestion {
	return ConnectionSuggestion{
		FromContentType: "field_note",
		FromSlug:        "sidewalk-width-observation",
		ToContentType:   "essay",
		ToSlug:          "ada-compliance",
		Explanation:     "The sidewalk width data directly supports the compliance argument.",
		ContributorName: "Jane Doe",
		RecaptchaToken:  "token",
	}
}

func TestSubmitConnectionSuggestion(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/suggest/connection/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sidewalk-width-observation", body["from_slug"])
		assert.Equal(t, "field_note", body["from_content_type"])
		assert.Equal(t, "ada-compliance", body["to_slug"])
		assert.Equal(t, "essay", body["to_content_type"])
		assert.Equal(t, "token", body["recaptcha_token"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"status": "received", "id": 7}`)
	})

	assert.True(t, c.SubmitConnectionSuggestion(context.Background(), validConnectionSuggestion()))
}

func TestSubmitConnectionSuggestion_Rejected(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	})

	assert.False(t, c.SubmitConnectionSuggestion(context.Background(), validConnectionSuggestion()))

	err := c.SuggestConnection(context.Background(), validConnectionSuggestion())
	fe, ok := apperrors.AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, EndpointConnect, fe.Endpoint)
	assert.Equal(t, http.StatusBadRequest, fe.StatusCode)

	shelf := validConnectionSuggestion()
	shelf.ToContentType = "shelf"
	assert.False(t, c.SubmitConnectionSuggestion(context.Background(), shelf))

	noExplanation := validConnectionSuggestion()
	noExplanation.Explanation = ""
	assert.False(t, c.SubmitConnectionSuggestion(context.Background(), noExplanation))

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSubmitConnectionSuggestion_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}, WithMetrics(m))

	require.True(t, c.SubmitConnectionSuggestion(context.Background(), validConnectionSuggestion()))
	require.True(t, c.SubmitConnectionSuggestion(context.Background(), validConnectionSuggestion()))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetches.WithLabelValues(EndpointConnect, outcomeOK)))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"nodes": [], "edges": []}`)
	}, WithMetrics(m))

	c.FetchSourceGraph(context.Background())
	c.FetchSourceGraph(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues(EndpointGraph, outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues(EndpointGraph, outcomeCacheHit)))
}
