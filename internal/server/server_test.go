package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/curie/internal/storage"
	"github.com/aleksaelezovic/curie/pkg/curie"
	"github.com/aleksaelezovic/curie/pkg/prefix"
	"github.com/aleksaelezovic/curie/pkg/vocab"
)

const exVocabulary = `<http://example.org/Widget> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Gadget> <http://example.org/> .
<http://example.org/Sprocket> <http://www.w3.org/2000/01/rdf-schema#label> "sprocket" <http://example.org/> .
`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	registry, err := prefix.New(map[string]string{
		"ex":      "http://example.org/",
		"missing": "http://missing.example.org/",
	})
	require.NoError(t, err)

	source := vocab.NewFSSource(fstest.MapFS{
		"ex.nq": &fstest.MapFile{Data: []byte(exVocabulary)},
	}, "")
	engine := curie.New(registry, source)

	srv := httptest.NewServer(NewServer(engine, "", opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, query url.Values) *http.Response {
	t.Helper()
	u := srv.URL + path
	if query != nil {
		u += "?" + query.Encode()
	}
	resp, err := srv.Client().Get(u)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHandleCompact(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/compact", url.Values{"iri": {"http://example.org/Widget"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body CompactResponse
	decode(t, resp, &body)
	assert.Equal(t, "ex:Widget", body.Name)

	resp = get(t, srv, "/compact", url.Values{"iri": {"http://unrelated.org/x"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = CompactResponse{}
	decode(t, resp, &body)
	assert.Equal(t, "http://unrelated.org/x", body.IRI)
	assert.Empty(t, body.Name)

	resp = get(t, srv, "/compact", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleExpand(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		query    url.Values
		status   int
		expected string
	}{
		{"naive", url.Values{"name": {"ex:Widget"}}, http.StatusOK, "http://example.org/Widget"},
		{"verified", url.Values{"name": {"ex:Widget"}, "type": {"http://example.org/NotAType", "http://example.org/Gadget"}}, http.StatusOK, "http://example.org/Widget"},
		{"withheld", url.Values{"name": {"ex:Widget"}, "type": {"http://example.org/Unrelated"}}, http.StatusOK, ""},
		{"malformed", url.Values{"name": {"Widget"}}, http.StatusOK, ""},
		{"unknown prefix", url.Values{"name": {"bogus:Widget"}}, http.StatusNotFound, ""},
		{"missing name", url.Values{}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv, "/expand", tt.query)
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.status != http.StatusOK {
				var body ErrorResponse
				decode(t, resp, &body)
				assert.Equal(t, tt.status, body.Error.Code)
				return
			}
			var body ExpandResponse
			decode(t, resp, &body)
			assert.Equal(t, tt.expected, body.IRI)
		})
	}
}

func TestHandleResolve(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/resolve", url.Values{"name": {"ex:Sprocket"}, "type": {"http://example.org/Gadget"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "type_mismatch", body["status"])
	assert.Equal(t, "http://example.org/Sprocket", body["candidate"])
}

func TestHandleLoad(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/load", url.Values{"only": {"ex,bogus", "missing"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body LoadResponse
	decode(t, resp, &body)
	require.Contains(t, body.Datasets, "ex")
	assert.Equal(t, 2, body.Datasets["ex"].Quads)
	assert.Equal(t, map[string]int{"http://example.org/": 2}, body.Datasets["ex"].Graphs)
	assert.Equal(t, []string{"bogus"}, body.Unknown)
	assert.Equal(t, []string{"missing"}, body.Unavailable)

	resp = get(t, srv, "/load", url.Values{"merge": {"yes please"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleLoad_MergedNQuads(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/load?merge=true", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/n-quads")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/n-quads")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, exVocabulary, string(data))
}

func TestHandlePrefixes(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/prefixes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []prefix.Entry
	decode(t, resp, &body)
	assert.Equal(t, []prefix.Entry{
		{Prefix: "ex", BaseIRI: "http://example.org/"},
		{Prefix: "missing", BaseIRI: "http://missing.example.org/"},
	}, body)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Post(srv.URL+"/expand?name=ex:Widget", "text/plain", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleDataUpload(t *testing.T) {
	backend, err := storage.NewInMemoryStorage()
	require.NoError(t, err)
	defer backend.Close()
	store := vocab.NewStoreSource(backend)

	srv := newTestServer(t, WithDocumentStore(store))
	post := func(query, contentType, body string) *http.Response {
		resp, err := srv.Client().Post(srv.URL+"/data?"+query, contentType, strings.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := post("prefix=ex", "application/n-quads", exVocabulary)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body UploadResponse
	decode(t, resp, &body)
	assert.Equal(t, UploadResponse{Prefix: "ex", Quads: 2, Changed: true}, body)

	resp = post("prefix=ex", "application/n-quads", exVocabulary)
	decode(t, resp, &body)
	assert.False(t, body.Changed)

	assert.Equal(t, http.StatusBadRequest, post("prefix=bogus", "application/n-quads", exVocabulary).StatusCode)
	assert.Equal(t, http.StatusUnsupportedMediaType, post("prefix=ex", "text/turtle", exVocabulary).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post("prefix=ex", "application/n-quads", "not n-quads\n").StatusCode)
}

func TestHandleDataUpload_TooLarge(t *testing.T) {
	backend, err := storage.NewInMemoryStorage()
	require.NoError(t, err)
	defer backend.Close()
	store := vocab.NewStoreSource(backend)

	srv := newTestServer(t, WithDocumentStore(store), WithMaxUploadBytes(64))

	resp, err := srv.Client().Post(srv.URL+"/data?prefix=ex", "application/n-quads", strings.NewReader(exVocabulary))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	var body ErrorResponse
	decode(t, resp, &body)
	assert.Contains(t, body.Error.Message, "64 bytes")

	_, err = store.Fetch(context.Background(), "ex")
	assert.ErrorIs(t, err, vocab.ErrNotFound)
}

func TestHandleDataUpload_NoStore(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Post(srv.URL+"/data?prefix=ex", "application/n-quads", strings.NewReader(exVocabulary))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := curie.NewMetrics(reg)
	require.NoError(t, err)

	srv := newTestServer(t, WithGatherer(reg))

	resp := get(t, srv, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "curie_cache_prefixes")

	resp = get(t, srv, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = get(t, srv, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
