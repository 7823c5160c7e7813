package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/graphsnap/pkg/inspect"
	"github.com/matzehuels/graphsnap/pkg/observability"
	"github.com/matzehuels/graphsnap/pkg/observability/prom"
	"github.com/matzehuels/graphsnap/pkg/snapshot"
)

const doc = `{"$type":"*scene.Node","Name":{"$type":"string","$value":"root"},"Up":{"$ref":"root"}}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := snapshot.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	srv := httptest.NewServer(New(Config{Store: store, MaxBodyBytes: 1 << 10}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest() error: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(b)
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("Unmarshal(%s) error: %v", body, err)
	}
	return v
}

func TestFormat(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		body   string
		status int
		want   string
	}{
		{"compact", "", "{ \"$type\" : \"int\",\n \"$value\": 1 }", 200, `{"$type":"int","$value":1}` + "\n"},
		{"two spaces", "?indent=2", `{"$type":"int","$value":1}`, 200, "{\n  \"$type\": \"int\",\n  \"$value\": 1\n}\n"},
		{"tab", "?indent=tab", `{"a":[]}`, 200, "{\n\t\"a\": []\n}\n"},
		{"bad indent", "?indent=x", `{}`, 400, ""},
		{"bad json", "", `{"a":`, 400, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/v1/format"+tt.query, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if tt.want != "" && body != tt.want {
				t.Errorf("body = %q, want %q", body, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	srv := newTestServer(t)

	_, body := do(t, http.MethodPost, srv.URL+"/v1/check", doc)
	got := decode[checkResponse](t, body)
	if !got.OK || len(got.Problems) != 0 {
		t.Errorf("check(valid) = %+v", got)
	}

	_, body = do(t, http.MethodPost, srv.URL+"/v1/check", `{"$type":"*a.B","P":{"$ref":"root.Q"}}`)
	got = decode[checkResponse](t, body)
	if got.OK || len(got.Problems) != 1 || got.Problems[0].Path != "root.P" {
		t.Errorf("check(dangling) = %+v", got)
	}
}

func TestStats(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/stats", doc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d (%s)", resp.StatusCode, body)
	}
	got := decode[inspect.Stats](t, body)
	if got.Records != 2 || got.Refs != 1 || got.Types["*scene.Node"] != 1 {
		t.Errorf("stats = %+v", got)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/v1/snapshots"

	resp, body := do(t, http.MethodGet, base, "")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(body) != "[]" {
		t.Fatalf("list(empty) = %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodPost, base, doc)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("put status = %d (%s)", resp.StatusCode, body)
	}
	info := decode[snapshot.Info](t, body)
	if info.RootType != "*scene.Node" || info.ID == "" {
		t.Fatalf("put = %+v", info)
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/snapshots/"+info.ID {
		t.Errorf("Location = %q", loc)
	}

	resp, body = do(t, http.MethodGet, base+"/"+info.ID, "")
	if resp.StatusCode != http.StatusOK || body != doc {
		t.Fatalf("get = %d %s", resp.StatusCode, body)
	}
	if rt := resp.Header.Get("X-Snapshot-Root-Type"); rt != "*scene.Node" {
		t.Errorf("X-Snapshot-Root-Type = %q", rt)
	}

	_, body = do(t, http.MethodGet, base, "")
	if infos := decode[[]snapshot.Info](t, body); len(infos) != 1 || infos[0].ID != info.ID {
		t.Errorf("list = %+v", infos)
	}

	resp, _ = do(t, http.MethodDelete, base+"/"+info.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, body = do(t, http.MethodGet, base+"/"+info.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get(deleted) status = %d", resp.StatusCode)
	}
	if e := decode[errorResponse](t, body); e.Code != "NOT_FOUND" {
		t.Errorf("error code = %q, want NOT_FOUND", e.Code)
	}
}

func TestGetSnapshotNotModified(t *testing.T) {
	srv := newTestServer(t)
	_, body := do(t, http.MethodPost, srv.URL+"/v1/snapshots", doc)
	info := decode[snapshot.Info](t, body)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/snapshots/"+info.ID, nil)
	req.Header.Set("If-None-Match", `"`+info.Hash+`"`)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("status = %d, want 304", resp.StatusCode)
	}
}

func TestSnapshotErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed document", http.MethodPost, "/v1/snapshots", `{"$type":`, 400, "INVALID_JSON"},
		{"body too large", http.MethodPost, "/v1/snapshots", `"` + strings.Repeat("x", 2<<10) + `"`, 400, "INVALID_INPUT"},
		{"bad id", http.MethodGet, "/v1/snapshots/a..b", "", 400, "INVALID_ID"},
		{"missing", http.MethodGet, "/v1/snapshots/0f0f0f0f-0000-4000-8000-000000000000", "", 404, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if e := decode[errorResponse](t, body); e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.SetHTTPHooks(prom.NewHTTPHooks(reg))
	t.Cleanup(observability.Reset)

	srv := httptest.NewServer(New(Config{Store: snapshot.NewNullStore(), Gatherer: reg}).Handler())
	defer srv.Close()

	do(t, http.MethodPost, srv.URL+"/v1/check", doc)
	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `graphsnap_http_requests_total{code="200",method="POST",route="/v1/check"} 1`) {
		t.Errorf("metrics missing request counter:\n%s", body)
	}
}

func TestParseIndent(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"0", "", false},
		{"4", "    ", false},
		{"tab", "\t", false},
		{"9", "", true},
		{"-1", "", true},
	}
	for _, tt := range tests {
		got, err := parseIndent(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseIndent(%q) = %q, %v", tt.in, got, err)
		}
	}
}
