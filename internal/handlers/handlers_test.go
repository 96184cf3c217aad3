package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"gallery-tags/internal/cache"
	"gallery-tags/internal/metadata"
	"gallery-tags/internal/scanner"
	"gallery-tags/internal/startup"
)

// fakeGateway serves tags from an in-memory map.
type fakeGateway struct {
	mu         sync.Mutex
	tags       map[string]string
	failWrites map[string]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		tags:       make(map[string]string),
		failWrites: make(map[string]bool),
	}
}

func (f *fakeGateway) Read(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags[path], nil
}

func (f *fakeGateway) Write(_ context.Context, path, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites[path] {
		return errors.New("write failed")
	}
	f.tags[path] = value
	return nil
}

type fixture struct {
	handlers *Handlers
	gateway  *fakeGateway
	folder   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	folder := t.TempDir()
	gw := newFakeGateway()
	store := cache.NewStore(filepath.Join(t.TempDir(), "cache.json"))
	formats := metadata.DefaultFormatConfig()
	scan := scanner.New(store, gw, formats.Extensions())

	config := &startup.Config{
		ExportItemFormat:     "![$fn]($fp/$fn.$fe)\n",
		ExportConfigFilename: ".gallery_export.json",
	}

	return &fixture{
		handlers: New(scan, formats, config),
		gateway:  gw,
		folder:   folder,
	}
}

func (f *fixture) addImage(t *testing.T, name, tags string) string {
	t.Helper()
	path := filepath.Join(f.folder, name)
	if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
		t.Fatal(err)
	}
	if tags != "" {
		f.gateway.tags[path] = tags
	}
	return path
}

func (f *fixture) openFolder(t *testing.T) {
	t.Helper()
	body, _ := json.Marshal(OpenFolderRequest{Path: f.folder})
	rec := httptest.NewRecorder()
	f.handlers.OpenFolder(rec, httptest.NewRequest(http.MethodPost, "/api/folder/open", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("OpenFolder status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestOpenFolderLoadsRecords(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a.jpg", "cat")
	f.addImage(t, "b.png", "dog")
	f.openFolder(t)

	rec := httptest.NewRecorder()
	f.handlers.CurrentFolder(rec, httptest.NewRequest(http.MethodGet, "/api/folder/current", nil))

	var resp FolderResponse
	decodeResponse(t, rec, &resp)
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
	if resp.Folder != f.folder {
		t.Errorf("folder = %q, want %q", resp.Folder, f.folder)
	}
}

func TestCurrentFolderBeforeOpen(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handlers.CurrentFolder(rec, httptest.NewRequest(http.MethodGet, "/api/folder/current", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestOpenFolderRejectsBadPath(t *testing.T) {
	f := newFixture(t)

	body, _ := json.Marshal(OpenFolderRequest{Path: filepath.Join(f.folder, "missing")})
	rec := httptest.NewRecorder()
	f.handlers.OpenFolder(rec, httptest.NewRequest(http.MethodPost, "/api/folder/open", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchFiltersAndSorts(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "beach2.jpg", "beach,sunset")
	f.addImage(t, "beach10.jpg", "beach")
	f.addImage(t, "city.jpg", "city")
	f.openFolder(t)

	rec := httptest.NewRecorder()
	f.handlers.Search(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=beach", nil))

	var resp SearchResponse
	decodeResponse(t, rec, &resp)
	if resp.Count != 2 || resp.Total != 3 {
		t.Fatalf("count = %d total = %d", resp.Count, resp.Total)
	}
	// Natural order: beach2 before beach10
	if resp.Results[0].Name != "beach2.jpg" || resp.Results[1].Name != "beach10.jpg" {
		t.Errorf("order = %s, %s", resp.Results[0].Name, resp.Results[1].Name)
	}
}

func TestSearchEmptyQueryMatchesAll(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a.jpg", "cat")
	f.addImage(t, "b.jpg", "")
	f.openFolder(t)

	rec := httptest.NewRecorder()
	f.handlers.Search(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))

	var resp SearchResponse
	decodeResponse(t, rec, &resp)
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestSearchAndOrModes(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a.jpg", "cat,dog")
	f.addImage(t, "b.jpg", "cat")
	f.addImage(t, "c.jpg", "dog")
	f.openFolder(t)

	rec := httptest.NewRecorder()
	f.handlers.Search(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=cat,dog", nil))
	var andResp SearchResponse
	decodeResponse(t, rec, &andResp)
	if andResp.Count != 1 {
		t.Errorf("AND count = %d, want 1", andResp.Count)
	}

	rec = httptest.NewRecorder()
	f.handlers.Search(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=%7Ccat,dog", nil))
	var orResp SearchResponse
	decodeResponse(t, rec, &orResp)
	if orResp.Count != 3 {
		t.Errorf("OR count = %d, want 3", orResp.Count)
	}
}

func TestWriteTagsUpdatesRecords(t *testing.T) {
	f := newFixture(t)
	a := f.addImage(t, "a.jpg", "old")
	f.openFolder(t)

	body, _ := json.Marshal(WriteTagsRequest{Paths: []string{"a.jpg"}, Tags: "new,tags"})
	rec := httptest.NewRecorder()
	f.handlers.WriteTags(rec, httptest.NewRequest(http.MethodPost, "/api/image/tags", bytes.NewReader(body)))

	var resp WriteTagsResponse
	decodeResponse(t, rec, &resp)
	if resp.Succeeded != 1 || resp.Failed != 0 {
		t.Fatalf("resp = %+v", resp)
	}
	if f.gateway.tags[a] != "new,tags" {
		t.Errorf("gateway tags = %q", f.gateway.tags[a])
	}

	// In-memory records were patched without a rescan
	searchRec := httptest.NewRecorder()
	f.handlers.Search(searchRec, httptest.NewRequest(http.MethodGet, "/api/search?q=new", nil))
	var searchResp SearchResponse
	decodeResponse(t, searchRec, &searchResp)
	if searchResp.Count != 1 {
		t.Errorf("search after write count = %d, want 1", searchResp.Count)
	}
}

func TestWriteTagsPartialFailure(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a.jpg", "")
	b := f.addImage(t, "b.jpg", "")
	f.openFolder(t)
	f.gateway.failWrites[b] = true

	body, _ := json.Marshal(WriteTagsRequest{Paths: []string{"a.jpg", "b.jpg"}, Tags: "x"})
	rec := httptest.NewRecorder()
	f.handlers.WriteTags(rec, httptest.NewRequest(http.MethodPost, "/api/image/tags", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with per-path results", rec.Code)
	}
	var resp WriteTagsResponse
	decodeResponse(t, rec, &resp)
	if resp.Succeeded != 1 || resp.Failed != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestWriteTagsLeavesReaderSnapshotsAlone(t *testing.T) {
	f := newFixture(t)
	a := f.addImage(t, "a.jpg", "old")
	f.openFolder(t)

	_, _, before, err := f.handlers.currentState()
	if err != nil {
		t.Fatalf("currentState: %v", err)
	}

	f.handlers.applyWriteResults([]scanner.WriteResult{
		{Path: a, Success: true, Tags: "new"},
	})

	// A reader that grabbed the records before the write keeps seeing
	// the old tags; only the freshly published slice has the new ones.
	if before[0].Tags != "old" {
		t.Errorf("snapshot tags = %q, want %q", before[0].Tags, "old")
	}
	_, _, after, err := f.handlers.currentState()
	if err != nil {
		t.Fatalf("currentState after write: %v", err)
	}
	if after[0].Tags != "new" {
		t.Errorf("current tags = %q, want %q", after[0].Tags, "new")
	}
}

func TestConcurrentSearchAndTagWrites(t *testing.T) {
	f := newFixture(t)
	a := f.addImage(t, "a.jpg", "cat")
	f.addImage(t, "b.jpg", "dog")
	f.openFolder(t)

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			rec := httptest.NewRecorder()
			f.handlers.Search(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=cat", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("Search status = %d", rec.Code)
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		f.handlers.applyWriteResults([]scanner.WriteResult{
			{Path: a, Success: true, Tags: "cat,run"},
		})
	}
	close(done)
	wg.Wait()
}

func TestWriteTagsRejectsTraversal(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a.jpg", "")
	f.openFolder(t)

	body, _ := json.Marshal(WriteTagsRequest{Paths: []string{"../outside.jpg"}, Tags: "x"})
	rec := httptest.NewRecorder()
	f.handlers.WriteTags(rec, httptest.NewRequest(http.MethodPost, "/api/image/tags", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetTagsReadsThrough(t *testing.T) {
	f := newFixture(t)
	a := f.addImage(t, "a.jpg", "cached")
	f.openFolder(t)

	// Tags changed behind the cache; the read-through sees it
	f.gateway.tags[a] = "fresh"

	rec := httptest.NewRecorder()
	f.handlers.GetTags(rec, httptest.NewRequest(http.MethodGet, "/api/image/tags?path=a.jpg", nil))

	var resp TagsResponse
	decodeResponse(t, rec, &resp)
	if resp.Tags != "fresh" {
		t.Errorf("tags = %q, want fresh", resp.Tags)
	}
}

func TestRefreshCacheFullRescan(t *testing.T) {
	f := newFixture(t)
	a := f.addImage(t, "a.jpg", "old")
	f.openFolder(t)

	f.gateway.tags[a] = "changed"

	body, _ := json.Marshal(RefreshCacheRequest{FullRescan: true})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cache/refresh", bytes.NewReader(body))
	f.handlers.RefreshCache(rec, req)

	var resp FolderResponse
	decodeResponse(t, rec, &resp)
	if resp.Images[0].Tags != "changed" {
		t.Errorf("tags = %q, want changed", resp.Images[0].Tags)
	}
}

func TestClearCache(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a.jpg", "cat")
	f.openFolder(t)

	rec := httptest.NewRecorder()
	f.handlers.ClearCache(rec, httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestExportConfigRoundTripAndRun(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a.jpg", "cat")
	f.addImage(t, "b.jpg", "dog")
	f.openFolder(t)

	rules := map[string]string{"cats.md": "cat"}
	body, _ := json.Marshal(rules)
	rec := httptest.NewRecorder()
	f.handlers.SaveExportConfig(rec, httptest.NewRequest(http.MethodPost, "/api/export/config", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("SaveExportConfig status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	f.handlers.GetExportConfig(rec, httptest.NewRequest(http.MethodGet, "/api/export/config", nil))
	var loaded map[string]string
	decodeResponse(t, rec, &loaded)
	if loaded["cats.md"] != "cat" {
		t.Errorf("loaded rules = %v", loaded)
	}

	rec = httptest.NewRecorder()
	f.handlers.RunExport(rec, httptest.NewRequest(http.MethodPost, "/api/export/run", nil))
	var runResp RunExportResponse
	decodeResponse(t, rec, &runResp)
	if runResp.Rules != 1 || !runResp.Results[0].Success || runResp.Results[0].Matched != 1 {
		t.Fatalf("run response = %+v", runResp)
	}

	out, err := os.ReadFile(filepath.Join(f.folder, "cats.md"))
	if err != nil {
		t.Fatalf("export output missing: %v", err)
	}
	if string(out) != "![a](./a.jpg)\n" {
		t.Errorf("export output = %q", string(out))
	}
}

func TestSaveExportConfigRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a.jpg", "cat")
	f.openFolder(t)

	rec := httptest.NewRecorder()
	f.handlers.SaveExportConfig(rec, httptest.NewRequest(http.MethodPost, "/api/export/config", bytes.NewReader([]byte(`{"out.md": ""}`))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRunExportWithoutRules(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a.jpg", "cat")
	f.openFolder(t)

	rec := httptest.NewRecorder()
	f.handlers.RunExport(rec, httptest.NewRequest(http.MethodPost, "/api/export/run", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a.jpg", "Sunset, beach")
	f.addImage(t, "b.jpg", "sunset")
	f.addImage(t, "c.jpg", "")
	f.openFolder(t)

	rec := httptest.NewRecorder()
	f.handlers.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	var resp StatsResponse
	decodeResponse(t, rec, &resp)
	if resp.TotalImages != 3 || resp.TaggedImages != 2 || resp.UntaggedImages != 1 {
		t.Errorf("counts = %+v", resp)
	}
	if resp.VocabularySize != 2 {
		t.Errorf("vocabulary = %v", resp.Vocabulary)
	}
}

func TestHealthAndVersion(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handlers.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var health HealthResponse
	decodeResponse(t, rec, &health)
	if health.Status != statusHealthy || health.FolderOpen {
		t.Errorf("health = %+v", health)
	}

	rec = httptest.NewRecorder()
	f.handlers.Version(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	var build startup.BuildInfo
	decodeResponse(t, rec, &build)
	if build.Version == "" {
		t.Error("empty version")
	}
}

func TestGetConfig(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handlers.GetConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	var resp ConfigResponse
	decodeResponse(t, rec, &resp)
	if len(resp.FormatTable) == 0 {
		t.Error("empty format table")
	}
	if len(resp.SupportedExtensions) != 4 {
		t.Errorf("extensions = %v", resp.SupportedExtensions)
	}
}

func TestThumbnail(t *testing.T) {
	f := newFixture(t)

	// A real PNG so the resizer has something to decode
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.folder, "a.png"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	f.openFolder(t)

	req := httptest.NewRequest(http.MethodGet, "/api/thumbnail/a.png?size=32", nil)
	req = mux.SetURLVars(req, map[string]string{"path": "a.png"})
	rec := httptest.NewRecorder()
	f.handlers.Thumbnail(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/thumbnail/a.png?size=9999", nil)
	req = mux.SetURLVars(req, map[string]string{"path": "a.png"})
	rec = httptest.NewRecorder()
	f.handlers.Thumbnail(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversize request status = %d, want 400", rec.Code)
	}
}

func TestImageRejectsTraversal(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a.jpg", "")
	f.openFolder(t)

	req := httptest.NewRequest(http.MethodGet, "/api/image/x", nil)
	req = mux.SetURLVars(req, map[string]string{"path": "../../etc/passwd"})
	rec := httptest.NewRecorder()
	f.handlers.Image(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestResolveInFolder(t *testing.T) {
	folder := "/data/photos"
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"relative", "a.jpg", "/data/photos/a.jpg", false},
		{"nested relative", "sub/a.jpg", "/data/photos/sub/a.jpg", false},
		{"absolute inside", "/data/photos/a.jpg", "/data/photos/a.jpg", false},
		{"empty", "", "", true},
		{"dotdot escape", "../secrets.jpg", "", true},
		{"nested escape", "sub/../../secrets.jpg", "", true},
		{"absolute outside", "/etc/passwd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveInFolder(folder, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveInFolder(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("resolveInFolder(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
