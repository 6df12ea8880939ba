package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type testConfig struct {
	dir string
	api string
}

func (c testConfig) GetListenAddr() string { return "" }
func (c testConfig) GetEmbedHost() string { return "" }
func (c testConfig) GetContentDir() string { return c.dir }
func (c testConfig) GetReleaseAPI() string { return c.api }
func (c testConfig) GetLatestCount() int { return 4 }

const staticDoc = `{
  "singles": [
    {"id": "s1", "title": "First", "artist": "Solo Wit Luv",
     "links": {"youtubeMusic": "https://music.youtube.com/watch?v=first1"}},
    {"title": "Second", "links": {"spotify": "https://open.spotify.com/track/2"}},
    {"id": "s1", "title": "First (duplicate)"}
  ],
  "albums": [
    {"id": "a1", "title": "Record", "preSaveLinks": {"youtubeMusic": "https://youtu.be/album1"}}
  ]
}`

const apiDoc = `{
  "count": 2,
  "items": [
    {"id": "r1", "title": "Api Single", "thumb_url": "https://cdn/thumb.jpg", "image_url": "https://cdn/full.jpg",
     "platforms": [
       {"name": "Spotify", "url": "https://open.spotify.com/track/9"},
       {"name": "Apple Music", "url": "https://music.apple.com/9"},
       {"name": "YouTube Music", "url": "https://music.youtube.com/watch?v=api9"},
       {"name": "All Platforms", "url": "https://lnk.to/9"}
     ],
     "releaseDate": "2025-05-01", "type": "Single"},
    {"id": "r2", "title": "Api Album", "artist": "Guest", "featuredArtists": ["A"], "image_key": "covers/r2.jpg", "type": "album"}
  ]
}`

func newMemFs(t *testing.T, docs map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range docs {
		if err := afero.WriteFile(fs, "/content/"+name+".json", []byte(body), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return fs
}

type failingFetcher struct{ err error }

func (f failingFetcher) Fetch(context.Context, string) ([]byte, error) { return nil, f.err }

func TestStore_StaticReleases(t *testing.T) {
	fs := newMemFs(t, map[string]string{"releases": staticDoc})
	store := NewStore(zap.NewNop(), failingFetcher{}, fs, testConfig{dir: "/content"})

	records, err := store.Releases(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 deduplicated records, got %d: %+v", len(records), records)
	}
	if records[0].Title != "First" || records[0].Type != "single" {
		t.Errorf("first record: %+v", records[0])
	}
	if records[1].Key() != "Second" {
		t.Errorf("records without id are keyed by title, got %s", records[1].Key())
	}
	if records[2].Type != "album" || records[2].PreSaveLinks["youtubeMusic"] == "" {
		t.Errorf("album record: %+v", records[2])
	}
}

func TestStore_APIReleases(t *testing.T) {
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(apiDoc))
	}))
	defer server.Close()

	store := NewStore(zap.NewNop(), NewHTTPFetcher(zap.NewNop(), 2*time.Second), afero.NewMemMapFs(),
		testConfig{dir: "/content", api: server.URL + "/"})

	records, err := store.Releases(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requested != "/releases" {
		t.Errorf("expected /releases, got %s", requested)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	single := records[0]
	if single.Artist != defaultArtist {
		t.Errorf("missing artist should default, got '%s'", single.Artist)
	}
	if single.CoverArt != "https://cdn/thumb.jpg" {
		t.Errorf("thumbnail should win, got %s", single.CoverArt)
	}
	wantLinks := map[string]string{
		"spotify":      "https://open.spotify.com/track/9",
		"appleMusic":   "https://music.apple.com/9",
		"youtubeMusic": "https://music.youtube.com/watch?v=api9",
		"allPlatforms": "https://lnk.to/9",
	}
	for k, v := range wantLinks {
		if single.Links[k] != v {
			t.Errorf("link %s: expected %s, got %s", k, v, single.Links[k])
		}
	}
	if single.Type != "single" || single.ReleaseDate != "2025-05-01" {
		t.Errorf("unexpected single: %+v", single)
	}

	album := records[1]
	if album.Artist != "Guest" || album.CoverArt != "covers/r2.jpg" || album.Type != "album" {
		t.Errorf("unexpected album: %+v", album)
	}
	if len(album.Links) != 0 {
		t.Errorf("album without platforms has no links, got %v", album.Links)
	}
}

func TestStore_APIFallsBackToStatic(t *testing.T) {
	fs := newMemFs(t, map[string]string{"releases": staticDoc})
	store := NewStore(zap.NewNop(), failingFetcher{err: errors.New("network error: refused")}, fs,
		testConfig{dir: "/content", api: "https://api.example.com"})

	records, err := store.Releases(context.Background())
	if err != nil {
		t.Fatalf("fallback should succeed, got %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected static records, got %d", len(records))
	}
}

func TestStore_BothSourcesFail(t *testing.T) {
	store := NewStore(zap.NewNop(), failingFetcher{err: errors.New("network error: refused")}, afero.NewMemMapFs(),
		testConfig{dir: "/content", api: "https://api.example.com"})

	_, err := store.Releases(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"no release source available", "refused", "releases.json"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error '%s' to contain '%s'", err.Error(), want)
		}
	}
}

func TestStore_Document(t *testing.T) {
	fs := newMemFs(t, map[string]string{
		"shows":   `[{"date":"2026-11-01","venue":"Club"}]`,
		"gallery": `{not json`,
	})
	store := NewStore(zap.NewNop(), failingFetcher{}, fs, testConfig{dir: "/content"})

	tests := []struct {
		name          string
		doc           string
		expectedError string
	}{
		{name: "Shows", doc: DocShows},
		{name: "Invalid JSON", doc: DocGallery, expectedError: "not valid JSON"},
		{name: "Missing", doc: DocBio, expectedError: "failed to read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := store.Document(context.Background(), tt.doc)
			if tt.expectedError != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectedError) {
					t.Fatalf("expected error containing '%s', got %v", tt.expectedError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(data) == 0 {
				t.Error("expected document content")
			}
		})
	}
}

func TestStore_Preload(t *testing.T) {
	complete := map[string]string{
		"releases": staticDoc,
		"shows":    `[]`,
		"bio":      `{"text":"hi"}`,
		"gallery":  `[]`,
	}
	store := NewStore(zap.NewNop(), failingFetcher{}, newMemFs(t, complete), testConfig{dir: "/content"})
	if err := store.Preload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	delete(complete, "bio")
	store = NewStore(zap.NewNop(), failingFetcher{}, newMemFs(t, complete), testConfig{dir: "/content"})
	err := store.Preload(context.Background())
	if err == nil || !strings.Contains(err.Error(), "failed to load bio") {
		t.Errorf("expected bio failure, got %v", err)
	}
}

type countingFetcher struct {
	calls atomic.Int32
}

func (f *countingFetcher) Fetch(context.Context, string) ([]byte, error) {
	f.calls.Add(1)
	return []byte(apiDoc), nil
}

func TestStore_PreloadSkipsLoadedReleases(t *testing.T) {
	fetcher := &countingFetcher{}
	fs := newMemFs(t, map[string]string{"shows": `[]`, "bio": `{}`, "gallery": `[]`})
	store := NewStore(zap.NewNop(), fetcher, fs, testConfig{dir: "/content", api: "https://api.example.com"})

	if _, err := store.Releases(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Preload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("expected the release API to be hit once, got %d", got)
	}
}

func TestStore_PreloadRetriesFailedReleases(t *testing.T) {
	fs := newMemFs(t, map[string]string{"shows": `[]`, "bio": `{}`, "gallery": `[]`})
	store := NewStore(zap.NewNop(), failingFetcher{err: errors.New("refused")}, fs,
		testConfig{dir: "/content", api: "https://api.example.com"})

	if _, err := store.Releases(context.Background()); err == nil {
		t.Fatal("expected releases to fail")
	}
	if err := store.Preload(context.Background()); err == nil {
		t.Error("preload should report releases that never loaded")
	}
}

func TestStore_CanceledContext(t *testing.T) {
	fs := newMemFs(t, map[string]string{"releases": staticDoc})
	store := NewStore(zap.NewNop(), failingFetcher{}, fs, testConfig{dir: "/content"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Releases(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
