package content

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/samber/lo"
	"github.com/solowitluv/miniplayer/internal/domain"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultArtist = "Solo Wit Luv"

// Site documents served from the static content directory
const (
	DocReleases = "releases"
	DocShows    = "shows"
	DocBio      = "bio"
	DocGallery  = "gallery"
)

// staticReleases is the shape of releases.json
type staticReleases struct {
	Singles []domain.ContentRecord `json:"singles"`
	Albums  []domain.ContentRecord `json:"albums"`
}

// apiReleases is the shape returned by the release API
type apiReleases struct {
	Count int          `json:"count"`
	Items []apiRelease `json:"items"`
}

type apiRelease struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Artist          string        `json:"artist"`
	FeaturedArtists []string      `json:"featuredArtists"`
	ThumbURL        string        `json:"thumb_url"`
	ImageURL        string        `json:"image_url"`
	ImageKey        string        `json:"image_key"`
	Platforms       []apiPlatform `json:"platforms"`
	ReleaseDate     string        `json:"releaseDate"`
	Type            string        `json:"type"`
}

type apiPlatform struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Store reads releases from the release API when one is configured and
// falls back to the static documents when it fails.
type Store struct {
	logger  *zap.Logger
	fetcher Fetcher
	fs      afero.Fs
	dir     string
	api     string
	// loaded is set once Releases has succeeded
	loaded atomic.Bool
}

// NewStore creates a content store
func NewStore(logger *zap.Logger, fetcher Fetcher, fs afero.Fs, cfg domain.Config) *Store {
	return &Store{
		logger:  logger,
		fetcher: fetcher,
		fs:      fs,
		dir:     cfg.GetContentDir(),
		api:     strings.TrimRight(cfg.GetReleaseAPI(), "/"),
	}
}

// Releases returns every release record, deduplicated by identity key
func (s *Store) Releases(ctx context.Context) ([]domain.ContentRecord, error) {
	records, err := s.releases(ctx)
	if err == nil {
		s.loaded.Store(true)
	}
	return records, err
}

func (s *Store) releases(ctx context.Context) ([]domain.ContentRecord, error) {
	if s.api == "" {
		return s.staticReleases(ctx)
	}

	records, apiErr := s.apiReleases(ctx)
	if apiErr == nil {
		return records, nil
	}
	s.logger.Warn("Release API failed, falling back to static document", zap.Error(apiErr))

	records, staticErr := s.staticReleases(ctx)
	if staticErr != nil {
		return nil, fmt.Errorf("no release source available: %w", multierr.Combine(apiErr, staticErr))
	}
	return records, nil
}

// Document returns a static site document (shows, bio, gallery) verbatim
func (s *Store) Document(ctx context.Context, name string) (json.RawMessage, error) {
	data, err := s.readStatic(ctx, name)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s document is not valid JSON", name)
	}
	return json.RawMessage(data), nil
}

// Preload reads every document concurrently so a broken deployment fails
// at startup instead of on the first page view. Releases are skipped once
// they have been loaded successfully.
func (s *Store) Preload(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.loaded.Load() {
			return nil
		}
		records, err := s.Releases(gctx)
		if err != nil {
			return err
		}
		s.logger.Info("Releases available", zap.Int("count", len(records)))
		return nil
	})
	for _, name := range []string{DocShows, DocBio, DocGallery} {
		g.Go(func() error {
			if _, err := s.Document(gctx, name); err != nil {
				return fmt.Errorf("failed to load %s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Store) apiReleases(ctx context.Context) ([]domain.ContentRecord, error) {
	data, err := s.fetcher.Fetch(ctx, s.api+"/releases")
	if err != nil {
		return nil, err
	}
	var resp apiReleases
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("invalid release API response: %w", err)
	}

	records := lo.Map(resp.Items, func(it apiRelease, _ int) domain.ContentRecord {
		return normalize(it)
	})
	return dedupe(records), nil
}

func (s *Store) staticReleases(ctx context.Context) ([]domain.ContentRecord, error) {
	data, err := s.readStatic(ctx, DocReleases)
	if err != nil {
		return nil, err
	}
	var doc staticReleases
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid releases document: %w", err)
	}

	records := make([]domain.ContentRecord, 0, len(doc.Singles)+len(doc.Albums))
	records = append(records, withType(doc.Singles, domain.ReleaseSingle)...)
	records = append(records, withType(doc.Albums, domain.ReleaseAlbum)...)
	return dedupe(records), nil
}

func (s *Store) readStatic(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, name+".json")
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// normalize maps an API item onto the record shape the surfaces render
func normalize(it apiRelease) domain.ContentRecord {
	links := map[string]string{}
	put := func(key string, match func(name string) bool) {
		p, ok := lo.Find(it.Platforms, func(p apiPlatform) bool {
			return match(strings.ToLower(p.Name))
		})
		if ok && p.URL != "" {
			links[key] = p.URL
		}
	}
	put("spotify", func(n string) bool { return n == "spotify" })
	put("appleMusic", func(n string) bool { return strings.Contains(n, "apple") })
	put("youtubeMusic", func(n string) bool { return strings.Contains(n, "youtube") })
	put("allPlatforms", func(n string) bool { return strings.Contains(n, "all") })

	artist := it.Artist
	if artist == "" {
		artist = defaultArtist
	}
	featured := it.FeaturedArtists
	if featured == nil {
		featured = []string{}
	}
	releaseType := domain.ReleaseType(strings.ToLower(it.Type))
	if releaseType == "" {
		releaseType = domain.ReleaseSingle
	}

	return domain.ContentRecord{
		ID:              it.ID,
		Title:           it.Title,
		Artist:          artist,
		FeaturedArtists: featured,
		CoverArt:        lo.CoalesceOrEmpty(it.ThumbURL, it.ImageURL, it.ImageKey),
		Links:           links,
		ReleaseDate:     it.ReleaseDate,
		Type:            releaseType,
	}
}

func withType(records []domain.ContentRecord, t domain.ReleaseType) []domain.ContentRecord {
	return lo.Map(records, func(r domain.ContentRecord, _ int) domain.ContentRecord {
		if r.Type == "" {
			r.Type = t
		}
		return r
	})
}

func dedupe(records []domain.ContentRecord) []domain.ContentRecord {
	return lo.UniqBy(records, func(r domain.ContentRecord) string {
		return r.Key()
	})
}
