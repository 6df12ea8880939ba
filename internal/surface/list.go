package surface

import (
	"context"
	"sort"

	"github.com/samber/lo"
	"github.com/solowitluv/miniplayer/internal/domain"
	"github.com/solowitluv/miniplayer/internal/youtube"
	"go.uber.org/zap"
)

// Item is one rendered row of a list
type Item struct {
	Key             string             `json:"key"`
	Title           string             `json:"title"`
	Artist          string             `json:"artist"`
	FeaturedArtists []string           `json:"featuredArtists,omitempty"`
	Cover           string             `json:"cover,omitempty"`
	ReleaseDate     string             `json:"releaseDate,omitempty"`
	Type            domain.ReleaseType `json:"type"`
	Links           map[string]string  `json:"links,omitempty"`
	VideoID         string             `json:"videoId,omitempty"`
	Playable        bool               `json:"playable"`
	Playing         bool               `json:"isPlaying"`
	Expanded        bool               `json:"isExpanded"`
}

// ListView is a list snapshot with its load status
type ListView struct {
	Section string `json:"section"`
	Loading bool   `json:"loading"`
	Failed  bool   `json:"failed"`
	Items   []Item `json:"items"`
}

// List is an inline content list scoped to one section. Its play indicators
// are derived from the shared store, so at most one row across every list
// shows as playing.
type List struct {
	logger   *zap.Logger
	store    Playback
	section  string
	records  []domain.ContentRecord
	expanded map[string]bool
	loading  bool
	failed   bool

	// collapsed holds rows dismissed while playing
	collapsed map[string]bool
}

// NewList creates an empty list for section
func NewList(logger *zap.Logger, store Playback, section string) *List {
	if section == "" {
		section = domain.DefaultSection
	}
	return &List{
		logger:    logger.With(zap.String("section", section)),
		store:     store,
		section:   section,
		expanded:  map[string]bool{},
		collapsed: map[string]bool{},
	}
}

// Section returns the section the list plays in
func (l *List) Section() string {
	return l.section
}

// BeginLoad marks the list as loading
func (l *List) BeginLoad() {
	l.loading = true
	l.failed = false
}

// SetRecords replaces the list content. Records sharing a key are dropped
// after the first.
func (l *List) SetRecords(records []domain.ContentRecord) {
	l.records = lo.UniqBy(records, func(r domain.ContentRecord) string {
		return r.Key()
	})
	keys := lo.Map(l.records, func(r domain.ContentRecord, _ int) string {
		return r.Key()
	})
	l.expanded = lo.PickByKeys(l.expanded, keys)
	l.collapsed = lo.PickByKeys(l.collapsed, keys)
	l.loading = false
	l.failed = false
}

// Fail marks the load as failed, keeping whatever was shown before
func (l *List) Fail() {
	l.loading = false
	l.failed = true
}

// View renders the list
func (l *List) View() ListView {
	items := make([]Item, 0, len(l.records))
	for i := range l.records {
		items = append(items, l.item(&l.records[i]))
	}
	return ListView{
		Section: l.section,
		Loading: l.loading,
		Failed:  l.failed,
		Items:   items,
	}
}

// Toggle plays or pauses the record at key. Starting a track expands its
// row. Returns false if the key is unknown or not playable.
func (l *List) Toggle(key string) bool {
	record, ok := l.find(key)
	if !ok {
		l.logger.Debug("Toggle on unknown item", zap.String("key", key))
		return false
	}
	if youtube.ResolveContent(record) == "" {
		l.logger.Debug("Item has no playable link", zap.String("key", key))
		return false
	}
	l.store.Toggle(record, l.section)
	if l.store.IsPlaying(record, l.section) {
		l.expand(key)
	}
	return true
}

// ToggleExpanded flips the detail row of key
func (l *List) ToggleExpanded(key string) bool {
	record, ok := l.find(key)
	if !ok {
		return false
	}
	if l.isExpanded(record) {
		l.Collapse(key)
	} else {
		l.expand(key)
	}
	return true
}

// Collapse closes the detail row of key, even while it is playing
func (l *List) Collapse(key string) bool {
	if _, ok := l.find(key); !ok {
		return false
	}
	delete(l.expanded, key)
	l.collapsed[key] = true
	return true
}

// Active reports whether key is the record the player currently holds for
// this list's section
func (l *List) Active(key string) bool {
	state := l.store.CurrentState()
	return state.Content != nil &&
		state.Content.Key() == key &&
		state.Section == l.section
}

func (l *List) expand(key string) {
	l.expanded[key] = true
	delete(l.collapsed, key)
}

// isExpanded reveals a row that was opened, or one that is playing and was
// not dismissed
func (l *List) isExpanded(r *domain.ContentRecord) bool {
	key := r.Key()
	if l.expanded[key] {
		return true
	}
	return !l.collapsed[key] && l.store.IsPlaying(r, l.section)
}

func (l *List) find(key string) (*domain.ContentRecord, bool) {
	for i := range l.records {
		if l.records[i].Key() == key {
			return &l.records[i], true
		}
	}
	return nil, false
}

func (l *List) item(r *domain.ContentRecord) Item {
	id := youtube.ResolveContent(r)
	return Item{
		Key:             r.Key(),
		Title:           r.Title,
		Artist:          r.Artist,
		FeaturedArtists: r.FeaturedArtists,
		Cover:           r.Cover(),
		ReleaseDate:     r.ReleaseDate,
		Type:            r.Type,
		Links:           streamingLinks(r),
		VideoID:         id,
		Playable:        id != "",
		Playing:         l.store.IsPlaying(r, l.section),
		Expanded:        l.isExpanded(r),
	}
}

// Releases groups the release lists of the site: albums, singles and the
// strip of latest releases. Each plays in its own section.
type Releases struct {
	logger      *zap.Logger
	lists       map[string]*List
	latestCount int
}

// NewReleases creates the release lists
func NewReleases(logger *zap.Logger, store Playback, latestCount int) *Releases {
	lists := map[string]*List{}
	for _, section := range []string{domain.SectionAlbums, domain.SectionSingles, domain.SectionLatest} {
		lists[section] = NewList(logger, store, section)
	}
	return &Releases{
		logger:      logger,
		lists:       lists,
		latestCount: latestCount,
	}
}

// List returns the list for section
func (r *Releases) List(section string) (*List, bool) {
	l, ok := r.lists[section]
	return l, ok
}

// Sections returns the section names in a stable order
func (r *Releases) Sections() []string {
	keys := lo.Keys(r.lists)
	sort.Strings(keys)
	return keys
}

// Find looks a record up by key across every list
func (r *Releases) Find(key string) (*domain.ContentRecord, bool) {
	for _, section := range r.Sections() {
		if record, ok := r.lists[section].find(key); ok {
			return record, true
		}
	}
	return nil, false
}

// BeginLoad marks every list as loading
func (r *Releases) BeginLoad() {
	for _, l := range r.lists {
		l.BeginLoad()
	}
}

// Load fetches releases from src on the calling goroutine and hands the
// list mutations to post, which must run them on the engine loop.
func (r *Releases) Load(ctx context.Context, src domain.ContentSource, post func(func())) error {
	post(r.BeginLoad)
	records, err := src.Releases(ctx)
	post(func() { r.Apply(records, err) })
	return err
}

// Apply distributes a load result over the lists
func (r *Releases) Apply(records []domain.ContentRecord, err error) {
	if err != nil {
		r.logger.Warn("Failed to load releases", zap.Error(err))
		for _, l := range r.lists {
			l.Fail()
		}
		return
	}

	r.lists[domain.SectionAlbums].SetRecords(lo.Filter(records, func(c domain.ContentRecord, _ int) bool {
		return c.Type == domain.ReleaseAlbum
	}))
	r.lists[domain.SectionSingles].SetRecords(lo.Filter(records, func(c domain.ContentRecord, _ int) bool {
		return c.Type != domain.ReleaseAlbum
	}))
	r.lists[domain.SectionLatest].SetRecords(latest(records, r.latestCount))
	r.logger.Debug("Releases applied", zap.Int("count", len(records)))
}

// latest returns the n most recent records. Undated records sort last.
func latest(records []domain.ContentRecord, n int) []domain.ContentRecord {
	sorted := append([]domain.ContentRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].ReleaseDate, sorted[j].ReleaseDate
		if a == "" || b == "" {
			return b == "" && a != ""
		}
		return a > b
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
