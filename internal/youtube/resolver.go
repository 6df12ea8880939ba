// Package youtube knows the shapes of the video platform's URLs and the
// postMessage protocol spoken by its embedded player.
package youtube

import (
	"regexp"
	"sort"

	"github.com/solowitluv/miniplayer/internal/domain"
)

// PreferredLink is the streaming link consulted first when resolving a record
const PreferredLink = "youtubeMusic"

var idPattern = regexp.MustCompile(`(?:youtu\.be/|youtube\.com/watch\?v=|youtube\.com/embed/|music\.youtube\.com/watch\?v=)([A-Za-z0-9_-]+)`)

// ResolveID extracts the video identifier from a streaming link. The
// identifier is limited to the platform's id alphabet, so fragments and
// escapes after it are not part of it.
// It returns an empty string when the URL matches none of the known shapes.
func ResolveID(url string) string {
	if url == "" {
		return ""
	}
	match := idPattern.FindStringSubmatch(url)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// ResolveContent returns the video identifier for a content record.
// The youtubeMusic link wins, then its pre-save counterpart, then any other
// link that happens to point at the platform.
func ResolveContent(c *domain.ContentRecord) string {
	if c == nil {
		return ""
	}
	if id := ResolveID(c.Links[PreferredLink]); id != "" {
		return id
	}
	if id := ResolveID(c.PreSaveLinks[PreferredLink]); id != "" {
		return id
	}
	for _, links := range []map[string]string{c.Links, c.PreSaveLinks} {
		for _, name := range sortedKeys(links) {
			if id := ResolveID(links[name]); id != "" {
				return id
			}
		}
	}
	return ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
