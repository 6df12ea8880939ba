package playback

import (
	"sync"
	"testing"

	"github.com/solowitluv/miniplayer/internal/domain"
	"go.uber.org/zap"
)

func record(title, url string) *domain.ContentRecord {
	return &domain.ContentRecord{
		Title: title,
		Links: map[string]string{"youtubeMusic": url},
	}
}

func TestStore_PlayPauseStopScenario(t *testing.T) {
	store := NewStore(zap.NewNop())
	x := record("X", "https://music.youtube.com/watch?v=abc123")

	store.Play(x, "main")
	state := store.CurrentState()
	if state.VideoID != "abc123" || state.Section != "main" || !state.IsPlaying {
		t.Fatalf("after play: unexpected state %+v", state)
	}
	if state.Content != x {
		t.Error("after play: content should be the played record")
	}

	store.Pause()
	state = store.CurrentState()
	if state.IsPlaying {
		t.Error("after pause: expected isPlaying false")
	}
	if state.VideoID != "abc123" || state.Content != x {
		t.Errorf("after pause: target should be preserved, got %+v", state)
	}

	store.Stop()
	state = store.CurrentState()
	if state.VideoID != "" || state.Content != nil || state.IsPlaying || state.Section != "main" {
		t.Errorf("after stop: expected empty state, got %+v", state)
	}
}

func TestStore_PlayWithoutVideoIsNoop(t *testing.T) {
	store := NewStore(zap.NewNop())
	calls := 0
	store.Subscribe(func(domain.PlaybackState) { calls++ })

	store.Play(&domain.ContentRecord{Title: "Spotify Only", Links: map[string]string{
		"spotify": "https://open.spotify.com/track/1",
	}}, "singles")
	store.Play(nil, "main")

	if calls != 0 {
		t.Errorf("expected no notifications, got %d", calls)
	}
	if got := store.CurrentState(); got != domain.EmptyPlaybackState() {
		t.Errorf("state should be untouched, got %+v", got)
	}
}

func TestStore_IsPlayingIsSectionScoped(t *testing.T) {
	store := NewStore(zap.NewNop())
	single := record("Song", "https://youtu.be/same1")
	latest := record("Song (latest card)", "https://www.youtube.com/watch?v=same1")

	store.Play(single, "singles")

	tests := []struct {
		name     string
		content  *domain.ContentRecord
		section  string
		expected bool
	}{
		{name: "Same Record Same Section", content: single, section: "singles", expected: true},
		{name: "Same Record Other Section", content: single, section: "latest", expected: false},
		{name: "Same Video Other Section", content: latest, section: "latest", expected: false},
		{name: "Same Video Same Section", content: latest, section: "singles", expected: true},
		{name: "Unresolvable", content: &domain.ContentRecord{Title: "none"}, section: "singles", expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.IsPlaying(tt.content, tt.section); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestStore_Toggle(t *testing.T) {
	store := NewStore(zap.NewNop())
	c := record("T", "https://youtu.be/tog1")

	expected := []bool{true, false, true, false}
	for i, want := range expected {
		store.Toggle(c, "albums")
		if got := store.IsPlaying(c, "albums"); got != want {
			t.Fatalf("toggle #%d: expected playing=%v, got %v", i+1, want, got)
		}
	}
	if store.CurrentState().VideoID != "tog1" {
		t.Error("toggle should never clear the target")
	}
}

func TestStore_ToggleOtherContentSwitches(t *testing.T) {
	store := NewStore(zap.NewNop())
	a := record("A", "https://youtu.be/aaa")
	b := record("B", "https://youtu.be/bbb")

	store.Toggle(a, "singles")
	store.Toggle(b, "singles")

	if !store.IsPlaying(b, "singles") {
		t.Error("expected B to be playing")
	}
	if store.IsPlaying(a, "singles") {
		t.Error("expected A to be replaced")
	}
}

func TestStore_StopIsIdempotent(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.Stop()
	store.Stop()

	state := store.CurrentState()
	if state.VideoID != "" || state.IsPlaying {
		t.Errorf("expected stopped state, got %+v", state)
	}
}

func TestStore_PauseWhenEmptyStaysEmpty(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.Pause()
	if got := store.CurrentState(); got != domain.EmptyPlaybackState() {
		t.Errorf("expected empty state, got %+v", got)
	}
}

func TestStore_EmptySectionDefaultsToMain(t *testing.T) {
	store := NewStore(zap.NewNop())
	c := record("D", "https://youtu.be/def")
	store.Play(c, "")
	if !store.IsPlaying(c, "main") {
		t.Error("expected empty section to mean main")
	}
}

func TestStore_SubscribersNotifiedInOrder(t *testing.T) {
	store := NewStore(zap.NewNop())
	var order []string
	var seen []domain.PlaybackState

	store.Subscribe(func(s domain.PlaybackState) {
		order = append(order, "first")
		seen = append(seen, s)
	})
	unsubscribe := store.Subscribe(func(domain.PlaybackState) { order = append(order, "second") })
	store.Subscribe(func(domain.PlaybackState) { order = append(order, "third") })

	store.Play(record("N", "https://youtu.be/n1"), "main")

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
	if seen[0].VideoID != "n1" || !seen[0].IsPlaying {
		t.Errorf("subscriber saw %+v", seen[0])
	}

	unsubscribe()
	order = nil
	store.Stop()
	if len(order) != 2 || order[0] != "first" || order[1] != "third" {
		t.Errorf("after unsubscribe expected [first third], got %v", order)
	}
}

func TestStore_SubscriberMayMutate(t *testing.T) {
	store := NewStore(zap.NewNop())
	// collapses the player as soon as anything plays
	store.Subscribe(func(s domain.PlaybackState) {
		if s.IsPlaying {
			store.Stop()
		}
	})

	store.Play(record("E", "https://youtu.be/e1"), "main")
	if store.CurrentState().VideoID != "" {
		t.Error("nested stop should have won")
	}
}

func TestStore_ConcurrentPauseNeverRevivesStopped(t *testing.T) {
	for round := 0; round < 50; round++ {
		store := NewStore(zap.NewNop())
		store.Play(record("X", "https://youtu.be/abc123"), "main")

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				store.Pause()
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			store.Stop()
		}()
		close(start)
		wg.Wait()

		if state := store.CurrentState(); state.VideoID != "" || state.IsPlaying {
			t.Fatalf("round %d: a pause raced past stop: %+v", round, state)
		}
	}
}
