package youtube

import (
	"encoding/json"
	"fmt"
)

// Player functions invoked through the command channel
const (
	FuncPlayVideo     = "playVideo"
	FuncPauseVideo    = "pauseVideo"
	FuncUnMute        = "unMute"
	FuncLoadVideoByID = "loadVideoById"
)

// PlayerState is the embedded player's internal state as reported in
// onStateChange and infoDelivery notifications
type PlayerState int

const (
	StateUnstarted PlayerState = -1
	StateEnded     PlayerState = 0
	StatePlaying   PlayerState = 1
	StatePaused    PlayerState = 2
	StateBuffering PlayerState = 3
	StateCued      PlayerState = 5
)

// Command is an outbound remote command
type Command struct {
	Event string `json:"event"`
	Func  string `json:"func"`
	Args  []any  `json:"args"`
}

// PlayVideo starts or resumes playback
func PlayVideo() Command { return newCommand(FuncPlayVideo) }

// PauseVideo pauses playback
func PauseVideo() Command { return newCommand(FuncPauseVideo) }

// UnMute restores audio after a muted autoplay
func UnMute() Command { return newCommand(FuncUnMute) }

// LoadVideoByID swaps the video inside an existing player
func LoadVideoByID(videoID string) Command {
	c := newCommand(FuncLoadVideoByID)
	c.Args = []any{videoID}
	return c
}

func newCommand(fn string) Command {
	return Command{Event: "command", Func: fn, Args: []any{}}
}

// Encode serializes the command for postMessage
func (c Command) Encode() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s command: %w", c.Func, err)
	}
	return data, nil
}

// Listening builds the handshake that subscribes the host page to the
// player's state notifications
func Listening(id string) ([]byte, error) {
	data, err := json.Marshal(struct {
		Event   string `json:"event"`
		ID      string `json:"id"`
		Channel string `json:"channel"`
	}{Event: "listening", ID: id, Channel: "widget"})
	if err != nil {
		return nil, fmt.Errorf("failed to encode listening handshake: %w", err)
	}
	return data, nil
}

// Message is an inbound notification from the embedded player
type Message struct {
	Event string          `json:"event"`
	Info  json.RawMessage `json:"info,omitempty"`
}

// ParseMessage decodes a notification posted by the embedded player
func ParseMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("invalid player message: %w", err)
	}
	if m.Event == "" {
		return Message{}, fmt.Errorf("player message without event")
	}
	return m, nil
}

// PlayerState extracts the player state carried by the message, if any
func (m Message) PlayerState() (PlayerState, bool) {
	if len(m.Info) == 0 {
		return 0, false
	}
	switch m.Event {
	case "onStateChange":
		var s int
		if err := json.Unmarshal(m.Info, &s); err != nil {
			return 0, false
		}
		return PlayerState(s), true
	case "infoDelivery":
		var info struct {
			PlayerState *int `json:"playerState"`
		}
		if err := json.Unmarshal(m.Info, &info); err != nil || info.PlayerState == nil {
			return 0, false
		}
		return PlayerState(*info.PlayerState), true
	}
	return 0, false
}

// Ended reports whether the player signaled the end of the video
func (m Message) Ended() bool {
	s, ok := m.PlayerState()
	return ok && s == StateEnded
}
