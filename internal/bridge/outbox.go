package bridge

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

const defaultOutboxSize = 64

// ErrOutboxClosed is returned for frame operations after Close
var ErrOutboxClosed = errors.New("outbox closed")

// Operation kinds queued for the page
const (
	OpMount   = "mount"
	OpPost    = "post"
	OpUnmount = "unmount"
)

// Op is one frame mutation the page applies to the iframe
type Op struct {
	Kind    string          `json:"kind"`
	URL     string          `json:"url,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
}

// Outbox is the frame of a page that is not in-process: operations are
// queued until the page drains them. When full, the oldest operation is
// dropped.
type Outbox struct {
	logger *zap.Logger
	size   int

	mu     sync.Mutex
	ops    []Op
	closed bool
}

// NewOutbox creates an outbox holding at most size operations
func NewOutbox(logger *zap.Logger, size int) *Outbox {
	if size <= 0 {
		size = defaultOutboxSize
	}
	return &Outbox{
		logger: logger,
		size:   size,
	}
}

// Mount queues a frame source replacement
func (o *Outbox) Mount(embedURL string) error {
	return o.push(Op{Kind: OpMount, URL: embedURL})
}

// Post queues a message for the embedded player
func (o *Outbox) Post(message []byte) error {
	if !json.Valid(message) {
		return errors.New("message is not valid JSON")
	}
	return o.push(Op{Kind: OpPost, Message: append(json.RawMessage(nil), message...)})
}

// Unmount queues removal of the frame
func (o *Outbox) Unmount() error {
	return o.push(Op{Kind: OpUnmount})
}

// Drain returns the queued operations in order and empties the queue
func (o *Outbox) Drain() []Op {
	o.mu.Lock()
	defer o.mu.Unlock()
	ops := o.ops
	o.ops = nil
	if ops == nil {
		ops = []Op{}
	}
	return ops
}

// Close rejects further operations
func (o *Outbox) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrOutboxClosed
	}
	o.closed = true
	o.ops = nil
	return nil
}

func (o *Outbox) push(op Op) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrOutboxClosed
	}
	if len(o.ops) >= o.size {
		o.logger.Debug("Outbox full, dropping oldest operation", zap.String("kind", o.ops[0].Kind))
		o.ops = o.ops[1:]
	}
	o.ops = append(o.ops, op)
	return nil
}
