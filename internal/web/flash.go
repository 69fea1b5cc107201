package web

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const flashKey = "flashes"

// ErrCorruptFlashes reports a session flash payload that could not be decoded.
// The payload is discarded.
var ErrCorruptFlashes = errors.New("corrupt flashes in session")

// Flashes are one-shot messages grouped by kind.
type Flashes map[string][]string

// Flash stores flash messages in the session until the next rendered page.
type Flash struct {
	store *session.Store
}

// NewFlash creates a Flash backed by store.
func NewFlash(store *session.Store) *Flash {
	return &Flash{store: store}
}

// Add queues messages of kind for the next page. When the queued payload is
// corrupt it is replaced, the messages are still saved, and the returned error
// wraps ErrCorruptFlashes.
func (f *Flash) Add(c *fiber.Ctx, kind string, messages ...string) error {
	sess, err := f.store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	flashes, decodeErr := decode(sess.Get(flashKey))
	flashes[kind] = append(flashes[kind], messages...)

	raw, err := json.Marshal(flashes)
	if err != nil {
		return fmt.Errorf("failed to encode flashes: %w", err)
	}
	sess.Set(flashKey, string(raw))
	if err := sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return decodeErr
}

// Pop returns and clears the queued messages. A corrupt payload is cleared and
// reported with an error wrapping ErrCorruptFlashes.
func (f *Flash) Pop(c *fiber.Ctx) (Flashes, error) {
	sess, err := f.store.Get(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	raw := sess.Get(flashKey)
	if raw == nil {
		return Flashes{}, nil
	}
	sess.Delete(flashKey)
	if err := sess.Save(); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return decode(raw)
}

func decode(raw interface{}) (Flashes, error) {
	flashes := Flashes{}
	if raw == nil {
		return flashes, nil
	}
	s, ok := raw.(string)
	if !ok {
		return Flashes{}, fmt.Errorf("%w: unexpected %T", ErrCorruptFlashes, raw)
	}
	if s == "" {
		return flashes, nil
	}
	if err := json.Unmarshal([]byte(s), &flashes); err != nil {
		return Flashes{}, fmt.Errorf("%w: %v", ErrCorruptFlashes, err)
	}
	return flashes, nil
}
