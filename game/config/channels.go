package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// channelsFile is the on-disk shape of the allow-list.
type channelsFile struct {
	Channels []string `json:"channels"`
}

// Channels is the persisted set of chat channels the bot listens to. All
// methods are safe for concurrent use; mutations are written through to the
// backing file before returning.
type Channels struct {
	path string

	mu  sync.RWMutex
	ids map[string]struct{}
}

// LoadChannels reads the allow-list from path. A missing file yields an
// empty (allow-everything) list rather than an error.
func LoadChannels(path string) (*Channels, error) {
	c := &Channels{
		path: path,
		ids:  make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read channels file: %w", err)
	}

	var file channelsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse channels file %s: %w", path, err)
	}
	for _, id := range file.Channels {
		if id != "" {
			c.ids[id] = struct{}{}
		}
	}
	return c, nil
}

// Allowed reports whether commands from the given channel are accepted. An
// empty allow-list accepts every channel.
func (c *Channels) Allowed(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.ids) == 0 {
		return true
	}
	_, ok := c.ids[id]
	return ok
}

// Save adds or removes a channel ID and persists the result. Adding an ID
// that is already present, or removing one that is not, is a no-op that
// still succeeds.
func (c *Channels) Save(id string, add bool) error {
	if id == "" {
		return fmt.Errorf("channel id must not be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if add {
		c.ids[id] = struct{}{}
	} else {
		delete(c.ids, id)
	}
	return c.persistLocked()
}

// List returns the configured channel IDs in stable order.
func (c *Channels) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (c *Channels) persistLocked() error {
	ids := make([]string, 0, len(c.ids))
	for id := range c.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.MarshalIndent(channelsFile{Channels: ids}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode channels: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write channels file: %w", err)
	}
	return nil
}
