package tags

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	yaml "go.yaml.in/yaml/v3"
)

// Source provides the raw tag list for an account. *store.DB satisfies it.
type Source interface {
	AvailableTags(accountID string) ([]string, error)
}

// Cache loads and caches one Vocabulary per account. Entries live until
// explicitly invalidated; there is no unbounded memoization of derived
// types, just the tag lists themselves.
type Cache struct {
	source Source

	mu        sync.RWMutex
	vocabs    map[string]*Vocabulary
	overrides map[string][]string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCache creates a vocabulary cache backed by the given source.
func NewCache(source Source) *Cache {
	return &Cache{
		source: source,
		vocabs: make(map[string]*Vocabulary),
	}
}

// Get returns the vocabulary for an account, loading it on first use.
// An override entry for the account, if present, takes precedence over the
// tags derived from the knowledge base.
func (c *Cache) Get(accountID string) (*Vocabulary, error) {
	c.mu.RLock()
	if vocab, ok := c.vocabs[accountID]; ok {
		c.mu.RUnlock()
		return vocab, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under the write lock.
	if vocab, ok := c.vocabs[accountID]; ok {
		return vocab, nil
	}

	if override, ok := c.overrides[accountID]; ok {
		vocab := NewVocabulary(override)
		c.vocabs[accountID] = vocab
		return vocab, nil
	}

	tagList, err := c.source.AvailableTags(accountID)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary for %s: %w", accountID, err)
	}
	if len(tagList) == 0 {
		return nil, fmt.Errorf("account %s has no tag vocabulary", accountID)
	}

	vocab := NewVocabulary(tagList)
	c.vocabs[accountID] = vocab
	return vocab, nil
}

// Invalidate drops the cached vocabulary for one account.
func (c *Cache) Invalidate(accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vocabs, accountID)
}

// InvalidateAll drops every cached vocabulary.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vocabs = make(map[string]*Vocabulary)
}

// overrideFile is the YAML shape of a vocabulary override file.
type overrideFile struct {
	Accounts map[string][]string `yaml:"accounts"`
}

// LoadOverrides reads a YAML override file and replaces the current override
// set. Cached vocabularies are invalidated so the new lists take effect.
func (c *Cache) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read vocabulary overrides: %w", err)
	}

	var parsed overrideFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse vocabulary overrides: %w", err)
	}

	c.mu.Lock()
	c.overrides = parsed.Accounts
	c.vocabs = make(map[string]*Vocabulary)
	c.mu.Unlock()

	return nil
}

// WatchOverrides loads the override file and keeps watching it, reloading
// on every change. Call Stop to release the watcher.
func (c *Cache) WatchOverrides(path string) error {
	if err := c.LoadOverrides(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create vocabulary watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	c.watcher = watcher
	c.done = make(chan struct{})

	go c.watchLoop(path)

	return nil
}

// watchLoop reloads the override file whenever it changes on disk.
func (c *Cache) watchLoop(path string) {
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := c.LoadOverrides(path); err != nil {
					log.Printf("[tags] reload overrides: %v", err)
				}
			}
		case _, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Stop closes the override watcher, if one is running.
func (c *Cache) Stop() {
	if c.watcher != nil {
		close(c.done)
		c.watcher.Close()
		c.watcher = nil
	}
}
