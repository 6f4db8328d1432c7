// Package sources holds the registry of configured news outlets.
package sources

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

// Feed categories
const (
	CategoryPolitics = "politics"
	CategoryOpinion  = "opinion"
)

// Feed is a single RSS feed published by a source
type Feed struct {
	URL      string `yaml:"url" json:"url"`
	Category string `yaml:"category" json:"category"`
}

// Source represents a configured news outlet
type Source struct {
	Name        string `yaml:"name" json:"name"`
	DisplayName string `yaml:"display_name" json:"displayName,omitempty"`
	URL         string `yaml:"url" json:"url"`
	RSS         []Feed `yaml:"rss" json:"rss"`
}

// HasCategory reports whether any of the source's feeds carries the category
func (s Source) HasCategory(category string) bool {
	for _, feed := range s.RSS {
		if feed.Category == category {
			return true
		}
	}
	return false
}

// Registry is a concurrency-safe list of sources that can be swapped on reload
type Registry struct {
	mu      sync.RWMutex
	sources []Source
}

// NewRegistry creates a registry holding a copy of the given sources
func NewRegistry(list []Source) *Registry {
	r := &Registry{}
	r.Replace(list)
	return r
}

// All returns a copy of the configured sources in file order
func (r *Registry) All() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Find looks a source up by exact name
func (r *Registry) Find(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// Len returns the number of configured sources
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

// Replace swaps the registry contents
func (r *Registry) Replace(list []Source) {
	cp := make([]Source, len(list))
	copy(cp, list)

	r.mu.Lock()
	r.sources = cp
	r.mu.Unlock()
}

// Load reads a sources YAML file
func Load(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML source list
func Parse(data []byte) ([]Source, error) {
	var list []Source
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse sources yaml: %w", err)
	}

	seen := make(map[string]bool, len(list))
	for i, s := range list {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("source %d: name is required", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("source %q: duplicate name", name)
		}
		seen[name] = true

		for _, feed := range s.RSS {
			if feed.Category != CategoryPolitics && feed.Category != CategoryOpinion {
				return nil, fmt.Errorf("source %q: unknown feed category %q", name, feed.Category)
			}
		}
		list[i].Name = name
	}

	return list, nil
}
