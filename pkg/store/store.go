// Package store holds the FHIR resources loaded for a run.
//
// A [Store] is filled once by [Loader] (concurrently, one file per job) and is
// read-only afterwards: link resolution starts only after [Loader.Load] has
// returned, so readers never observe a partially loaded store.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	fgerrors "github.com/matzehuels/fgraph/pkg/errors"
	"github.com/matzehuels/fgraph/pkg/fhir"
)

// Sentinel errors for store operations.
var (
	ErrDuplicateURL    = errors.New("duplicate resource url")
	ErrBaseURLMismatch = errors.New("resource base url mismatch")
)

// Store is a concurrent map of canonical url to resource.
type Store struct {
	mu        sync.RWMutex
	baseURL   string
	resources map[string]fhir.Resource
}

// New creates an empty store. When baseURL is empty the first resource
// added establishes it.
func New(baseURL string) *Store {
	return &Store{
		baseURL:   baseURL,
		resources: make(map[string]fhir.Resource),
	}
}

// BaseURL returns the base url every resource shares.
func (s *Store) BaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseURL
}

// TryAdd registers r under url. Adding a url twice, or a resource whose
// base url differs from the store's, fails; both abort the load.
func (s *Store) TryAdd(url string, r fhir.Resource) error {
	base := fhir.BaseURL(url)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.baseURL == "" {
		s.baseURL = base
	}
	if base != s.baseURL {
		return fgerrors.Wrap(fgerrors.ErrCodeBaseURLMismatch, ErrBaseURLMismatch,
			"resource %q does not have base url %q", url, s.baseURL)
	}
	if _, ok := s.resources[url]; ok {
		return fgerrors.Wrap(fgerrors.ErrCodeDuplicateResource, ErrDuplicateURL,
			"resource %q loaded twice", url)
	}
	s.resources[url] = r
	return nil
}

// Get returns the resource stored under url.
func (s *Store) Get(url string) (fhir.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resources[url]
	return r, ok
}

// TryGet returns the resource under url if it is a T. A resource of another
// kind under the same url reports not found.
func TryGet[T fhir.Resource](s *Store, url string) (T, bool) {
	var zero T
	r, ok := s.Get(url)
	if !ok {
		return zero, false
	}
	t, ok := r.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Profile implements fhir.ProfileSource.
func (s *Store) Profile(url string) (*fhir.StructureDefinition, bool) {
	return TryGet[*fhir.StructureDefinition](s, url)
}

// ValueSet returns the value set under url.
func (s *Store) ValueSet(url string) (*fhir.ValueSet, bool) {
	return TryGet[*fhir.ValueSet](s, url)
}

// Len returns the number of stored resources.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources)
}

// URLs returns all stored urls, sorted.
func (s *Store) URLs() []string {
	s.mu.RLock()
	urls := make([]string, 0, len(s.resources))
	for u := range s.resources {
		urls = append(urls, u)
	}
	s.mu.RUnlock()
	sort.Strings(urls)
	return urls
}

// String summarises the store for debug logging.
func (s *Store) String() string {
	return fmt.Sprintf("store(%d resources, base %s)", s.Len(), s.BaseURL())
}
