package matching

import (
	"hash"
	"hash/fnv"
	"slices"
	"strconv"
	"time"

	"org-cleanse/internal/domain"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SuggestionCache memoizes per-facility suggestion lists. Keys include a
// content hash of every field that feeds the score, so editing a
// facility or any candidate produces a fresh computation instead of a
// stale hit. Entries also age out, which keeps the cache correct without
// explicit invalidation hooks.
//
// Recomputing suggestions for a whole dataset on every small edit is the
// dominant cost at scale; the cache limits recomputation to the entities
// whose inputs actually changed.
type SuggestionCache struct {
	engine   *Engine
	parents  *expirable.LRU[string, []ParentMatch]
	contacts *expirable.LRU[string, []ContactMatch]
	forms    *expirable.LRU[string, []FormMatch]
}

// NewSuggestionCache wraps the engine with an expirable LRU per match
// kind. size bounds each LRU; ttl bounds staleness.
func NewSuggestionCache(engine *Engine, size int, ttl time.Duration) *SuggestionCache {
	return &SuggestionCache{
		engine:   engine,
		parents:  expirable.NewLRU[string, []ParentMatch](size, nil, ttl),
		contacts: expirable.NewLRU[string, []ContactMatch](size, nil, ttl),
		forms:    expirable.NewLRU[string, []FormMatch](size, nil, ttl),
	}
}

// Engine returns the wrapped engine.
func (c *SuggestionCache) Engine() *Engine {
	return c.engine
}

// ParentMatches serves ParentMatches through the cache.
func (c *SuggestionCache) ParentMatches(facility *domain.Organization, candidates []*domain.Organization, limit int) []ParentMatch {
	h := newKeyHash("parent", facility.ID)
	h.org(facility)
	for _, candidate := range candidates {
		h.id(candidate.ID)
		h.org(candidate)
	}
	h.int(limit)

	key := h.sum()
	if cached, ok := c.parents.Get(key); ok {
		return slices.Clone(cached)
	}
	matches := c.engine.ParentMatches(facility, candidates, limit)
	c.parents.Add(key, matches)
	// Hand out a copy; callers may re-sort or edit their slice without
	// corrupting the cached entry.
	return slices.Clone(matches)
}

// ContactMatches serves ContactMatches through the cache.
func (c *SuggestionCache) ContactMatches(facility *domain.Organization, contacts []*domain.ContactPerson, excludedIDs []uuid.UUID) []ContactMatch {
	h := newKeyHash("contact", facility.ID)
	h.org(facility)
	for _, contact := range contacts {
		h.id(contact.ID)
		h.str(contact.Email)
		if contact.Note != nil {
			h.str(*contact.Note)
		}
	}
	for _, id := range excludedIDs {
		h.id(id)
	}

	key := h.sum()
	if cached, ok := c.contacts.Get(key); ok {
		return slices.Clone(cached)
	}
	matches := c.engine.ContactMatches(facility, contacts, excludedIDs)
	c.contacts.Add(key, matches)
	return slices.Clone(matches)
}

// FormMatches serves FormMatches through the cache.
func (c *SuggestionCache) FormMatches(facility *domain.Organization, records []*domain.FormRecord, limit int) []FormMatch {
	h := newKeyHash("form", facility.ID)
	h.org(facility)
	for _, record := range records {
		h.id(record.ID)
		h.str(record.Designation)
	}
	h.int(limit)

	key := h.sum()
	if cached, ok := c.forms.Get(key); ok {
		return slices.Clone(cached)
	}
	matches := c.engine.FormMatches(facility, records, limit)
	c.forms.Add(key, matches)
	return slices.Clone(matches)
}

// Purge empties all three caches.
func (c *SuggestionCache) Purge() {
	c.parents.Purge()
	c.contacts.Purge()
	c.forms.Purge()
}

// keyHash accumulates scoring inputs into an FNV-1a fingerprint.
type keyHash struct {
	kind string
	fid  uuid.UUID
	h    hash.Hash64
}

func newKeyHash(kind string, facilityID uuid.UUID) *keyHash {
	return &keyHash{kind: kind, fid: facilityID, h: fnv.New64a()}
}

func (k *keyHash) str(s string) {
	k.h.Write([]byte(s))
	k.h.Write([]byte{0})
}

func (k *keyHash) id(id uuid.UUID) {
	k.h.Write(id[:])
}

func (k *keyHash) int(v int) {
	k.str(strconv.Itoa(v))
}

func (k *keyHash) org(o *domain.Organization) {
	k.str(o.Name)
	k.str(o.ZipCode)
	k.str(o.City)
}

func (k *keyHash) sum() string {
	return k.kind + ":" + k.fid.String() + ":" + strconv.FormatUint(k.h.Sum64(), 16)
}
