package matching

import (
	"sort"

	"org-cleanse/internal/domain"

	"github.com/google/uuid"
)

// ParentMatch is a scored facility→parent suggestion.
type ParentMatch struct {
	ParentID   uuid.UUID `json:"parent_id"`
	ParentName string    `json:"parent_name"`
	Confidence int       `json:"confidence"`
	NameScore  int       `json:"name_score"`
	ZipScore   int       `json:"zip_score"`
	CityScore  int       `json:"city_score"`
}

// ContactMatch is a scored contact→facility suggestion.
type ContactMatch struct {
	ContactID    uuid.UUID `json:"contact_id"`
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email"`
	Confidence   int       `json:"confidence"`
	NoteScore    int       `json:"note_score"`
	DomainScore  int       `json:"domain_score"`
}

// FormMatch is a scored facility→form-record suggestion.
type FormMatch struct {
	FormID      uuid.UUID `json:"form_id"`
	Designation string    `json:"designation"`
	Confidence  int       `json:"confidence"`
}

// Engine applies the similarity primitive to the three matching
// problems. An Engine is immutable after construction and safe for
// concurrent use; all methods are pure functions over their arguments.
type Engine struct {
	norm    *Normalizer
	Parent  ParentConfig
	Contact ContactConfig
	Form    FormConfig
}

// NewEngine returns an engine with the German normalization policy and
// default weights.
func NewEngine() *Engine {
	return &Engine{
		norm:    German(),
		Parent:  DefaultParentConfig,
		Contact: DefaultContactConfig,
		Form:    DefaultFormConfig,
	}
}

// NewEngineWithNormalizer returns an engine with default weights and a
// caller-supplied normalization policy.
func NewEngineWithNormalizer(n *Normalizer) *Engine {
	e := NewEngine()
	e.norm = n
	return e
}

// Similarity exposes the engine's similarity primitive under its
// normalization policy.
func (e *Engine) Similarity(a, b string) int {
	return e.norm.Similarity(a, b)
}

// ParentMatches scores every candidate parent for the facility and
// returns the top matches, sorted descending by confidence. Ties keep
// candidate input order. limit <= 0 falls back to the configured
// default. Empty candidate lists yield empty results.
//
// The postal-code comparison short-circuits to 100 on raw character
// equality: postal codes are short digit strings, so a single-digit edit
// distance is a poor discriminator and exact match gets full credit
// first.
func (e *Engine) ParentMatches(facility *domain.Organization, candidates []*domain.Organization, limit int) []ParentMatch {
	if limit <= 0 {
		limit = e.Parent.DefaultLimit
	}

	results := make([]ParentMatch, 0, len(candidates))
	for _, candidate := range candidates {
		nameScore := e.norm.Similarity(facility.Name, candidate.Name)
		zipScore := 100
		if facility.ZipCode != candidate.ZipCode {
			zipScore = e.norm.Similarity(facility.ZipCode, candidate.ZipCode)
		}
		cityScore := e.norm.Similarity(facility.City, candidate.City)

		results = append(results, ParentMatch{
			ParentID:   candidate.ID,
			ParentName: candidate.Name,
			Confidence: e.Parent.Score(nameScore, zipScore, cityScore),
			NameScore:  nameScore,
			ZipScore:   zipScore,
			CityScore:  cityScore,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return truncate(results, limit)
}

// ContactMatches scores unassigned contacts against the facility and
// returns up to the configured limit of suggestions above the noise
// floor, sorted descending by confidence with input order on ties.
//
// Scoring is tiered by note strength: a strong note dominates, a weak
// note still outweighs domain evidence, and with no note at all the
// email-domain token carries the score with the city as a weak backup.
func (e *Engine) ContactMatches(facility *domain.Organization, contacts []*domain.ContactPerson, excludedIDs []uuid.UUID) []ContactMatch {
	excluded := make(map[uuid.UUID]struct{}, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = struct{}{}
	}

	results := make([]ContactMatch, 0, len(contacts))
	for _, contact := range contacts {
		if _, ok := excluded[contact.ID]; ok {
			continue
		}

		noteScore := 0
		if contact.Note != nil {
			noteScore = e.norm.Similarity(*contact.Note, facility.Name)
		}

		token := DomainToken(contact.Email)
		domainScore := e.norm.Similarity(token, facility.Name)
		cityScore := e.norm.Similarity(token, facility.City)

		confidence := e.Contact.Score(noteScore, domainScore, cityScore)
		if confidence <= e.Contact.MinConfidence {
			continue
		}

		results = append(results, ContactMatch{
			ContactID:    contact.ID,
			ContactName:  contact.FullName(),
			ContactEmail: contact.Email,
			Confidence:   confidence,
			NoteScore:    noteScore,
			DomainScore:  domainScore,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return truncate(results, e.Contact.Limit)
}

// FormMatches scores form-record candidates against the facility name
// and returns those above the noise floor, sorted descending by
// confidence with input order on ties. The engine deliberately scores a
// record against any facility it is offered; one-link-per-record is a
// caller concern.
func (e *Engine) FormMatches(facility *domain.Organization, records []*domain.FormRecord, limit int) []FormMatch {
	if limit <= 0 {
		limit = e.Form.DefaultLimit
	}

	results := make([]FormMatch, 0, len(records))
	for _, record := range records {
		confidence := e.norm.Similarity(facility.Name, record.Designation)
		if confidence <= e.Form.MinConfidence {
			continue
		}
		results = append(results, FormMatch{
			FormID:      record.ID,
			Designation: record.Designation,
			Confidence:  confidence,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return truncate(results, limit)
}

func truncate[T any](results []T, limit int) []T {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
