package matching

import (
	"testing"

	"org-cleanse/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facility(name, zip, city string) *domain.Organization {
	typ := domain.OrgTypeFacility
	return &domain.Organization{
		ID:      uuid.New(),
		Name:    name,
		ZipCode: zip,
		City:    city,
		Type:    &typ,
	}
}

func parent(name, zip, city string) *domain.Organization {
	typ := domain.OrgTypeParent
	return &domain.Organization{
		ID:      uuid.New(),
		Name:    name,
		ZipCode: zip,
		City:    city,
		Type:    &typ,
	}
}

func contact(email string, note *string) *domain.ContactPerson {
	return &domain.ContactPerson{
		ID:        uuid.New(),
		FirstName: "Erika",
		LastName:  "Muster",
		Email:     email,
		Note:      note,
	}
}

func strPtr(s string) *string {
	return &s
}

func TestParentMatchesIdenticalFields(t *testing.T) {
	e := NewEngine()
	f := facility("Sonnenschein", "12345", "Berlin")
	p := parent("Sonnenschein", "12345", "Berlin")

	matches := e.ParentMatches(f, []*domain.Organization{p}, 3)

	require.Len(t, matches, 1)
	assert.Equal(t, p.ID, matches[0].ParentID)
	assert.Equal(t, 100, matches[0].Confidence)
	assert.Equal(t, 100, matches[0].NameScore)
	assert.Equal(t, 100, matches[0].ZipScore)
	assert.Equal(t, 100, matches[0].CityScore)
}

func TestParentMatchesRanking(t *testing.T) {
	e := NewEngine()
	f := facility("Pflegeheim Sonnenblume", "10115", "Berlin")
	good := parent("Sonnenblume Trägergesellschaft", "10115", "Berlin")
	bad := parent("Müller GmbH", "99999", "München")

	matches := e.ParentMatches(f, []*domain.Organization{bad, good}, 5)

	require.Len(t, matches, 2)
	assert.Equal(t, good.ID, matches[0].ParentID)
	assert.Equal(t, bad.ID, matches[1].ParentID)
	assert.Greater(t, matches[0].Confidence, matches[1].Confidence)

	// Zip and city match exactly, so the composite is at least 50 even
	// with a weak name score.
	assert.Equal(t, 100, matches[0].ZipScore)
	assert.Equal(t, 100, matches[0].CityScore)
	assert.GreaterOrEqual(t, matches[0].Confidence, 50)
	assert.LessOrEqual(t, matches[0].Confidence, 95)

	// Unrelated candidate still scores a little: residual letter
	// overlap gives name 19 and city 14 with zip 0, and
	// round(0.5*19 + 0.3*0 + 0.2*14) = 12.
	assert.Equal(t, 12, matches[1].Confidence)
	assert.Equal(t, 19, matches[1].NameScore)
	assert.Equal(t, 0, matches[1].ZipScore)
	assert.Equal(t, 14, matches[1].CityScore)
}

func TestParentMatchesZipExactShortcut(t *testing.T) {
	e := NewEngine()
	// Identical raw zip strings score 100 even when they normalize the
	// same as any other digit string would under edit distance.
	f := facility("A", "10115", "X")
	p := parent("B", "10115", "Y")

	matches := e.ParentMatches(f, []*domain.Organization{p}, 1)

	require.Len(t, matches, 1)
	assert.Equal(t, 100, matches[0].ZipScore)
}

func TestParentMatchesLimitAndDefault(t *testing.T) {
	e := NewEngine()
	f := facility("Haus Sonne", "10115", "Berlin")

	var candidates []*domain.Organization
	for i := 0; i < 10; i++ {
		candidates = append(candidates, parent("Haus Sonne", "10115", "Berlin"))
	}

	assert.Len(t, e.ParentMatches(f, candidates, 4), 4)
	// limit <= 0 falls back to the configured default.
	assert.Len(t, e.ParentMatches(f, candidates, 0), e.Parent.DefaultLimit)
}

func TestParentMatchesTieKeepsInputOrder(t *testing.T) {
	e := NewEngine()
	f := facility("Haus Sonne", "10115", "Berlin")
	first := parent("Haus Sonne", "10115", "Berlin")
	second := parent("Haus Sonne", "10115", "Berlin")

	matches := e.ParentMatches(f, []*domain.Organization{first, second}, 2)

	require.Len(t, matches, 2)
	assert.Equal(t, matches[0].Confidence, matches[1].Confidence)
	assert.Equal(t, first.ID, matches[0].ParentID)
	assert.Equal(t, second.ID, matches[1].ParentID)
}

func TestParentMatchesEmptyCandidates(t *testing.T) {
	e := NewEngine()
	matches := e.ParentMatches(facility("A", "1", "B"), nil, 3)
	assert.Empty(t, matches)
}

func TestParentMatchesDegenerateFields(t *testing.T) {
	e := NewEngine()
	f := facility("", "", "")
	p := parent("Sonnenblume", "10115", "Berlin")

	matches := e.ParentMatches(f, []*domain.Organization{p}, 3)

	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Confidence)
}

func TestContactMatchesNotePriority(t *testing.T) {
	e := NewEngine()
	f := facility("Pflegeheim Sonnenblume", "10115", "Berlin")

	// Exact note, unrelated email domain.
	noted := contact("erika@unrelated.de", strPtr("Pflegeheim Sonnenblume"))
	// No note, email domain exactly the normalized facility name.
	domainOnly := contact("info@pflegeheimsonnenblume.de", nil)

	matches := e.ContactMatches(f, []*domain.ContactPerson{domainOnly, noted}, nil)

	require.Len(t, matches, 2)
	assert.Equal(t, noted.ID, matches[0].ContactID)
	assert.Equal(t, 100, matches[0].NoteScore)
	assert.Greater(t, matches[0].Confidence, matches[1].Confidence)
	assert.GreaterOrEqual(t, matches[0].Confidence, 90)
	// The domain-only contact still scores well via the 80% domain tier.
	assert.GreaterOrEqual(t, matches[1].Confidence, 80)
}

func TestContactMatchesWeakNoteTier(t *testing.T) {
	e := NewEngine()
	f := facility("Sonnenblume", "10115", "Berlin")

	// Note scores via containment: sonne (5) in sonnenblume (11) →
	// round(500/11) = 45, inside the 0<note<=60 tier. Domain token
	// matches the facility exactly.
	c := contact("info@sonnenblume.de", strPtr("Sonne"))

	matches := e.ContactMatches(f, []*domain.ContactPerson{c}, nil)

	require.Len(t, matches, 1)
	assert.Equal(t, 45, matches[0].NoteScore)
	assert.Equal(t, 100, matches[0].DomainScore)
	// 0.7*45 + 0.3*100 = 61.5 → 62
	assert.Equal(t, 62, matches[0].Confidence)
}

func TestContactMatchesNoNoteFallsBackToDomainAndCity(t *testing.T) {
	e := NewEngine()
	f := facility("Sonnenblume", "10115", "Berlin")

	c := contact("info@sonnenblume.de", nil)

	matches := e.ContactMatches(f, []*domain.ContactPerson{c}, nil)

	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].NoteScore)
	assert.Equal(t, 100, matches[0].DomainScore)
	// cityScore: sonnenblume vs berlin, distance 9 over maxLen 11 →
	// round(200/11) = 18. 0.8*100 + 0.2*18 = 83.6 → 84.
	assert.Equal(t, 84, matches[0].Confidence)
}

func TestContactMatchesThresholdFloor(t *testing.T) {
	e := NewEngine()
	f := facility("Sonnenblume", "10115", "Berlin")

	contacts := []*domain.ContactPerson{
		contact("a@zzzz.de", nil),
		contact("b@qqqqqqqq.de", nil),
		contact("info@sonnenblume.de", nil),
	}

	matches := e.ContactMatches(f, contacts, nil)

	for _, m := range matches {
		assert.Greater(t, m.Confidence, e.Contact.MinConfidence)
	}
}

func TestContactMatchesExcludesAssigned(t *testing.T) {
	e := NewEngine()
	f := facility("Sonnenblume", "10115", "Berlin")

	assigned := contact("info@sonnenblume.de", strPtr("Sonnenblume"))
	free := contact("mail@sonnenblume.de", strPtr("Sonnenblume"))

	matches := e.ContactMatches(f, []*domain.ContactPerson{assigned, free}, []uuid.UUID{assigned.ID})

	require.Len(t, matches, 1)
	assert.Equal(t, free.ID, matches[0].ContactID)
}

func TestContactMatchesTopFive(t *testing.T) {
	e := NewEngine()
	f := facility("Sonnenblume", "10115", "Berlin")

	var contacts []*domain.ContactPerson
	for i := 0; i < 8; i++ {
		contacts = append(contacts, contact("info@sonnenblume.de", nil))
	}

	matches := e.ContactMatches(f, contacts, nil)
	assert.Len(t, matches, e.Contact.Limit)
}

func TestContactMatchesEmptyInput(t *testing.T) {
	e := NewEngine()
	assert.Empty(t, e.ContactMatches(facility("A", "1", "B"), nil, nil))
}

func TestFormMatchesSingleFeature(t *testing.T) {
	e := NewEngine()
	f := facility("Pflegeheim Sonnenblume", "10115", "Berlin")

	exact := &domain.FormRecord{ID: uuid.New(), ExternalCode: "hf-1", Designation: "Pflegeheim Sonnenblume"}
	unrelated := &domain.FormRecord{ID: uuid.New(), ExternalCode: "hf-2", Designation: "Zahnarztpraxis Dr. Weber"}

	matches := e.FormMatches(f, []*domain.FormRecord{unrelated, exact}, 5)

	require.Len(t, matches, 1)
	assert.Equal(t, exact.ID, matches[0].FormID)
	assert.Equal(t, 100, matches[0].Confidence)
}

func TestFormMatchesThresholdFloor(t *testing.T) {
	e := NewEngine()
	f := facility("Sonnenblume", "10115", "Berlin")

	records := []*domain.FormRecord{
		{ID: uuid.New(), Designation: "Sonnenblume"},
		{ID: uuid.New(), Designation: "Blume"},
		{ID: uuid.New(), Designation: "xyz"},
	}

	matches := e.FormMatches(f, records, 10)

	for _, m := range matches {
		assert.Greater(t, m.Confidence, e.Form.MinConfidence)
	}
}

func TestFormMatchesScoresRecordAgainstAnyFacility(t *testing.T) {
	// A record may be scored for several facilities independently; the
	// engine does not assume exclusivity.
	e := NewEngine()
	record := &domain.FormRecord{ID: uuid.New(), Designation: "Haus Sonne"}

	a := e.FormMatches(facility("Haus Sonne", "1", "X"), []*domain.FormRecord{record}, 1)
	b := e.FormMatches(facility("Haus Sonne Nord", "2", "Y"), []*domain.FormRecord{record}, 1)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, record.ID, a[0].FormID)
	assert.Equal(t, record.ID, b[0].FormID)
}

func TestFormMatchesLimitDefault(t *testing.T) {
	e := NewEngine()
	f := facility("Sonnenblume", "10115", "Berlin")

	var records []*domain.FormRecord
	for i := 0; i < 6; i++ {
		records = append(records, &domain.FormRecord{ID: uuid.New(), Designation: "Sonnenblume"})
	}

	assert.Len(t, e.FormMatches(f, records, 0), e.Form.DefaultLimit)
	assert.Len(t, e.FormMatches(f, records, 2), 2)
}
