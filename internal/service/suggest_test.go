package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-cleanse/internal/config"
	"org-cleanse/internal/db"
	"org-cleanse/internal/domain"
	"org-cleanse/internal/matching"

	"github.com/google/uuid"
)

func newSuggestService(orgs *fakeOrgRepo, contacts *fakeContactRepo, forms *fakeFormRepo) *SuggestService {
	cache := matching.NewSuggestionCache(matching.NewEngine(), 128, time.Minute)
	cfg := config.MatchingConfig{
		AutoAssignThreshold: 70,
		ParentLimit:         3,
		FormLimit:           3,
	}
	return NewSuggestService(orgs, contacts, forms, cache, cfg)
}

func TestParentSuggestions(t *testing.T) {
	orgs := &fakeOrgRepo{}
	facility := orgs.add(&domain.Organization{
		Name:    "Pflegeheim Sonnenblume",
		ZipCode: "10115",
		City:    "Berlin",
		Type:    orgTypePtr(domain.OrgTypeFacility),
	})
	good := orgs.add(&domain.Organization{
		Name:    "Pflegeheim Sonnenblume",
		ZipCode: "10115",
		City:    "Berlin",
		Type:    orgTypePtr(domain.OrgTypeParent),
	})
	orgs.add(&domain.Organization{
		Name:    "Caritasverband Hamburg",
		ZipCode: "20095",
		City:    "Hamburg",
		Type:    orgTypePtr(domain.OrgTypeParent),
	})

	svc := newSuggestService(orgs, newFakeContactRepo(), newFakeFormRepo())

	suggestions, err := svc.ParentSuggestions(context.Background(), facility.ID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, good.ID, suggestions[0].ParentID)
	assert.Equal(t, 100, suggestions[0].Confidence)
}

func TestParentSuggestionsRejectsNonFacility(t *testing.T) {
	orgs := &fakeOrgRepo{}
	parent := orgs.add(&domain.Organization{
		Name: "Diakonie Nord",
		Type: orgTypePtr(domain.OrgTypeParent),
	})
	unclassified := orgs.add(&domain.Organization{Name: "Haus am See"})

	svc := newSuggestService(orgs, newFakeContactRepo(), newFakeFormRepo())

	_, err := svc.ParentSuggestions(context.Background(), parent.ID, 0)
	assert.ErrorIs(t, err, ErrNotFacility)

	_, err = svc.ParentSuggestions(context.Background(), unclassified.ID, 0)
	assert.ErrorIs(t, err, ErrNotFacility)

	_, err = svc.ParentSuggestions(context.Background(), uuid.New(), 0)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestContactSuggestionsExcludesAssigned(t *testing.T) {
	orgs := &fakeOrgRepo{}
	facility := orgs.add(&domain.Organization{
		Name:    "Seniorenheim Rosengarten",
		ZipCode: "50667",
		City:    "Koeln",
		Type:    orgTypePtr(domain.OrgTypeFacility),
	})

	contacts := newFakeContactRepo()
	note := "Seniorenheim Rosengarten"
	free := contacts.add(&domain.ContactPerson{
		FirstName: "Anna",
		LastName:  "Becker",
		Email:     "a.becker@rosengarten.de",
		Note:      &note,
	})
	taken := contacts.add(&domain.ContactPerson{
		FirstName: "Jonas",
		LastName:  "Wolf",
		Email:     "j.wolf@rosengarten.de",
		Note:      &note,
	})
	require.NoError(t, contacts.Assign(context.Background(), uuid.New(), taken.ID))

	svc := newSuggestService(orgs, contacts, newFakeFormRepo())

	suggestions, err := svc.ContactSuggestions(context.Background(), facility.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, free.ID, suggestions[0].ContactID)
	assert.Greater(t, suggestions[0].Confidence, 80)
}

func TestFormSuggestionsSkipsLinked(t *testing.T) {
	orgs := &fakeOrgRepo{}
	facility := orgs.add(&domain.Organization{
		Name:    "Haus Abendrot",
		ZipCode: "80331",
		City:    "Muenchen",
		Type:    orgTypePtr(domain.OrgTypeFacility),
	})

	forms := newFakeFormRepo()
	open := forms.add(&domain.FormRecord{ExternalCode: "fl-1", Designation: "Haus Abendrot"})
	linked := forms.add(&domain.FormRecord{ExternalCode: "fl-2", Designation: "Haus Abendrot Muenchen"})
	require.NoError(t, forms.Link(context.Background(), uuid.New(), linked.ID))

	svc := newSuggestService(orgs, newFakeContactRepo(), forms)

	suggestions, err := svc.FormSuggestions(context.Background(), facility.ID, 0)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, open.ID, suggestions[0].FormID)
	assert.Equal(t, 100, suggestions[0].Confidence)
}

func TestAutoAssignParents(t *testing.T) {
	orgs := &fakeOrgRepo{}
	strong := orgs.add(&domain.Organization{
		Name:    "Pflegeheim Sonnenblume",
		ZipCode: "10115",
		City:    "Berlin",
		Type:    orgTypePtr(domain.OrgTypeFacility),
	})
	weak := orgs.add(&domain.Organization{
		Name:    "Tagespflege Wattenmeer",
		ZipCode: "25813",
		City:    "Husum",
		Type:    orgTypePtr(domain.OrgTypeFacility),
	})
	parent := orgs.add(&domain.Organization{
		Name:    "Pflegeheim Sonnenblume",
		ZipCode: "10115",
		City:    "Berlin",
		Type:    orgTypePtr(domain.OrgTypeParent),
	})

	svc := newSuggestService(orgs, newFakeContactRepo(), newFakeFormRepo())

	report, err := svc.AutoAssignParents(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, report.Assigned, 1)
	assert.Equal(t, strong.ID, report.Assigned[0].FacilityID)
	assert.Equal(t, parent.ID, report.Assigned[0].ParentID)
	assert.Equal(t, 100, report.Assigned[0].Confidence)
	assert.Equal(t, 1, report.SkippedLow)
	assert.Equal(t, 0, report.SkippedNone)

	require.NotNil(t, strong.ParentOrgID)
	assert.Equal(t, parent.ID, *strong.ParentOrgID)
	assert.Nil(t, weak.ParentOrgID)
}

func TestAutoAssignParentsNoParents(t *testing.T) {
	orgs := &fakeOrgRepo{}
	orgs.add(&domain.Organization{
		Name: "Haus am Deich",
		Type: orgTypePtr(domain.OrgTypeFacility),
	})

	svc := newSuggestService(orgs, newFakeContactRepo(), newFakeFormRepo())

	report, err := svc.AutoAssignParents(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, report.Assigned)
	assert.Equal(t, 1, report.SkippedNone)
}

func TestAutoAssignParentsSkipsAlreadyAssigned(t *testing.T) {
	orgs := &fakeOrgRepo{}
	parent := orgs.add(&domain.Organization{
		Name:    "Vitalis Gruppe",
		ZipCode: "10115",
		City:    "Berlin",
		Type:    orgTypePtr(domain.OrgTypeParent),
	})
	orgs.add(&domain.Organization{
		Name:        "Vitalis Gruppe",
		ZipCode:     "10115",
		City:        "Berlin",
		Type:        orgTypePtr(domain.OrgTypeFacility),
		ParentOrgID: &parent.ID,
	})

	svc := newSuggestService(orgs, newFakeContactRepo(), newFakeFormRepo())

	report, err := svc.AutoAssignParents(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, report.Assigned)
	assert.Equal(t, 0, report.SkippedLow)
	assert.Equal(t, 0, report.SkippedNone)
}

func TestWarmParentSuggestions(t *testing.T) {
	orgs := &fakeOrgRepo{}
	orgs.add(&domain.Organization{
		Name:    "Pflegeheim Sonnenblume",
		ZipCode: "10115",
		City:    "Berlin",
		Type:    orgTypePtr(domain.OrgTypeFacility),
	})
	orgs.add(&domain.Organization{
		Name:    "Sonnenblume Holding",
		ZipCode: "10115",
		City:    "Berlin",
		Type:    orgTypePtr(domain.OrgTypeParent),
	})

	svc := newSuggestService(orgs, newFakeContactRepo(), newFakeFormRepo())
	require.NoError(t, svc.WarmParentSuggestions(context.Background()))
}
