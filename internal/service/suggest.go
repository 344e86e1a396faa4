// Package service contains the application services that sit between
// the HTTP handlers and the repositories: suggestion generation, CSV
// import, assignment rules and export.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"org-cleanse/internal/config"
	"org-cleanse/internal/domain"
	"org-cleanse/internal/logger"
	"org-cleanse/internal/matching"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrNotFacility is returned when a suggestion or assignment operation
// targets an organization that is not classified as a facility.
var ErrNotFacility = errors.New("organization is not classified as a facility")

// ErrNotParent is returned when a parent assignment references an
// organization that is not classified as a parent.
var ErrNotParent = errors.New("organization is not classified as a parent")

type suggestOrgRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	ListByType(ctx context.Context, t domain.OrgType) ([]*domain.Organization, error)
	ListUnassignedFacilities(ctx context.Context) ([]*domain.Organization, error)
	SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*domain.Organization, error)
}

type suggestContactRepo interface {
	List(ctx context.Context) ([]*domain.ContactPerson, error)
	AssignedContactIDs(ctx context.Context) ([]uuid.UUID, error)
}

type suggestFormRepo interface {
	ListUnlinked(ctx context.Context) ([]*domain.FormRecord, error)
}

// SuggestService serves suggestion lists and bulk auto-assignment on
// top of the matching engine, with per-facility memoization.
type SuggestService struct {
	orgs     suggestOrgRepo
	contacts suggestContactRepo
	forms    suggestFormRepo
	cache    *matching.SuggestionCache
	cfg      config.MatchingConfig
}

// NewSuggestService creates a new suggestion service.
func NewSuggestService(
	orgs suggestOrgRepo,
	contacts suggestContactRepo,
	forms suggestFormRepo,
	cache *matching.SuggestionCache,
	cfg config.MatchingConfig,
) *SuggestService {
	return &SuggestService{
		orgs:     orgs,
		contacts: contacts,
		forms:    forms,
		cache:    cache,
		cfg:      cfg,
	}
}

func (s *SuggestService) facility(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	org, err := s.orgs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !org.IsFacility() {
		return nil, ErrNotFacility
	}
	return org, nil
}

// ParentSuggestions returns the top parent candidates for the facility.
// limit <= 0 uses the configured default.
func (s *SuggestService) ParentSuggestions(ctx context.Context, facilityID uuid.UUID, limit int) ([]matching.ParentMatch, error) {
	facility, err := s.facility(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	parents, err := s.orgs.ListByType(ctx, domain.OrgTypeParent)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.cfg.ParentLimit
	}
	return s.cache.ParentMatches(facility, parents, limit), nil
}

// ContactSuggestions returns contact candidates for the facility,
// excluding contacts already assigned elsewhere.
func (s *SuggestService) ContactSuggestions(ctx context.Context, facilityID uuid.UUID) ([]matching.ContactMatch, error) {
	facility, err := s.facility(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, err
	}
	assigned, err := s.contacts.AssignedContactIDs(ctx)
	if err != nil {
		return nil, err
	}

	return s.cache.ContactMatches(facility, contacts, assigned), nil
}

// FormSuggestions returns unlinked form-record candidates for the
// facility. limit <= 0 uses the configured default.
func (s *SuggestService) FormSuggestions(ctx context.Context, facilityID uuid.UUID, limit int) ([]matching.FormMatch, error) {
	facility, err := s.facility(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	records, err := s.forms.ListUnlinked(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.cfg.FormLimit
	}
	return s.cache.FormMatches(facility, records, limit), nil
}

// AutoAssignment records one bulk-assignment decision.
type AutoAssignment struct {
	FacilityID   uuid.UUID `json:"facility_id"`
	FacilityName string    `json:"facility_name"`
	ParentID     uuid.UUID `json:"parent_id"`
	ParentName   string    `json:"parent_name"`
	Confidence   int       `json:"confidence"`
}

// AutoAssignReport summarizes a bulk parent-assignment run.
type AutoAssignReport struct {
	Assigned    []AutoAssignment `json:"assigned"`
	SkippedLow  int              `json:"skipped_low_confidence"`
	SkippedNone int              `json:"skipped_no_candidates"`
}

// AutoAssignParents assigns the best-scoring parent to every facility
// without one, when the top confidence clears the threshold.
// threshold <= 0 uses the configured default. Scoring fans out per
// facility; writes happen sequentially afterwards.
func (s *SuggestService) AutoAssignParents(ctx context.Context, threshold int) (*AutoAssignReport, error) {
	if threshold <= 0 {
		threshold = s.cfg.AutoAssignThreshold
	}

	facilities, err := s.orgs.ListUnassignedFacilities(ctx)
	if err != nil {
		return nil, err
	}
	parents, err := s.orgs.ListByType(ctx, domain.OrgTypeParent)
	if err != nil {
		return nil, err
	}

	report := &AutoAssignReport{Assigned: []AutoAssignment{}}
	if len(facilities) == 0 || len(parents) == 0 {
		report.SkippedNone = len(facilities)
		return report, nil
	}

	// Scoring is pure and embarrassingly parallel; each goroutine
	// writes a distinct slice element.
	best := make([]*matching.ParentMatch, len(facilities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, facility := range facilities {
		i, facility := i, facility
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matches := s.cache.ParentMatches(facility, parents, 1)
			if len(matches) > 0 {
				best[i] = &matches[0]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to score facilities: %w", err)
	}

	for i, facility := range facilities {
		match := best[i]
		switch {
		case match == nil:
			report.SkippedNone++
		case match.Confidence < threshold:
			report.SkippedLow++
		default:
			if _, err := s.orgs.SetParent(ctx, facility.ID, &match.ParentID); err != nil {
				return nil, fmt.Errorf("failed to assign parent for %s: %w", facility.ID, err)
			}
			report.Assigned = append(report.Assigned, AutoAssignment{
				FacilityID:   facility.ID,
				FacilityName: facility.Name,
				ParentID:     match.ParentID,
				ParentName:   match.ParentName,
				Confidence:   match.Confidence,
			})
		}
	}

	logger.Info().
		Int("assigned", len(report.Assigned)).
		Int("skipped_low", report.SkippedLow).
		Int("skipped_none", report.SkippedNone).
		Int("threshold", threshold).
		Msg("bulk parent auto-assignment finished")

	return report, nil
}

// WarmParentSuggestions precomputes parent suggestions for every
// unassigned facility so interactive requests hit the cache.
func (s *SuggestService) WarmParentSuggestions(ctx context.Context) error {
	facilities, err := s.orgs.ListUnassignedFacilities(ctx)
	if err != nil {
		return err
	}
	parents, err := s.orgs.ListByType(ctx, domain.OrgTypeParent)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, facility := range facilities {
		facility := facility
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.cache.ParentMatches(facility, parents, s.cfg.ParentLimit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to warm suggestion cache: %w", err)
	}

	logger.Debug().Int("facilities", len(facilities)).Msg("suggestion cache warmed")
	return nil
}
