package matching

import "math"

// ParentConfig defines weights and limits for facility→parent matching.
// Name carries the most evidentiary weight, postal code next (strong
// geographic signal), city the least since many organizations share one.
type ParentConfig struct {
	NameWeight float64
	ZipWeight  float64
	CityWeight float64

	// DefaultLimit caps suggestion lists when the caller passes no limit.
	DefaultLimit int
	// AutoAssignThreshold is the minimum confidence for bulk
	// auto-assignment of a top suggestion.
	AutoAssignThreshold int
}

// DefaultParentConfig mirrors the weighting the cleansing workflow has
// always used: name 50%, postal code 30%, city 20%.
var DefaultParentConfig = ParentConfig{
	NameWeight:          0.5,
	ZipWeight:           0.3,
	CityWeight:          0.2,
	DefaultLimit:        3,
	AutoAssignThreshold: 70,
}

// Score composes the weighted confidence from the three component scores.
func (c ParentConfig) Score(nameScore, zipScore, cityScore int) int {
	return round(float64(nameScore)*c.NameWeight +
		float64(zipScore)*c.ZipWeight +
		float64(cityScore)*c.CityWeight)
}

// ContactConfig defines tier boundaries and limits for contact→facility
// matching. A note that is an exact or near-exact organization name is
// the strongest available signal and dominates; a weak or absent note
// must not suppress email-domain evidence.
type ContactConfig struct {
	// StrongNoteFloor separates the dominant-note tier from the
	// weak-note tier.
	StrongNoteFloor int
	// MinConfidence is exclusive: candidates scoring at or below it are
	// dropped as indistinguishable from coincidence.
	MinConfidence int
	Limit         int
}

// DefaultContactConfig keeps the original tiers: note>60 scores 90/10
// note/domain, a weaker note 70/30, and no note falls back to 80/20
// domain/city.
var DefaultContactConfig = ContactConfig{
	StrongNoteFloor: 60,
	MinConfidence:   20,
	Limit:           5,
}

// Score composes the tiered confidence from note, domain and city scores.
func (c ContactConfig) Score(noteScore, domainScore, cityScore int) int {
	switch {
	case noteScore > c.StrongNoteFloor:
		return round(float64(noteScore)*0.9 + float64(domainScore)*0.1)
	case noteScore > 0:
		return round(float64(noteScore)*0.7 + float64(domainScore)*0.3)
	default:
		return round(float64(domainScore)*0.8 + float64(cityScore)*0.2)
	}
}

// FormConfig defines the floor and limit for facility→form-record
// matching. The floor sits higher than the contact floor because a
// single-feature comparison has a weaker evidentiary base.
type FormConfig struct {
	// MinConfidence is exclusive.
	MinConfidence int
	DefaultLimit  int
}

// DefaultFormConfig drops candidates at or below 30.
var DefaultFormConfig = FormConfig{
	MinConfidence: 30,
	DefaultLimit:  3,
}

func round(v float64) int {
	return int(math.Round(v))
}
