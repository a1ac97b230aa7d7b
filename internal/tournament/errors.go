package tournament

import "errors"

// Invariant violations abort the run. They indicate a logic defect rather
// than bad input.
var (
	ErrPositionFilled    = errors.New("standings position already filled")
	ErrPositionMismatch  = errors.New("team count does not match position count")
	ErrAliasInconsistent = errors.New("team missing from alias table")
	ErrDuplicateAlias    = errors.New("alias already recorded")
)

// Configuration and input errors.
var (
	ErrUnsupportedGroupSize = errors.New("unsupported tie-break subset size")
	ErrUnknownStage         = errors.New("unknown stage")
	ErrUnknownTeam          = errors.New("unknown team")
	ErrUnknownAlias         = errors.New("unknown alias")
	ErrInvalidSamples       = errors.New("sample count must be positive")
	ErrInvalidMetrics       = errors.New("metric list must end with random")
	ErrNoFinal              = errors.New("fixture list has no single final")
	ErrSelfFixture          = errors.New("team cannot play itself")
)

// Collaborator output that does not honour its contract.
var (
	ErrMalformedResult     = errors.New("malformed match result")
	ErrMalformedPrediction = errors.New("malformed prediction")
)

// Ordering and manual entry.
var (
	ErrNotComplete         = errors.New("tournament is not yet complete")
	ErrAlreadyComplete     = errors.New("tournament already complete")
	ErrGroupStageNotPlayed = errors.New("group stage has not been played")
	ErrStagePlayed         = errors.New("stage already played")
	ErrFixtureNotFound     = errors.New("no matching fixture")
	ErrDrawInKnockout      = errors.New("knockout result cannot be a draw")
)
