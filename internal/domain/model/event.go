// Package model contains domain models passed between layers.
package model

// FaultEvent is a ground-truth incident. At is in seconds since the epoch.
type FaultEvent struct {
	At         float64
	Candidates IdentifierSet
}

// Submission is one answer record of a team. Payload keeps the submitted
// order; the first entry is the team's best guess.
type Submission struct {
	At      float64
	Payload []Identifier
}

// Set returns the distinct identifiers of the payload.
func (s Submission) Set() IdentifierSet {
	return NewIdentifierSet(s.Payload...)
}

// MatchResult is the outcome of pairing one submission with one fault.
type MatchResult struct {
	Offset    float64 // submission time minus fault time, seconds
	Submitted int     // distinct identifiers submitted
	Correct   int     // submitted identifiers found in the candidate set
	Truth     int     // size of the candidate set
}

// Evaluate compares a submission against the fault it was matched to.
func Evaluate(fault FaultEvent, sub Submission) MatchResult {
	set := sub.Set()
	return MatchResult{
		Offset:    sub.At - fault.At,
		Submitted: set.Len(),
		Correct:   set.Intersect(fault.Candidates),
		Truth:     fault.Candidates.Len(),
	}
}

