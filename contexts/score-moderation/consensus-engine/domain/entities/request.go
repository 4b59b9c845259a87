package entities

import (
	"sort"
	"time"
)

type VoteType string

const (
	VoteTypeUpvote   VoteType = "upvote"
	VoteTypeDownvote VoteType = "downvote"
)

type RequestStatus string

const (
	StatusUnknown  RequestStatus = "unknown"
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusDenied   RequestStatus = "denied"
	StatusTied     RequestStatus = "tied"
	StatusUploaded RequestStatus = "uploaded"
)

// Resolved reports whether the status accepts no further votes.
func (s RequestStatus) Resolved() bool {
	switch s {
	case StatusAccepted, StatusDenied, StatusTied, StatusUploaded:
		return true
	default:
		return false
	}
}

// EmbedColour is the accent colour the messaging layer renders per status.
func (s RequestStatus) EmbedColour() int {
	switch s {
	case StatusAccepted:
		return 0x9DF780
	case StatusDenied:
		return 0xF78080
	case StatusTied:
		return 0xED8400
	default:
		return 0xF7E880
	}
}

type ScoreVariant int

const (
	VariantVanilla ScoreVariant = iota
	VariantRelax
	VariantAutopilot
)

// Score id ranges encode the ruleset the score was set under.
const (
	relaxScoreIDCeiling   = 500000000
	autopilotScoreIDFloor = 6148914691236517204
)

// VariantFromScoreID derives the ruleset variant from a raw score id.
func VariantFromScoreID(scoreID int64) ScoreVariant {
	if scoreID < relaxScoreIDCeiling {
		return VariantRelax
	}
	if scoreID >= autopilotScoreIDFloor {
		return VariantAutopilot
	}
	return VariantVanilla
}

func (v ScoreVariant) Label() string {
	switch v {
	case VariantRelax:
		return "Relax"
	case VariantAutopilot:
		return "Autopilot"
	default:
		return "Vanilla"
	}
}

func (v ScoreVariant) Valid() bool {
	return v == VariantVanilla || v == VariantRelax || v == VariantAutopilot
}

// ScorewatchRequest is one score submitted for community approval. Status and
// ResolvedAt are mutated only by the consensus engine, never by voters.
type ScorewatchRequest struct {
	RequestID        int64
	RequestedBy      int64
	ScoreID          int64
	ScoreVariant     ScoreVariant
	Status           RequestStatus
	ThreadRef        int64
	ThreadMessageRef int64
	CreatedAt        time.Time
	ResolvedAt       *time.Time
}

// Vote is one voter's decision on a request. The (request, voter) pair is
// unique at the store.
type Vote struct {
	RequestID int64
	VoterID   int64
	VoteType  VoteType
	CreatedAt time.Time
}

// VoteTally is derived on demand and never persisted. Remaining is computed
// against the live eligible-voter set at tally time; cast votes from voters
// who later lost eligibility are retained.
type VoteTally struct {
	RequestID    int64
	UpvoterIDs   []int64
	DownvoterIDs []int64
	RemainingIDs []int64
	EligibleIDs  []int64
}

// NewVoteTally builds a tally from the recorded votes and the current
// eligible-voter set.
func NewVoteTally(requestID int64, votes []Vote, eligible []int64) VoteTally {
	voted := make(map[int64]struct{}, len(votes))
	tally := VoteTally{RequestID: requestID}
	for _, vote := range votes {
		voted[vote.VoterID] = struct{}{}
		if vote.VoteType == VoteTypeDownvote {
			tally.DownvoterIDs = append(tally.DownvoterIDs, vote.VoterID)
		} else {
			tally.UpvoterIDs = append(tally.UpvoterIDs, vote.VoterID)
		}
	}
	for _, voterID := range eligible {
		tally.EligibleIDs = append(tally.EligibleIDs, voterID)
		if _, ok := voted[voterID]; !ok {
			tally.RemainingIDs = append(tally.RemainingIDs, voterID)
		}
	}
	sort.Slice(tally.UpvoterIDs, func(i, j int) bool { return tally.UpvoterIDs[i] < tally.UpvoterIDs[j] })
	sort.Slice(tally.DownvoterIDs, func(i, j int) bool { return tally.DownvoterIDs[i] < tally.DownvoterIDs[j] })
	sort.Slice(tally.RemainingIDs, func(i, j int) bool { return tally.RemainingIDs[i] < tally.RemainingIDs[j] })
	return tally
}

func (t VoteTally) Upvotes() int   { return len(t.UpvoterIDs) }
func (t VoteTally) Downvotes() int { return len(t.DownvoterIDs) }
func (t VoteTally) TotalVotes() int {
	return len(t.UpvoterIDs) + len(t.DownvoterIDs)
}

// Complete reports whether every currently-eligible voter has cast a vote.
func (t VoteTally) Complete() bool {
	return len(t.EligibleIDs) > 0 && len(t.RemainingIDs) == 0
}
