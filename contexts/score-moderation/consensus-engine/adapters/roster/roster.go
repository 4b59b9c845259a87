package roster

import "context"

// StaticRoster serves a fixed eligible-voter set. Production deployments
// replace it with the chat platform's live role-membership lookup; the
// engine only ever sees the VoterSource port.
type StaticRoster struct {
	voterIDs []int64
}

func NewStaticRoster(voterIDs []int64) *StaticRoster {
	return &StaticRoster{voterIDs: append([]int64(nil), voterIDs...)}
}

func (r *StaticRoster) EligibleVoters(_ context.Context) ([]int64, error) {
	return append([]int64(nil), r.voterIDs...), nil
}
