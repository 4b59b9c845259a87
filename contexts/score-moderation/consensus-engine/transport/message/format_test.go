package message_test

import (
	"strings"
	"testing"

	"scorewatch/contexts/score-moderation/consensus-engine/domain/entities"
	"scorewatch/contexts/score-moderation/consensus-engine/transport/message"
)

func TestFormatVoteStatus(t *testing.T) {
	tally := entities.NewVoteTally(1, []entities.Vote{
		{RequestID: 1, VoterID: 10, VoteType: entities.VoteTypeUpvote},
		{RequestID: 1, VoterID: 20, VoteType: entities.VoteTypeDownvote},
	}, []int64{10, 20, 30})

	text := message.FormatVoteStatus("@Scorewatch", tally, nil)
	for _, want := range []string{
		"Hey, @Scorewatch!",
		"**2**/3 voted!",
		"Votes to accept:\n<@10>",
		"Votes to deny:\n<@20>",
		"List of people left to vote:\n<@30>",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("status message missing %q:\n%s", want, text)
		}
	}
}

func TestFormatResolutionNotice(t *testing.T) {
	accepted := message.FormatResolutionNotice(entities.StatusAccepted, "@Scorewatch")
	if !strings.Contains(accepted, "**accepted**") {
		t.Fatalf("accepted notice = %q", accepted)
	}
	if strings.Contains(accepted, "manually resolved") {
		t.Fatal("accepted notice should not mention manual resolution")
	}

	tied := message.FormatResolutionNotice(entities.StatusTied, "@Scorewatch")
	if !strings.Contains(tied, "manually resolved by @Scorewatch members") {
		t.Fatalf("tied notice = %q", tied)
	}
}

func TestFormatArtifactAnnouncement(t *testing.T) {
	text := message.FormatArtifactAnnouncement("player | song", "watch it here")
	if !strings.Contains(text, "```player | song```") || !strings.Contains(text, "```watch it here```") {
		t.Fatalf("announcement = %q", text)
	}
}
