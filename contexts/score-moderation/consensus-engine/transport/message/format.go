package message

import (
	"fmt"
	"strings"

	"scorewatch/contexts/score-moderation/consensus-engine/domain/entities"
)

// Mention renders a member id the way the chat platform expects. Delivery is
// an external collaborator's job; this package only composes text.
type Mention func(voterID int64) string

// FormatVoteStatus composes the running vote-status message edited into the
// request thread after every cast.
func FormatVoteStatus(roleRef string, tally entities.VoteTally, mention Mention) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hey, %s! A new upload request has been submitted.\n\n", roleRef)
	b.WriteString("**Remember you can only vote once!**\n\n")
	b.WriteString("**Vote with the buttons below!**\n")
	fmt.Fprintf(&b, "**%d**/%d voted!\n\n", tally.TotalVotes(), len(tally.EligibleIDs))
	fmt.Fprintf(&b, "Votes to accept:\n%s\n", joinMentions(tally.UpvoterIDs, mention))
	fmt.Fprintf(&b, "Votes to deny:\n%s\n", joinMentions(tally.DownvoterIDs, mention))
	fmt.Fprintf(&b, "List of people left to vote:\n%s", joinMentions(tally.RemainingIDs, mention))
	return b.String()
}

// FormatResolutionNotice announces a terminal status to the thread.
func FormatResolutionNotice(status entities.RequestStatus, roleRef string) string {
	var b strings.Builder
	b.WriteString("All votes have been cast and the request has been closed!\n")
	fmt.Fprintf(&b, "The request has been marked as **%s**!", string(status))
	if status == entities.StatusTied {
		fmt.Fprintf(&b, "\nThe request was tied, so it should be manually resolved by %s members.", roleRef)
	}
	return b.String()
}

// FormatArtifactAnnouncement wraps the finished upload assets for posting.
func FormatArtifactAnnouncement(title string, description string) string {
	return strings.Join([]string{
		"**Title:**",
		fmt.Sprintf("```%s```", title),
		"",
		"**Description:**",
		fmt.Sprintf("```%s```", description),
		"",
		"**Thumbnail:**",
	}, "\n")
}

func joinMentions(voterIDs []int64, mention Mention) string {
	if mention == nil {
		mention = func(voterID int64) string { return fmt.Sprintf("<@%d>", voterID) }
	}
	parts := make([]string, 0, len(voterIDs))
	for _, voterID := range voterIDs {
		parts = append(parts, mention(voterID))
	}
	return strings.Join(parts, ", ")
}
