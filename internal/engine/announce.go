package engine

import (
	"fmt"
	"strings"
	"time"

	"mutevote/internal/domain"
)

// proposalText is the announcement posted when a vote starts. The returned
// message is the ballot: members react to it to vote.
func proposalText(targetDisplay string, minutes int, window time.Duration) string {
	var b strings.Builder
	b.WriteString("📢 Mute vote started\n")
	fmt.Fprintf(&b, "Target: @%s\n", targetDisplay)
	fmt.Fprintf(&b, "Mute duration: %d min\n", minutes)
	b.WriteString("React with ✅ to approve or ❓ to reject\n")
	fmt.Fprintf(&b, "Voting closes in %d seconds", int(window.Seconds()))
	return b.String()
}

// resultText is the single outcome announcement posted at resolution.
func resultText(rec domain.VoteRecord, verdict domain.Verdict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📢 Vote result for @%s\n", rec.TargetDisplay)
	fmt.Fprintf(&b, "[✅] approve: %d\n", rec.ApproveCount)
	fmt.Fprintf(&b, "[❓] reject: %d\n", rec.RejectCount)
	if verdict == domain.VerdictPassed {
		fmt.Fprintf(&b, "The vote passed. @%s will be muted for %d min.", rec.TargetDisplay, rec.MuteMinutes)
	} else {
		b.WriteString("The vote failed, no mute applied.")
	}
	return b.String()
}
