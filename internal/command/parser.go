package command

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"mutevote/internal/domain"
)

type Kind int

const (
	KindNone Kind = iota
	KindHelp
	KindPropose
)

// Command is a parsed vote command. For KindPropose, TargetRef holds the raw
// target reference from the message text and Minutes is 0 when the requester
// supplied none (or an unparsable value).
type Command struct {
	Kind      Kind
	TargetRef string
	Minutes   int
}

var proposePattern = regexp.MustCompile(`^/votemute(?:\s+@?(\S+))?(?:\s+(\S+))?\s*$`)

const HelpText = "📖 Mute vote usage:\n" +
	"Start a vote: /votemute @<user> [minutes]\n" +
	"  - @<user>: required, the member to mute.\n" +
	"  - minutes: optional mute duration, defaults to the configured value.\n" +
	"Examples:\n" +
	"  /votemute @12345678\n" +
	"  /votemute @12345678 5\n" +
	"Vote by reacting to the proposal message:\n" +
	"  ✅ approve the mute\n" +
	"  ❓ reject the mute"

// Parse extracts a vote command from the invocation text. ok is false when
// the message is not a vote command at all.
func Parse(inv Invocation) (Command, bool) {
	text := strings.TrimSpace(inv.Text)
	if text != "/votemute" && !strings.HasPrefix(text, "/votemute ") {
		return Command{}, false
	}

	if text == "/votemute help" {
		return Command{Kind: KindHelp}, true
	}

	m := proposePattern.FindStringSubmatch(text)
	if m == nil {
		// Something after /votemute we cannot parse; treat as a proposal with
		// no target so the user gets the usage hint.
		return Command{Kind: KindPropose}, true
	}

	cmd := Command{Kind: KindPropose, TargetRef: m[1]}
	if m[2] != "" {
		if minutes, err := strconv.Atoi(m[2]); err == nil && minutes > 0 {
			cmd.Minutes = minutes
		}
	}
	return cmd, true
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// ResolveTarget maps the command to the single mentioned user. The mention
// segment is authoritative: backends encode @user as an at segment whatever
// the raw text looks like. A purely numeric reference is accepted as a bare
// user id. Display name falls back to the id.
func ResolveTarget(inv Invocation, targetRef string) (userID, display string, ok bool) {
	for _, seg := range inv.Segments {
		if seg.Type != "at" {
			continue
		}
		qq := seg.Data["qq"]
		if qq == "" || qq == "all" {
			continue
		}
		return qq, firstNonEmpty(seg.Data["name"], qq), true
	}

	ref := strings.TrimPrefix(targetRef, "@")
	if ref != "" && digitsOnly.MatchString(ref) {
		return ref, ref, true
	}

	return "", "", false
}

// Reply texts for the admission failures, shown to the requester in the chat.
const (
	replyNotInGroup         = "This command only works in a group chat."
	replyNoTarget           = "Could not identify the target user, mention them with @, e.g. /votemute @12345 5"
	replyVoteInProgress     = "A vote is already in progress in this group, wait for it to finish."
	replyAnnouncementFailed = "Failed to post the vote proposal, try again later."
)

// RenderError maps an admission error to its user-visible reply.
func RenderError(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotInGroupChat):
		return replyNotInGroup
	case errors.Is(err, domain.ErrTargetNotFound):
		return replyNoTarget
	case errors.Is(err, domain.ErrVoteInProgress):
		return replyVoteInProgress
	case errors.Is(err, domain.ErrAnnouncementFailed):
		return replyAnnouncementFailed
	default:
		return replyAnnouncementFailed
	}
}
