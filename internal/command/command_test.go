package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutevote/internal/domain"
)

func TestNormalize_GroupMessage(t *testing.T) {
	payload := []byte(`{
		"post_type": "message",
		"message_type": "group",
		"group_id": 123456,
		"user_id": 42,
		"sender": {"user_id": 42, "nickname": "alice", "card": "Alice A"},
		"raw_message": "/votemute @99 5",
		"message": [
			{"type": "text", "data": {"text": "/votemute "}},
			{"type": "at", "data": {"qq": "99", "name": "bob"}},
			{"type": "text", "data": {"text": " 5"}}
		]
	}`)

	inv, ok := Normalize(payload)
	require.True(t, ok)
	assert.Equal(t, "123456", inv.RoomID)
	assert.Equal(t, "42", inv.RequesterID)
	assert.Equal(t, "Alice A", inv.RequesterDisplay)
	assert.Equal(t, "/votemute @99 5", inv.Text)
	require.Len(t, inv.Segments, 3)
	assert.Equal(t, "at", inv.Segments[1].Type)
	assert.Equal(t, "99", inv.Segments[1].Data["qq"])
}

func TestNormalize_StringIDs(t *testing.T) {
	payload := []byte(`{
		"post_type": "message",
		"message_type": "group",
		"group_id": "123456",
		"user_id": "42",
		"sender": {"nickname": "alice"},
		"raw_message": "hello"
	}`)

	inv, ok := Normalize(payload)
	require.True(t, ok)
	assert.Equal(t, "123456", inv.RoomID)
	assert.Equal(t, "42", inv.RequesterID)
	assert.Equal(t, "alice", inv.RequesterDisplay)
}

func TestNormalize_PrivateMessageHasNoRoom(t *testing.T) {
	payload := []byte(`{
		"post_type": "message",
		"message_type": "private",
		"user_id": 42,
		"raw_message": "/votemute @99"
	}`)

	inv, ok := Normalize(payload)
	require.True(t, ok)
	assert.Empty(t, inv.RoomID)
	assert.Equal(t, "42", inv.RequesterID)
	assert.Equal(t, "/votemute @99", inv.Text)
}

func TestNormalize_RejectsNonMessageEvent(t *testing.T) {
	payload := []byte(`{"post_type": "notice", "notice_type": "group_increase"}`)

	_, ok := Normalize(payload)
	assert.False(t, ok)
}

func TestNormalize_TextFromSegments(t *testing.T) {
	payload := []byte(`{
		"post_type": "message",
		"message_type": "group",
		"group_id": 1,
		"user_id": 2,
		"message": [
			{"type": "text", "data": {"text": "/votemute "}},
			{"type": "at", "data": {"qq": "99"}}
		]
	}`)

	inv, ok := Normalize(payload)
	require.True(t, ok)
	assert.Equal(t, "/votemute @99", inv.Text)
}

func TestNormalize_GarbagePayload(t *testing.T) {
	_, ok := Normalize([]byte(`not json`))
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		ok   bool
		want Command
	}{
		{"not a command", "hello there", false, Command{}},
		{"help", "/votemute help", true, Command{Kind: KindHelp}},
		{"bare command", "/votemute", true, Command{Kind: KindPropose}},
		{"target only", "/votemute @99", true, Command{Kind: KindPropose, TargetRef: "99"}},
		{"target and minutes", "/votemute @99 5", true, Command{Kind: KindPropose, TargetRef: "99", Minutes: 5}},
		{"no at prefix", "/votemute 99 5", true, Command{Kind: KindPropose, TargetRef: "99", Minutes: 5}},
		{"unparsable minutes", "/votemute @99 soon", true, Command{Kind: KindPropose, TargetRef: "99"}},
		{"zero minutes ignored", "/votemute @99 0", true, Command{Kind: KindPropose, TargetRef: "99"}},
		{"trailing whitespace", "/votemute @99 5   ", true, Command{Kind: KindPropose, TargetRef: "99", Minutes: 5}},
		{"similar prefix", "/votemuted @99", false, Command{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(Invocation{Text: tt.text})
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolveTarget_AtSegmentWins(t *testing.T) {
	inv := Invocation{
		Segments: []Segment{
			{Type: "text", Data: map[string]string{"text": "/votemute "}},
			{Type: "at", Data: map[string]string{"qq": "99", "name": "bob"}},
		},
	}

	id, display, ok := ResolveTarget(inv, "@99")
	require.True(t, ok)
	assert.Equal(t, "99", id)
	assert.Equal(t, "bob", display)
}

func TestResolveTarget_CQEncodedMention(t *testing.T) {
	// raw_message carries the mention as a CQ code; the segment still resolves.
	inv := Invocation{
		Segments: []Segment{
			{Type: "at", Data: map[string]string{"qq": "99"}},
		},
	}

	id, display, ok := ResolveTarget(inv, "[CQ:at,qq=99]")
	require.True(t, ok)
	assert.Equal(t, "99", id)
	assert.Equal(t, "99", display)
}

func TestResolveTarget_BareNumericID(t *testing.T) {
	id, display, ok := ResolveTarget(Invocation{}, "123")
	require.True(t, ok)
	assert.Equal(t, "123", id)
	assert.Equal(t, "123", display)
}

func TestResolveTarget_NonNumericWithoutMention(t *testing.T) {
	_, _, ok := ResolveTarget(Invocation{}, "bob")
	assert.False(t, ok)
}

func TestResolveTarget_IgnoresAtAll(t *testing.T) {
	inv := Invocation{
		Segments: []Segment{
			{Type: "at", Data: map[string]string{"qq": "all"}},
		},
	}

	_, _, ok := ResolveTarget(inv, "all")
	assert.False(t, ok)
}

func TestResolveTarget_Empty(t *testing.T) {
	_, _, ok := ResolveTarget(Invocation{}, "")
	assert.False(t, ok)
}

func TestRenderError(t *testing.T) {
	assert.Equal(t, replyNotInGroup, RenderError(domain.ErrNotInGroupChat))
	assert.Equal(t, replyNoTarget, RenderError(domain.ErrTargetNotFound))
	assert.Equal(t, replyVoteInProgress, RenderError(domain.ErrVoteInProgress))
	assert.Equal(t, replyAnnouncementFailed, RenderError(domain.ErrAnnouncementFailed))
	assert.Equal(t, replyAnnouncementFailed, RenderError(assert.AnError))
}
