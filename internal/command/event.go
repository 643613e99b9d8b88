// Package command is the adapter between the chat platform and the vote
// engine. It normalizes heterogeneous inbound OneBot events into one fixed
// Invocation shape and parses the vote command out of it; the engine never
// sees raw payloads.
package command

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Invocation is the normalized form of an inbound group message.
type Invocation struct {
	RoomID           string
	RequesterID      string
	RequesterDisplay string
	Text             string
	Segments         []Segment
}

// Segment is one piece of a structured chat message (text, at-mention, ...).
type Segment struct {
	Type string
	Data map[string]string
}

// flexID decodes an id field that backends deliver either as a JSON number
// or as a string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

type rawSender struct {
	Card     string `json:"card"`
	Nickname string `json:"nickname"`
}

type rawSegment struct {
	Type string            `json:"type"`
	Data map[string]flexID `json:"data"`
}

// rawEvent mirrors the OneBot group-message event payload, including the
// alternate field locations some backends use.
type rawEvent struct {
	PostType    string       `json:"post_type"`
	MessageType string       `json:"message_type"`
	GroupID     flexID       `json:"group_id"`
	UserID      flexID       `json:"user_id"`
	RawMessage  string       `json:"raw_message"`
	Message     []rawSegment `json:"message"`
	Sender      rawSender    `json:"sender"`

	// Fallback locations seen in the wild.
	GroupInfo struct {
		GroupID flexID `json:"group_id"`
	} `json:"group_info"`
	UserInfo struct {
		UserID flexID `json:"user_id"`
	} `json:"user_info"`
}

// Normalize decodes an inbound event and reduces it to an Invocation.
// It returns ok=false for anything that is not a chat message with a
// resolvable sender. Private messages pass through with an empty RoomID.
func Normalize(payload []byte) (Invocation, bool) {
	var raw rawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Invocation{}, false
	}

	if raw.PostType != "" && raw.PostType != "message" {
		return Invocation{}, false
	}
	if raw.MessageType != "" && raw.MessageType != "group" && raw.MessageType != "private" {
		return Invocation{}, false
	}

	// Private messages normalize with an empty RoomID so the command layer
	// can answer them with the group-only reply instead of going silent.
	roomID := firstNonEmpty(string(raw.GroupID), string(raw.GroupInfo.GroupID))
	requesterID := firstNonEmpty(string(raw.UserID), string(raw.UserInfo.UserID))
	if requesterID == "" {
		return Invocation{}, false
	}

	inv := Invocation{
		RoomID:           roomID,
		RequesterID:      requesterID,
		RequesterDisplay: firstNonEmpty(raw.Sender.Card, raw.Sender.Nickname, requesterID),
		Text:             strings.TrimSpace(raw.RawMessage),
	}

	for _, seg := range raw.Message {
		data := make(map[string]string, len(seg.Data))
		for k, v := range seg.Data {
			data[k] = string(v)
		}
		inv.Segments = append(inv.Segments, Segment{Type: seg.Type, Data: data})
	}

	// Some backends omit raw_message; reassemble the text segments.
	if inv.Text == "" {
		var b strings.Builder
		for _, seg := range inv.Segments {
			switch seg.Type {
			case "text":
				b.WriteString(seg.Data["text"])
			case "at":
				b.WriteString("@" + seg.Data["qq"])
			}
		}
		inv.Text = strings.TrimSpace(b.String())
	}

	return inv, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
