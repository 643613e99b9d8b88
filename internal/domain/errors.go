package domain

import "errors"

var (
	ErrNotInGroupChat     = errors.New("not in a group chat")
	ErrTargetNotFound     = errors.New("target user not found")
	ErrVoteInProgress     = errors.New("vote already in progress")
	ErrAnnouncementFailed = errors.New("failed to post proposal")
	ErrVoteNotFound       = errors.New("vote not found")
)
