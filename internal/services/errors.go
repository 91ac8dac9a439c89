// Package services defines the business logic for communities, their
// settings, custom commands, and role links. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing chat replies or HTTP status codes is performed
// by the plugins and the HTTP handlers respectively.
package services

import "errors"

// Community-related errors.
var (
	// ErrCommunityNotFound indicates that the community has no stored row.
	ErrCommunityNotFound = errors.New("community not found")

	// ErrInvalidPrefix is returned when a prefix fails validation; the
	// wrapping error carries the reason.
	ErrInvalidPrefix = errors.New("invalid prefix")
)

// Custom command errors.
var (
	// ErrEmptyTrigger is returned when a command is defined without a trigger.
	ErrEmptyTrigger = errors.New("trigger is empty")

	// ErrTriggerTooLong is returned when a trigger exceeds the configured limit.
	ErrTriggerTooLong = errors.New("trigger too long")

	// ErrEmptyResponse is returned when a command has neither a response nor
	// an attachment.
	ErrEmptyResponse = errors.New("response is empty")

	// ErrCommandExists is returned when the trigger is already defined in the
	// community.
	ErrCommandExists = errors.New("command already exists")

	// ErrCommandNotFound indicates that the trigger is not defined.
	ErrCommandNotFound = errors.New("command not found")
)

// Role link errors.
var (
	// ErrRoleLinkExists is returned when the channel/role pair is already linked.
	ErrRoleLinkExists = errors.New("role link already exists")

	// ErrRoleLinkNotFound indicates that the channel/role pair is not linked.
	ErrRoleLinkNotFound = errors.New("role link not found")

	// ErrInvalidID is returned for non-positive channel or role identifiers.
	ErrInvalidID = errors.New("invalid identifier")
)
