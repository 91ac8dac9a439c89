package dispatch

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-community-bot/internal/download"
	"github.com/tbourn/go-community-bot/internal/repo"
)

// Kind classifies an error condition raised during dispatch.
type Kind int

const (
	KindInternal Kind = iota
	KindUniqueViolation
	KindInvalidArgument
	KindMissingPermission
	KindNoPrivateMessage
	KindUnknownCommand
	KindDownloadFailure
	KindFileTooLarge
)

var kindNames = [...]string{
	KindInternal:          "internal",
	KindUniqueViolation:   "unique_violation",
	KindInvalidArgument:   "invalid_argument",
	KindMissingPermission: "missing_permission",
	KindNoPrivateMessage:  "no_private_message",
	KindUnknownCommand:    "unknown_command",
	KindDownloadFailure:   "download_failure",
	KindFileTooLarge:      "file_too_large",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Default user-facing messages per kind.
const (
	MsgInternal          = "Sorry, an error has occurred!"
	MsgInternalReported  = "Sorry, an error has occurred! The bot owner has been informed of this."
	MsgMissingPermission = "You don't have the permissions to do this!"
	MsgNoPrivateMessage  = "You cannot use this command in a private chat."
	MsgFileNotFound      = "The requested file was not found!"
	MsgDownloadFailed    = "An error has occurred while downloading the file!"
	MsgFileTooLarge      = "The file is too large!"
	MsgAlreadyExists     = "That already exists!"
)

// CommandError is an error condition with a user-facing message. Modules
// return it from handlers and commands; the dispatcher routes every one of
// them through the Reporter.
type CommandError struct {
	Kind    Kind
	Message string // shown to the user; empty means the kind's default
	Err     error  // underlying cause, logged but never shown
}

func (e *CommandError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// UserMessage returns the text to show the invoking user.
func (e *CommandError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindUniqueViolation:
		return MsgAlreadyExists
	case KindMissingPermission:
		return MsgMissingPermission
	case KindNoPrivateMessage:
		return MsgNoPrivateMessage
	case KindFileTooLarge:
		return MsgFileTooLarge
	case KindDownloadFailure:
		var de *download.Error
		if errors.As(e.Err, &de) && de.NotFound() {
			return MsgFileNotFound
		}
		return MsgDownloadFailed
	case KindUnknownCommand:
		return "Unknown command."
	case KindInvalidArgument:
		return "Invalid arguments."
	}
	return MsgInternal
}

// InvalidArgument reports malformed command syntax.
func InvalidArgument(msg string) *CommandError {
	return &CommandError{Kind: KindInvalidArgument, Message: msg}
}

// MissingArgument reports a required parameter that was not given.
func MissingArgument(param string) *CommandError {
	return InvalidArgument(fmt.Sprintf("You need to specify the %s!", param))
}

// AlreadyExists reports a uniqueness breach with a specific message.
func AlreadyExists(msg string, cause error) *CommandError {
	return &CommandError{Kind: KindUniqueViolation, Message: msg, Err: cause}
}

// MissingPermission reports a failed permission check.
func MissingPermission() *CommandError {
	return &CommandError{Kind: KindMissingPermission}
}

// NoPrivateMessage reports a community-only command used in a private chat.
func NoPrivateMessage() *CommandError {
	return &CommandError{Kind: KindNoPrivateMessage}
}

// UnknownCommand reports an invocation nothing handled.
func UnknownCommand(prefix, invoked string) *CommandError {
	return &CommandError{Kind: KindUnknownCommand, Message: fmt.Sprintf("Command `%s%s` not found.", prefix, invoked)}
}

// Internal wraps an unanticipated failure.
func Internal(err error) *CommandError {
	return &CommandError{Kind: KindInternal, Err: err}
}

// Classify maps any error onto a CommandError. Repository and download
// failures get their own kinds; everything unrecognized is internal.
func Classify(err error) *CommandError {
	if err == nil {
		return nil
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, repo.ErrUniqueViolation) {
		return &CommandError{Kind: KindUniqueViolation, Err: err}
	}
	if errors.Is(err, download.ErrFileTooLarge) {
		return &CommandError{Kind: KindFileTooLarge, Err: err}
	}
	var de *download.Error
	if errors.As(err, &de) {
		return &CommandError{Kind: KindDownloadFailure, Err: err}
	}
	return Internal(err)
}
