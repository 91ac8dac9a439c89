// Package services – CommandService
//
// This file implements custom commands: trigger/response pairs defined by a
// community's administrators, optionally carrying a file. Attachments are
// fetched through the bounded downloader and stored under
// <media root>/commands/<community id>/<uuid><ext>; the store keeps the
// path relative to the media root.
//
// A stored file is removed whenever the row referencing it is not written
// (failed insert/update) or no longer references it (edit, delete).
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-community-bot/internal/domain"
	"github.com/tbourn/go-community-bot/internal/repo"
)

// CommandRepo defines the repository contract required by CommandService.
type CommandRepo interface {
	FindByTrigger(ctx context.Context, communityID int64, trigger string) (repo.Option[domain.CustomCommand], error)
	ListTriggers(ctx context.Context, communityID int64) ([]string, error)
	ListByCommunity(ctx context.Context, communityID int64) ([]domain.CustomCommand, error)
	AddToCommunity(ctx context.Context, communityID int64, p domain.ParsedCommand) error
	UpdateInCommunity(ctx context.Context, communityID int64, p domain.ParsedCommand) (bool, error)
	DeleteFromCommunity(ctx context.Context, communityID int64, trigger string) (repo.Option[domain.CustomCommand], error)
	Stats(ctx context.Context, communityID int64) (int64, *time.Time, error)
}

// CommunityEnsurer creates the owning community row on demand.
type CommunityEnsurer interface {
	CreateOrFetch(ctx context.Context, id int64, name string) (domain.Community, error)
}

// Fetcher downloads a remote file to dest with a size cap.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) (int64, error)
}

// Attachment is a remote file to store with a command.
type Attachment struct {
	URL      string
	FileName string
}

// CommandService manages custom commands.
type CommandService struct {
	Repo        CommandRepo
	Communities CommunityEnsurer
	Files       Fetcher

	// MediaRoot is the directory stored file paths are relative to.
	MediaRoot string
	// TriggerMaxLen caps triggers by rune length.
	TriggerMaxLen int
}

// NewCommandService constructs a CommandService with default limits.
func NewCommandService(r CommandRepo, communities CommunityEnsurer, files Fetcher, mediaRoot string) *CommandService {
	return &CommandService{
		Repo:          r,
		Communities:   communities,
		Files:         files,
		MediaRoot:     mediaRoot,
		TriggerMaxLen: 64,
	}
}

// Add defines a new command. The trigger must not exist yet.
func (s *CommandService) Add(ctx context.Context, communityID int64, trigger, response string, att *Attachment) error {
	p, err := s.parse(trigger, response, att)
	if err != nil {
		return err
	}
	if _, err := s.Communities.CreateOrFetch(ctx, communityID, ""); err != nil {
		return err
	}

	existing, err := s.Repo.FindByTrigger(ctx, communityID, p.Trigger)
	if err != nil {
		return err
	}
	if existing.IsSome() {
		return ErrCommandExists
	}

	if att != nil {
		if p, err = s.store(ctx, communityID, p, att); err != nil {
			return err
		}
	}

	if err := s.Repo.AddToCommunity(ctx, communityID, p); err != nil {
		s.removeFile(p.PathRelative)
		if errors.Is(err, repo.ErrUniqueViolation) {
			return fmt.Errorf("%w: %v", ErrCommandExists, err)
		}
		return err
	}
	return nil
}

// Edit replaces the response and attachment of an existing command.
func (s *CommandService) Edit(ctx context.Context, communityID int64, trigger, response string, att *Attachment) error {
	p, err := s.parse(trigger, response, att)
	if err != nil {
		return err
	}

	row, err := s.Repo.FindByTrigger(ctx, communityID, p.Trigger)
	if err != nil {
		return err
	}
	old, ok := row.Get()
	if !ok {
		return ErrCommandNotFound
	}

	if att == nil {
		// Keep the current file when no new one is attached.
		p.PathRelative, p.FileName = old.File, old.OriginalFileName
	} else if p, err = s.store(ctx, communityID, p, att); err != nil {
		return err
	}

	updated, err := s.Repo.UpdateInCommunity(ctx, communityID, p)
	if err != nil || !updated {
		if p.PathRelative != old.File {
			s.removeFile(p.PathRelative)
		}
		if err != nil {
			return err
		}
		return ErrCommandNotFound
	}
	if old.File != p.PathRelative {
		s.removeFile(old.File)
	}
	return nil
}

// Remove deletes a command and its stored file.
func (s *CommandService) Remove(ctx context.Context, communityID int64, trigger string) (domain.CustomCommand, error) {
	row, err := s.Repo.DeleteFromCommunity(ctx, communityID, normalizeTrigger(trigger))
	if err != nil {
		return domain.CustomCommand{}, err
	}
	c, ok := row.Get()
	if !ok {
		return domain.CustomCommand{}, ErrCommandNotFound
	}
	s.removeFile(c.File)
	return c, nil
}

// Lookup returns the command for trigger, if defined.
func (s *CommandService) Lookup(ctx context.Context, communityID int64, trigger string) (domain.CustomCommand, bool, error) {
	row, err := s.Repo.FindByTrigger(ctx, communityID, normalizeTrigger(trigger))
	if err != nil {
		return domain.CustomCommand{}, false, err
	}
	c, ok := row.Get()
	return c, ok, nil
}

// Triggers returns the community's triggers in ascending order.
func (s *CommandService) Triggers(ctx context.Context, communityID int64) ([]string, error) {
	return s.Repo.ListTriggers(ctx, communityID)
}

// List returns the community's commands ordered by trigger.
func (s *CommandService) List(ctx context.Context, communityID int64) ([]domain.CustomCommand, error) {
	return s.Repo.ListByCommunity(ctx, communityID)
}

// Stats returns the command count and latest update, for ETags.
func (s *CommandService) Stats(ctx context.Context, communityID int64) (int64, *time.Time, error) {
	return s.Repo.Stats(ctx, communityID)
}

// FilePath resolves a stored relative path against the media root.
func (s *CommandService) FilePath(rel string) string {
	return filepath.Join(s.MediaRoot, filepath.FromSlash(rel))
}

func (s *CommandService) parse(trigger, response string, att *Attachment) (domain.ParsedCommand, error) {
	trigger = normalizeTrigger(trigger)
	if trigger == "" {
		return domain.ParsedCommand{}, ErrEmptyTrigger
	}
	if s.TriggerMaxLen > 0 && utf8.RuneCountInString(trigger) > s.TriggerMaxLen {
		return domain.ParsedCommand{}, ErrTriggerTooLong
	}
	response = strings.TrimSpace(response)
	if response == "" && att == nil {
		return domain.ParsedCommand{}, ErrEmptyResponse
	}
	return domain.ParsedCommand{Trigger: trigger, Response: response}, nil
}

// store downloads att and records its location in p.
func (s *CommandService) store(ctx context.Context, communityID int64, p domain.ParsedCommand, att *Attachment) (domain.ParsedCommand, error) {
	name := filepath.Base(att.FileName)
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}
	rel := path.Join("commands", strconv.FormatInt(communityID, 10), uuid.NewString()+strings.ToLower(filepath.Ext(name)))
	if _, err := s.Files.Fetch(ctx, att.URL, s.FilePath(rel)); err != nil {
		return p, err
	}
	p.PathRelative = rel
	p.FileName = name
	return p, nil
}

func (s *CommandService) removeFile(rel string) {
	if rel == "" {
		return
	}
	if err := os.Remove(s.FilePath(rel)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", rel).Msg("remove stored command file")
	}
}

// normalizeTrigger trims whitespace and applies NFC.
func normalizeTrigger(t string) string {
	return norm.NFC.String(strings.TrimSpace(t))
}
