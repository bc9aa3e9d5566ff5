package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/merchant-insights/pkg/errors"
	"github.com/yanqian/merchant-insights/pkg/util"
)

const (
	maxNoteLength   = 5000
	maxTags         = 20
	maxTagLength    = 50
	maxAuthorLength = 100
	defaultAuthor   = "You"
)

// Service exposes product notes.
type Service interface {
	ListNotes(ctx context.Context, shopID, productID string) ([]Note, error)
	AddNote(ctx context.Context, req AddRequest) (Note, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires up the notes domain.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With("component", "notes.service"),
		now:    util.NowUTC,
		newID:  func() string { return uuid.NewString() },
	}
}

// ListNotes returns the product's notes, newest first.
func (s *service) ListNotes(ctx context.Context, shopID, productID string) ([]Note, error) {
	if !util.ValidProductID(productID) {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "productId must be a Shopify product GID", nil)
	}
	list, err := s.repo.ListNotes(ctx, shopID, productID)
	if err != nil {
		return nil, apperrors.Wrap("notes_error", "failed to load notes", err)
	}
	if list == nil {
		list = []Note{}
	}
	return list, nil
}

// AddNote validates and stores a note for a product.
func (s *service) AddNote(ctx context.Context, req AddRequest) (Note, error) {
	if !util.ValidProductID(req.ProductID) {
		return Note{}, apperrors.Wrap(apperrors.CodeInvalidInput, "productId must be a Shopify product GID", nil)
	}
	text := strings.TrimSpace(req.NoteText)
	if text == "" || utf8.RuneCountInString(text) > maxNoteLength {
		return Note{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("noteText must be 1-%d characters", maxNoteLength), nil)
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return Note{}, err
	}
	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = defaultAuthor
	}
	if utf8.RuneCountInString(author) > maxAuthorLength {
		return Note{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("author must be at most %d characters", maxAuthorLength), nil)
	}

	created, err := s.repo.CreateNote(ctx, req.ShopID, Note{
		ID:        s.newID(),
		ProductID: req.ProductID,
		Text:      text,
		Tags:      tags,
		Author:    author,
		CreatedAt: s.now(),
	})
	if err != nil {
		return Note{}, apperrors.Wrap("notes_error", "failed to store note", err)
	}
	s.logger.Info("note added", "shop", req.ShopID, "product", req.ProductID, "note", created.ID)
	return created, nil
}

// normalizeTags trims tags, drops blanks and keeps the first spelling of case-insensitive duplicates.
func normalizeTags(raw []string) ([]string, error) {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		tag := strings.TrimSpace(t)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > maxTagLength {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("tags must be at most %d characters", maxTagLength), nil)
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	if len(tags) > maxTags {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("at most %d tags allowed", maxTags), nil)
	}
	return tags, nil
}
