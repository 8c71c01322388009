package review

import (
	"context"
	"strings"

	"github.com/osalazarm/alertview/internal/datastore/entities"
	"github.com/osalazarm/alertview/internal/errors"
)

// ErrEmptyContent is returned when a note body is empty after trimming.
// Empty submissions are rejected before any store effect, never silently
// dropped.
var ErrEmptyContent = errors.New("note content is empty")

// Author identifies who wrote or last edited a note.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AddNote attaches a note to a managed alert. The parent record must
// exist; content must be non-empty after trimming.
func (s *Service) AddNote(ctx context.Context, managedAlertID uint, author Author, content string) (*entities.AlertNote, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyContent
	}

	// Verify the parent exists so a note can never outlive its record.
	if _, err := s.repo.GetManagedAlert(ctx, managedAlertID); err != nil {
		return nil, err
	}

	note := &entities.AlertNote{
		ManagedAlertID: managedAlertID,
		Content:        trimmed,
		AuthorID:       author.ID,
		AuthorName:     author.Name,
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// GetNotes returns a managed alert's notes oldest first. After the parent
// record is deleted this returns an empty list, not an error.
func (s *Service) GetNotes(ctx context.Context, managedAlertID uint) ([]entities.AlertNote, error) {
	return s.repo.ListNotes(ctx, managedAlertID)
}

// UpdateNote replaces a note's content and records the editor. Edits are
// last-write-wins: a conflicting concurrent edit overwrites the previous
// content without a version check. The note keeps its position in the
// ledger; only updated_at changes.
func (s *Service) UpdateNote(ctx context.Context, noteID uint, author Author, content string) (*entities.AlertNote, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyContent
	}
	return s.repo.UpdateNoteContent(ctx, noteID, trimmed, author.ID, author.Name)
}

// DeleteNote removes a single note.
func (s *Service) DeleteNote(ctx context.Context, noteID uint) error {
	return s.repo.DeleteNote(ctx, noteID)
}
