package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/shared"
)

// TermRepository persists taxonomy terms. Terms are deduplicated by
// (vocabulary, name) and never deleted.
type TermRepository struct {
	db *sql.DB
}

// NewTermRepository creates a new TermRepository with the given database connection
func NewTermRepository(db *sql.DB) *TermRepository {
	return &TermRepository{db: db}
}

// Create inserts a new [models.Term] with a generated ID and sequence.
func (r *TermRepository) Create(term *models.Term) error {
	sequence, err := NextSequence(r.db, "terms")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	term.ID = shared.GenerateID()
	term.Sequence = sequence
	term.CreatedAt = time.Now().UTC()

	if err := term.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, err = r.db.Exec(
		"INSERT INTO terms (id, sequence, vocabulary, name, created_at) VALUES (?, ?, ?, ?, ?)",
		term.ID, term.Sequence, term.Vocabulary, term.Name, term.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert term: %w", err)
	}

	return nil
}

// FindByName retrieves the term with the given vocabulary and name, or nil
// when absent.
func (r *TermRepository) FindByName(vocabulary, name string) (*models.Term, error) {
	var term models.Term
	err := r.db.QueryRow(
		"SELECT id, sequence, vocabulary, name, created_at FROM terms WHERE vocabulary = ? AND name = ?",
		vocabulary, name,
	).Scan(&term.ID, &term.Sequence, &term.Vocabulary, &term.Name, &term.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan term: %w", err)
	}

	return &term, nil
}

// Get retrieves a term by ID.
func (r *TermRepository) Get(id string) (*models.Term, error) {
	var term models.Term
	err := r.db.QueryRow(
		"SELECT id, sequence, vocabulary, name, created_at FROM terms WHERE id = ?",
		id,
	).Scan(&term.ID, &term.Sequence, &term.Vocabulary, &term.Name, &term.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: term %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan term: %w", err)
	}

	return &term, nil
}
