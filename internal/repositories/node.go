package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/shared"
)

// NodeRepository persists catalog content nodes along with their genre and
// member link rows.
//
// Lookup by (bundle, title) is the reconciliation engine's identity rule, so
// FindByTitle returns at most one node even if concurrent writes managed to
// create duplicates.
type NodeRepository struct {
	db *sql.DB
}

// NewNodeRepository creates a new NodeRepository with the given database connection
func NewNodeRepository(db *sql.DB) *NodeRepository {
	return &NodeRepository{db: db}
}

const nodeColumns = `id, sequence, bundle, title, status, spotify_id, discogs_id,
	description, website, image_media_id, artist_node_id, artist_name, album,
	year, length_seconds, created_at, updated_at`

// Create inserts a new [models.Node] with a generated ID and sequence.
func (r *NodeRepository) Create(node *models.Node) error {
	sequence, err := NextSequence(r.db, "nodes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	node.ID = shared.GenerateID()
	node.Sequence = sequence
	now := time.Now().UTC()
	node.CreatedAt = now
	node.UpdatedAt = now

	if err := node.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO nodes (` + nodeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		node.ID,
		node.Sequence,
		node.Bundle,
		node.Title,
		node.Status,
		node.SpotifyID,
		node.DiscogsID,
		node.Description,
		node.Website,
		node.ImageMediaID,
		node.ArtistNodeID,
		node.ArtistName,
		node.Album,
		node.Year,
		node.LengthSeconds,
		node.CreatedAt,
		node.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert node: %w", err)
	}

	if err := r.replaceLinks(node); err != nil {
		return err
	}

	return nil
}

// Get retrieves a node by ID, including genre and member links.
func (r *NodeRepository) Get(id string) (*models.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE id = ?`
	node, err := r.scanOne(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: node %s", shared.ErrNotFound, id)
	}
	return node, nil
}

// FindByTitle retrieves the node with the given bundle and title, or nil
// when absent. Title matching is exact; this is the catalog's natural key.
func (r *NodeRepository) FindByTitle(bundle, title string) (*models.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE bundle = ? AND title = ? ORDER BY sequence LIMIT 1`
	return r.scanOne(r.db.QueryRow(query, bundle, title))
}

// Update modifies an existing node and replaces its link rows.
func (r *NodeRepository) Update(node *models.Node) error {
	if err := node.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	node.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE nodes
		SET bundle = ?, title = ?, status = ?, spotify_id = ?, discogs_id = ?,
			description = ?, website = ?, image_media_id = ?, artist_node_id = ?,
			artist_name = ?, album = ?, year = ?, length_seconds = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		node.Bundle,
		node.Title,
		node.Status,
		node.SpotifyID,
		node.DiscogsID,
		node.Description,
		node.Website,
		node.ImageMediaID,
		node.ArtistNodeID,
		node.ArtistName,
		node.Album,
		node.Year,
		node.LengthSeconds,
		node.UpdatedAt,
		node.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: node %s", shared.ErrNotFound, node.ID)
	}

	return r.replaceLinks(node)
}

// Delete removes a node and its link rows.
func (r *NodeRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM nodes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: node %s", shared.ErrNotFound, id)
	}

	return nil
}

// SongsByArtist retrieves every song node whose artist reference points at
// the given artist or band node.
func (r *NodeRepository) SongsByArtist(artistNodeID string) ([]*models.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE bundle = ? AND artist_node_id = ? ORDER BY sequence`

	rows, err := r.db.Query(query, models.BundleSong, artistNodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, node)
	}

	return songs, rows.Err()
}

// RepointSongs redirects every song referencing fromID to reference toID.
// Returns the number of songs rewired.
func (r *NodeRepository) RepointSongs(fromID, toID string) (int, error) {
	result, err := r.db.Exec(
		"UPDATE nodes SET artist_node_id = ?, updated_at = ? WHERE bundle = ? AND artist_node_id = ?",
		toID, time.Now().UTC(), models.BundleSong, fromID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to repoint songs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check repoint result: %w", err)
	}

	return int(rows), nil
}

// RepointMembers redirects every band membership referencing fromID to
// reference toID. Returns the number of memberships rewired.
func (r *NodeRepository) RepointMembers(fromID, toID string) (int, error) {
	result, err := r.db.Exec(
		"UPDATE node_members SET member_node_id = ? WHERE member_node_id = ?",
		toID, fromID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to repoint members: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check repoint result: %w", err)
	}

	return int(rows), nil
}

// List retrieves all nodes of a bundle ordered by sequence.
func (r *NodeRepository) List(bundle string) ([]*models.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE bundle = ? ORDER BY sequence`

	rows, err := r.db.Query(query, bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*models.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	return nodes, rows.Err()
}

// replaceLinks rewrites the genre and member link rows to match the node.
func (r *NodeRepository) replaceLinks(node *models.Node) error {
	if _, err := r.db.Exec("DELETE FROM node_genres WHERE node_id = ?", node.ID); err != nil {
		return fmt.Errorf("failed to clear genre links: %w", err)
	}
	for i, termID := range node.GenreTermIDs {
		if _, err := r.db.Exec(
			"INSERT INTO node_genres (node_id, term_id, ordering) VALUES (?, ?, ?)",
			node.ID, termID, i,
		); err != nil {
			return fmt.Errorf("failed to insert genre link: %w", err)
		}
	}

	if _, err := r.db.Exec("DELETE FROM node_members WHERE band_id = ?", node.ID); err != nil {
		return fmt.Errorf("failed to clear member links: %w", err)
	}
	for i, memberID := range node.MemberNodeIDs {
		if _, err := r.db.Exec(
			"INSERT OR IGNORE INTO node_members (band_id, member_node_id, ordering) VALUES (?, ?, ?)",
			node.ID, memberID, i,
		); err != nil {
			return fmt.Errorf("failed to insert member link: %w", err)
		}
	}

	return nil
}

// rowScanner covers both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// scanOne scans a single node, returning nil (not an error) when no row matched.
func (r *NodeRepository) scanOne(row *sql.Row) (*models.Node, error) {
	node, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadLinks(node); err != nil {
		return nil, err
	}

	return node, nil
}

func scanNode(row rowScanner) (*models.Node, error) {
	var node models.Node
	err := row.Scan(
		&node.ID,
		&node.Sequence,
		&node.Bundle,
		&node.Title,
		&node.Status,
		&node.SpotifyID,
		&node.DiscogsID,
		&node.Description,
		&node.Website,
		&node.ImageMediaID,
		&node.ArtistNodeID,
		&node.ArtistName,
		&node.Album,
		&node.Year,
		&node.LengthSeconds,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan node: %w", err)
	}
	return &node, nil
}

// loadLinks populates the node's genre and member ID slices.
func (r *NodeRepository) loadLinks(node *models.Node) error {
	rows, err := r.db.Query(
		"SELECT term_id FROM node_genres WHERE node_id = ? ORDER BY ordering", node.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load genre links: %w", err)
	}
	defer rows.Close()

	node.GenreTermIDs = nil
	for rows.Next() {
		var termID string
		if err := rows.Scan(&termID); err != nil {
			return fmt.Errorf("failed to scan genre link: %w", err)
		}
		node.GenreTermIDs = append(node.GenreTermIDs, termID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	memberRows, err := r.db.Query(
		"SELECT member_node_id FROM node_members WHERE band_id = ? ORDER BY ordering", node.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load member links: %w", err)
	}
	defer memberRows.Close()

	node.MemberNodeIDs = nil
	for memberRows.Next() {
		var memberID string
		if err := memberRows.Scan(&memberID); err != nil {
			return fmt.Errorf("failed to scan member link: %w", err)
		}
		node.MemberNodeIDs = append(node.MemberNodeIDs, memberID)
	}

	return memberRows.Err()
}
