package docstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// VecIndex is a sqlite-vec backed sidecar holding document embeddings.
// The Engine queries it to raise the scores of keyword retrieval
// results whose documents are also semantically close to the query;
// it does not add retrieval candidates of its own. It is
// not the system of record: the JSON snapshot (persist.go) is. This
// index can always be rebuilt from the store's current documents.
type VecIndex struct {
	db  *sql.DB
	dim int
}

// OpenVecIndex opens (or creates) the sqlite-vec database at dbPath.
func OpenVecIndex(dbPath string, embeddingDim int) (*VecIndex, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("docstore: create vec index directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("docstore: open vec index: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("docstore: ping vec index: %w", err)
	}
	ddl := fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS vec_documents USING vec0(
		document_id TEXT PRIMARY KEY,
		embedding float[%d]
	);`, embeddingDim)
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("docstore: create vec schema: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &VecIndex{db: db, dim: embeddingDim}, nil
}

// Close releases the underlying database handle.
func (v *VecIndex) Close() error {
	return v.db.Close()
}

// Upsert stores or replaces the embedding for a document id.
func (v *VecIndex) Upsert(ctx context.Context, documentID string, embedding []float32) error {
	if len(embedding) != v.dim {
		return fmt.Errorf("docstore: embedding dim %d does not match index dim %d", len(embedding), v.dim)
	}
	_, err := v.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO vec_documents (document_id, embedding) VALUES (?, ?)",
		documentID, serializeFloat32(embedding))
	return err
}

// Delete removes a document's embedding, e.g. on purge.
func (v *VecIndex) Delete(ctx context.Context, documentID string) error {
	_, err := v.db.ExecContext(ctx, "DELETE FROM vec_documents WHERE document_id = ?", documentID)
	return err
}

// VecMatch is one nearest-neighbor hit.
type VecMatch struct {
	DocumentID string
	Similarity float64 // 1 - cosine distance
}

// Search performs a KNN search over stored document embeddings.
func (v *VecIndex) Search(ctx context.Context, query []float32, k int) ([]VecMatch, error) {
	rows, err := v.db.QueryContext(ctx, `
		SELECT document_id, distance
		FROM vec_documents
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance
	`, serializeFloat32(query), k)
	if err != nil {
		return nil, fmt.Errorf("docstore: vector search: %w", err)
	}
	defer rows.Close()

	var out []VecMatch
	for rows.Next() {
		var id string
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, err
		}
		out = append(out, VecMatch{DocumentID: id, Similarity: 1 - distance})
	}
	return out, rows.Err()
}

// serializeFloat32 converts a float32 slice to little-endian bytes, the
// wire format sqlite-vec expects for a MATCH query parameter.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
