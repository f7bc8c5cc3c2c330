package store

import (
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
	"github.com/mvp-joe/project-cortex/internal/model"
)

// DefaultBatchSize is the number of chunks persisted per transaction during
// bulk writes (spec §5 resource limits).
const DefaultBatchSize = 100

var statementBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// PutChunks persists chunks in batches of DefaultBatchSize, each batch in
// its own transaction. Chunks are upserted by chunk_id if already present,
// by chunk_hash uniqueness otherwise a HashCollision error is returned when
// two distinct chunk_ids produce the same hash for different content.
func (s *Store) PutChunks(chunks []model.Chunk) error {
	for start := 0; start < len(chunks); start += DefaultBatchSize {
		end := start + DefaultBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := s.putChunkBatch(chunks[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) putChunkBatch(batch []model.Chunk) error {
	tx, err := s.db.Begin()
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "begin chunk batch", err)
	}
	defer tx.Rollback()

	for i := range batch {
		if err := putChunk(tx, &batch[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "commit chunk batch", err)
	}
	return nil
}

func putChunk(tx *sql.Tx, c *model.Chunk) error {
	if c.ID == "" {
		c.ID = findChunkIDByFile(tx, c.FilePath, c.Name)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if err := checkHashCollision(tx, c); err != nil {
		return err
	}

	inheritance := strings.Join(c.Context.ClassInheritance, ",")

	_, err := statementBuilder.Insert("chunks").
		Columns(
			"chunk_id", "chunk_hash", "file_id", "file_path", "kind", "name", "content",
			"normalized_content", "start_line", "end_line", "start_byte", "end_byte",
			"line_count", "char_count", "language", "class_name", "class_inheritance",
			"module_path", "namespace", "method_signature", "is_top_level",
			"parent_chunk_hash", "documentation", "signature", "created_at_ms", "updated_at_ms",
		).
		Values(
			c.ID, c.ChunkHash, fileIDOrEmpty(tx, c.FilePath), c.FilePath, string(c.Kind), c.Name, c.Content,
			c.NormalizedContent, c.Span.StartLine, c.Span.EndLine, c.Span.StartByte, c.Span.EndByte,
			c.LineCount, c.CharCount, c.Language, nullableString(c.Context.ClassName), nullableString(inheritance),
			c.Context.ModulePath, nullableString(c.Context.Namespace), nullableString(c.Context.MethodSignature),
			boolToInt(c.Context.IsTopLevel), nullableString(c.Context.ParentChunkHash), c.Documentation, c.Signature,
			nowMillis(), nowMillis(),
		).
		Suffix(`ON CONFLICT(chunk_id) DO UPDATE SET
			chunk_hash = excluded.chunk_hash, content = excluded.content,
			normalized_content = excluded.normalized_content, start_line = excluded.start_line,
			end_line = excluded.end_line, start_byte = excluded.start_byte, end_byte = excluded.end_byte,
			line_count = excluded.line_count, char_count = excluded.char_count,
			class_name = excluded.class_name, class_inheritance = excluded.class_inheritance,
			method_signature = excluded.method_signature, documentation = excluded.documentation,
			signature = excluded.signature, updated_at_ms = excluded.updated_at_ms`).
		RunWith(tx).
		Exec()
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "upsert chunk "+c.Name, err)
	}
	return nil
}

// checkHashCollision returns indexerr.HashCollision if chunk_hash already
// belongs to a different chunk_id with different content (spec §7).
func checkHashCollision(tx *sql.Tx, c *model.Chunk) error {
	var existingID, existingContent string
	err := tx.QueryRow("SELECT chunk_id, content FROM chunks WHERE chunk_hash = ?", c.ChunkHash).Scan(&existingID, &existingContent)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "check hash collision", err)
	}
	if existingID != c.ID && existingContent != c.Content {
		return indexerr.New(indexerr.HashCollision, "chunk_hash "+c.ChunkHash+" collides between distinct content")
	}
	return nil
}

func findChunkIDByFile(tx *sql.Tx, filePath, name string) string {
	var id string
	err := tx.QueryRow("SELECT chunk_id FROM chunks WHERE file_path = ? AND name = ?", filePath, name).Scan(&id)
	if err != nil {
		return ""
	}
	return id
}

func fileIDOrEmpty(tx *sql.Tx, filePath string) string {
	var id string
	if err := tx.QueryRow("SELECT file_id FROM files WHERE file_path = ?", filePath).Scan(&id); err != nil {
		return ""
	}
	return id
}

// DeleteChunksForFile removes every chunk belonging to filePath, returning
// the deleted chunk IDs so callers can cascade the deletion into the
// vector and lexical side indexes (delete-before-add ordering, spec §5.L).
func (s *Store) DeleteChunksForFile(filePath string) ([]string, error) {
	rows, err := s.db.Query("SELECT chunk_id FROM chunks WHERE file_path = ?", filePath)
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "list chunks for delete", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, indexerr.Wrap(indexerr.StoreIOError, "scan chunk id", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	if _, err := s.db.Exec("DELETE FROM chunks WHERE file_path = ?", filePath); err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "delete chunks for "+filePath, err)
	}
	return ids, nil
}

// DeleteChunkByID removes a single chunk by its surrogate id.
func (s *Store) DeleteChunkByID(id string) error {
	if _, err := s.db.Exec("DELETE FROM chunks WHERE chunk_id = ?", id); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "delete chunk "+id, err)
	}
	return nil
}

// ChunkRow is a persisted chunk joined back to a flat row for callers that
// do not need the full model.Chunk shape (e.g. the ranker's candidate
// hydration step).
type ChunkRow struct {
	ChunkID       string
	FilePath      string
	Kind          string
	Name          string
	Content       string
	Documentation string
	Signature     string
	Language      string
	StartLine     int
	EndLine       int
}

// ChunkQuery filters a lexical search over chunks_fts by kind, language,
// owning file, line-count range, and an optional FTS match string (spec
// §4.F).
type ChunkQuery struct {
	Text     string
	Kind     string
	Language string
	FileID   string
	// MinLines and MaxLines bound chunk.line_count when positive; zero
	// means unbounded on that side.
	MinLines int
	MaxLines int
	Limit    int
	Offset   int
}

// QueryChunks runs an FTS5 match against chunks_fts, optionally narrowed by
// kind/language, ranked by BM25, with pagination.
func (s *Store) QueryChunks(q ChunkQuery) ([]ChunkRow, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	builder := statementBuilder.Select(
		"c.chunk_id", "c.file_path", "c.kind", "c.name", "c.content",
		"c.documentation", "c.signature", "c.language", "c.start_line", "c.end_line",
	).From("chunks_fts f").
		Join("chunks c ON c.chunk_id = f.chunk_id").
		OrderBy("bm25(chunks_fts)").
		Limit(uint64(limit)).
		Offset(uint64(q.Offset))

	if q.Text != "" {
		builder = builder.Where("chunks_fts MATCH ?", q.Text)
	}
	if q.Kind != "" {
		builder = builder.Where(sq.Eq{"c.kind": q.Kind})
	}
	if q.Language != "" {
		builder = builder.Where(sq.Eq{"c.language": q.Language})
	}
	if q.FileID != "" {
		builder = builder.Where(sq.Eq{"c.file_id": q.FileID})
	}
	if q.MinLines > 0 {
		builder = builder.Where(sq.GtOrEq{"c.line_count": q.MinLines})
	}
	if q.MaxLines > 0 {
		builder = builder.Where(sq.LtOrEq{"c.line_count": q.MaxLines})
	}

	rows, err := builder.RunWith(s.db).Query()
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "query chunks", err)
	}
	defer rows.Close()

	var out []ChunkRow
	for rows.Next() {
		var r ChunkRow
		if err := rows.Scan(&r.ChunkID, &r.FilePath, &r.Kind, &r.Name, &r.Content, &r.Documentation, &r.Signature, &r.Language, &r.StartLine, &r.EndLine); err != nil {
			return nil, indexerr.Wrap(indexerr.StoreIOError, "scan chunk row", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ChunkByID loads a single chunk row.
func (s *Store) ChunkByID(id string) (ChunkRow, error) {
	var r ChunkRow
	err := s.db.QueryRow(`
		SELECT chunk_id, file_path, kind, name, content, documentation, signature, language, start_line, end_line
		FROM chunks WHERE chunk_id = ?`, id,
	).Scan(&r.ChunkID, &r.FilePath, &r.Kind, &r.Name, &r.Content, &r.Documentation, &r.Signature, &r.Language, &r.StartLine, &r.EndLine)
	if err == sql.ErrNoRows {
		return r, indexerr.New(indexerr.StoreIOError, "chunk not found: "+id)
	}
	if err != nil {
		return r, indexerr.Wrap(indexerr.StoreIOError, "load chunk "+id, err)
	}
	return r, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
