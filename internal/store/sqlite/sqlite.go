package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"
	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/store"
)

// Store implements store.Store using SQLite via Turso/libSQL.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database under dataDir.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", store.ErrStorage, err)
	}

	dbPath := filepath.Join(dataDir, "voxctl.db")
	db, err := sql.Open("libsql", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", store.ErrStorage, err)
	}

	// The PRAGMA returns the resulting mode as a row, so it must be read
	// as a query, not executed.
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode=WAL").Scan(&mode); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling WAL mode: %v", store.ErrStorage, err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// createSchema runs one statement per Exec; the driver stops after the
// first statement of a batched script.
func createSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			id         TEXT PRIMARY KEY,
			user_id    TEXT,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			tags       TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id         TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			email           TEXT NOT NULL,
			bio             TEXT,
			favorite_music  TEXT,
			favorite_movies TEXT,
			summary         TEXT,
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			nickname   TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_user ON contacts(user_id)`,
		`CREATE TABLE IF NOT EXISTS commands (
			id        TEXT PRIMARY KEY,
			action    TEXT NOT NULL,
			params    TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			executed  INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_commands_executed ON commands(executed)`,
		`CREATE TABLE IF NOT EXISTS tool_executions (
			id             TEXT PRIMARY KEY,
			session_id     TEXT NOT NULL,
			tool_name      TEXT NOT NULL,
			input          TEXT NOT NULL,
			output         TEXT NOT NULL,
			success        INTEGER NOT NULL,
			execution_time INTEGER NOT NULL,
			timestamp      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_session ON tool_executions(session_id)`,
		`CREATE TABLE IF NOT EXISTS realtime_events (
			id        TEXT PRIMARY KEY,
			event     TEXT NOT NULL,
			data      TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			processed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_processed ON realtime_events(processed)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: creating schema: %v", store.ErrStorage, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func encodeJSON(v any) string {
	if v == nil {
		return "{}"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func decodeMap(raw string) map[string]any {
	m := map[string]any{}
	_ = json.Unmarshal([]byte(raw), &m)
	return m
}

// --- Notes ---

func (s *Store) CreateNote(ctx context.Context, n notes.Note) error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: note title must not be empty", store.ErrValidation)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (id, user_id, title, content, tags, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		n.ID, n.UserID, n.Title, n.Content, encodeJSON(n.Tags),
		n.CreatedAt.UTC().Format(time.RFC3339), n.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: inserting note: %v", store.ErrStorage, err)
	}
	return nil
}

func (s *Store) scanNotes(rows *sql.Rows) ([]notes.Note, error) {
	var out []notes.Note
	for rows.Next() {
		var n notes.Note
		var userID, tagsRaw sql.NullString
		var createdStr, updatedStr string
		if err := rows.Scan(&n.ID, &userID, &n.Title, &n.Content, &tagsRaw, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("%w: scanning note: %v", store.ErrStorage, err)
		}
		n.UserID = userID.String
		if tagsRaw.Valid && tagsRaw.String != "" {
			_ = json.Unmarshal([]byte(tagsRaw.String), &n.Tags)
		}
		n.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		n.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) ListNotes(ctx context.Context, userID string, limit int) ([]notes.Note, error) {
	if limit <= 0 {
		limit = 50
	}
	query := "SELECT id, user_id, title, content, tags, created_at, updated_at FROM notes"
	args := []any{}
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing notes: %v", store.ErrStorage, err)
	}
	defer rows.Close()
	return s.scanNotes(rows)
}

func (s *Store) UpdateNote(ctx context.Context, id string, patch store.NotePatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *patch.Content)
	}
	if patch.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, encodeJSON(patch.Tags))
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("%w: updating note: %v", store.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting note: %v", store.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SearchNotes matches query case-insensitively against title and content.
// An empty query returns the most recent notes.
func (s *Store) SearchNotes(ctx context.Context, query string, limit int) ([]notes.Note, error) {
	if limit <= 0 {
		limit = 10
	}
	q := strings.TrimSpace(strings.ToLower(query))
	var rows *sql.Rows
	var err error
	if q == "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, user_id, title, content, tags, created_at, updated_at FROM notes ORDER BY created_at DESC LIMIT ?",
			limit)
	} else {
		like := "%" + q + "%"
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, user_id, title, content, tags, created_at, updated_at FROM notes
			 WHERE lower(title) LIKE ? OR lower(content) LIKE ?
			 ORDER BY created_at DESC LIMIT ?`,
			like, like, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: searching notes: %v", store.ErrStorage, err)
	}
	defer rows.Close()
	return s.scanNotes(rows)
}

// --- Settings ---

func (s *Store) GetSettings(ctx context.Context, userID string) (store.Settings, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, name, email, bio, favorite_music, favorite_movies, summary, created_at, updated_at
		 FROM user_settings WHERE user_id = ?`, userID)

	var st store.Settings
	var bio, music, movies, summary sql.NullString
	var createdStr, updatedStr string
	err := row.Scan(&st.UserID, &st.Name, &st.Email, &bio, &music, &movies, &summary, &createdStr, &updatedStr)
	if err == sql.ErrNoRows {
		return store.Settings{}, store.ErrNotFound
	}
	if err != nil {
		return store.Settings{}, fmt.Errorf("%w: querying settings: %v", store.ErrStorage, err)
	}
	st.Bio, st.FavoriteMusic, st.FavoriteMovies, st.Summary = bio.String, music.String, movies.String, summary.String
	st.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	st.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return st, nil
}

// SaveSettings upserts the single settings row for the user and recomputes
// the summary.
func (s *Store) SaveSettings(ctx context.Context, st store.Settings) (store.Settings, error) {
	if st.UserID == "" {
		return store.Settings{}, fmt.Errorf("%w: settings user id required", store.ErrValidation)
	}
	st.Summary = st.ComputeSummary()
	// RFC3339 columns carry second precision; truncating keeps the
	// returned timestamps identical to what a re-read yields.
	now := time.Now().UTC().Truncate(time.Second)
	st.UpdatedAt = now

	existing, err := s.GetSettings(ctx, st.UserID)
	if err == nil {
		st.CreatedAt = existing.CreatedAt
		_, err = s.db.ExecContext(ctx,
			`UPDATE user_settings SET name = ?, email = ?, bio = ?, favorite_music = ?, favorite_movies = ?, summary = ?, updated_at = ?
			 WHERE user_id = ?`,
			st.Name, st.Email, st.Bio, st.FavoriteMusic, st.FavoriteMovies, st.Summary,
			now.Format(time.RFC3339), st.UserID)
		if err != nil {
			return store.Settings{}, fmt.Errorf("%w: updating settings: %v", store.ErrStorage, err)
		}
		return st, nil
	}
	if err != store.ErrNotFound {
		return store.Settings{}, err
	}

	st.CreatedAt = now
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, name, email, bio, favorite_music, favorite_movies, summary, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.UserID, st.Name, st.Email, st.Bio, st.FavoriteMusic, st.FavoriteMovies, st.Summary,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return store.Settings{}, fmt.Errorf("%w: inserting settings: %v", store.ErrStorage, err)
	}
	return st, nil
}

// --- Contacts ---

func (s *Store) ListContacts(ctx context.Context, userID string) ([]store.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, email, nickname, created_at, updated_at FROM contacts WHERE user_id = ? ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing contacts: %v", store.ErrStorage, err)
	}
	defer rows.Close()

	var out []store.Contact
	for rows.Next() {
		var c store.Contact
		var nickname sql.NullString
		var createdStr, updatedStr string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &nickname, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("%w: scanning contact: %v", store.ErrStorage, err)
		}
		c.Nickname = nickname.String
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) AddContact(ctx context.Context, c store.Contact) (store.Contact, error) {
	if c.ID == "" {
		id, err := notes.NewID()
		if err != nil {
			return store.Contact{}, fmt.Errorf("%w: generating contact id: %v", store.ErrStorage, err)
		}
		c.ID = id
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO contacts (id, user_id, name, email, nickname, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.UserID, c.Name, c.Email, c.Nickname, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return store.Contact{}, fmt.Errorf("%w: inserting contact: %v", store.ErrStorage, err)
	}
	return c, nil
}

func (s *Store) UpdateContact(ctx context.Context, id string, patch store.ContactPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Nickname != nil {
		sets = append(sets, "nickname = ?")
		args = append(args, *patch.Nickname)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE contacts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("%w: updating contact: %v", store.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting contact: %v", store.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// FindContactByName matches name or nickname, case-insensitive containment.
func (s *Store) FindContactByName(ctx context.Context, userID, name string) (store.Contact, error) {
	contacts, err := s.ListContacts(ctx, userID)
	if err != nil {
		return store.Contact{}, err
	}
	lower := strings.ToLower(name)
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.Name), lower) ||
			(c.Nickname != "" && strings.Contains(strings.ToLower(c.Nickname), lower)) {
			return c, nil
		}
	}
	return store.Contact{}, store.ErrNotFound
}

// --- Commands ---

func (s *Store) AddCommand(ctx context.Context, action string, params map[string]any) (store.Command, error) {
	id, err := notes.NewID()
	if err != nil {
		return store.Command{}, fmt.Errorf("%w: generating command id: %v", store.ErrStorage, err)
	}
	cmd := store.Command{
		ID:        id,
		Action:    action,
		Params:    params,
		Timestamp: time.Now().UnixMilli(),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO commands (id, action, params, timestamp, executed) VALUES (?, ?, ?, ?, 0)",
		cmd.ID, cmd.Action, encodeJSON(cmd.Params), cmd.Timestamp)
	if err != nil {
		return store.Command{}, fmt.Errorf("%w: inserting command: %v", store.ErrStorage, err)
	}
	return cmd, nil
}

// DrainCommands returns every unexecuted command and marks it executed in
// the same transaction, so each record is delivered at most once.
func (s *Store) DrainCommands(ctx context.Context) ([]store.Command, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: beginning drain: %v", store.ErrStorage, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		"SELECT id, action, params, timestamp FROM commands WHERE executed = 0 ORDER BY timestamp")
	if err != nil {
		return nil, fmt.Errorf("%w: querying commands: %v", store.ErrStorage, err)
	}

	var out []store.Command
	for rows.Next() {
		var cmd store.Command
		var paramsRaw string
		if err := rows.Scan(&cmd.ID, &cmd.Action, &paramsRaw, &cmd.Timestamp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scanning command: %v", store.ErrStorage, err)
		}
		cmd.Params = decodeMap(paramsRaw)
		cmd.Executed = true
		out = append(out, cmd)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading commands: %v", store.ErrStorage, err)
	}

	for _, cmd := range out {
		if _, err := tx.ExecContext(ctx, "UPDATE commands SET executed = 1 WHERE id = ?", cmd.ID); err != nil {
			return nil, fmt.Errorf("%w: marking command executed: %v", store.ErrStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing drain: %v", store.ErrStorage, err)
	}
	return out, nil
}

// --- Execution log ---

func (s *Store) LogExecution(ctx context.Context, e store.Execution) error {
	id, err := notes.NewID()
	if err != nil {
		return fmt.Errorf("%w: generating execution id: %v", store.ErrStorage, err)
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tool_executions (id, session_id, tool_name, input, output, success, execution_time, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.SessionID, e.ToolName, encodeJSON(e.Input), encodeJSON(e.Output),
		boolToInt(e.Success), e.ExecutionTime, e.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: inserting execution: %v", store.ErrStorage, err)
	}
	return nil
}

func (s *Store) scanExecutions(rows *sql.Rows) ([]store.Execution, error) {
	var out []store.Execution
	for rows.Next() {
		var e store.Execution
		var inputRaw, outputRaw string
		var success int
		if err := rows.Scan(&e.ID, &e.SessionID, &e.ToolName, &inputRaw, &outputRaw, &success, &e.ExecutionTime, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scanning execution: %v", store.ErrStorage, err)
		}
		e.Input = decodeMap(inputRaw)
		var output any
		_ = json.Unmarshal([]byte(outputRaw), &output)
		e.Output = output
		e.Success = success != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) SessionHistory(ctx context.Context, sessionID string) ([]store.Execution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, tool_name, input, output, success, execution_time, timestamp
		 FROM tool_executions WHERE session_id = ? ORDER BY timestamp DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying session history: %v", store.ErrStorage, err)
	}
	defer rows.Close()
	return s.scanExecutions(rows)
}

func (s *Store) RecentExecutions(ctx context.Context, limit int) ([]store.Execution, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, tool_name, input, output, success, execution_time, timestamp
		 FROM tool_executions ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying recent executions: %v", store.ErrStorage, err)
	}
	defer rows.Close()
	return s.scanExecutions(rows)
}

// --- Realtime events ---

func (s *Store) AddEvent(ctx context.Context, event string, data map[string]any) error {
	id, err := notes.NewID()
	if err != nil {
		return fmt.Errorf("%w: generating event id: %v", store.ErrStorage, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO realtime_events (id, event, data, timestamp, processed) VALUES (?, ?, ?, ?, 0)",
		id, event, encodeJSON(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: inserting event: %v", store.ErrStorage, err)
	}
	return nil
}

// DrainEvents mirrors DrainCommands for realtime events, newest first.
func (s *Store) DrainEvents(ctx context.Context, limit int) ([]store.Event, error) {
	if limit <= 0 {
		limit = 10
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: beginning event drain: %v", store.ErrStorage, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		"SELECT id, event, data, timestamp FROM realtime_events WHERE processed = 0 ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying events: %v", store.ErrStorage, err)
	}

	var out []store.Event
	for rows.Next() {
		var e store.Event
		var dataRaw string
		if err := rows.Scan(&e.ID, &e.Event, &dataRaw, &e.Timestamp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scanning event: %v", store.ErrStorage, err)
		}
		e.Data = decodeMap(dataRaw)
		e.Processed = true
		out = append(out, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading events: %v", store.ErrStorage, err)
	}

	for _, e := range out {
		if _, err := tx.ExecContext(ctx, "UPDATE realtime_events SET processed = 1 WHERE id = ?", e.ID); err != nil {
			return nil, fmt.Errorf("%w: marking event processed: %v", store.ErrStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing event drain: %v", store.ErrStorage, err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
