package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/store"
)

// Store implements store.Store on MongoDB. Collections mirror the sqlite
// tables one to one.
type Store struct {
	client     *mongo.Client
	notes      *mongo.Collection
	settings   *mongo.Collection
	contacts   *mongo.Collection
	commands   *mongo.Collection
	executions *mongo.Collection
	events     *mongo.Collection
}

// New connects to uri and selects database dbName ("voxctl" if empty).
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	if dbName == "" {
		dbName = "voxctl"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to mongodb: %v", store.ErrStorage, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("%w: pinging mongodb: %v", store.ErrStorage, err)
	}
	db := client.Database(dbName)
	return &Store{
		client:     client,
		notes:      db.Collection("notes"),
		settings:   db.Collection("user_settings"),
		contacts:   db.Collection("contacts"),
		commands:   db.Collection("commands"),
		executions: db.Collection("tool_executions"),
		events:     db.Collection("realtime_events"),
	}, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

type noteDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id,omitempty"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	Tags      []string  `bson:"tags,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d noteDocument) toNote() notes.Note {
	return notes.Note{
		ID: d.ID, UserID: d.UserID, Title: d.Title, Content: d.Content,
		Tags: d.Tags, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

func (s *Store) CreateNote(ctx context.Context, n notes.Note) error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: note title must not be empty", store.ErrValidation)
	}
	doc := noteDocument{
		ID: n.ID, UserID: n.UserID, Title: n.Title, Content: n.Content,
		Tags: n.Tags, CreatedAt: n.CreatedAt.UTC(), UpdatedAt: n.UpdatedAt.UTC(),
	}
	if _, err := s.notes.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("%w: inserting note: %v", store.ErrStorage, err)
	}
	return nil
}

func (s *Store) findNotes(ctx context.Context, filter bson.M, limit int) ([]notes.Note, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.notes.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: querying notes: %v", store.ErrStorage, err)
	}
	defer cur.Close(ctx)

	var out []notes.Note
	for cur.Next(ctx) {
		var doc noteDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decoding note: %v", store.ErrStorage, err)
		}
		out = append(out, doc.toNote())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading notes cursor: %v", store.ErrStorage, err)
	}
	return out, nil
}

func (s *Store) ListNotes(ctx context.Context, userID string, limit int) ([]notes.Note, error) {
	if limit <= 0 {
		limit = 50
	}
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	return s.findNotes(ctx, filter, limit)
}

func (s *Store) UpdateNote(ctx context.Context, id string, patch store.NotePatch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Tags != nil {
		set["tags"] = patch.Tags
	}
	res, err := s.notes.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%w: updating note: %v", store.ErrStorage, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, id string) error {
	res, err := s.notes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: deleting note: %v", store.ErrStorage, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SearchNotes(ctx context.Context, query string, limit int) ([]notes.Note, error) {
	if limit <= 0 {
		limit = 10
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return s.findNotes(ctx, bson.M{}, limit)
	}
	regex := primitive.Regex{Pattern: regexQuote(q), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": regex},
		bson.M{"content": regex},
	}}
	return s.findNotes(ctx, filter, limit)
}

func regexQuote(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type settingsDocument struct {
	UserID         string    `bson:"_id"`
	Name           string    `bson:"name"`
	Email          string    `bson:"email"`
	Bio            string    `bson:"bio,omitempty"`
	FavoriteMusic  string    `bson:"favorite_music,omitempty"`
	FavoriteMovies string    `bson:"favorite_movies,omitempty"`
	Summary        string    `bson:"summary,omitempty"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (s *Store) GetSettings(ctx context.Context, userID string) (store.Settings, error) {
	var doc settingsDocument
	err := s.settings.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return store.Settings{}, store.ErrNotFound
	}
	if err != nil {
		return store.Settings{}, fmt.Errorf("%w: finding settings: %v", store.ErrStorage, err)
	}
	return store.Settings{
		UserID: doc.UserID, Name: doc.Name, Email: doc.Email, Bio: doc.Bio,
		FavoriteMusic: doc.FavoriteMusic, FavoriteMovies: doc.FavoriteMovies,
		Summary: doc.Summary, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *Store) SaveSettings(ctx context.Context, st store.Settings) (store.Settings, error) {
	if st.UserID == "" {
		return store.Settings{}, fmt.Errorf("%w: settings user id required", store.ErrValidation)
	}
	st.Summary = st.ComputeSummary()
	now := time.Now().UTC()
	st.UpdatedAt = now

	filter := bson.M{"_id": st.UserID}
	update := bson.M{
		"$set": bson.M{
			"name":            st.Name,
			"email":           st.Email,
			"bio":             st.Bio,
			"favorite_music":  st.FavoriteMusic,
			"favorite_movies": st.FavoriteMovies,
			"summary":         st.Summary,
			"updated_at":      now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.settings.UpdateOne(ctx, filter, update, opts); err != nil {
		return store.Settings{}, fmt.Errorf("%w: upserting settings: %v", store.ErrStorage, err)
	}
	return s.GetSettings(ctx, st.UserID)
}

type contactDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Nickname  string    `bson:"nickname,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (s *Store) ListContacts(ctx context.Context, userID string) ([]store.Contact, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cur, err := s.contacts.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: querying contacts: %v", store.ErrStorage, err)
	}
	defer cur.Close(ctx)

	var out []store.Contact
	for cur.Next(ctx) {
		var doc contactDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decoding contact: %v", store.ErrStorage, err)
		}
		out = append(out, store.Contact{
			ID: doc.ID, UserID: doc.UserID, Name: doc.Name, Email: doc.Email,
			Nickname: doc.Nickname, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt,
		})
	}
	return out, cur.Err()
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
	doc := contactDocument{
		ID: c.ID, UserID: c.UserID, Name: c.Name, Email: c.Email,
		Nickname: c.Nickname, CreatedAt: now, UpdatedAt: now,
	}
	if _, err := s.contacts.InsertOne(ctx, doc); err != nil {
		return store.Contact{}, fmt.Errorf("%w: inserting contact: %v", store.ErrStorage, err)
	}
	return c, nil
}

func (s *Store) UpdateContact(ctx context.Context, id string, patch store.ContactPatch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Nickname != nil {
		set["nickname"] = *patch.Nickname
	}
	res, err := s.contacts.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%w: updating contact: %v", store.ErrStorage, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteContact(ctx context.Context, id string) error {
	res, err := s.contacts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: deleting contact: %v", store.ErrStorage, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

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

type commandDocument struct {
	ID        string         `bson:"_id"`
	Action    string         `bson:"action"`
	Params    map[string]any `bson:"params"`
	Timestamp int64          `bson:"timestamp"`
	Executed  bool           `bson:"executed"`
}

func (s *Store) AddCommand(ctx context.Context, action string, params map[string]any) (store.Command, error) {
	id, err := notes.NewID()
	if err != nil {
		return store.Command{}, fmt.Errorf("%w: generating command id: %v", store.ErrStorage, err)
	}
	cmd := store.Command{
		ID: id, Action: action, Params: params, Timestamp: time.Now().UnixMilli(),
	}
	doc := commandDocument{ID: cmd.ID, Action: cmd.Action, Params: cmd.Params, Timestamp: cmd.Timestamp}
	if _, err := s.commands.InsertOne(ctx, doc); err != nil {
		return store.Command{}, fmt.Errorf("%w: inserting command: %v", store.ErrStorage, err)
	}
	return cmd, nil
}

// DrainCommands claims each pending command with an atomic
// FindOneAndUpdate so two pollers never deliver the same record.
func (s *Store) DrainCommands(ctx context.Context) ([]store.Command, error) {
	var out []store.Command
	opts := options.FindOneAndUpdate().SetSort(bson.M{"timestamp": 1})
	for {
		var doc commandDocument
		err := s.commands.FindOneAndUpdate(ctx,
			bson.M{"executed": false},
			bson.M{"$set": bson.M{"executed": true}},
			opts,
		).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: draining commands: %v", store.ErrStorage, err)
		}
		out = append(out, store.Command{
			ID: doc.ID, Action: doc.Action, Params: doc.Params,
			Timestamp: doc.Timestamp, Executed: true,
		})
	}
}

type executionDocument struct {
	ID            string         `bson:"_id"`
	SessionID     string         `bson:"session_id"`
	ToolName      string         `bson:"tool_name"`
	Input         map[string]any `bson:"input"`
	Output        any            `bson:"output"`
	Success       bool           `bson:"success"`
	ExecutionTime int64          `bson:"execution_time"`
	Timestamp     int64          `bson:"timestamp"`
}

func (s *Store) LogExecution(ctx context.Context, e store.Execution) error {
	id, err := notes.NewID()
	if err != nil {
		return fmt.Errorf("%w: generating execution id: %v", store.ErrStorage, err)
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	doc := executionDocument{
		ID: id, SessionID: e.SessionID, ToolName: e.ToolName, Input: e.Input,
		Output: e.Output, Success: e.Success, ExecutionTime: e.ExecutionTime,
		Timestamp: e.Timestamp,
	}
	if _, err := s.executions.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("%w: inserting execution: %v", store.ErrStorage, err)
	}
	return nil
}

func (s *Store) findExecutions(ctx context.Context, filter bson.M, limit int) ([]store.Execution, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.executions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: querying executions: %v", store.ErrStorage, err)
	}
	defer cur.Close(ctx)

	var out []store.Execution
	for cur.Next(ctx) {
		var doc executionDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decoding execution: %v", store.ErrStorage, err)
		}
		out = append(out, store.Execution{
			ID: doc.ID, SessionID: doc.SessionID, ToolName: doc.ToolName,
			Input: doc.Input, Output: doc.Output, Success: doc.Success,
			ExecutionTime: doc.ExecutionTime, Timestamp: doc.Timestamp,
		})
	}
	return out, cur.Err()
}

func (s *Store) SessionHistory(ctx context.Context, sessionID string) ([]store.Execution, error) {
	return s.findExecutions(ctx, bson.M{"session_id": sessionID}, 0)
}

func (s *Store) RecentExecutions(ctx context.Context, limit int) ([]store.Execution, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.findExecutions(ctx, bson.M{}, limit)
}

type eventDocument struct {
	ID        string         `bson:"_id"`
	Event     string         `bson:"event"`
	Data      map[string]any `bson:"data"`
	Timestamp int64          `bson:"timestamp"`
	Processed bool           `bson:"processed"`
}

func (s *Store) AddEvent(ctx context.Context, event string, data map[string]any) error {
	id, err := notes.NewID()
	if err != nil {
		return fmt.Errorf("%w: generating event id: %v", store.ErrStorage, err)
	}
	doc := eventDocument{ID: id, Event: event, Data: data, Timestamp: time.Now().UnixMilli()}
	if _, err := s.events.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("%w: inserting event: %v", store.ErrStorage, err)
	}
	return nil
}

func (s *Store) DrainEvents(ctx context.Context, limit int) ([]store.Event, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []store.Event
	opts := options.FindOneAndUpdate().SetSort(bson.M{"timestamp": -1})
	for len(out) < limit {
		var doc eventDocument
		err := s.events.FindOneAndUpdate(ctx,
			bson.M{"processed": false},
			bson.M{"$set": bson.M{"processed": true}},
			opts,
		).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: draining events: %v", store.ErrStorage, err)
		}
		out = append(out, store.Event{
			ID: doc.ID, Event: doc.Event, Data: doc.Data,
			Timestamp: doc.Timestamp, Processed: true,
		})
	}
	return out, nil
}
