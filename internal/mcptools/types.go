package mcptools

// CreateNoteInput is the input schema for the create_note MCP tool.
type CreateNoteInput struct {
	Title   string   `json:"title,omitempty" jsonschema-description:"Note title; a default is used when empty"`
	Content string   `json:"content" jsonschema-description:"Note body text"`
	Tags    []string `json:"tags,omitempty" jsonschema-description:"Optional tags attached to the note"`
}

// CreateNoteOutput is the output schema for the create_note MCP tool.
type CreateNoteOutput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// SearchNotesInput is the input schema for the search_notes MCP tool.
type SearchNotesInput struct {
	Query string `json:"query" jsonschema-description:"Text to search for in note titles and content"`
	Limit int    `json:"limit" jsonschema-description:"Maximum number of results to return"`
}

// SearchNotesOutput is the output schema for the search_notes MCP tool.
type SearchNotesOutput struct {
	Notes []NoteResult `json:"notes"`
}

// NoteResult is the common output format for note-related MCP tools.
type NoteResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
	Date    string `json:"date"`
}
