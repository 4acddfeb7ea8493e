package rest

// wireTask is a task as the server sends it. The identifier arrives as
// "_id"; "id" is accepted as a fallback.
type wireTask struct {
	MongoID   string `json:"_id"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	DueDate   string `json:"dueDate"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority"`
}

// createBody is the POST / payload.
type createBody struct {
	Title     string `json:"title"`
	Type      string `json:"type"`
	DueDate   string `json:"dueDate"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority"`
}

// patchBody is the PUT /{id} payload; only set fields are sent.
type patchBody struct {
	Title     *string `json:"title,omitempty"`
	Type      *string `json:"type,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Priority  *string `json:"priority,omitempty"`
}
