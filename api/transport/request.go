package transport

// TaskForm is a task as posted by a UI form. DueDate is YYYY-MM-DD.
type TaskForm struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
}

type FilterForm struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Owner    string `json:"owner"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

// ActionRequest is the body of POST /api/v1/workflow/{action}. Every field is optional.
type ActionRequest struct {
	ID     int64       `json:"id"`
	Task   *TaskForm   `json:"task"`
	Filter *FilterForm `json:"filter"`
}
