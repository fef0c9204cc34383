package http

type createSessionRequest struct {
	SessionID      string `json:"session_id" validate:"required"`
	DocumentID     string `json:"document_id" validate:"required"`
	InitialContent string `json:"initial_content"`
}

type joinRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	UserName  string `json:"user_name" validate:"required"`
	UserColor string `json:"user_color" validate:"required"`
}

type leaveRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type editRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Content string `json:"content"`
}

type cursorRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Text   string `json:"text"`
	Cursor int    `json:"cursor" validate:"gte=0"`
}

type askRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Question string `json:"question" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}
