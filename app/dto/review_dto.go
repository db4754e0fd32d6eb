package dto

import "time"

// QuestionDTO represents one reviewable question
type QuestionDTO struct {
	ID           uint      `json:"id" example:"31"`
	BatchID      string    `json:"batch_id" example:"0b9cf2a1-5a7e-4a41-9be1-2f6b9a1a77aa"`
	QuestionText string    `json:"question_text" example:"How does Acme Cloud Backup encrypt data at rest?"`
	Topic        *string   `json:"topic,omitempty" example:"security"`
	AnswerText   *string   `json:"answer_text,omitempty"`
	AnswerStatus string    `json:"answer_status" example:"pending"`
	ReviewStatus string    `json:"review_status" example:"pending"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListQuestionsResponse represents the questions of one batch
type ListQuestionsResponse struct {
	BatchID   string        `json:"batch_id" example:"0b9cf2a1-5a7e-4a41-9be1-2f6b9a1a77aa"`
	Total     int64         `json:"total" example:"5"`
	Approved  int64         `json:"approved" example:"3"`
	Questions []QuestionDTO `json:"questions"`
}

// UpdateQuestionRequest represents an edit to one question's text
type UpdateQuestionRequest struct {
	QuestionText string `json:"question_text" validate:"required,min=5,max=1000" example:"How does Acme Cloud Backup encrypt backups?"`
}

// UpdateQuestionResponse returns the edited question
type UpdateQuestionResponse struct {
	Question QuestionDTO `json:"question"`
}

// ApproveQuestionsRequest represents approval of selected questions in a batch
type ApproveQuestionsRequest struct {
	QuestionIDs []uint `json:"question_ids" validate:"required,min=1" example:"31,32,33"`
}

// ApproveQuestionsResponse summarizes the approval and whether answer
// generation was kicked off for the batch
type ApproveQuestionsResponse struct {
	Approved         int64 `json:"approved" example:"3"`
	FullyApproved    bool  `json:"fully_approved" example:"true"`
	AnswersTriggered bool  `json:"answers_triggered" example:"true"`
}
