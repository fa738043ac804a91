package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the current step of a user's active conversation flow
type SessionState string

const (
	SessionIdle                  SessionState = "idle"
	SessionAwaitingDateChoice    SessionState = "awaiting_date_choice"
	SessionAwaitingFreeText      SessionState = "awaiting_free_text"
	SessionAwaitingConfirmation  SessionState = "awaiting_confirmation"
	SessionAwaitingEditSelection SessionState = "awaiting_edit_selection"
	SessionAwaitingDeleteTarget  SessionState = "awaiting_delete_target"
)

// Valid reports whether s is a known session state
func (s SessionState) Valid() bool {
	switch s {
	case SessionIdle, SessionAwaitingDateChoice, SessionAwaitingFreeText,
		SessionAwaitingConfirmation, SessionAwaitingEditSelection, SessionAwaitingDeleteTarget:
		return true
	default:
		return false
	}
}

// DatePurpose tags why a date (or month) is being collected in
// SessionAwaitingDateChoice, so one state can serve several flows.
type DatePurpose string

const (
	DatePurposeRecord   DatePurpose = "record"
	DatePurposeRetrieve DatePurpose = "retrieve"
	DatePurposeDelete   DatePurpose = "delete"
	DatePurposeReport   DatePurpose = "report"
)

// RecordDraft holds the state of an in-progress record flow: the target date
// and, once extraction has run, the drafts awaiting confirmation.
type RecordDraft struct {
	TargetDate time.Time    `json:"target_date"`
	RawText    string       `json:"raw_text,omitempty"`
	Drafts     []DraftEntry `json:"drafts,omitempty"`
}

// DateChoice holds the state of a flow waiting for the user to name a date
type DateChoice struct {
	Purpose DatePurpose `json:"purpose"`
}

// DeletePick holds the numbered candidates presented for deletion
type DeletePick struct {
	Date       time.Time   `json:"date"`
	Candidates []uuid.UUID `json:"candidates"`
}

// PendingData is the per-flow holding area of a session. It is a tagged
// variant: at most one member is non-nil, selected by the session state.
type PendingData struct {
	Record     *RecordDraft `json:"record,omitempty"`
	DateChoice *DateChoice  `json:"date_choice,omitempty"`
	Delete     *DeletePick  `json:"delete,omitempty"`
}

// IsZero reports whether no flow data is held
func (p PendingData) IsZero() bool {
	return p.Record == nil && p.DateChoice == nil && p.Delete == nil
}

// Clear discards all flow data
func (p *PendingData) Clear() {
	p.Record = nil
	p.DateChoice = nil
	p.Delete = nil
}

// UserSession is the persisted conversation state of one user. One row per
// user; it rests at SessionIdle between flows and is never deleted.
type UserSession struct {
	UserID    int64        `json:"user_id"`
	State     SessionState `json:"state"`
	Pending   PendingData  `json:"pending"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewIdleSession returns the default session for a user with no prior state
func NewIdleSession(userID int64) *UserSession {
	return &UserSession{
		UserID:    userID,
		State:     SessionIdle,
		UpdatedAt: time.Now(),
	}
}
