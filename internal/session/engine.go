// Package session implements the per-user conversation state machine that
// drives every command flow: choosing a day, describing work, confirming or
// editing extracted entries, querying, and deleting.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/timecop-bot/timecop/internal/database"
	"github.com/timecop-bot/timecop/internal/models"
	"github.com/timecop-bot/timecop/internal/queue"
	"github.com/timecop-bot/timecop/internal/report"
	"github.com/timecop-bot/timecop/internal/services/ai"
	"github.com/timecop-bot/timecop/internal/timeutil"
	"github.com/timecop-bot/timecop/internal/validation"
)

// Event is one inbound chat message, as delivered by the transport layer
type Event struct {
	UserID    int64
	Text      string
	Timestamp time.Time
}

// Engine processes chat events against per-user session state. Messages
// from the same user are serialized; different users run concurrently.
type Engine struct {
	entries   database.EntryStore
	sessions  database.SessionStore
	extractor ai.Extractor
	jobs      queue.JobQueue
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time

	mu sync.Mutex
	// userLocks holds one mutex per user ever seen and is never evicted;
	// the entries are two words each, bounded by the user population
	userLocks map[int64]*sync.Mutex
}

// NewEngine creates a conversation engine
func NewEngine(entries database.EntryStore, sessions database.SessionStore, extractor ai.Extractor, jobs queue.JobQueue, loc *time.Location, logger *zap.Logger) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		entries:   entries,
		sessions:  sessions,
		extractor: extractor,
		jobs:      jobs,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// userLock returns the serialization lock for one user
func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.userLocks[userID] = lock
	}
	return lock
}

// today returns the current calendar date in the configured timezone
func (e *Engine) today() time.Time {
	return timeutil.DateOf(e.now(), e.loc)
}

// HandleMessage processes one inbound event and returns the reply text.
// It never returns an error for user mistakes; those become corrective
// replies. An error means the event could not be processed at all and the
// transport should report a generic failure.
func (e *Engine) HandleMessage(ctx context.Context, event Event) (string, error) {
	lock := e.userLock(event.UserID)
	lock.Lock()
	defer lock.Unlock()

	text := validation.SanitizeText(event.Text)
	if text == "" {
		return "Say something and I will try to record it, or send /help.", nil
	}

	session, err := e.sessions.Get(ctx, event.UserID)
	if err != nil {
		e.logger.Error("session_load_failed",
			zap.Int64("user_id", event.UserID),
			zap.Error(err),
		)
		return replyUnavailable, nil
	}

	reply := e.dispatch(ctx, session, text)

	e.logger.Info("message_handled",
		zap.Int64("user_id", event.UserID),
		zap.String("state", string(session.State)),
	)
	return reply, nil
}

func (e *Engine) dispatch(ctx context.Context, session *models.UserSession, text string) string {
	if strings.HasPrefix(text, "/") {
		cmd, args, ok := ParseCommand(text)
		if !ok {
			return "I do not know that command. Send /help for the list."
		}
		return e.handleCommand(ctx, session, cmd, args)
	}

	switch session.State {
	case models.SessionIdle:
		if isConfirmWord(text) || isRejectWord(text) {
			return replyNothingToConfirm
		}
		// Free text outside a flow is an implicit record-today
		session.Pending.Clear()
		session.Pending.Record = &models.RecordDraft{TargetDate: e.today()}
		session.State = models.SessionAwaitingFreeText
		return e.handleFreeText(ctx, session, text)
	case models.SessionAwaitingDateChoice:
		return e.handleDateChoice(ctx, session, text)
	case models.SessionAwaitingFreeText:
		return e.handleFreeText(ctx, session, text)
	case models.SessionAwaitingConfirmation:
		return e.handleConfirmation(ctx, session, text)
	case models.SessionAwaitingEditSelection:
		return e.handleEditSelection(ctx, session, text)
	case models.SessionAwaitingDeleteTarget:
		return e.handleDeleteSelection(ctx, session, text)
	default:
		// Unknown stored state, restart the conversation
		session.State = models.SessionIdle
		session.Pending.Clear()
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return "Sorry, I lost track of where we were. " + helpText
	}
}

// handleCommand runs a top-level command. A command arriving mid-flow
// discards the stale pending data with a warning; two flows' drafts are
// never merged.
func (e *Engine) handleCommand(ctx context.Context, session *models.UserSession, cmd Command, args string) string {
	if cmd == CmdCancel {
		if session.State == models.SessionIdle && session.Pending.IsZero() {
			return replyNothingToCancel
		}
		session.State = models.SessionIdle
		session.Pending.Clear()
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return replyCancelled
	}

	warn := ""
	if session.State != models.SessionIdle {
		e.logger.Info("flow_reset",
			zap.Int64("user_id", session.UserID),
			zap.String("previous_state", string(session.State)),
		)
		session.State = models.SessionIdle
		session.Pending.Clear()
		warn = warnFlowReset
	}

	switch cmd {
	case CmdStart, CmdHelp:
		if warn != "" {
			if reply, ok := e.save(ctx, session); !ok {
				return reply
			}
		}
		return warn + helpText

	case CmdRecordToday:
		session.Pending.Record = &models.RecordDraft{TargetDate: e.today()}
		session.State = models.SessionAwaitingFreeText
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return warn + promptFreeText

	case CmdRecordDay:
		session.Pending.DateChoice = &models.DateChoice{Purpose: models.DatePurposeRecord}
		session.State = models.SessionAwaitingDateChoice
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return warn + promptDate

	case CmdGetDay:
		if args != "" {
			if date, err := timeutil.ParseDate(args); err == nil {
				if reply, ok := e.save(ctx, session); !ok {
					return reply
				}
				return warn + e.retrieveDay(ctx, session.UserID, date)
			}
		}
		session.Pending.DateChoice = &models.DateChoice{Purpose: models.DatePurposeRetrieve}
		session.State = models.SessionAwaitingDateChoice
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return warn + promptDate

	case CmdWeek:
		anchor := e.today()
		if args != "" {
			date, err := timeutil.ParseDate(args)
			if err != nil {
				// The mid-flow reset above must reach the store even when
				// the argument is unusable
				if warn != "" {
					if reply, ok := e.save(ctx, session); !ok {
						return reply
					}
				}
				return warn + "I could not read that date. " + promptDate
			}
			anchor = date
		}
		if warn != "" {
			if reply, ok := e.save(ctx, session); !ok {
				return reply
			}
		}
		return warn + e.weeklyView(ctx, session.UserID, anchor)

	case CmdReport:
		if args != "" {
			if year, month, err := timeutil.ParseMonth(args); err == nil {
				if warn != "" {
					if reply, ok := e.save(ctx, session); !ok {
						return reply
					}
				}
				return warn + e.enqueueReport(ctx, session.UserID, year, month)
			}
		}
		session.Pending.DateChoice = &models.DateChoice{Purpose: models.DatePurposeReport}
		session.State = models.SessionAwaitingDateChoice
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return warn + promptMonth

	case CmdDelete:
		session.Pending.DateChoice = &models.DateChoice{Purpose: models.DatePurposeDelete}
		session.State = models.SessionAwaitingDateChoice
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return warn + promptDate

	default:
		return "I do not know that command. Send /help for the list."
	}
}

// handleDateChoice consumes the date (or month) a flow was waiting for
func (e *Engine) handleDateChoice(ctx context.Context, session *models.UserSession, text string) string {
	choice := session.Pending.DateChoice
	if choice == nil {
		session.State = models.SessionIdle
		session.Pending.Clear()
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return "Sorry, I lost track of where we were. " + helpText
	}

	if choice.Purpose == models.DatePurposeReport {
		year, month, err := timeutil.ParseMonth(text)
		if err != nil {
			return "I could not read that month. " + promptMonth
		}
		session.State = models.SessionIdle
		session.Pending.Clear()
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return e.enqueueReport(ctx, session.UserID, year, month)
	}

	date, err := timeutil.ParseDate(text)
	if err != nil {
		return "I could not read that date. " + promptDate
	}

	switch choice.Purpose {
	case models.DatePurposeRecord:
		if date.After(e.today()) {
			return "That date is in the future. Pick today or an earlier date."
		}
		session.Pending.Clear()
		session.Pending.Record = &models.RecordDraft{TargetDate: date}
		session.State = models.SessionAwaitingFreeText
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return fmt.Sprintf("Recording for %s. %s", formatDate(date), promptFreeText)

	case models.DatePurposeRetrieve:
		session.State = models.SessionIdle
		session.Pending.Clear()
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return e.retrieveDay(ctx, session.UserID, date)

	case models.DatePurposeDelete:
		entries, err := e.entries.GetByUserAndDate(ctx, session.UserID, date)
		if err != nil {
			e.logger.Error("entries_query_failed",
				zap.Int64("user_id", session.UserID),
				zap.Error(err),
			)
			return replyUnavailable
		}
		if len(entries) == 0 {
			session.State = models.SessionIdle
			session.Pending.Clear()
			if reply, ok := e.save(ctx, session); !ok {
				return reply
			}
			return fmt.Sprintf("No entries recorded for %s.", formatDate(date))
		}

		pick := &models.DeletePick{Date: date}
		for _, entry := range entries {
			pick.Candidates = append(pick.Candidates, entry.ID)
		}
		session.Pending.Clear()
		session.Pending.Delete = pick
		session.State = models.SessionAwaitingDeleteTarget
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return renderDeleteCandidates(formatDate(date), entries)

	default:
		session.State = models.SessionIdle
		session.Pending.Clear()
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return "Sorry, I lost track of where we were. " + helpText
	}
}

// handleFreeText runs extraction on the user's workday description.
// Extraction failures re-prompt in place; drafts are only held in the
// session, nothing is persisted until confirmation.
func (e *Engine) handleFreeText(ctx context.Context, session *models.UserSession, text string) string {
	record := session.Pending.Record
	if record == nil {
		record = &models.RecordDraft{TargetDate: e.today()}
		session.Pending.Record = record
	}

	drafts, err := e.extractor.ExtractEntries(ai.WithUserID(ctx, session.UserID), text, record.TargetDate)
	if err != nil {
		if extErr, ok := ai.AsExtractionError(err); ok {
			e.logger.Info("extraction_failed",
				zap.Int64("user_id", session.UserID),
				zap.String("kind", string(extErr.Kind)),
			)
			if reply, ok := e.save(ctx, session); !ok {
				return reply
			}
			return extractionErrorReply(string(extErr.Kind))
		}
		e.logger.Error("extraction_call_failed",
			zap.Int64("user_id", session.UserID),
			zap.Error(err),
		)
		if ai.IsRateLimitError(err) {
			return "I am being rate limited by the language model, give me a minute and resend that."
		}
		return "I could not reach the language model. Resend your message in a moment."
	}

	for i := range drafts {
		drafts[i].UserID = session.UserID
		if err := validation.ValidateDraft(drafts[i]); err != nil {
			e.logger.Warn("draft_validation_failed",
				zap.Int64("user_id", session.UserID),
				zap.Error(err),
			)
			return extractionErrorReply("invalid_schema")
		}
	}

	record.RawText = text
	record.Drafts = drafts
	session.State = models.SessionAwaitingConfirmation
	if reply, ok := e.save(ctx, session); !ok {
		return reply
	}
	return renderDrafts(drafts)
}

// handleConfirmation persists, discards, or opens editing for the held
// drafts. Persistence is all-or-nothing; a failed save keeps the drafts
// and the state so the user can retry with a single "yes".
func (e *Engine) handleConfirmation(ctx context.Context, session *models.UserSession, text string) string {
	record := session.Pending.Record

	switch {
	case isConfirmWord(text):
		if record == nil || len(record.Drafts) == 0 {
			session.State = models.SessionIdle
			session.Pending.Clear()
			if reply, ok := e.save(ctx, session); !ok {
				return reply
			}
			return replyNothingToConfirm
		}

		now := e.now()
		entries := make([]*models.TimeEntry, 0, len(record.Drafts))
		var total float64
		for _, draft := range record.Drafts {
			entries = append(entries, draft.Materialize(now))
			total += draft.EstimatedHours
		}

		if err := e.entries.CreateBatch(ctx, entries); err != nil {
			e.logger.Error("entries_save_failed",
				zap.Int64("user_id", session.UserID),
				zap.Int("entry_count", len(entries)),
				zap.Error(err),
			)
			if errors.Is(err, database.ErrUnavailable) {
				return replyUnavailable
			}
			return replyTransient
		}

		e.logger.Info("entries_saved",
			zap.Int64("user_id", session.UserID),
			zap.Int("entry_count", len(entries)),
			zap.String("date", formatDate(record.TargetDate)),
		)

		date := record.TargetDate
		count := len(entries)
		session.State = models.SessionIdle
		session.Pending.Clear()
		if reply, ok := e.save(ctx, session); !ok {
			// The entries are saved; a failed session write must not
			// suggest otherwise.
			e.logger.Error("session_save_after_commit_failed", zap.Int64("user_id", session.UserID))
			_ = reply
		}
		return fmt.Sprintf("Saved %d entries (%.2fh) for %s.", count, models.RoundHours(total), formatDate(date))

	case isRejectWord(text):
		session.State = models.SessionIdle
		session.Pending.Clear()
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return replyDiscarded

	case isEditWord(text):
		session.State = models.SessionAwaitingEditSelection
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return promptEditSelection

	default:
		// A "<n> <field> <value>" line is a correction even without a
		// preceding "edit"
		if looksLikeEdit(text) {
			return e.handleEditSelection(ctx, session, text)
		}
		return promptConfirm
	}
}

// looksLikeEdit reports whether text has the "<n> <field> <value>" shape
func looksLikeEdit(text string) bool {
	parts := strings.SplitN(text, " ", 3)
	if len(parts) < 3 {
		return false
	}
	_, err := strconv.Atoi(parts[0])
	return err == nil
}

// handleEditSelection applies a "<n> <field> <value>" correction to one
// held draft, then returns to confirmation.
func (e *Engine) handleEditSelection(ctx context.Context, session *models.UserSession, text string) string {
	record := session.Pending.Record
	if record == nil || len(record.Drafts) == 0 {
		session.State = models.SessionIdle
		session.Pending.Clear()
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return replyNothingToConfirm
	}

	parts := strings.SplitN(text, " ", 3)
	if len(parts) < 3 {
		return promptEditSelection
	}

	index, err := strconv.Atoi(parts[0])
	if err != nil || index < 1 || index > len(record.Drafts) {
		return fmt.Sprintf("Pick an entry between 1 and %d. %s", len(record.Drafts), promptEditSelection)
	}

	draft := &record.Drafts[index-1]
	field := strings.ToLower(parts[1])
	value := strings.TrimSpace(parts[2])

	switch field {
	case "description":
		if value == "" {
			return "The description cannot be empty. " + promptEditSelection
		}
		draft.Description = value
	case "project":
		if value == "" {
			return "The project cannot be empty. " + promptEditSelection
		}
		draft.Project = value
	case "category":
		category, ok := models.ParseCategory(value)
		if !ok {
			return "I do not know that category. Use billable_project, non_billable_project or other_non_billable."
		}
		draft.Category = category
	case "hours":
		hours, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "Hours must be a number. " + promptEditSelection
		}
		hours = models.RoundHours(hours)
		if err := validation.ValidateHours(hours); err != nil {
			return "Hours must be more than 0 and at most 24. " + promptEditSelection
		}
		draft.EstimatedHours = hours
	default:
		return promptEditSelection
	}

	session.State = models.SessionAwaitingConfirmation
	if reply, ok := e.save(ctx, session); !ok {
		return reply
	}
	return renderDrafts(record.Drafts)
}

// handleDeleteSelection deletes the chosen candidate after an ownership
// check at the store.
func (e *Engine) handleDeleteSelection(ctx context.Context, session *models.UserSession, text string) string {
	pick := session.Pending.Delete
	if pick == nil || len(pick.Candidates) == 0 {
		session.State = models.SessionIdle
		session.Pending.Clear()
		if reply, ok := e.save(ctx, session); !ok {
			return reply
		}
		return "Nothing to delete right now."
	}

	index, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || index < 1 || index > len(pick.Candidates) {
		return fmt.Sprintf("Reply with a number between 1 and %d, or /cancel.", len(pick.Candidates))
	}

	id := pick.Candidates[index-1]
	if err := e.entries.Delete(ctx, id, session.UserID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			session.State = models.SessionIdle
			session.Pending.Clear()
			if reply, ok := e.save(ctx, session); !ok {
				return reply
			}
			return "That entry no longer exists."
		}
		e.logger.Error("entry_delete_failed",
			zap.Int64("user_id", session.UserID),
			zap.String("entry_id", id.String()),
			zap.Error(err),
		)
		return replyUnavailable
	}

	e.logger.Info("entry_deleted",
		zap.Int64("user_id", session.UserID),
		zap.String("entry_id", id.String()),
	)

	session.State = models.SessionIdle
	session.Pending.Clear()
	if reply, ok := e.save(ctx, session); !ok {
		return reply
	}
	return "Deleted."
}

// retrieveDay lists the stored entries for one date
func (e *Engine) retrieveDay(ctx context.Context, userID int64, date time.Time) string {
	entries, err := e.entries.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		e.logger.Error("entries_query_failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return replyUnavailable
	}
	return renderEntries(formatDate(date), entries)
}

// weeklyView renders the Monday-to-Sunday summary for the week containing
// anchor
func (e *Engine) weeklyView(ctx context.Context, userID int64, anchor time.Time) string {
	start := timeutil.WeekStart(anchor)
	end := timeutil.WeekEnd(anchor)

	entries, err := e.entries.GetByUserAndDateRange(ctx, userID, start, end)
	if err != nil {
		e.logger.Error("entries_query_failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return replyUnavailable
	}
	return renderWeekly(report.SummarizeWeek(start, entries))
}

// enqueueReport schedules the monthly-report job for background generation
func (e *Engine) enqueueReport(ctx context.Context, userID int64, year int, month time.Month) string {
	if e.jobs == nil {
		return "Report generation is not available right now."
	}

	job := queue.NewMonthlyReportJob(userID, year, month)
	if err := e.jobs.Enqueue(ctx, job); err != nil {
		e.logger.Error("report_enqueue_failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return "I could not queue the report. Try again in a moment."
	}

	e.logger.Info("report_enqueued",
		zap.Int64("user_id", userID),
		zap.String("job_id", job.ID.String()),
		zap.Int("year", year),
		zap.Int("month", int(month)),
	)
	return fmt.Sprintf("Generating the %02d/%d report, it will be ready soon.", int(month), year)
}

// save persists the session. It returns the reply to send instead and
// false when the write failed.
func (e *Engine) save(ctx context.Context, session *models.UserSession) (string, bool) {
	if err := e.sessions.Save(ctx, session); err != nil {
		e.logger.Error("session_save_failed",
			zap.Int64("user_id", session.UserID),
			zap.Error(err),
		)
		return replyUnavailable, false
	}
	return "", true
}

func normalizeWord(text string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ".")))
}

func isConfirmWord(text string) bool {
	switch normalizeWord(text) {
	case "yes", "y", "si", "sí", "ok", "okay", "confirm", "save":
		return true
	default:
		return false
	}
}

func isRejectWord(text string) bool {
	switch normalizeWord(text) {
	case "no", "n", "discard", "reject":
		return true
	default:
		return false
	}
}

func isEditWord(text string) bool {
	switch normalizeWord(text) {
	case "edit", "change", "fix":
		return true
	default:
		return false
	}
}
