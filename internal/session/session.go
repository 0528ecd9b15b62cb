// Package session holds one calculation session per browser: its history,
// its page document and the state machine that drives both.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/document"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/render"

	"go.uber.org/zap"
)

// ErrNotOpen is returned by operations that need the input dialog open.
var ErrNotOpen = errors.New("calculation session is not open")

// Element ids the controller drives.
const (
	ModalID       = "modal"
	FirstFieldID  = "firstNumber"
	SecondFieldID = "secondNumber"
	OperatorID    = render.OperatorSelect
)

// State is the position of a session in its lifecycle.
type State int

const (
	Idle State = iota
	SessionOpen
	ResultsShown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SessionOpen:
		return "open"
	case ResultsShown:
		return "results"
	default:
		return "unknown"
	}
}

// Field identifies an operand input for keyboard handling.
type Field string

const (
	FieldFirst  Field = "first"
	FieldSecond Field = "second"
)

// Session serialises every interaction of one browser. History survives
// any number of open/finish cycles.
type Session struct {
	ID string

	mu       sync.Mutex
	state    State
	engine   *calculator.Engine
	doc      *document.Document
	renderer *render.Renderer
}

// New builds a session over its own copy of the page.
func New(id string, page *document.Document, r *render.Renderer) (*Session, error) {
	s := &Session{
		ID:       id,
		engine:   calculator.NewEngine(nil),
		doc:      page,
		renderer: r,
	}

	if err := r.Reset(page); err != nil {
		return nil, fmt.Errorf("initialise page: %w", err)
	}
	if err := page.SetVisible(ModalID, false); err != nil {
		return nil, fmt.Errorf("initialise page: %w", err)
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns the session's calculation history.
func (s *Session) History() *calculator.History {
	return s.engine.History()
}

// Open shows the input dialog with empty fields and focus on the first
// operand. It may be called from any state.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.SetVisible(ModalID, true); err != nil {
		return err
	}
	if err := s.clearInputs(); err != nil {
		return err
	}
	if err := s.doc.Focus(FirstFieldID); err != nil {
		return err
	}
	s.state = SessionOpen
	return nil
}

// Close hides the input dialog and clears its fields. Closing an already
// closed dialog changes nothing else.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	if err := s.doc.SetVisible(ModalID, false); err != nil {
		return err
	}
	if err := s.clearInputs(); err != nil {
		return err
	}
	if s.state == SessionOpen {
		s.state = Idle
	}
	return nil
}

// Dismiss handles a click on target. Only the dialog backdrop closes the
// session; it reports whether the click had any effect.
func (s *Session) Dismiss(target string) (bool, error) {
	if target != ModalID {
		return false, nil
	}
	return true, s.Close()
}

// Submit runs one calculation. Validation failures leave the typed values
// in place and queue an error notice; anything that reaches the history
// resets the form and queues a confirmation.
func (s *Session) Submit(ctx context.Context, x, y, op string) (calculator.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked(ctx, x, y, op)
}

func (s *Session) submitLocked(ctx context.Context, x, y, op string) (calculator.Record, error) {
	if s.state != SessionOpen {
		return calculator.Record{}, ErrNotOpen
	}

	rec, err := s.engine.Submit(ctx, x, y, op)
	if err != nil {
		if ferr := s.keepInputs(x, y, op); ferr != nil {
			return calculator.Record{}, ferr
		}
		if nerr := s.renderer.Notify(s.doc, render.Notice{Kind: render.NoticeError, Message: calculator.Notice(err)}); nerr != nil {
			return calculator.Record{}, nerr
		}
		return calculator.Record{}, err
	}

	if err := s.renderer.AppendRow(s.doc, rec); err != nil {
		return rec, err
	}
	if err := s.clearInputs(); err != nil {
		return rec, err
	}
	if err := s.doc.Focus(FirstFieldID); err != nil {
		return rec, err
	}
	notice := render.Notice{Kind: render.NoticeSuccess, Message: "Calculation completed: " + rec.Expression()}
	if err := s.renderer.Notify(s.doc, notice); err != nil {
		return rec, err
	}
	return rec, nil
}

// KeyEnter handles the activation key in an operand field. In the first
// field it moves focus to the second and keeps what was typed; in the second
// it submits. submitted reports whether a calculation was attempted.
func (s *Session) KeyEnter(ctx context.Context, field Field, x, y, op string) (submitted bool, rec calculator.Record, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionOpen {
		return false, calculator.Record{}, ErrNotOpen
	}

	switch field {
	case FieldFirst:
		if err := s.keepInputs(x, y, op); err != nil {
			return false, calculator.Record{}, err
		}
		return false, calculator.Record{}, s.doc.Focus(SecondFieldID)
	case FieldSecond:
		rec, err := s.submitLocked(ctx, x, y, op)
		return true, rec, err
	default:
		return false, calculator.Record{}, fmt.Errorf("unknown field %q", field)
	}
}

// Finish closes the dialog and draws the full log and summary.
func (s *Session) Finish(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionOpen {
		return ErrNotOpen
	}
	if err := s.closeLocked(); err != nil {
		return err
	}
	if err := s.renderer.Render(s.doc, s.engine.History()); err != nil {
		return err
	}
	s.state = ResultsShown

	observability.LoggerWithTrace(ctx).Info("results rendered",
		zap.String("session_id", s.ID),
		zap.Int("records", s.engine.History().Len()),
		zap.Int("valid_results", len(s.engine.History().ValidResults())),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
	return nil
}

// WritePage renders the page to w. Pending notices are shown exactly once.
func (s *Session) WritePage(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	s.renderer.ClearNotices(s.doc)
	return nil
}

// snapshot returns a copy of the current page.
func (s *Session) snapshot() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

func (s *Session) clearInputs() error {
	return s.keepInputs("", "", calculator.DefaultToken)
}

func (s *Session) keepInputs(x, y, op string) error {
	if err := s.doc.SetValue(FirstFieldID, x); err != nil {
		return err
	}
	if err := s.doc.SetValue(SecondFieldID, y); err != nil {
		return err
	}
	return s.doc.SetSelected(OperatorID, op)
}
