package club

import (
	"fmt"
	"strings"
	"time"

	"github.com/Nawfay/bookclub/internal/entities"
)

// sentinelIDPrefix marks the synthetic session shown for a book that has
// no persisted club session yet. A real session's id can never collide
// with it because real ids are numeric.
const sentinelIDPrefix = "temp-"

// SessionState is the resolved club schedule for a book: either the
// persisted BookSession or the uninitialized placeholder for a book
// nobody has started yet.
type SessionState struct {
	real *entities.BookSession
}

// RealSession wraps a persisted club session.
func RealSession(s *entities.BookSession) SessionState {
	return SessionState{real: s}
}

// UninitializedSession is the state of a book with no persisted session.
func UninitializedSession() SessionState {
	return SessionState{}
}

// Uninitialized reports whether no persisted session backs this state.
func (s SessionState) Uninitialized() bool {
	return s.real == nil
}

// View renders the state for the UI. An uninitialized state synthesizes
// the sentinel session: zero progress, the whole book as target and the
// current time as the estimated end.
func (s SessionState) View(bookID uint, bookTotalPages int, now time.Time) SessionView {
	if s.real == nil {
		return SessionView{
			ID:               fmt.Sprintf("%s%d", sentinelIDPrefix, bookID),
			Status:           string(entities.SessionStatusUninitialized),
			CurrentPage:      0,
			TargetPage:       bookTotalPages,
			EstimatedEndDate: now,
		}
	}

	status := s.real.Status
	if status == "" {
		status = entities.SessionStatusActive
	}

	return SessionView{
		ID:                fmt.Sprintf("%d", s.real.ID),
		Status:            string(status),
		CurrentPage:       s.real.CurrentPage,
		TargetPage:        s.real.TargetPage,
		ReadingPacePerDay: s.real.ReadingPacePerDay,
		EstimatedEndDate:  s.real.EstimatedEndDate,
	}
}

// IsUninitialized reports whether an assembled book still needs session
// initialization. Both encodings are honored for backward compatibility:
// the explicit status value and the sentinel id prefix.
func IsUninitialized(b *Book) bool {
	return b.Session.Status == string(entities.SessionStatusUninitialized) ||
		strings.HasPrefix(b.Session.ID, sentinelIDPrefix)
}

// CanTransition reports whether a club session may move between the two
// statuses. Completed and dropped sessions can only be re-activated by an
// explicit status update; there are no automatic transitions back.
func CanTransition(from, to entities.SessionStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case entities.SessionStatusUninitialized:
		return to == entities.SessionStatusActive
	case entities.SessionStatusActive:
		return to == entities.SessionStatusCompleted || to == entities.SessionStatusDropped
	case entities.SessionStatusCompleted, entities.SessionStatusDropped:
		return to == entities.SessionStatusActive
	}
	return false
}

// ValidReaderStatus reports whether s is a status a member may report for
// their own reading session.
func ValidReaderStatus(s entities.ReaderStatus) bool {
	switch s {
	case entities.ReaderStatusActive, entities.ReaderStatusCompleted, entities.ReaderStatusDropped:
		return true
	}
	return false
}
