package club

import (
	"math"
	"time"
)

// ReadingSession is a member's personal progress as rendered in the book
// aggregate. NormalizedPage and NormalizedPerc are computed, never stored.
type ReadingSession struct {
	CurrentPage    int     `json:"currentPage"`
	BookTotalPages int     `json:"bookTotalPages"`
	ReadingPace    int     `json:"readingPace"`
	Rating         int     `json:"rating"`
	Review         string  `json:"review,omitempty"`
	NormalizedPage int     `json:"normalizedPage"`
	NormalizedPerc float64 `json:"normalizedPerc"`
	Status         string  `json:"status"`
}

// Member is a club member joined into a book aggregate.
type Member struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Avatar         string         `json:"avatar"`
	ReadingSession ReadingSession `json:"readingSession"`
}

// SessionView is the club schedule as rendered in a book aggregate. The
// ID is a string so the uninitialized sentinel can live in the same
// field as real numeric ids.
type SessionView struct {
	ID                string    `json:"id"`
	Status            string    `json:"status"`
	CurrentPage       int       `json:"currentPage"`
	TargetPage        int       `json:"targetPage"`
	ReadingPacePerDay int       `json:"readingPacePerDay"`
	EstimatedEndDate  time.Time `json:"estimatedEndDate"`
}

// Book is the denormalized aggregate the UI consumes: the canonical work,
// its club schedule and every member's progress, with derived fields.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Cover       string     `json:"cover"`
	TotalPages  int        `json:"totalPages"`
	Status      string     `json:"status"`
	Session     SessionView `json:"bookSession"`
	Members     []Member   `json:"members"`
	AvgProgress float64    `json:"avgProgress"`
	AvgRating   float64    `json:"avgRating"`
}

// avgProgress is the mean normalized percentage across all members.
func avgProgress(members []Member) float64 {
	if len(members) == 0 {
		return 0
	}
	var sum float64
	for _, m := range members {
		sum += m.ReadingSession.NormalizedPerc
	}
	return math.Round(sum/float64(len(members))*10) / 10
}

// avgRating is the mean rating across members who have rated (rating 0
// means unrated and is excluded).
func avgRating(members []Member) float64 {
	var sum, count float64
	for _, m := range members {
		if m.ReadingSession.Rating > 0 {
			sum += float64(m.ReadingSession.Rating)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Round(sum/count*10) / 10
}
