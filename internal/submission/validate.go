// Package submission validates new laws before they enter the review queue.
package submission

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"murphy/internal/apperr"
	"murphy/internal/models"

	"golang.org/x/exp/constraints"
)

const (
	MinTextLength = 10
	MaxTextLength = 1000

	MsgTextRequired    = "Law text is required"
	MsgTextTooShort    = "Law text must be at least 10 characters"
	MsgTextTooLong     = "Law text must be less than 1000 characters"
	MsgInvalidCategory = "Invalid category ID"
)

// Input is the raw submission. CategoryID is the textual form of whatever the
// client sent; empty means none.
type Input struct {
	Text       string
	Title      string
	Author     string
	Email      string
	CategoryID string
}

// Submission is a validated law ready for insertion. Absent optional fields are nil.
type Submission struct {
	Text       string
	Title      *string
	Author     *string
	Email      *string
	CategoryID int64
}

// Law builds the row to insert. Status is left to the store.
func (s Submission) Law() *models.Law {
	return &models.Law{
		Text:           s.Text,
		Title:          s.Title,
		Author:         s.Author,
		SubmitterEmail: s.Email,
	}
}

// Validate reports the first rule broken, in order: missing text, too short,
// too long, bad category. Lengths count characters, not bytes.
func Validate(in Input) (Submission, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Submission{}, apperr.InvalidArgument(MsgTextRequired)
	}
	n := utf8.RuneCountInString(text)
	if n < MinTextLength {
		return Submission{}, apperr.InvalidArgument(MsgTextTooShort)
	}
	if n > MaxTextLength {
		return Submission{}, apperr.InvalidArgument(MsgTextTooLong)
	}

	var categoryID int64
	if raw := strings.TrimSpace(in.CategoryID); raw != "" {
		id, ok := ParsePositive[int64](raw)
		if !ok {
			return Submission{}, apperr.InvalidArgument(MsgInvalidCategory)
		}
		categoryID = id
	}

	return Submission{
		Text:       text,
		Title:      optional(in.Title),
		Author:     optional(in.Author),
		Email:      optional(in.Email),
		CategoryID: categoryID,
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ParsePositive parses a base-10 integer greater than zero that fits in T.
func ParsePositive[T constraints.Integer](s string) (T, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	t := T(v)
	if int64(t) != v || t <= 0 {
		return 0, false
	}
	return t, true
}
