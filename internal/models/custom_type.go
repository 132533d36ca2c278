package models

type LawStatus string
type VoteType string

const (
	// LawStatusInReview 新提交，等待审核
	LawStatusInReview  LawStatus = "in_review"
	LawStatusPublished LawStatus = "published"
	LawStatusRejected  LawStatus = "rejected"
)

const (
	VoteTypeUp   VoteType = "up"
	VoteTypeDown VoteType = "down"
)

// ParseVoteType accepts only the two wire values, nothing is normalised.
func ParseVoteType(s string) (VoteType, bool) {
	switch VoteType(s) {
	case VoteTypeUp, VoteTypeDown:
		return VoteType(s), true
	default:
		return "", false
	}
}

// Valid reports whether the status is one of the known lifecycle states.
func (s LawStatus) Valid() bool {
	switch s {
	case LawStatusInReview, LawStatusPublished, LawStatusRejected:
		return true
	default:
		return false
	}
}

// MigrateModels is the set of tables created by AutoMigrate, in dependency order.
var MigrateModels = []any{
	&Category{},
	&Law{},
	&Vote{},
}
