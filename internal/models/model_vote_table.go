package models

import "time"

// Vote is one voter's current stance on one law. The (law_id, voter) pair is unique.
type Vote struct {
	Id int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	// LawId 被投票的条目
	LawId int64 `json:"law_id" gorm:"not null;uniqueIndex:idx_votes_law_voter"`
	// Voter IP 或设备 ID，外显不输出
	Voter string `json:"-" gorm:"size:191;not null;uniqueIndex:idx_votes_law_voter"`
	// VoteType up / down
	VoteType  VoteType  `json:"vote_type" gorm:"size:8;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
