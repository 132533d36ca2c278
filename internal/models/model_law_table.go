package models

import "time"

type Law struct {
	Id int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	// Title 可选标题
	Title *string `json:"title" gorm:"size:200"`
	// Text 正文，10-1000 字符
	Text string `json:"text" gorm:"size:4000;not null"`
	// Author 署名
	Author *string `json:"author" gorm:"size:200"`
	// SubmitterEmail 提交者邮箱，外显不输出
	SubmitterEmail *string `json:"-" gorm:"size:320"`
	// Status 审核状态
	//
	// LawStatusInReview LawStatusPublished LawStatusRejected
	Status LawStatus `json:"status" gorm:"size:16;not null;index;default:in_review"`
	// Upvotes 赞成数，只能由投票账本修改
	Upvotes int64 `json:"upvotes" gorm:"not null;default:0"`
	// Downvotes 反对数，只能由投票账本修改
	Downvotes int64 `json:"downvotes" gorm:"not null;default:0"`
	// Categories 分类
	Categories []Category `json:"categories" gorm:"many2many:law_categories"`
	// LastVotedAt 最近一次投票时间，用于 trending 排序
	LastVotedAt *time.Time `json:"last_voted_at" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Score is upvotes minus downvotes. It is never stored.
func (l *Law) Score() int64 {
	return l.Upvotes - l.Downvotes
}
