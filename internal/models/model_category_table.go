package models

type Category struct {
	Id int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	// Slug 外显路径
	Slug string `json:"slug" gorm:"size:100;not null;uniqueIndex"`
	// Title 分类名称
	Title string `json:"title" gorm:"size:200;not null"`
	// Description 分类描述
	Description string `json:"description" gorm:"size:1000"`
}

// DefaultCategories is seeded by the migrate command when the table is empty.
var DefaultCategories = []Category{
	{Slug: "murphys-laws", Title: "Murphy's Laws", Description: "The original: anything that can go wrong, will."},
	{Slug: "technology", Title: "Technology", Description: "Computers, networks and the machines that betray us."},
	{Slug: "office", Title: "Office", Description: "Meetings, managers and the printer."},
	{Slug: "love", Title: "Love", Description: "Romance and its inevitable complications."},
	{Slug: "travel", Title: "Travel", Description: "Queues, delays and lost luggage."},
}
