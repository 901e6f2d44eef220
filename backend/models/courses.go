package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Slug              string `gorm:"uniqueIndex;not null"` // e.g. anchor-beginner
	Name              string `gorm:"not null"`
	Description       string
	TrackID           int
	Difficulty        int // 1 beginner, 2 intermediate, 3 advanced
	XPPerLesson       uint64
	CompletionBonusXP uint64
	Version           int  `gorm:"default:1"`
	Active            bool `gorm:"default:true"`
	Lessons           []Lesson
}

type Lesson struct {
	gorm.Model
	CourseID        uint `gorm:"index"`
	LessonIndex     int  `gorm:"not null"` // bit position in the enrollment lesson flags
	Title           string
	Content         string
	CodeExample     string
	DurationMinutes int
	Questions       []QuizQuestion
}

type QuizQuestion struct {
	gorm.Model
	LessonID      uint `gorm:"index"`
	Question      string
	Options       string // JSON array of options
	CorrectAnswer int
	SequenceOrder int
}
