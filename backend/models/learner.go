package models

import (
	"time"

	"gorm.io/gorm"
)

// LearnerProfile mirrors the on-chain learner account for the local ledger.
type LearnerProfile struct {
	gorm.Model
	Authority        string `gorm:"uniqueIndex;not null"` // wallet address
	XPBalance        uint64
	CurrentStreak    uint32
	LongestStreak    uint32
	LastActivityDate int64 // unix seconds, 0 when never active
	StreakFreezes    uint32
	AchievementFlags Words `gorm:"type:text"`
	XPEarnedToday    uint64
	LastXPDay        int64 // days since epoch
	ReferralCount    uint32
	Referrer         string
}

type Enrollment struct {
	gorm.Model
	CourseSlug      string `gorm:"uniqueIndex:idx_enrollment_learner;not null"`
	Learner         string `gorm:"uniqueIndex:idx_enrollment_learner;not null"`
	EnrolledVersion int
	EnrolledAt      int64
	CompletedAt     *int64
	LessonFlags     Words `gorm:"type:text"`
	CredentialAsset string
	BonusClaimed    bool
}

// InstructionLog records every instruction the local ledger applied.
type InstructionLog struct {
	ID          uint   `gorm:"primarykey"`
	Signature   string `gorm:"uniqueIndex;not null"`
	Kind        string
	Learner     string `gorm:"index"`
	CourseSlug  string
	LessonIndex int
	XPAwarded   uint64
	CreatedAt   time.Time
}
