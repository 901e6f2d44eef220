// Package ledger is the boundary to the learning program's accounts. The
// rest of the backend only sees plain snapshots fetched through Client and
// derives every display value from them.
package ledger

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound        = errors.New("account does not exist")
	ErrAlreadyInitialized     = errors.New("learner profile already initialized")
	ErrAlreadyEnrolled        = errors.New("already enrolled in course")
	ErrNotEnrolled            = errors.New("not enrolled in course")
	ErrLessonOutOfRange       = errors.New("lesson index out of range")
	ErrLessonAlreadyCompleted = errors.New("lesson already completed")
	ErrCourseNotCompleted     = errors.New("course not completed")
	ErrBonusAlreadyClaimed    = errors.New("completion bonus already claimed")
	ErrCourseInactive         = errors.New("course is not active")
	ErrUnknownInstruction     = errors.New("unknown instruction")
	ErrIndexerUnavailable     = errors.New("indexer unavailable")
)

// errorCodes are the wire codes the indexer uses for instruction failures.
var errorCodes = map[string]error{
	"account_not_found":        ErrAccountNotFound,
	"already_initialized":      ErrAlreadyInitialized,
	"already_enrolled":         ErrAlreadyEnrolled,
	"not_enrolled":             ErrNotEnrolled,
	"lesson_out_of_range":      ErrLessonOutOfRange,
	"lesson_already_completed": ErrLessonAlreadyCompleted,
	"course_not_completed":     ErrCourseNotCompleted,
	"bonus_already_claimed":    ErrBonusAlreadyClaimed,
	"course_inactive":          ErrCourseInactive,
	"unknown_instruction":      ErrUnknownInstruction,
}

// Profile is a learner account snapshot.
type Profile struct {
	Authority        string   `json:"authority"`
	CurrentStreak    uint32   `json:"current_streak"`
	LongestStreak    uint32   `json:"longest_streak"`
	LastActivityDate int64    `json:"last_activity_date"`
	StreakFreezes    uint32   `json:"streak_freezes"`
	AchievementFlags []uint64 `json:"achievement_flags"`
	XPEarnedToday    uint64   `json:"xp_earned_today"`
	LastXPDay        int64    `json:"last_xp_day"`
	ReferralCount    uint32   `json:"referral_count"`
	HasReferrer      bool     `json:"has_referrer"`
}

// Enrollment is a learner's progress in one course.
type Enrollment struct {
	Course          string   `json:"course"`
	EnrolledVersion int      `json:"enrolled_version"`
	EnrolledAt      int64    `json:"enrolled_at"`
	CompletedAt     *int64   `json:"completed_at,omitempty"`
	LessonFlags     []uint64 `json:"lesson_flags"`
	CredentialAsset string   `json:"credential_asset,omitempty"`
	BonusClaimed    bool     `json:"bonus_claimed"`
}

// Course is the ledger's view of a course account.
type Course struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	TrackID           int    `json:"track_id"`
	Difficulty        int    `json:"difficulty"`
	LessonCount       int    `json:"lesson_count"`
	XPPerLesson       uint64 `json:"xp_per_lesson"`
	CompletionBonusXP uint64 `json:"completion_bonus_xp"`
	Version           int    `json:"version"`
	Active            bool   `json:"active"`
}

type InstructionKind string

const (
	InitLearner     InstructionKind = "init_learner"
	Enroll          InstructionKind = "enroll"
	CloseEnrollment InstructionKind = "close_enrollment"
	CompleteLesson  InstructionKind = "complete_lesson"
	FinalizeCourse  InstructionKind = "finalize_course"
)

type Instruction struct {
	Kind        InstructionKind `json:"kind"`
	Learner     string          `json:"learner"`
	CourseID    string          `json:"course_id,omitempty"`
	LessonIndex int             `json:"lesson_index,omitempty"`
	Referrer    string          `json:"referrer,omitempty"`
}

const (
	EventLessonCompleted     = "lesson_completed"
	EventCourseCompleted     = "course_completed"
	EventLevelUp             = "level_up"
	EventStreakMilestone     = "streak_milestone"
	EventAchievementUnlocked = "achievement_unlocked"
	EventCredentialIssued    = "credential_issued"
)

type Event struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// Receipt is returned for every applied instruction.
type Receipt struct {
	Signature string  `json:"signature"`
	XPAwarded uint64  `json:"xp_awarded"`
	Events    []Event `json:"events,omitempty"`
}

// Client fetches learner accounts and submits instructions. Fetch methods
// return ErrAccountNotFound when the account was never created.
type Client interface {
	FetchBalance(ctx context.Context, learner string) (uint64, error)
	FetchProfile(ctx context.Context, learner string) (*Profile, error)
	FetchEnrollment(ctx context.Context, courseID, learner string) (*Enrollment, error)
	FetchCourse(ctx context.Context, courseID string) (*Course, error)
	SubmitInstruction(ctx context.Context, ins Instruction) (*Receipt, error)
}
