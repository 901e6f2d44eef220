package controllers

import (
	"errors"
	"strconv"
	"time"

	"academy/backend/ledger"
	"academy/backend/models"
	"academy/backend/progression"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LevelView is everything a client needs to render an XP bar.
type LevelView struct {
	XP             uint64  `json:"xp"`
	XPDisplay      string  `json:"xp_display"`
	XPFull         string  `json:"xp_full"`
	Level          int     `json:"level"`
	Label          string  `json:"label"`
	CurrentLevelXP uint64  `json:"current_level_xp"`
	NextLevelXP    uint64  `json:"next_level_xp"`
	XPToNextLevel  uint64  `json:"xp_to_next_level"`
	Progress       float64 `json:"progress"`
}

func NewLevelView(curve progression.Curve, xp uint64) LevelView {
	level := curve.Level(xp)
	return LevelView{
		XP:             xp,
		XPDisplay:      progression.FormatXP(xp),
		XPFull:         progression.FormatXPFull(xp),
		Level:          level,
		Label:          progression.LevelLabel(level),
		CurrentLevelXP: curve.LevelThresholdXP(level),
		NextLevelXP:    curve.NextLevelThresholdXP(level),
		XPToNextLevel:  curve.XPToNextLevel(xp),
		Progress:       curve.LevelProgress(xp),
	}
}

type StreakView struct {
	Current             uint32  `json:"current"`
	Longest             uint32  `json:"longest"`
	Freezes             uint32  `json:"freezes"`
	IsMilestone         bool    `json:"is_milestone"`
	NextMilestone       *uint32 `json:"next_milestone,omitempty"`
	DaysToNextMilestone *uint32 `json:"days_to_next_milestone,omitempty"`
}

func NewStreakView(milestones progression.Milestones, current, longest, freezes uint32) StreakView {
	v := StreakView{
		Current:     current,
		Longest:     longest,
		Freezes:     freezes,
		IsMilestone: milestones.IsMilestone(current),
	}
	if next, ok := milestones.Next(current); ok {
		days := next - current
		v.NextMilestone = &next
		v.DaysToNextMilestone = &days
	}
	return v
}

type LessonProgress struct {
	Index           int    `json:"index"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
	Completed       bool   `json:"completed"`
}

type EnrollmentView struct {
	Course               string           `json:"course"`
	EnrolledVersion      int              `json:"enrolled_version"`
	EnrolledAt           int64            `json:"enrolled_at"`
	EnrolledOn           string           `json:"enrolled_on"`
	Lessons              []LessonProgress `json:"lessons"`
	CompletedLessons     int              `json:"completed_lessons"`
	TotalLessons         int              `json:"total_lessons"`
	CompletionPercent    int              `json:"completion_percent"`
	RawCompletionPercent int              `json:"raw_completion_percent"`
	Completed            bool             `json:"completed"`
	CompletedAt          *int64           `json:"completed_at,omitempty"`
	CompletedOn          string           `json:"completed_on,omitempty"`
	BonusClaimed         bool             `json:"bonus_claimed"`
	CredentialURL        string           `json:"credential_url,omitempty"`
}

// NewEnrollmentView derives lesson progress from the enrollment flags.
// totalLessons comes from the ledger; lessons supply titles and may be
// shorter when the catalog lags behind the ledger.
func NewEnrollmentView(e *ledger.Enrollment, totalLessons int, lessons []models.Lesson) EnrollmentView {
	raw := progression.CompletionPercent(e.LessonFlags, totalLessons)
	v := EnrollmentView{
		Course:               e.Course,
		EnrolledVersion:      e.EnrolledVersion,
		EnrolledAt:           e.EnrolledAt,
		EnrolledOn:           progression.FormatDate(e.EnrolledAt),
		Lessons:              make([]LessonProgress, 0, totalLessons),
		CompletedLessons:     progression.CountCompleted(e.LessonFlags),
		TotalLessons:         totalLessons,
		CompletionPercent:    progression.ClampPercent(raw),
		RawCompletionPercent: raw,
		Completed:            e.CompletedAt != nil,
		CompletedAt:          e.CompletedAt,
		BonusClaimed:         e.BonusClaimed,
		CredentialURL:        progression.CredentialURL(e.CredentialAsset),
	}
	if e.CompletedAt != nil {
		v.CompletedOn = progression.FormatDate(*e.CompletedAt)
	}

	byIndex := make(map[int]models.Lesson, len(lessons))
	for _, l := range lessons {
		byIndex[l.LessonIndex] = l
	}
	for i := 0; i < totalLessons; i++ {
		lp := LessonProgress{
			Index:     i,
			Title:     "Lesson " + strconv.Itoa(i+1),
			Completed: progression.IsCompleted(e.LessonFlags, i),
		}
		if l, ok := byIndex[i]; ok {
			lp.Title = l.Title
			lp.DurationMinutes = l.DurationMinutes
		}
		v.Lessons = append(v.Lessons, lp)
	}
	return v
}

type AchievementView struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPReward    uint64 `json:"xp_reward"`
	Unlocked    bool   `json:"unlocked"`
}

func NewAchievementViews(flags []uint64) []AchievementView {
	out := make([]AchievementView, len(progression.Achievements))
	for i, a := range progression.Achievements {
		out[i] = AchievementView{
			Index:       a.Index,
			Name:        a.Name,
			Description: a.Description,
			XPReward:    a.XPReward,
			Unlocked:    progression.AchievementUnlocked(flags, a.Index),
		}
	}
	return out
}

type ProfileView struct {
	Wallet               string     `json:"wallet"`
	XP                   LevelView  `json:"xp"`
	Streak               StreakView `json:"streak"`
	LastActivity         int64      `json:"last_activity"`
	LastActive           string     `json:"last_active,omitempty"`
	XPEarnedToday        uint64     `json:"xp_earned_today"`
	AchievementsUnlocked int        `json:"achievements_unlocked"`
	ReferralCount        uint32     `json:"referral_count"`
	HasReferrer          bool       `json:"has_referrer"`
}

func NewProfileView(curve progression.Curve, milestones progression.Milestones, p *ledger.Profile, xp uint64, now time.Time) ProfileView {
	v := ProfileView{
		Wallet:               p.Authority,
		XP:                   NewLevelView(curve, xp),
		Streak:               NewStreakView(milestones, p.CurrentStreak, p.LongestStreak, p.StreakFreezes),
		LastActivity:         p.LastActivityDate,
		AchievementsUnlocked: progression.CountCompleted(p.AchievementFlags),
		ReferralCount:        p.ReferralCount,
		HasReferrer:          p.HasReferrer,
	}
	if p.LastActivityDate > 0 {
		v.LastActive = progression.FormatSince(p.LastActivityDate, now)
	}
	// the daily counter only applies to the day it was recorded on
	if p.LastXPDay == now.Unix()/86400 {
		v.XPEarnedToday = p.XPEarnedToday
	}
	return v
}

type CourseSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	TrackID           int    `json:"track_id"`
	Track             string `json:"track"`
	TrackSlug         string `json:"track_slug"`
	Difficulty        int    `json:"difficulty"`
	DifficultyName    string `json:"difficulty_name"`
	LessonCount       int    `json:"lesson_count"`
	XPPerLesson       uint64 `json:"xp_per_lesson"`
	CompletionBonusXP uint64 `json:"completion_bonus_xp"`
	TotalXP           uint64 `json:"total_xp"`
	EstimatedMinutes  int    `json:"estimated_minutes"`
	EstimatedDuration string `json:"estimated_duration"`
	Version           int    `json:"version"`
	Active            bool   `json:"active"`
}

func NewCourseSummary(c models.Course) CourseSummary {
	minutes := 0
	for _, l := range c.Lessons {
		minutes += l.DurationMinutes
	}
	lessons := len(c.Lessons)
	return CourseSummary{
		ID:                c.Slug,
		Name:              c.Name,
		Description:       c.Description,
		TrackID:           c.TrackID,
		Track:             progression.TrackName(c.TrackID),
		TrackSlug:         progression.TrackSlug(c.TrackID),
		Difficulty:        c.Difficulty,
		DifficultyName:    progression.DifficultyName(c.Difficulty),
		LessonCount:       lessons,
		XPPerLesson:       c.XPPerLesson,
		CompletionBonusXP: c.CompletionBonusXP,
		TotalXP:           c.XPPerLesson*uint64(lessons) + c.CompletionBonusXP,
		EstimatedMinutes:  minutes,
		EstimatedDuration: progression.FormatDuration(int64(minutes) * 60),
		Version:           c.Version,
		Active:            c.Active,
	}
}

// findCourse loads a catalog course by slug with its lessons in order.
func findCourse(db *gorm.DB, slug string) (*models.Course, error) {
	var course models.Course
	err := db.Preload("Lessons", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("lesson_index")
	}).Where("slug = ?", slug).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// courseLookupError writes the response for a failed findCourse.
func courseLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound(c, "Course not found")
	}
	return utils.InternalServerError(c, "Could not query database")
}

// lessonIndexParam parses the :index route parameter.
func lessonIndexParam(c *fiber.Ctx) (int, bool) {
	idx, err := strconv.Atoi(c.Params("index"))
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
