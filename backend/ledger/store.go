package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"academy/backend/models"
	"academy/backend/progression"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	secondsPerDay = 86400
	// referralsForAchievement is the referral count that unlocks Referrer.
	referralsForAchievement = 3
	// achievementCapacity is the number of achievement slots a profile holds.
	achievementCapacity = 64
)

type StoreConfig struct {
	Curve      progression.Curve
	Milestones progression.Milestones
	// DailyXPCap limits lesson XP per UTC day, 0 disables the cap.
	DailyXPCap uint64
}

// StoreClient is a Client that applies instructions to the application
// database. It stands in for the on-chain program during development and
// in single-node deployments.
type StoreClient struct {
	db     *gorm.DB
	cfg    StoreConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewStoreClient(db *gorm.DB, cfg StoreConfig, logger *zap.Logger) *StoreClient {
	if len(cfg.Milestones) == 0 {
		cfg.Milestones = progression.DefaultMilestones
	}
	return &StoreClient{
		db:     db,
		cfg:    cfg,
		logger: logger.Named("ledger"),
		now:    time.Now,
	}
}

// WithClock replaces the time source, used by tests to move across days.
func (s *StoreClient) WithClock(now func() time.Time) *StoreClient {
	s.now = now
	return s
}

func (s *StoreClient) FetchBalance(ctx context.Context, learner string) (uint64, error) {
	p, err := s.loadProfile(s.db.WithContext(ctx), learner)
	if err != nil {
		return 0, err
	}
	return p.XPBalance, nil
}

func (s *StoreClient) FetchProfile(ctx context.Context, learner string) (*Profile, error) {
	p, err := s.loadProfile(s.db.WithContext(ctx), learner)
	if err != nil {
		return nil, err
	}
	return toProfile(p), nil
}

func (s *StoreClient) FetchEnrollment(ctx context.Context, courseID, learner string) (*Enrollment, error) {
	e, err := s.loadEnrollment(s.db.WithContext(ctx), courseID, learner)
	if err != nil {
		if errors.Is(err, ErrNotEnrolled) {
			return nil, fmt.Errorf("enrollment %s/%s: %w", courseID, learner, ErrAccountNotFound)
		}
		return nil, err
	}
	return toEnrollment(e), nil
}

func (s *StoreClient) FetchCourse(ctx context.Context, courseID string) (*Course, error) {
	tx := s.db.WithContext(ctx)
	c, err := s.loadCourse(tx, courseID)
	if err != nil {
		return nil, err
	}
	n, err := lessonCount(tx, c)
	if err != nil {
		return nil, err
	}
	return toCourse(c, n), nil
}

// SubmitInstruction applies ins atomically and records it in the
// instruction log.
func (s *StoreClient) SubmitInstruction(ctx context.Context, ins Instruction) (*Receipt, error) {
	if ins.Learner == "" {
		return nil, fmt.Errorf("%w: learner is required", ErrUnknownInstruction)
	}

	receipt := &Receipt{Signature: uuid.NewString()}
	now := s.now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		switch ins.Kind {
		case InitLearner:
			err = s.initLearner(tx, ins, receipt)
		case Enroll:
			err = s.enroll(tx, ins, now)
		case CloseEnrollment:
			err = s.closeEnrollment(tx, ins)
		case CompleteLesson:
			err = s.completeLesson(tx, ins, now, receipt)
		case FinalizeCourse:
			err = s.finalizeCourse(tx, ins, now, receipt)
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownInstruction, ins.Kind)
		}
		if err != nil {
			return err
		}

		return tx.Create(&models.InstructionLog{
			Signature:   receipt.Signature,
			Kind:        string(ins.Kind),
			Learner:     ins.Learner,
			CourseSlug:  ins.CourseID,
			LessonIndex: ins.LessonIndex,
			XPAwarded:   receipt.XPAwarded,
		}).Error
	})
	if err != nil {
		s.logger.Debug("instruction rejected",
			zap.String("kind", string(ins.Kind)),
			zap.String("learner", ins.Learner),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("instruction applied",
		zap.String("kind", string(ins.Kind)),
		zap.String("learner", ins.Learner),
		zap.String("course", ins.CourseID),
		zap.String("signature", receipt.Signature),
		zap.Uint64("xp_awarded", receipt.XPAwarded),
		zap.Int("events", len(receipt.Events)))
	return receipt, nil
}

func (s *StoreClient) initLearner(tx *gorm.DB, ins Instruction, r *Receipt) error {
	if _, err := s.loadProfile(tx, ins.Learner); err == nil {
		return ErrAlreadyInitialized
	} else if !errors.Is(err, ErrAccountNotFound) {
		return err
	}

	p := models.LearnerProfile{
		Authority:        ins.Learner,
		AchievementFlags: progression.NewLessonFlags(achievementCapacity),
	}

	if ins.Referrer != "" && ins.Referrer != ins.Learner {
		ref, err := s.loadProfile(forUpdate(tx), ins.Referrer)
		if err != nil {
			return fmt.Errorf("referrer: %w", err)
		}
		ref.ReferralCount++
		if ref.ReferralCount == referralsForAchievement {
			// the reward goes to the referrer, not this receipt
			var refReceipt Receipt
			unlockAchievement(ref, progression.AchievementReferrer, &refReceipt)
			s.logger.Info("referrer achievement unlocked",
				zap.String("learner", ref.Authority),
				zap.Uint64("xp_awarded", refReceipt.XPAwarded))
		}
		if err := tx.Save(ref).Error; err != nil {
			return err
		}
		p.Referrer = ins.Referrer
	}

	return tx.Create(&p).Error
}

func (s *StoreClient) enroll(tx *gorm.DB, ins Instruction, now time.Time) error {
	course, err := s.loadCourse(tx, ins.CourseID)
	if err != nil {
		return err
	}
	if !course.Active {
		return ErrCourseInactive
	}
	if _, err := s.loadProfile(tx, ins.Learner); err != nil {
		return err
	}
	if _, err := s.loadEnrollment(tx, ins.CourseID, ins.Learner); err == nil {
		return ErrAlreadyEnrolled
	} else if !errors.Is(err, ErrNotEnrolled) {
		return err
	}

	return tx.Create(&models.Enrollment{
		CourseSlug:      course.Slug,
		Learner:         ins.Learner,
		EnrolledVersion: course.Version,
		EnrolledAt:      now.Unix(),
		LessonFlags:     progression.NewLessonFlags(progression.MaxLessons),
	}).Error
}

func (s *StoreClient) closeEnrollment(tx *gorm.DB, ins Instruction) error {
	e, err := s.loadEnrollment(forUpdate(tx), ins.CourseID, ins.Learner)
	if err != nil {
		return err
	}
	// hard delete so the unique (course, learner) index allows re-enrolling
	return tx.Unscoped().Delete(e).Error
}

func (s *StoreClient) completeLesson(tx *gorm.DB, ins Instruction, now time.Time, r *Receipt) error {
	course, err := s.loadCourse(tx, ins.CourseID)
	if err != nil {
		return err
	}
	total, err := lessonCount(tx, course)
	if err != nil {
		return err
	}
	e, err := s.loadEnrollment(forUpdate(tx), ins.CourseID, ins.Learner)
	if err != nil {
		return err
	}
	p, err := s.loadProfile(forUpdate(tx), ins.Learner)
	if err != nil {
		return err
	}

	if ins.LessonIndex < 0 || ins.LessonIndex >= total {
		return fmt.Errorf("%w: %d of %d", ErrLessonOutOfRange, ins.LessonIndex, total)
	}
	if progression.IsCompleted(e.LessonFlags, ins.LessonIndex) {
		return ErrLessonAlreadyCompleted
	}
	flags, ok := progression.WithCompleted(e.LessonFlags, ins.LessonIndex)
	if !ok {
		return fmt.Errorf("%w: %d exceeds flag capacity", ErrLessonOutOfRange, ins.LessonIndex)
	}
	e.LessonFlags = flags
	r.Events = append(r.Events, Event{Kind: EventLessonCompleted, Detail: strconv.Itoa(ins.LessonIndex)})

	levelBefore := s.cfg.Curve.Level(p.XPBalance)

	s.touchStreak(p, now, r)
	s.awardLessonXP(p, course.XPPerLesson, now, r)

	unlockAchievement(p, progression.AchievementFirstSteps, r)
	if p.CurrentStreak >= 7 {
		unlockAchievement(p, progression.AchievementStreak7, r)
	}
	if p.CurrentStreak >= 30 {
		unlockAchievement(p, progression.AchievementStreak30, r)
	}

	if e.CompletedAt == nil && progression.CountCompleted(e.LessonFlags) >= total {
		completedAt := now.Unix()
		e.CompletedAt = &completedAt
		r.Events = append(r.Events, Event{Kind: EventCourseCompleted, Detail: course.Slug})
	}

	s.levelUpEvent(levelBefore, p.XPBalance, r)

	if err := tx.Save(e).Error; err != nil {
		return err
	}
	return tx.Save(p).Error
}

func (s *StoreClient) finalizeCourse(tx *gorm.DB, ins Instruction, now time.Time, r *Receipt) error {
	course, err := s.loadCourse(tx, ins.CourseID)
	if err != nil {
		return err
	}
	e, err := s.loadEnrollment(forUpdate(tx), ins.CourseID, ins.Learner)
	if err != nil {
		return err
	}
	if e.CompletedAt == nil {
		return ErrCourseNotCompleted
	}
	if e.BonusClaimed {
		return ErrBonusAlreadyClaimed
	}
	p, err := s.loadProfile(forUpdate(tx), ins.Learner)
	if err != nil {
		return err
	}

	// the flag flips at most once even if another claim got past the read
	asset := uuid.NewString()
	res := tx.Model(&models.Enrollment{}).
		Where("id = ? AND bonus_claimed = ?", e.ID, false).
		Updates(map[string]interface{}{"bonus_claimed": true, "credential_asset": asset})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBonusAlreadyClaimed
	}

	levelBefore := s.cfg.Curve.Level(p.XPBalance)

	p.XPBalance += course.CompletionBonusXP
	r.XPAwarded += course.CompletionBonusXP
	r.Events = append(r.Events, Event{Kind: EventCredentialIssued, Detail: asset})

	unlockAchievement(p, progression.AchievementCourseCompleter, r)
	s.levelUpEvent(levelBefore, p.XPBalance, r)

	return tx.Save(p).Error
}

// touchStreak records activity at now. Activity on the next UTC day extends
// the streak; a longer gap is bridged with one freeze per missed day when
// enough freezes are banked, otherwise the streak restarts at 1. Reaching a
// milestone banks one freeze.
func (s *StoreClient) touchStreak(p *models.LearnerProfile, now time.Time, r *Receipt) {
	today := now.Unix() / secondsPerDay
	before := p.CurrentStreak

	if p.LastActivityDate == 0 || p.CurrentStreak == 0 {
		p.CurrentStreak = 1
	} else {
		gap := today - p.LastActivityDate/secondsPerDay
		switch {
		case gap <= 0:
		case gap == 1:
			p.CurrentStreak++
		case gap-1 <= int64(p.StreakFreezes):
			p.StreakFreezes -= uint32(gap - 1)
			p.CurrentStreak++
		default:
			p.CurrentStreak = 1
		}
	}

	p.LastActivityDate = now.Unix()
	p.LongestStreak = max(p.LongestStreak, p.CurrentStreak)

	if p.CurrentStreak != before && s.cfg.Milestones.IsMilestone(p.CurrentStreak) {
		p.StreakFreezes++
		r.Events = append(r.Events, Event{
			Kind:   EventStreakMilestone,
			Detail: strconv.FormatUint(uint64(p.CurrentStreak), 10),
		})
	}
}

func (s *StoreClient) awardLessonXP(p *models.LearnerProfile, xp uint64, now time.Time, r *Receipt) {
	today := now.Unix() / secondsPerDay
	if p.LastXPDay != today {
		p.LastXPDay = today
		p.XPEarnedToday = 0
	}

	if limit := s.cfg.DailyXPCap; limit > 0 {
		if p.XPEarnedToday >= limit {
			xp = 0
		} else {
			xp = min(xp, limit-p.XPEarnedToday)
		}
	}

	p.XPEarnedToday += xp
	p.XPBalance += xp
	r.XPAwarded += xp
}

func (s *StoreClient) levelUpEvent(before int, balance uint64, r *Receipt) {
	if after := s.cfg.Curve.Level(balance); after > before {
		r.Events = append(r.Events, Event{Kind: EventLevelUp, Detail: strconv.Itoa(after)})
	}
}

// unlockAchievement sets the achievement bit and pays its reward once.
func unlockAchievement(p *models.LearnerProfile, index int, r *Receipt) {
	if progression.AchievementUnlocked(p.AchievementFlags, index) {
		return
	}
	flags, ok := progression.WithCompleted(p.AchievementFlags, index)
	if !ok {
		flags, _ = progression.WithCompleted(progression.NewLessonFlags(achievementCapacity), index)
		for i, w := range p.AchievementFlags {
			if i < len(flags) {
				flags[i] |= w
			}
		}
	}
	p.AchievementFlags = flags

	a := progression.Achievements[index]
	p.XPBalance += a.XPReward
	r.XPAwarded += a.XPReward
	r.Events = append(r.Events, Event{Kind: EventAchievementUnlocked, Detail: a.Name})
}

// forUpdate locks the rows the next query reads until the transaction ends.
// SQLite has no row locks and serializes writers instead.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *StoreClient) loadProfile(tx *gorm.DB, learner string) (*models.LearnerProfile, error) {
	var p models.LearnerProfile
	if err := tx.Where("authority = ?", learner).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("learner %s: %w", learner, ErrAccountNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (s *StoreClient) loadCourse(tx *gorm.DB, courseID string) (*models.Course, error) {
	var c models.Course
	if err := tx.Where("slug = ?", courseID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %s: %w", courseID, ErrAccountNotFound)
		}
		return nil, err
	}
	return &c, nil
}

// loadEnrollment returns ErrNotEnrolled when the enrollment is missing.
func (s *StoreClient) loadEnrollment(tx *gorm.DB, courseID, learner string) (*models.Enrollment, error) {
	var e models.Enrollment
	err := tx.Where("course_slug = ? AND learner = ?", courseID, learner).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	return &e, nil
}

func lessonCount(tx *gorm.DB, c *models.Course) (int, error) {
	var n int64
	if err := tx.Model(&models.Lesson{}).Where("course_id = ?", c.ID).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func toProfile(p *models.LearnerProfile) *Profile {
	return &Profile{
		Authority:        p.Authority,
		CurrentStreak:    p.CurrentStreak,
		LongestStreak:    p.LongestStreak,
		LastActivityDate: p.LastActivityDate,
		StreakFreezes:    p.StreakFreezes,
		AchievementFlags: append([]uint64(nil), p.AchievementFlags...),
		XPEarnedToday:    p.XPEarnedToday,
		LastXPDay:        p.LastXPDay,
		ReferralCount:    p.ReferralCount,
		HasReferrer:      p.Referrer != "",
	}
}

func toEnrollment(e *models.Enrollment) *Enrollment {
	return &Enrollment{
		Course:          e.CourseSlug,
		EnrolledVersion: e.EnrolledVersion,
		EnrolledAt:      e.EnrolledAt,
		CompletedAt:     e.CompletedAt,
		LessonFlags:     append([]uint64(nil), e.LessonFlags...),
		CredentialAsset: e.CredentialAsset,
		BonusClaimed:    e.BonusClaimed,
	}
}

func toCourse(c *models.Course, lessons int) *Course {
	return &Course{
		ID:                c.Slug,
		Name:              c.Name,
		TrackID:           c.TrackID,
		Difficulty:        c.Difficulty,
		LessonCount:       lessons,
		XPPerLesson:       c.XPPerLesson,
		CompletionBonusXP: c.CompletionBonusXP,
		Version:           c.Version,
		Active:            c.Active,
	}
}
