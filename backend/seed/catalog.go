// Package seed loads the starter course catalog.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"

	"academy/backend/models"

	"gorm.io/gorm"
)

type lessonSeed struct {
	title   string
	minutes int
	content string
}

type questionSeed struct {
	question string
	options  []string
	correct  int
}

type courseSeed struct {
	slug        string
	name        string
	description string
	trackID     int
	difficulty  int
	xpPerLesson uint64
	bonusXP     uint64
	lessons     []lessonSeed
}

// quiz is attached to every seeded lesson.
var quiz = []questionSeed{
	{
		question: "What is the main purpose of Solana's Proof of History?",
		options:  []string{"To reduce transaction fees", "To improve network consensus efficiency", "To enable smart contracts", "To create NFTs"},
		correct:  1,
	},
	{
		question: "Which programming language is Anchor built on?",
		options:  []string{"JavaScript", "Rust", "Python", "C++"},
		correct:  1,
	},
	{
		question: "What is a wallet in Solana?",
		options:  []string{"A physical device", "A software that stores private keys", "A bank account", "A cryptocurrency exchange"},
		correct:  1,
	},
}

var courses = []courseSeed{
	{
		slug:        "anchor-beginner",
		name:        "Anchor Framework",
		description: "Learn to build Solana programs with Anchor framework. From basics to advanced patterns.",
		trackID:     1,
		difficulty:  1,
		xpPerLesson: 30,
		bonusXP:     200,
		lessons: []lessonSeed{
			{"Introduction to Anchor", 15, "Anchor is a framework for Solana program development."},
			{"Setting Up Environment", 20, "Install Anchor CLI and dependencies."},
			{"Your First Program", 25, "Create a basic Solana program."},
			{"Accounts and Data", 30, "Understanding the Solana account model."},
			{"Instructions", 25, "Defining program instructions."},
			{"Errors and Validation", 20, "Handling errors properly."},
			{"Testing with Mocha", 35, "Write tests for your program."},
			{"Deployment", 20, "Deploy to devnet and mainnet."},
			{"Frontend Integration", 40, "Connect your React app."},
			{"Best Practices", 30, "Security and optimization tips."},
		},
	},
	{
		slug:        "rust-beginner",
		name:        "Rust for Solana",
		description: "The Rust you need to read and write Solana programs.",
		trackID:     2,
		difficulty:  1,
		xpPerLesson: 25,
		bonusXP:     150,
		lessons: []lessonSeed{
			{"Ownership and Borrowing", 30, "How Rust manages memory without a garbage collector."},
			{"Structs and Enums", 25, "Modelling program state."},
			{"Error Handling", 20, "Result, Option and the question mark operator."},
			{"Traits", 25, "Shared behaviour across types."},
			{"Serialization with Borsh", 30, "Encoding account data."},
		},
	},
	{
		slug:        "defi-beginner",
		name:        "DeFi Development",
		description: "Build token swaps, vaults and lending primitives on Solana.",
		trackID:     3,
		difficulty:  1,
		xpPerLesson: 35,
		bonusXP:     250,
		lessons: []lessonSeed{
			{"SPL Tokens", 25, "Mints, token accounts and authorities."},
			{"Token Swaps", 35, "Constant product market makers."},
			{"Vaults", 30, "Holding user deposits in program-owned accounts."},
			{"Oracles", 25, "Reading external prices safely."},
			{"Lending Basics", 40, "Collateral, borrowing and liquidation."},
			{"Composability", 30, "Calling other programs with CPI."},
		},
	},
	{
		slug:        "security-beginner",
		name:        "Program Security",
		description: "Common Solana program vulnerabilities and how to avoid them.",
		trackID:     4,
		difficulty:  1,
		xpPerLesson: 40,
		bonusXP:     300,
		lessons: []lessonSeed{
			{"Signer Checks", 20, "Verifying who authorized an instruction."},
			{"Owner Checks", 20, "Trusting only accounts your program owns."},
			{"Arithmetic Overflow", 25, "Checked math in on-chain code."},
			{"PDA Validation", 30, "Seeds, bumps and account substitution."},
			{"Reinitialization Attacks", 25, "Guarding init instructions."},
		},
	},
}

// Slugs lists the seeded course ids in catalog order.
func Slugs() []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.slug
	}
	return out
}

// Apply inserts every catalog course whose slug is missing and returns the
// number of courses created. Existing courses are left untouched.
func Apply(db *gorm.DB) (int, error) {
	created := 0
	for _, cs := range courses {
		var existing models.Course
		err := db.Where("slug = ?", cs.slug).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("lookup course %s: %w", cs.slug, err)
		}

		course, err := buildCourse(cs)
		if err != nil {
			return created, err
		}
		if err := db.Create(&course).Error; err != nil {
			return created, fmt.Errorf("create course %s: %w", cs.slug, err)
		}
		created++
	}
	return created, nil
}

func buildCourse(cs courseSeed) (models.Course, error) {
	questions := make([]models.QuizQuestion, 0, len(quiz))
	for i, q := range quiz {
		opts, err := json.Marshal(q.options)
		if err != nil {
			return models.Course{}, err
		}
		questions = append(questions, models.QuizQuestion{
			Question:      q.question,
			Options:       string(opts),
			CorrectAnswer: q.correct,
			SequenceOrder: i,
		})
	}

	lessons := make([]models.Lesson, len(cs.lessons))
	for i, l := range cs.lessons {
		lessons[i] = models.Lesson{
			LessonIndex:     i,
			Title:           l.title,
			Content:         l.content,
			DurationMinutes: l.minutes,
			Questions:       append([]models.QuizQuestion(nil), questions...),
		}
	}

	return models.Course{
		Slug:              cs.slug,
		Name:              cs.name,
		Description:       cs.description,
		TrackID:           cs.trackID,
		Difficulty:        cs.difficulty,
		XPPerLesson:       cs.xpPerLesson,
		CompletionBonusXP: cs.bonusXP,
		Version:           1,
		Active:            true,
		Lessons:           lessons,
	}, nil
}
