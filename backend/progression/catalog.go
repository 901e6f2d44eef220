package progression

import "fmt"

// Track describes a learning track courses belong to.
type Track struct {
	Slug    string
	Display string
}

var tracks = map[int]Track{
	0: {Slug: "standalone", Display: "Standalone Course"},
	1: {Slug: "anchor", Display: "Anchor Framework"},
	2: {Slug: "rust", Display: "Rust for Solana"},
	3: {Slug: "defi", Display: "DeFi Development"},
	4: {Slug: "security", Display: "Program Security"},
}

func TrackName(id int) string {
	if t, ok := tracks[id]; ok {
		return t.Display
	}
	return fmt.Sprintf("Track %d", id)
}

func TrackSlug(id int) string {
	if t, ok := tracks[id]; ok {
		return t.Slug
	}
	return "unknown"
}

func DifficultyName(difficulty int) string {
	switch difficulty {
	case 1:
		return "Beginner"
	case 2:
		return "Intermediate"
	case 3:
		return "Advanced"
	default:
		return "Unknown"
	}
}

// Achievement is a one-off reward tracked in a learner's achievement flags.
type Achievement struct {
	Index       int
	Name        string
	Description string
	XPReward    uint64
}

const (
	AchievementFirstSteps = iota
	AchievementCourseCompleter
	AchievementStreak7
	AchievementStreak30
	AchievementReferrer
)

// Achievements is ordered by Index.
var Achievements = []Achievement{
	{Index: AchievementFirstSteps, Name: "First Steps", Description: "Complete your first lesson", XPReward: 50},
	{Index: AchievementCourseCompleter, Name: "Course Completer", Description: "Complete your first course", XPReward: 100},
	{Index: AchievementStreak7, Name: "7-Day Streak", Description: "Maintain a 7-day learning streak", XPReward: 150},
	{Index: AchievementStreak30, Name: "30-Day Streak", Description: "Maintain a 30-day learning streak", XPReward: 300},
	{Index: AchievementReferrer, Name: "Referrer", Description: "Refer 3 friends", XPReward: 200},
}

// AchievementUnlocked reads achievement flags with the same packing as
// lesson flags.
func AchievementUnlocked(flags []uint64, index int) bool {
	return IsCompleted(flags, index)
}

// CredentialBaseURL is the gateway credential metadata is served from.
const CredentialBaseURL = "https://arweave.net/"

func CredentialURL(txID string) string {
	if txID == "" {
		return ""
	}
	return CredentialBaseURL + txID
}
