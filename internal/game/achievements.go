package game

// AchievementCondition is the kind of statistic an achievement is
// gated on.
type AchievementCondition string

const (
	ConditionTasksCompleted  AchievementCondition = "tasks_completed"
	ConditionLevelReached    AchievementCondition = "level_reached"
	ConditionPointsEarned    AchievementCondition = "points_earned"
	ConditionStreakDays      AchievementCondition = "streak_days"
	ConditionWishesPurchased AchievementCondition = "wishes_purchased"
)

// Achievement is a static achievement definition.
type Achievement struct {
	ID             string
	Title          string
	Description    string
	Condition      AchievementCondition
	ConditionValue int
	RewardXP       int
	RewardPoints   int
}

// Achievements lists every achievement the system can award.
var Achievements = []Achievement{
	{ID: "first_task", Title: "First Step", Description: "Complete your first task", Condition: ConditionTasksCompleted, ConditionValue: 1, RewardXP: 50, RewardPoints: 10},
	{ID: "task_master_10", Title: "Task Master", Description: "Complete 10 tasks", Condition: ConditionTasksCompleted, ConditionValue: 10, RewardXP: 100, RewardPoints: 25},
	{ID: "task_master_50", Title: "Task Expert", Description: "Complete 50 tasks", Condition: ConditionTasksCompleted, ConditionValue: 50, RewardXP: 300, RewardPoints: 75},
	{ID: "level_5", Title: "Apprentice", Description: "Reach level 5", Condition: ConditionLevelReached, ConditionValue: 5, RewardPoints: 50},
	{ID: "level_10", Title: "Professional", Description: "Reach level 10", Condition: ConditionLevelReached, ConditionValue: 10, RewardPoints: 100},
	{ID: "points_1000", Title: "High Roller", Description: "Earn 1000 points in total", Condition: ConditionPointsEarned, ConditionValue: 1000, RewardXP: 200},
	{ID: "streak_7", Title: "Weekly Streak", Description: "Complete tasks 7 days in a row", Condition: ConditionStreakDays, ConditionValue: 7, RewardXP: 150, RewardPoints: 50},
	{ID: "streak_30", Title: "Monthly Streak", Description: "Complete tasks 30 days in a row", Condition: ConditionStreakDays, ConditionValue: 30, RewardXP: 500, RewardPoints: 200},
	{ID: "wish_fulfilled", Title: "Wish Granter", Description: "Complete your first wish", Condition: ConditionWishesPurchased, ConditionValue: 1, RewardXP: 100},
}

// AchievementStats is the snapshot of user statistics achievements are
// evaluated against.
type AchievementStats struct {
	TasksCompleted  int
	Level           int
	PointsEarned    int
	LongestStreak   int
	WishesPurchased int
}

// Met reports whether the achievement's condition holds for the given
// stats.
func (a Achievement) Met(stats AchievementStats) bool {
	switch a.Condition {
	case ConditionTasksCompleted:
		return stats.TasksCompleted >= a.ConditionValue
	case ConditionLevelReached:
		return stats.Level >= a.ConditionValue
	case ConditionPointsEarned:
		return stats.PointsEarned >= a.ConditionValue
	case ConditionStreakDays:
		return stats.LongestStreak >= a.ConditionValue
	case ConditionWishesPurchased:
		return stats.WishesPurchased >= a.ConditionValue
	default:
		return false
	}
}
