// Package game holds the pure reward arithmetic: points and XP for
// tasks, level derivation, and achievement definitions. Nothing here
// touches storage or returns errors.
package game

import (
	"github.com/lvtodo/lvtodo-api/internal/constants"
	"github.com/lvtodo/lvtodo-api/internal/models"
)

// TaskPoints returns the points awarded for a task of the given
// difficulty. Late completion halves the base value, rounded down.
func TaskPoints(difficulty models.TaskDifficulty, isLate bool) int {
	base := constants.EasyTaskPoints
	if difficulty == models.DifficultyHard {
		base = constants.HardTaskPoints
	}

	if isLate {
		return base * constants.LatePenaltyNumerator / constants.LatePenaltyDenominator
	}

	return base
}

// PenalizedPoints applies the late penalty to a snapshotted base
// value, rounding down. The snapshot taken at task creation stays
// authoritative even if the difficulty table changes later.
func PenalizedPoints(base int, isLate bool) int {
	if isLate {
		return base * constants.LatePenaltyNumerator / constants.LatePenaltyDenominator
	}
	return base
}

// TaskXP returns the XP awarded for a task. There is no late penalty
// on XP.
func TaskXP(difficulty models.TaskDifficulty) int {
	if difficulty == models.DifficultyHard {
		return constants.HardTaskXP
	}
	return constants.EasyTaskXP
}

// Level derives a user's level from accumulated XP, clamped to the
// configured maximum.
func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}

	level := xp/constants.XPPerLevel + 1
	if level > constants.MaxLevel {
		return constants.MaxLevel
	}
	return level
}

// LevelProgress returns the percentage of XP accumulated toward the
// next level, in [0,100]. At the level cap it reports 100.
func LevelProgress(xp int) float64 {
	if xp < 0 {
		xp = 0
	}

	if Level(xp) >= constants.MaxLevel {
		return 100
	}

	inLevel := xp % constants.XPPerLevel
	return float64(inLevel) / float64(constants.XPPerLevel) * 100
}

// XPForNextLevel returns the total XP at which the next level is
// reached.
func XPForNextLevel(xp int) int {
	return Level(xp) * constants.XPPerLevel
}
