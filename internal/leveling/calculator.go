// Package leveling переводит накопленный опыт в уровень пользователя.
package leveling

import (
	"errors"
	"math"
)

const (
	// initialLevelStep XP, необходимый для перехода с 1 на 2 уровень
	initialLevelStep = 1000.0
	levelStepGrowth  = 1.5
	levelStepRound   = 50.0
)

// ErrNonFiniteXP возвращается для NaN и бесконечных значений опыта
var ErrNonFiniteXP = errors.New("total XP must be a finite number")

// CalculateLevel переводит суммарный опыт в уровень пользователя.
// Отрицательный опыт считается нулевым.
func CalculateLevel(totalXP float64) (int, error) {
	progress, err := CalculateProgress(totalXP)
	if err != nil {
		return 0, err
	}
	return progress.Level, nil
}

// LevelForXP вариант CalculateLevel для целочисленного опыта
func LevelForXP(totalXP int64) int {
	level, _ := CalculateLevel(float64(totalXP))
	return level
}

// Progress описывает положение пользователя на шкале уровней
type Progress struct {
	TotalXP       float64 `json:"total_xp"`
	Level         int     `json:"level"`
	LevelStartXP  float64 `json:"level_start_xp"`
	NextLevelXP   float64 `json:"next_level_xp"`
	XPToNextLevel float64 `json:"xp_to_next_level"`
	Progress      float64 `json:"progress"`
}

// CalculateProgress возвращает уровень и границы текущего уровня
func CalculateProgress(totalXP float64) (Progress, error) {
	if math.IsNaN(totalXP) || math.IsInf(totalXP, 0) {
		return Progress{}, ErrNonFiniteXP
	}
	if totalXP < 0 {
		totalXP = 0
	}

	level := 1
	step := initialLevelStep
	threshold := initialLevelStep
	levelStart := 0.0

	for totalXP >= threshold {
		level++
		levelStart = threshold
		step = nextLevelStep(step)
		threshold += step
	}

	return Progress{
		TotalXP:       totalXP,
		Level:         level,
		LevelStartXP:  levelStart,
		NextLevelXP:   threshold,
		XPToNextLevel: threshold - totalXP,
		Progress:      (totalXP - levelStart) / (threshold - levelStart),
	}, nil
}

// LevelThresholds возвращает суммарный опыт, необходимый для уровней 2..n+1
func LevelThresholds(n int) []float64 {
	if n <= 0 {
		return nil
	}

	thresholds := make([]float64, 0, n)
	step := initialLevelStep
	threshold := initialLevelStep
	for i := 0; i < n; i++ {
		thresholds = append(thresholds, threshold)
		step = nextLevelStep(step)
		threshold += step
	}
	return thresholds
}

// nextLevelStep увеличивает шаг на 50% с округлением до кратного 50
func nextLevelStep(step float64) float64 {
	return math.Round(step*levelStepGrowth/levelStepRound) * levelStepRound
}
