package models

import "time"

// Distribution is a target question count per difficulty.
type Distribution struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

func (d Distribution) Count(diff Difficulty) int {
	switch diff {
	case DifficultyEasy:
		return d.Easy
	case DifficultyMedium:
		return d.Medium
	case DifficultyHard:
		return d.Hard
	}
	return 0
}

func (d Distribution) Total() int {
	return d.Easy + d.Medium + d.Hard
}

// DistributionPreset is the named distribution most recently applied to a
// session. Exactly one preset is active per session at a time; selecting a
// different one replaces it outright, and wiping questions clears it.
type DistributionPreset struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Distribution Distribution `json:"distribution"`
	CreatedAt    time.Time    `json:"created_at"`
}
