package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MachineAnalysis is the structured result of scanning a gym machine.
type MachineAnalysis struct {
	MachineName       string   `json:"machineName"`
	PrimaryMuscles    []string `json:"primaryMuscles"`
	SecondaryMuscles  []string `json:"secondaryMuscles"`
	Difficulty        string   `json:"difficulty"`
	Instructions      []string `json:"instructions"`
	CommonErrors      []string `json:"commonErrors"`
	RecommendedSets   int      `json:"recommendedSets"`
	RecommendedReps   string   `json:"recommendedReps"`
	RecommendedWeight string   `json:"recommendedWeight"`
	Tempo             string   `json:"tempo"`
	YoutubeQuery      string   `json:"youtubeQuery"`
	YoutubeVideoID    string   `json:"youtubeVideoId,omitempty"`
}

type Exercise struct {
	Name            string `json:"name"`
	Sets            int    `json:"sets"`
	Reps            string `json:"reps"`
	RestSeconds     int    `json:"restSeconds"`
	Notes           string `json:"notes,omitempty"`
	VideoSearchTerm string `json:"videoSearchTerm,omitempty"`
}

type WorkoutPlan struct {
	Title                string     `json:"title"`
	EstimatedDurationMin int        `json:"estimatedDurationMin"`
	CoachTip             string     `json:"coachTip,omitempty"`
	Exercises            []Exercise `json:"exercises"`
}

// ScanRecord persists one machine analysis for the user's history.
type ScanRecord struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID      `json:"userId" gorm:"type:uuid;index;not null"`
	MachineName string         `json:"machineName"`
	Analysis    datatypes.JSON `json:"analysis" gorm:"not null"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"index"`
}

// WorkoutRecord persists one generated workout plan.
type WorkoutRecord struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID      `json:"userId" gorm:"type:uuid;index;not null"`
	Title     string         `json:"title"`
	Plan      datatypes.JSON `json:"plan" gorm:"not null"`
	CreatedAt time.Time      `json:"createdAt" gorm:"index"`
}
