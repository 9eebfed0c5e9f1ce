package domain

import (
	"time"

	"github.com/google/uuid"
)

type TrainingLevel string

const (
	LevelBeginner     TrainingLevel = "Iniciante"
	LevelIntermediate TrainingLevel = "Intermediário"
	LevelAdvanced     TrainingLevel = "Avançado"
)

type TrainingGoal string

const (
	GoalWeightLoss  TrainingGoal = "Emagrecer"
	GoalHypertrophy TrainingGoal = "Hipertrofia"
	GoalDefinition  TrainingGoal = "Definição"
	GoalEndurance   TrainingGoal = "Resistência"
	GoalHealth      TrainingGoal = "Saudável"
)

type WorkoutLocation string

const (
	LocationGym  WorkoutLocation = "Academia"
	LocationHome WorkoutLocation = "Casa"
)

// FitnessProfile is the training profile the AI prompts are built from.
type FitnessProfile struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID       `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Name      string          `json:"name"`
	Weight    string          `json:"weight"`
	Height    string          `json:"height"`
	Age       string          `json:"age"`
	Level     TrainingLevel   `json:"level" gorm:"not null;default:'Iniciante'"`
	Goal      TrainingGoal    `json:"goal" gorm:"not null;default:'Saudável'"`
	Gender    string          `json:"gender"`
	Location  WorkoutLocation `json:"locationPreference" gorm:"default:'Academia'"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
