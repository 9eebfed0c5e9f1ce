package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitscan/fitscan-backend/internal/ai"
	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modelResponse(t *testing.T, payload interface{}) []byte {
	t.Helper()

	text, err := json.Marshal(payload)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": string(text)}},
			}},
		},
	})
	require.NoError(t, err)
	return body
}

func testProfile() *domain.FitnessProfile {
	return &domain.FitnessProfile{
		Name:     "Maria",
		Level:    domain.LevelIntermediate,
		Goal:     domain.GoalHypertrophy,
		Location: domain.LocationGym,
	}
}

func TestClient_AnalyzeMachine(t *testing.T) {
	var gotPath string
	var gotReq map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write(modelResponse(t, domain.MachineAnalysis{
			MachineName:     "Cadeira Extensora",
			PrimaryMuscles:  []string{"Quadríceps"},
			RecommendedSets: 3,
		}))
	}))
	defer server.Close()

	client := ai.NewClientWithBaseURL("test-key", server.URL)

	analysis, err := client.AnalyzeMachine(context.Background(), "aW1hZ2U=", testProfile())
	require.NoError(t, err)

	assert.Equal(t, "Cadeira Extensora", analysis.MachineName)
	assert.Equal(t, []string{"Quadríceps"}, analysis.PrimaryMuscles)
	assert.Contains(t, gotPath, "gemini-3-flash-preview")

	// The image travels inline next to the prompt.
	contents := gotReq["contents"].([]interface{})
	parts := contents[0].(map[string]interface{})["parts"].([]interface{})
	require.Len(t, parts, 2)
	inline := parts[0].(map[string]interface{})["inline_data"].(map[string]interface{})
	assert.Equal(t, "image/jpeg", inline["mime_type"])
	assert.Equal(t, "aW1hZ2U=", inline["data"])
}

func TestClient_GenerateWorkout(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write(modelResponse(t, domain.WorkoutPlan{
			Title:                "Treino B",
			EstimatedDurationMin: 50,
			Exercises:            []domain.Exercise{{Name: "Supino", Sets: 4, Reps: "8-10"}},
		}))
	}))
	defer server.Close()

	client := ai.NewClientWithBaseURL("test-key", server.URL)

	plan, err := client.GenerateWorkout(context.Background(), testProfile())
	require.NoError(t, err)

	assert.Equal(t, "Treino B", plan.Title)
	require.Len(t, plan.Exercises, 1)
	assert.Equal(t, "Supino", plan.Exercises[0].Name)
	assert.Contains(t, gotPath, "gemini-3-pro-preview")
}

func TestClient_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			},
		},
		{
			name: "no candidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"candidates": []}`))
			},
		},
		{
			name: "candidate text is not JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "sorry, I cannot"}]}}]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := ai.NewClientWithBaseURL("test-key", server.URL)

			_, err := client.AnalyzeMachine(context.Background(), "aW1hZ2U=", testProfile())
			assert.Error(t, err)
		})
	}
}
