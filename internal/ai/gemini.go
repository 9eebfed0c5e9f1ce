package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fitscan/fitscan-backend/internal/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	flashModel = "gemini-3-flash-preview"
	proModel   = "gemini-3-pro-preview"
)

// Client talks to the Gemini generateContent REST endpoint and maps its
// JSON-mode responses onto domain types.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithBaseURL exists for tests that point the client at a fake server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string `json:"response_mime_type,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) AnalyzeMachine(ctx context.Context, imageBase64 string, profile *domain.FitnessProfile) (*domain.MachineAnalysis, error) {
	prompt := fmt.Sprintf(
		"Identifique a máquina de academia nesta imagem. Perfil do Usuário: %s, Objetivo: %s. "+
			"Responda em JSON com campos machineName, primaryMuscles, secondaryMuscles, difficulty, "+
			"instructions, commonErrors, recommendedSets, recommendedReps, recommendedWeight, tempo, youtubeQuery.",
		profile.Level, profile.Goal,
	)

	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: "image/jpeg", Data: imageBase64}},
				{Text: prompt},
			},
		}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	var analysis domain.MachineAnalysis
	if err := c.generate(ctx, flashModel, req, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (c *Client) GenerateWorkout(ctx context.Context, profile *domain.FitnessProfile) (*domain.WorkoutPlan, error) {
	prompt := fmt.Sprintf(
		"Crie um treino completo de 6 a 10 exercícios para: %s, Nível: %s, Objetivo: %s, Local: %s. "+
			"Responda em JSON com campos title, estimatedDurationMin, coachTip e exercises "+
			"(name, sets, reps, restSeconds, notes, videoSearchTerm).",
		profile.Name, profile.Level, profile.Goal, profile.Location,
	)

	req := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	var plan domain.WorkoutPlan
	if err := c.generate(ctx, proModel, req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) generate(ctx context.Context, model string, req generateRequest, out interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generate request returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("empty response from model %s", model)
	}

	text := genResp.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("model returned malformed JSON: %w", err)
	}
	return nil
}
