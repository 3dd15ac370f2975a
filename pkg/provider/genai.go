package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arnavshah/crew-planner-api/pkg/models"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

const instructions = `You assign club members to boats for a rowing/sailing session.
Rules:
- Every participant id appears in exactly one team.
- Participants linked by must_pair_with share a team; cannot_pair_with never share a team.
- A MUST gender_constraint means every boat mate has that gender.
- A team never exceeds its boat capacity and boats used per type never exceed the inventory.
- Prefer at least one INSTRUCTOR or VOLUNTEER per multi-seat boat, honour prefer_pair_with and preferred_boat_type.
- Participants who cannot be seated go in a team with boat_type "UNKNOWN".
Answer with a JSON array of {"boat_type": string, "member_ids": [string], "warnings": [string]} and nothing else.`

// contentGenerator is the subset of genai.Models used here
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIStrategy asks a Gemini model for an assignment
type GenAIStrategy struct {
	models contentGenerator
	model  string
}

// NewGenAIStrategy creates a Gemini-backed strategy
func NewGenAIStrategy(ctx context.Context, apiKey, model string) (*GenAIStrategy, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIStrategy{models: client.Models, model: model}, nil
}

// Name returns the strategy name
func (g *GenAIStrategy) Name() string { return StrategyGenAI }

// Assign sends the request to the model and resolves its answer against the input
func (g *GenAIStrategy) Assign(ctx context.Context, req models.AssignRequest) ([]models.Team, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := g.models.GenerateContent(ctx, g.model,
		genai.Text(string(payload)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(instructions, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr[float32](0),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}
	if resp == nil {
		return nil, ErrEmptyResponse
	}

	proposals, err := decodeProposals(resp.Text())
	if err != nil {
		return nil, err
	}
	return Resolve(proposals, req)
}

// decodeProposals accepts either a bare array or an object with a "teams" array
func decodeProposals(text string) ([]Proposal, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var proposals []Proposal
	if strings.HasPrefix(text, "{") {
		var wrapped struct {
			Teams []Proposal `json:"teams"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
			return nil, fmt.Errorf("malformed proposal: %w", err)
		}
		proposals = wrapped.Teams
	} else if err := json.Unmarshal([]byte(text), &proposals); err != nil {
		return nil, fmt.Errorf("malformed proposal: %w", err)
	}

	if len(proposals) == 0 {
		return nil, ErrEmptyResponse
	}
	return proposals, nil
}
