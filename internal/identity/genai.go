package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kingrea/teamshuffle/internal/roster"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned by NewGenAI without credentials.
var ErrMissingAPIKey = errors.New("identity: GenAI API key is required")

// contentGenerator is the slice of *genai.Models the namer depends on.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAI asks a Gemini model for team names and slogans.
type GenAI struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

// NewGenAI creates a Gemini-backed namer.
func NewGenAI(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("identity: create GenAI client: %w", err)
	}
	return newGenAI(client.Models, model, logger), nil
}

func newGenAI(models contentGenerator, model string, logger *zap.Logger) *GenAI {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenAI{models: models, model: model, logger: logger}
}

var identitySchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":   {Type: genai.TypeString},
			"slogan": {Type: genai.TypeString},
		},
		Required: []string{"name", "slogan"},
	},
}

// Name implements Namer.
func (g *GenAI) Name(ctx context.Context, teams []roster.Team) ([]*Identity, error) {
	if len(teams) == 0 {
		return nil, nil
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(teams)), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](1.0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   identitySchema,
	})
	if err != nil {
		return nil, fmt.Errorf("identity: GenAI generate: %w", err)
	}
	if resp == nil {
		return nil, errEmptyResponse
	}
	ids, err := parseIdentities(resp.Text())
	if err != nil {
		return nil, err
	}
	g.logger.Debug("GenAI named teams", zap.String("model", g.model), zap.Int("teams", len(teams)), zap.Int("identities", len(ids)))
	return ids, nil
}

func buildPrompt(teams []roster.Team) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a creative, fun, family-friendly team name and a short slogan for each of these %d teams.\n", len(teams))
	b.WriteString("Return a JSON array with exactly one {\"name\", \"slogan\"} object per team, in the same order.\n\n")
	for _, team := range teams {
		fmt.Fprintf(&b, "Team %d: %s\n", team.ID+1, strings.Join(team.MemberNames(), ", "))
	}
	return b.String()
}

// parseIdentities decodes the model's JSON array, tolerating a Markdown code
// fence around it.
func parseIdentities(text string) ([]*Identity, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errEmptyResponse
	}
	var ids []*Identity
	if err := json.Unmarshal([]byte(text), &ids); err != nil {
		return nil, fmt.Errorf("identity: decode GenAI response: %w", err)
	}
	return ids, nil
}
