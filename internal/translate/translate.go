// Package translate provides the production translators plugged into
// normalize.TranslateToEnglish: a Gemini model on Vertex AI, and an identity
// translator for offline runs.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultModel is the Gemini model used when Config.Model is empty.
const DefaultModel = "gemini-1.5-flash"

// DefaultRegion is the Vertex AI region used when Config.Region is empty.
const DefaultRegion = "us-central1"

// SystemPrompt keeps the model from adding commentary around the result.
const SystemPrompt = `You translate short business labels such as industry names.
Reply with the translation only: no quotes, no explanations, no alternatives.
If the text is already in the target language, reply with it unchanged.`

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("translate: empty model response")

// Config selects the Vertex AI project and model.
type Config struct {
	ProjectID string
	Region    string
	Model     string
}

// generator is the subset of *genai.GenerativeModel used here.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Vertex translates through a Gemini model. One request per call; no cache
// or retry.
type Vertex struct {
	model  generator
	client *genai.Client
}

// NewVertex creates the Vertex AI client and configures the model with a
// translation-only system instruction and temperature 0.
func NewVertex(ctx context.Context, cfg Config) (*Vertex, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("translate: project id must not be empty")
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	name := cfg.Model
	if name == "" {
		name = DefaultModel
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	model := client.GenerativeModel(name)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPrompt)},
	}
	model.SetTemperature(0)

	return &Vertex{model: model, client: client}, nil
}

// Translate returns text translated into the target language (a BCP 47 code
// such as "en"). It fits normalize.TranslateFunc.
func (v *Vertex) Translate(ctx context.Context, text, target string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(Prompt(text, target)))
	if err != nil {
		return "", fmt.Errorf("translate: generate content: %w", err)
	}
	out := extractText(resp)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// Close releases the underlying client.
func (v *Vertex) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

// Identity returns text unchanged. It fits normalize.TranslateFunc.
func Identity(_ context.Context, text, _ string) (string, error) { return text, nil }

// Prompt renders the user prompt for one translation.
func Prompt(text, target string) string {
	return fmt.Sprintf("Translate the following text to %s.\n\n%s", LanguageName(target), text)
}

// LanguageName returns the English name of a BCP 47 code ("en" -> "English").
// Unparseable codes are returned as given.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}
