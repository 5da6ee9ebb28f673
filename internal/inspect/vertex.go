package inspect

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// Model answers a prompt that comes with block images attached.
type Model interface {
	Generate(ctx context.Context, prompt string, images []BlockImage) (string, error)
}

// VertexModel is a Model backed by a Gemini model on Vertex AI.
type VertexModel struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewVertexModel connects to Vertex AI. The model is configured for
// deterministic JSON answers.
func NewVertexModel(ctx context.Context, projectID, region, modelName string) (*VertexModel, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexModel: projectID and region cannot be empty")
	}

	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}

	return &VertexModel{client: client, model: model}, nil
}

// Generate sends the prompt followed by one PNG part per block.
func (m *VertexModel) Generate(ctx context.Context, prompt string, images []BlockImage) (string, error) {
	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(prompt))
	for _, img := range images {
		parts = append(parts, genai.ImageData("png", img.Data))
	}

	resp, err := m.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// Close releases the underlying client.
func (m *VertexModel) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
