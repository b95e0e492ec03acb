package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"larchstudio/internal/logging"
	"larchstudio/internal/types"
)

const defaultPromptCount = 3

// promptSystemInstruction builds the system instruction for prompt
// generation. The per-category guidance keeps the image model inside
// the requested visual treatment.
func promptSystemInstruction(style types.LandscapeStyle, category types.VisualisationCategory, count int) string {
	var b strings.Builder
	b.WriteString("You are an expert Landscape Architect and AI Prompt Engineer.\n")
	b.WriteString("Your goal is to translate a \"Core Concept\" into highly detailed, technical, and atmospheric image prompts optimized for an image generation model.\n\n")
	fmt.Fprintf(&b, "Visualisation Category: %s.\n", category)
	b.WriteString("Ensure all prompts strictly adhere to the visual style of this category.\n")
	b.WriteString("- If \"Diagram Graphic\", focus on clean lines, overlays, and conceptual clarity.\n")
	b.WriteString("- If \"Photorealistic\", focus on textures, lighting, and real-world physics.\n")
	b.WriteString("- If \"Flowering Calendar\", focus on seasonal planting shifts and color charts.\n")
	b.WriteString("- If \"Isometric Graphic\", ensure a 45-degree orthographic projection.\n")
	b.WriteString("- If \"Exploded Drawing\", describe layers separated vertically to show construction: Top layer (Plants), Middle layer (Hardscape/Substrate), Bottom layer (Geology/Drainage).\n")
	b.WriteString("- If \"Schnitt (Section)\", describe a vertical cut-through showing soil layers, roots, and heights.\n")
	b.WriteString("- If \"Masterplan Render\", describe a top-down artistic plan with shadows, texture-mapping for grass/water, and clear scale indicators.\n")
	b.WriteString("- If \"Axonometric Cutaway\", show a 3D corner of the site with internal construction build-ups visible.\n\n")
	b.WriteString("Each prompt should also include:\n")
	b.WriteString("1. Primary viewpoint/perspective matching the category.\n")
	b.WriteString("2. Specific planting palette (botanical names where appropriate).\n")
	b.WriteString("3. Hardscape materials (e.g., weathered steel, limestone, reclaimed timber).\n")
	b.WriteString("4. Atmospheric lighting (e.g., golden hour, misty morning, dappled shade).\n")
	b.WriteString("5. Technical architectural terms (e.g., level changes, drainage swales, gabion walls).\n\n")
	fmt.Fprintf(&b, "Style Constraint: %s\n", style)
	fmt.Fprintf(&b, "Generate exactly %d unique prompts.", count)
	return b.String()
}

// promptListSchema constrains the generation response to an array of
// prompt entity objects.
func promptListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"id":          {Type: genai.TypeString},
				"title":       {Type: genai.TypeString, Description: "Short descriptive title"},
				"perspective": {Type: genai.TypeString},
				"content":     {Type: genai.TypeString, Description: "The actual long-form AI image prompt"},
				"technicalDetails": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "Key architectural features included",
				},
			},
			Required: []string{"id", "title", "perspective", "content", "technicalDetails"},
		},
	}
}

// templateSchema constrains the random-template response to a single
// template object.
func templateSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":          {Type: genai.TypeString},
			"label":       {Type: genai.TypeString},
			"icon":        {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
			"style":       {Type: genai.TypeString},
			"category":    {Type: genai.TypeString},
		},
		Required: []string{"id", "label", "icon", "description", "style", "category"},
	}
}

// GeneratePrompts asks the model to expand a concept into req.Count
// prompt entities. An empty or undecodable body yields a parse-kind
// error; every returned entity carries a non-empty, unique id.
func (c *Client) GeneratePrompts(ctx context.Context, req types.GenerateRequest) ([]types.PromptEntity, error) {
	count := req.Count
	if count <= 0 {
		count = defaultPromptCount
	}

	parts := []*genai.Part{genai.NewPartFromText("Core Concept: " + req.Concept)}
	if ref := req.ReferenceImage; ref != nil && len(ref.Data) > 0 && ref.MimeType != "" {
		parts = append(parts, genai.NewPartFromBytes(ref.Data, ref.MimeType))
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(promptSystemInstruction(req.Style, req.Category, count), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    promptListSchema(),
	}

	logging.Gateway("[Gateway] GeneratePrompts: model=%s count=%d ref_image=%t", c.promptModel, count, req.ReferenceImage != nil)

	resp, err := c.generate(ctx, c.promptModel, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, types.ParseFailure("Empty response from model", "")
	}

	var entities []types.PromptEntity
	if err := json.Unmarshal([]byte(text), &entities); err != nil {
		return nil, types.ParseFailure("Failed to parse model JSON", truncate(text, 500))
	}

	ensureUniqueIDs(entities)
	return entities, nil
}

// RandomTemplate fetches one model-invented concept template.
func (c *Client) RandomTemplate(ctx context.Context) (types.PromptTemplate, error) {
	system := "You are a creative Landscape Design Consultant.\n" +
		"Generate a single, highly imaginative and unique landscape architectural \"Template\".\n" +
		"Respond with a JSON object matching the requested schema."

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    templateSchema(),
	}

	logging.Gateway("[Gateway] RandomTemplate: model=%s", c.templateModel)

	resp, err := c.generate(ctx, c.templateModel,
		[]*genai.Content{genai.NewContentFromText("Generate one random professional landscape template.", genai.RoleUser)}, cfg)
	if err != nil {
		return types.PromptTemplate{}, err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return types.PromptTemplate{}, types.ParseFailure("Empty response from model", "")
	}

	var tmpl types.PromptTemplate
	if err := json.Unmarshal([]byte(text), &tmpl); err != nil {
		return types.PromptTemplate{}, types.ParseFailure("Failed to parse model JSON", truncate(text, 500))
	}
	if tmpl.ID == "" {
		tmpl.ID = uuid.NewString()
	}
	return tmpl, nil
}

// ensureUniqueIDs backfills missing ids and resolves collisions the
// model occasionally produces. Ids must be unique within a collection.
func ensureUniqueIDs(entities []types.PromptEntity) {
	seen := make(map[string]bool, len(entities))
	for i := range entities {
		id := strings.TrimSpace(entities[i].ID)
		if id == "" || seen[id] {
			id = uuid.NewString()
		}
		entities[i].ID = id
		seen[id] = true
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
