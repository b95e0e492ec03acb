package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"larchstudio/internal/logging"
	"larchstudio/internal/types"
)

// Visualize renders a prompt into an image and returns it as a data
// URL artifact. A SAFETY finish signal becomes a safety-kind error; a
// success response with no inline image becomes an unknown-kind error.
func (c *Client) Visualize(ctx context.Context, promptText, aspectRatio string) (string, error) {
	if aspectRatio == "" {
		aspectRatio = c.aspectRatio
	}

	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: aspectRatio},
	}

	logging.Gateway("[Gateway] Visualize: model=%s aspect=%s prompt_len=%d", c.imageModel, aspectRatio, len(promptText))

	resp, err := c.generate(ctx, c.imageModel,
		[]*genai.Content{genai.NewContentFromText(promptText, genai.RoleUser)}, cfg)
	if err != nil {
		return "", err
	}

	if safetyBlocked(resp) {
		logging.Gateway("[Gateway] Visualize: blocked by safety filters")
		return "", types.SafetyBlock("Visualization blocked by safety filters.")
	}

	if artifact := firstInlineImage(resp); artifact != "" {
		return artifact, nil
	}
	return "", &types.ServiceError{Kind: types.ErrUnknown, Message: "No image generated"}
}

// EditImage applies a refinement instruction to an existing artifact
// and returns the revised artifact. The input artifact must be a data
// URL previously produced by Visualize or EditImage.
func (c *Client) EditImage(ctx context.Context, artifact, instruction string) (string, error) {
	data, mimeType, err := decodeDataURL(artifact)
	if err != nil {
		return "", fmt.Errorf("invalid artifact: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(instruction),
	}

	logging.Gateway("[Gateway] EditImage: model=%s instruction_len=%d", c.imageModel, len(instruction))

	resp, err := c.generate(ctx, c.imageModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return "", err
	}

	if safetyBlocked(resp) {
		return "", types.SafetyBlock("Edit blocked by safety filters.")
	}

	if revised := firstInlineImage(resp); revised != "" {
		return revised, nil
	}
	return "", &types.ServiceError{Kind: types.ErrUnknown, Message: "Edit did not return an image"}
}

// safetyBlocked reports whether the first candidate finished on SAFETY.
func safetyBlocked(resp *genai.GenerateContentResponse) bool {
	if resp == nil || len(resp.Candidates) == 0 {
		return false
	}
	return resp.Candidates[0].FinishReason == genai.FinishReasonSafety
}

// firstInlineImage extracts the first inline image from a response as a
// data URL, or "" when the response carries none.
func firstInlineImage(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return encodeDataURL(part.InlineData.Data, mimeType)
	}
	return ""
}

// encodeDataURL packs raw image bytes into a data URL artifact.
func encodeDataURL(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// decodeDataURL unpacks a data URL artifact into raw bytes and mime
// type.
func decodeDataURL(artifact string) ([]byte, string, error) {
	if !strings.HasPrefix(artifact, "data:") {
		return nil, "", fmt.Errorf("not a data URL")
	}
	header, payload, ok := strings.Cut(artifact, ",")
	if !ok {
		return nil, "", fmt.Errorf("missing payload separator")
	}

	mimeType := strings.TrimPrefix(header, "data:")
	mimeType = strings.TrimSuffix(mimeType, ";base64")
	if mimeType == "" {
		mimeType = "image/png"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return data, mimeType, nil
}
