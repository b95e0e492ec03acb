package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"larchstudio/internal/types"
)

// Request and response shapes mirror the browser client's wire format:
// classified failures are embedded in the body as
// {type, message, details} alongside a null payload.

type generateRequest struct {
	Concept        string                `json:"concept"`
	Style          string                `json:"style"`
	Category       string                `json:"category"`
	Count          int                   `json:"count"`
	ReferenceImage *types.ReferenceImage `json:"referenceImage"`
}

type visualizeRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
}

type editRequest struct {
	Base64Image string `json:"base64Image"`
	Instruction string `json:"instruction"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"data":  nil,
		"error": &types.ServiceError{Kind: types.ErrUnknown, Message: "Invalid request body", Details: err.Error()},
	})
}

// generatePrompts proxies concept expansion. POST /api/generate-prompts
func (s *Server) generatePrompts(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entities, err := s.gateway.GeneratePrompts(c.Request.Context(), types.GenerateRequest{
		Concept:        req.Concept,
		Style:          types.LandscapeStyle(req.Style),
		Category:       types.VisualisationCategory(req.Category),
		Count:          req.Count,
		ReferenceImage: req.ReferenceImage,
	})
	if err != nil {
		serr := types.Classify(err)
		s.logger.Warn("generate-prompts failed", zap.String("kind", string(serr.Kind)), zap.String("message", serr.Message))
		c.JSON(http.StatusOK, gin.H{"data": []types.PromptEntity{}, "error": serr})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entities, "error": nil})
}

// visualize proxies image rendering. POST /api/visualize
func (s *Server) visualize(c *gin.Context) {
	var req visualizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	url, err := s.gateway.Visualize(c.Request.Context(), req.Prompt, req.AspectRatio)
	if err != nil {
		serr := types.Classify(err)
		s.logger.Warn("visualize failed", zap.String("kind", string(serr.Kind)), zap.String("message", serr.Message))
		c.JSON(http.StatusOK, gin.H{"url": nil, "error": serr})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "error": nil})
}

// editImage proxies artifact refinement. POST /api/edit-image
func (s *Server) editImage(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	url, err := s.gateway.EditImage(c.Request.Context(), req.Base64Image, req.Instruction)
	if err != nil {
		serr := types.Classify(err)
		s.logger.Warn("edit-image failed", zap.String("kind", string(serr.Kind)), zap.String("message", serr.Message))
		c.JSON(http.StatusOK, gin.H{"url": nil, "error": serr})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "error": nil})
}

// randomTemplate proxies template generation.
// POST /api/generate-random-template
func (s *Server) randomTemplate(c *gin.Context) {
	tmpl, err := s.gateway.RandomTemplate(c.Request.Context())
	if err != nil {
		serr := types.Classify(err)
		s.logger.Warn("generate-random-template failed", zap.String("kind", string(serr.Kind)), zap.String("message", serr.Message))
		c.JSON(http.StatusOK, gin.H{"data": nil, "error": serr})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tmpl, "error": nil})
}
