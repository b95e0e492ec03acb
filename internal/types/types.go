// Package types holds the shared contracts for the studio: the prompt
// entity model, the gateway and persistence interfaces, and the service
// error taxonomy. Domain packages depend on types, never on each other's
// concrete implementations.
package types

import "context"

// PromptEntity is a single generated design prompt. The ID is the source
// of truth for identity and stays stable across content edits.
type PromptEntity struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Perspective      string   `json:"perspective"`
	Content          string   `json:"content"`
	TechnicalDetails []string `json:"technicalDetails"`
}

// PromptTemplate is a pre-baked concept starting point returned by the
// random-template capability.
type PromptTemplate struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Style       string `json:"style"`
	Category    string `json:"category"`
}

// GalleryItem is a denormalized snapshot of a rendered prompt. It keeps
// no back-reference to the entity it was created from.
type GalleryItem struct {
	Artifact    string `json:"artifact"`
	Title       string `json:"title"`
	Perspective string `json:"perspective"`
	Content     string `json:"content"`
	SharedAt    int64  `json:"sharedAt"` // Unix milliseconds
}

// LandscapeStyle constrains the design vocabulary of generated prompts.
type LandscapeStyle string

const (
	StyleModernist     LandscapeStyle = "Modernist"
	StyleXeriscape     LandscapeStyle = "Xeriscape/Dry"
	StyleZen           LandscapeStyle = "Zen Garden"
	StyleWild          LandscapeStyle = "Wild/Rewilded"
	StyleTropical      LandscapeStyle = "Tropical"
	StyleMediterranean LandscapeStyle = "Mediterranean"
	StyleMinimalist    LandscapeStyle = "Minimalist"
	StyleIndustrial    LandscapeStyle = "Industrial/Urban"
	StyleEnglishGarden LandscapeStyle = "English Landscape"
)

// VisualisationCategory selects the visual treatment of the render.
type VisualisationCategory string

const (
	CategoryPhotorealistic VisualisationCategory = "Photorealistic"
	CategoryDiagram        VisualisationCategory = "Diagram Graphic"
	CategoryComic          VisualisationCategory = "Comic Style"
	CategoryCalendar       VisualisationCategory = "Flowering Calendar"
	CategoryDetail         VisualisationCategory = "Technical Detail"
	CategorySection        VisualisationCategory = "Schnitt (Section)"
	CategoryIsometric      VisualisationCategory = "Isometric Graphic"
	CategoryExploded       VisualisationCategory = "Exploded Drawing"
	CategoryMasterplan     VisualisationCategory = "Masterplan Render"
	CategoryMoodboard      VisualisationCategory = "Texture Moodboard"
	CategoryAxonometric    VisualisationCategory = "Axonometric Cutaway"
)

// ReferenceImage is an optional inline image attached to a generation
// request, raw bytes plus mime type.
type ReferenceImage struct {
	Data     []byte `json:"data"`
	MimeType string `json:"mimeType"`
}

// GenerateRequest carries the parameters of one prompt-generation call.
type GenerateRequest struct {
	Concept        string
	Style          LandscapeStyle
	Category       VisualisationCategory
	Count          int
	ReferenceImage *ReferenceImage
}

// VisualizationState is the lifecycle state of one entity's render.
// At most one of Pending, Resolved, Failed holds for an id at any
// instant; Idle is the absence of all three.
type VisualizationState int

const (
	StateIdle VisualizationState = iota
	StatePending
	StateResolved
	StateFailed
)

func (s VisualizationState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Tab names one of the two working collections.
type Tab string

const (
	TabRecent Tab = "recent"
	TabSaved  Tab = "saved"
)

// Gateway is the remote generative-model boundary. Every method issues
// exactly one remote call; none of them retry. Artifacts are image
// references (data URLs).
type Gateway interface {
	GeneratePrompts(ctx context.Context, req GenerateRequest) ([]PromptEntity, error)
	Visualize(ctx context.Context, promptText, aspectRatio string) (string, error)
	EditImage(ctx context.Context, artifact, instruction string) (string, error)
	RandomTemplate(ctx context.Context) (PromptTemplate, error)
}

// Adapter is the durable key-value boundary the studio synchronizes
// collections to. Values are JSON-serialized by the implementation.
type Adapter interface {
	// Put stores value under key, replacing any previous value.
	Put(key string, value any) error
	// Get loads the value stored under key into out. The bool reports
	// whether the key existed.
	Get(key string, out any) (bool, error)
	Delete(key string) error
	Close() error
}
