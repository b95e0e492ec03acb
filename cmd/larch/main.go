package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"larchstudio/internal/config"
	"larchstudio/internal/gateway"
	"larchstudio/internal/logging"
	"larchstudio/internal/server"
	"larchstudio/internal/store"
	"larchstudio/internal/studio"
	"larchstudio/internal/types"
)

var (
	// Global flags
	verbose   bool
	apiKey    string
	workspace string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "larch",
	Short: "larch - landscape prompt studio",
	Long: `larch turns a short landscape concept into structured design prompts,
renders each prompt into an image through a generative model, and curates
the results into a saved library and a shareable gallery.

Session state persists between invocations, so generate, render, refine
and export compose across separate runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if workspace == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve workspace: %w", err)
			}
			workspace = cwd
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err := config.Load(workspace)
		if err != nil {
			return err
		}
		return logging.Initialize(workspace, cfg.Logging.DebugMode || verbose, cfg.Logging.Level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// generateCmd expands a concept into prompt entities
var generateCmd = &cobra.Command{
	Use:   "generate [concept]",
	Short: "Generate design prompts from a concept",
	Long: `Expands a short concept into structured design prompts and stores them
as the recent session. A previous recent session is replaced; the saved
library is untouched.

Example:
  larch generate "rooftop garden with native grasses" --style "Wild/Rewilded" --count 4 --render`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

// renderCmd renders every unresolved entity of a session tab
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render all unresolved prompts of a session tab",
	RunE:  runRender,
}

// refineCmd applies an edit instruction to one rendered entity
var refineCmd = &cobra.Command{
	Use:   "refine [entity-id]",
	Short: "Refine one rendered image with an instruction",
	Long: `Renders the entity if it has no image yet, then applies the edit
instruction to the rendered image. The image is replaced only if the
edit succeeds.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefine,
}

// templateCmd fetches one random concept template
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Fetch a random concept template",
	RunE:  runTemplate,
}

// exportCmd dumps a session tab as plain text
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a session tab as a text file",
	RunE:  runExport,
}

// serveCmd runs the HTTP proxy for a browser front end
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP proxy server",
	Long: `Serves the model capabilities over HTTP so a browser front end can use
them without holding the API key.`,
	RunE: runServe,
}

// saveCmd toggles an entity's membership in the saved library
var saveCmd = &cobra.Command{
	Use:   "save [entity-id]",
	Short: "Toggle a prompt in the saved library",
	Long: `Adds the entity to the front of the saved library, or removes it if it
is already saved. Saved prompts survive session replacement by
a new generate.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

// shareCmd snapshots a rendered entity into the gallery
var shareCmd = &cobra.Command{
	Use:   "share [entity-id]",
	Short: "Share a rendered prompt to the gallery",
	Long: `Renders the entity if it has no image yet, then stores a snapshot of
the result in the persistent gallery (newest first, capped).`,
	Args: cobra.ExactArgs(1),
	RunE: runShare,
}

// themeCmd stores the UI theme preference
var themeCmd = &cobra.Command{
	Use:       "theme [dark|light]",
	Short:     "Set the persisted theme preference",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"dark", "light"},
	RunE:      runTheme,
}

var (
	genStyle     string
	genCategory  string
	genCount     int
	genReference string
	genRender    bool

	tabName string

	refineInstruction string

	exportOut string

	serveAddr string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GENAI_API_KEY env)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")

	generateCmd.Flags().StringVar(&genStyle, "style", string(types.StyleModernist), "Landscape style")
	generateCmd.Flags().StringVar(&genCategory, "category", string(types.CategoryPhotorealistic), "Visualisation category")
	generateCmd.Flags().IntVar(&genCount, "count", 0, "Number of prompts (0 = model default)")
	generateCmd.Flags().StringVar(&genReference, "reference-image", "", "Path to a reference image")
	generateCmd.Flags().BoolVar(&genRender, "render", false, "Render all prompts after generating")

	renderCmd.Flags().StringVar(&tabName, "tab", "recent", "Session tab (recent|saved)")
	exportCmd.Flags().StringVar(&tabName, "tab", "recent", "Session tab (recent|saved)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: stdout)")

	refineCmd.Flags().StringVar(&refineInstruction, "instruction", "", "Edit instruction (required)")
	refineCmd.MarkFlagRequired("instruction")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")

	rootCmd.AddCommand(generateCmd, renderCmd, refineCmd, saveCmd, shareCmd, templateCmd, exportCmd, serveCmd, themeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the workspace config and applies the api-key flag.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return config.Config{}, err
	}
	if apiKey != "" {
		cfg.Gateway.APIKey = apiKey
	}
	return cfg, nil
}

// buildStudio wires the studio to its adapter and, when needed, the
// gateway. Commands that never touch the model pass withGateway=false
// and work without an API key.
func buildStudio(cfg config.Config, withGateway bool) (*studio.Studio, types.Adapter, error) {
	adapter, err := store.NewSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}

	var gw types.Gateway
	if withGateway {
		client, err := gateway.New(cfg.Gateway)
		if err != nil {
			adapter.Close()
			return nil, nil, err
		}
		gw = client
	}

	s, err := studio.New(gw, adapter, cfg.Gateway.AspectRatio)
	if err != nil {
		adapter.Close()
		return nil, nil, err
	}
	return s, adapter, nil
}

func parseTab(name string) (types.Tab, error) {
	switch name {
	case "recent", "":
		return types.TabRecent, nil
	case "saved":
		return types.TabSaved, nil
	default:
		return "", fmt.Errorf("unknown tab %q (want recent or saved)", name)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, adapter, err := buildStudio(cfg, true)
	if err != nil {
		return err
	}
	defer adapter.Close()

	req := types.GenerateRequest{
		Concept:  strings.Join(args, " "),
		Style:    types.LandscapeStyle(genStyle),
		Category: types.VisualisationCategory(genCategory),
		Count:    genCount,
	}
	if genReference != "" {
		data, err := os.ReadFile(genReference)
		if err != nil {
			return fmt.Errorf("failed to read reference image: %w", err)
		}
		req.ReferenceImage = &types.ReferenceImage{
			Data:     data,
			MimeType: mimeTypeForPath(genReference),
		}
	}

	entities, err := s.Generate(cmd.Context(), req)
	if err != nil {
		return err
	}

	fmt.Printf("Generated %d prompts:\n\n", len(entities))
	printEntities(s, entities)

	if genRender {
		fmt.Println("\nRendering...")
		s.RenderAll(cmd.Context(), types.TabRecent)
		return reportRenders(s, entities)
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tab, err := parseTab(tabName)
	if err != nil {
		return err
	}
	s, adapter, err := buildStudio(cfg, true)
	if err != nil {
		return err
	}
	defer adapter.Close()

	var entities []types.PromptEntity
	if tab == types.TabSaved {
		entities = s.Saved()
	} else {
		entities = s.Recent()
	}
	if len(entities) == 0 {
		return fmt.Errorf("no prompts in the %s tab; run larch generate first", tab)
	}

	s.RenderAll(cmd.Context(), tab)
	return reportRenders(s, entities)
}

func runRefine(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, adapter, err := buildStudio(cfg, true)
	if err != nil {
		return err
	}
	defer adapter.Close()

	entityID := args[0]
	entity, ok := findEntity(s, entityID)
	if !ok {
		return fmt.Errorf("no entity with id %s in the current session", entityID)
	}

	if s.State(entityID) != types.StateResolved {
		fmt.Printf("Rendering %s first...\n", entityID)
		if err := s.RequestVisualization(cmd.Context(), entityID, entity.Content); err != nil {
			return err
		}
	}

	s.SetEditInstruction(entityID, refineInstruction)
	if err := s.Refine(cmd.Context(), entityID); err != nil {
		return err
	}

	path, err := saveArtifact(entityID, s.Artifact(entityID))
	if err != nil {
		return err
	}
	fmt.Printf("Refined %s -> %s\n", entityID, path)
	return nil
}

func runSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, adapter, err := buildStudio(cfg, false)
	if err != nil {
		return err
	}
	defer adapter.Close()

	entityID := args[0]
	entity, ok := findEntity(s, entityID)
	if !ok {
		return fmt.Errorf("no entity with id %s in the current session", entityID)
	}
	if err := s.ToggleSaved(entity); err != nil {
		return err
	}
	if s.IsSaved(entityID) {
		fmt.Printf("Saved %s (%s)\n", entityID, entity.Title)
	} else {
		fmt.Printf("Removed %s from the saved library\n", entityID)
	}
	return nil
}

func runShare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, adapter, err := buildStudio(cfg, true)
	if err != nil {
		return err
	}
	defer adapter.Close()

	entityID := args[0]
	entity, ok := findEntity(s, entityID)
	if !ok {
		return fmt.Errorf("no entity with id %s in the current session", entityID)
	}

	if s.State(entityID) != types.StateResolved {
		fmt.Printf("Rendering %s first...\n", entityID)
		if err := s.RequestVisualization(cmd.Context(), entityID, entity.Content); err != nil {
			return err
		}
	}
	if err := s.ShareToGallery(entityID); err != nil {
		return err
	}
	fmt.Printf("Shared %s to the gallery (%d items)\n", entityID, len(s.Gallery()))
	return nil
}

func runTemplate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := gateway.New(cfg.Gateway)
	if err != nil {
		return err
	}

	tmpl, err := client.RandomTemplate(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", tmpl.Icon, tmpl.Label)
	fmt.Printf("  %s\n", tmpl.Description)
	fmt.Printf("  Style: %s  Category: %s\n", tmpl.Style, tmpl.Category)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tab, err := parseTab(tabName)
	if err != nil {
		return err
	}
	s, adapter, err := buildStudio(cfg, false)
	if err != nil {
		return err
	}
	defer adapter.Close()

	dump := s.ExportSession(tab)
	if exportOut == "" {
		fmt.Print(dump)
		return nil
	}
	if err := os.WriteFile(exportOut, []byte(dump), 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("Exported %s tab to %s\n", tab, exportOut)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := gateway.New(cfg.Gateway)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := server.New(client, server.NewLogger(cfg.Server.LogFile, verbose))
	return srv.Run(addr)
}

func runTheme(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, adapter, err := buildStudio(cfg, false)
	if err != nil {
		return err
	}
	defer adapter.Close()

	if err := s.SetTheme(args[0]); err != nil {
		return err
	}
	fmt.Printf("Theme set to %s\n", args[0])
	return nil
}

func findEntity(s *studio.Studio, entityID string) (types.PromptEntity, bool) {
	for _, e := range append(s.Recent(), s.Saved()...) {
		if e.ID == entityID {
			return e, true
		}
	}
	return types.PromptEntity{}, false
}

func printEntities(s *studio.Studio, entities []types.PromptEntity) {
	for i, e := range entities {
		fmt.Printf("[%d] %s  (%s)\n", i+1, e.Title, e.Perspective)
		fmt.Printf("    id: %s\n", e.ID)
		if len(e.TechnicalDetails) > 0 {
			fmt.Printf("    %s\n", strings.Join(e.TechnicalDetails, ", "))
		}
	}
}

// reportRenders prints the outcome of a bulk render and writes each
// resolved artifact to the renders directory.
func reportRenders(s *studio.Studio, entities []types.PromptEntity) error {
	for _, e := range entities {
		switch s.State(e.ID) {
		case types.StateResolved:
			path, err := saveArtifact(e.ID, s.Artifact(e.ID))
			if err != nil {
				return err
			}
			fmt.Printf("  %-10s %s -> %s\n", "resolved", e.Title, path)
		case types.StateFailed:
			serr := s.VisError(e.ID)
			fmt.Printf("  %-10s %s: [%s] %s\n", "failed", e.Title, serr.Kind, serr.Message)
		default:
			fmt.Printf("  %-10s %s\n", s.State(e.ID), e.Title)
		}
	}
	return nil
}

// saveArtifact decodes a data-URL artifact into the workspace renders
// directory and returns the file path.
func saveArtifact(entityID, artifact string) (string, error) {
	_, payload, ok := strings.Cut(artifact, ",")
	if !ok {
		return "", fmt.Errorf("artifact for %s is not a data URL", entityID)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode artifact for %s: %w", entityID, err)
	}

	dir := filepath.Join(workspace, ".larch", "renders")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create renders directory: %w", err)
	}
	path := filepath.Join(dir, entityID+".png")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write render: %w", err)
	}
	return path, nil
}

func mimeTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
