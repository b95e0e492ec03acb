package studio

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"larchstudio/internal/store"
	"larchstudio/internal/types"
)

// fakeGateway records every call and lets tests script per-call
// outcomes. The inFlight counter catches overlapping render calls; the
// started/release channels let a test hold a call open to exercise the
// in-flight guards.
type fakeGateway struct {
	mu             sync.Mutex
	visualizeCalls []string // prompt texts, in call order
	editCalls      []string // instructions, in call order
	generateCalls  int
	templateCalls  int
	lastAspect     string

	inFlight int32
	overlap  bool

	visualizeFn func(promptText string) (string, error)
	editFn      func(artifact, instruction string) (string, error)
	generateFn  func(req types.GenerateRequest) ([]types.PromptEntity, error)
	templateFn  func() (types.PromptTemplate, error)

	started chan struct{} // signaled when a visualize or edit call begins
	release chan struct{} // when non-nil, calls block until closed
}

const fakeArtifact = "data:image/png;base64,ZmFrZQ=="

func (g *fakeGateway) Visualize(ctx context.Context, promptText, aspectRatio string) (string, error) {
	if atomic.AddInt32(&g.inFlight, 1) > 1 {
		g.mu.Lock()
		g.overlap = true
		g.mu.Unlock()
	}
	defer atomic.AddInt32(&g.inFlight, -1)

	g.mu.Lock()
	g.visualizeCalls = append(g.visualizeCalls, promptText)
	g.lastAspect = aspectRatio
	g.mu.Unlock()

	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
	if g.visualizeFn != nil {
		return g.visualizeFn(promptText)
	}
	return fakeArtifact, nil
}

func (g *fakeGateway) EditImage(ctx context.Context, artifact, instruction string) (string, error) {
	g.mu.Lock()
	g.editCalls = append(g.editCalls, instruction)
	g.mu.Unlock()

	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
	if g.editFn != nil {
		return g.editFn(artifact, instruction)
	}
	return "data:image/png;base64,ZWRpdGVk", nil
}

func (g *fakeGateway) GeneratePrompts(ctx context.Context, req types.GenerateRequest) ([]types.PromptEntity, error) {
	g.mu.Lock()
	g.generateCalls++
	g.mu.Unlock()
	if g.generateFn != nil {
		return g.generateFn(req)
	}
	return entityBatch(req.Count), nil
}

func (g *fakeGateway) RandomTemplate(ctx context.Context) (types.PromptTemplate, error) {
	g.mu.Lock()
	g.templateCalls++
	g.mu.Unlock()
	if g.templateFn != nil {
		return g.templateFn()
	}
	return types.PromptTemplate{ID: "tmpl-1", Label: "Courtyard Oasis"}, nil
}

func (g *fakeGateway) visualizeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.visualizeCalls)
}

func (g *fakeGateway) visualizeOrder() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.visualizeCalls))
	copy(out, g.visualizeCalls)
	return out
}

func (g *fakeGateway) sawOverlap() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.overlap
}

// entityBatch builds n entities with stable ids e-0, e-1, ... and
// prompt texts prompt-0, prompt-1, ...
func entityBatch(n int) []types.PromptEntity {
	out := make([]types.PromptEntity, n)
	for i := range out {
		out[i] = types.PromptEntity{
			ID:          id(i),
			Title:       "Entity " + id(i),
			Perspective: "Eye-Level View",
			Content:     prompt(i),
		}
	}
	return out
}

func id(i int) string     { return "e-" + string(rune('0'+i)) }
func prompt(i int) string { return "prompt-" + string(rune('0'+i)) }

// newTestStudio wires a Studio to a fake gateway and an in-memory
// adapter.
func newTestStudio(t *testing.T, gw *fakeGateway) (*Studio, *store.Memory) {
	t.Helper()
	adapter := store.NewMemory()
	s, err := New(gw, adapter, "")
	require.NoError(t, err)
	return s, adapter
}
