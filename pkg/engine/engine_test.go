package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/codefix/pkg/engine"
	"github.com/Sumatoshi-tech/codefix/pkg/rewrite"
	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// stubProvider registers titled actions or fails the way it is told to.
type stubProvider struct {
	id      string
	trigger engine.Trigger
	titles  []string
	delay   time.Duration
	err     error
	panics  bool
	waitCtx bool
}

func (p *stubProvider) ID() string { return p.id }

func (p *stubProvider) Trigger() engine.Trigger { return p.trigger }

func (p *stubProvider) ComputeActions(ctx context.Context, pc *engine.Context) error {
	if p.panics {
		panic("boom")
	}

	if p.waitCtx {
		<-ctx.Done()

		return ctx.Err()
	}

	time.Sleep(p.delay)

	for idx, title := range p.titles {
		variant := ""
		if idx > 0 {
			variant = title
		}

		pc.Register(title, variant, func(context.Context) (*rewrite.Result, error) {
			return &rewrite.Result{Original: pc.Tree()}, nil
		})
	}

	return p.err
}

func refactoring(id string, titles ...string) *stubProvider {
	return &stubProvider{id: id, trigger: engine.RefactoringTrigger(), titles: titles}
}

func document() engine.Document {
	return engine.Document{Tree: syntax.NewTree(syntax.CompilationUnit())}
}

func titles(result engine.Result) []string {
	out := make([]string, 0, len(result.Actions))
	for _, action := range result.Actions {
		out = append(out, action.Title())
	}

	return out
}

func newEngine(t *testing.T, providers ...engine.Provider) *engine.Engine {
	t.Helper()

	registry, err := engine.NewRegistry(providers...)
	require.NoError(t, err)

	return engine.New(registry)
}

func TestListActions_OrdersByDeclaration(t *testing.T) {
	t.Parallel()

	slow := refactoring("slow", "a1", "a2")
	slow.delay = 20 * time.Millisecond

	eng := newEngine(t, slow, refactoring("fast", "b1"))

	result, err := eng.ListActions(context.Background(), document(), engine.Request{}, engine.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a2", "b1"}, titles(result))
	assert.Equal(t, "slow", result.Actions[0].EquivalenceKey())
	assert.Equal(t, "slow.a2", result.Actions[1].EquivalenceKey())
	assert.Equal(t, "fast", result.Actions[2].ProviderID())
	assert.NotEqual(t, result.Actions[0].ID(), result.Actions[1].ID())
	assert.Empty(t, result.Faults)

	found, ok := result.Find("slow.a2")
	require.True(t, ok)
	assert.Same(t, result.Actions[1], found)

	found, ok = result.FindByID(result.Actions[2].ID())
	require.True(t, ok)
	assert.Same(t, result.Actions[2], found)
}

func TestListActions_IsolatesFaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		faulty *stubProvider
	}{
		{name: "panic", faulty: &stubProvider{id: "faulty", trigger: engine.RefactoringTrigger(), panics: true}},
		{
			name:   "error",
			faulty: &stubProvider{id: "faulty", trigger: engine.RefactoringTrigger(), titles: []string{"lost"}, err: errors.New("broken")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			eng := newEngine(t, refactoring("before", "x"), tt.faulty, refactoring("after", "y"))

			result, err := eng.ListActions(context.Background(), document(), engine.Request{}, engine.DefaultConfig())
			require.NoError(t, err)

			assert.Equal(t, []string{"x", "y"}, titles(result))
			require.Len(t, result.Faults, 1)
			assert.Equal(t, "faulty", result.Faults[0].ProviderID)
			require.ErrorIs(t, result.Faults[0], engine.ErrProviderFault)
		})
	}
}

func TestListActions_DeclinesAreSilent(t *testing.T) {
	t.Parallel()

	for _, decline := range []error{engine.ErrNoCandidate, engine.ErrSemanticRejected, semantic.ErrUnresolved} {
		provider := &stubProvider{id: "declines", trigger: engine.RefactoringTrigger(), err: decline}
		eng := newEngine(t, provider)

		result, err := eng.ListActions(context.Background(), document(), engine.Request{}, engine.DefaultConfig())
		require.NoError(t, err)
		assert.Empty(t, result.Actions)
		assert.Empty(t, result.Faults)
	}
}

func TestListActions_DisabledProvidersDoNotInterfere(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, refactoring("a", "a1"), refactoring("b", "b1", "b2"))

	all, err := eng.ListActions(context.Background(), document(), engine.Request{}, engine.DefaultConfig())
	require.NoError(t, err)

	onlyB, err := eng.ListActions(context.Background(), document(), engine.Request{}, engine.DefaultConfig().Without("a"))
	require.NoError(t, err)

	assert.Equal(t, []string{"b1", "b2"}, titles(onlyB))
	assert.Equal(t, titles(all)[1:], titles(onlyB))
}

func TestListActions_Triggers(t *testing.T) {
	t.Parallel()

	fix := &stubProvider{id: "fix", trigger: engine.CodeFixTrigger("CS0109"), titles: []string{"fix it"}}
	eng := newEngine(t, refactoring("refactor", "r"), fix)

	tests := []struct {
		name       string
		diagnostic string
		want       []string
	}{
		{name: "span", want: []string{"r"}},
		{name: "matching diagnostic", diagnostic: "CS0109", want: []string{"fix it"}},
		{name: "other diagnostic", diagnostic: "CS0168", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := eng.ListActions(context.Background(), document(),
				engine.Request{DiagnosticID: tt.diagnostic}, engine.DefaultConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(result))
		})
	}
}

func TestListActions_Cancellation(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, refactoring("a", "a1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := eng.ListActions(ctx, document(), engine.Request{}, engine.DefaultConfig())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Actions)
}

func TestListActions_ProviderTimeout(t *testing.T) {
	t.Parallel()

	stuck := &stubProvider{id: "stuck", trigger: engine.RefactoringTrigger(), waitCtx: true}
	eng := newEngine(t, stuck, refactoring("quick", "q"))

	cfg := engine.DefaultConfig()
	cfg.ProviderTimeout = 10 * time.Millisecond

	result, err := eng.ListActions(context.Background(), document(), engine.Request{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"q"}, titles(result))
	assert.Empty(t, result.Faults)
}

func TestListActions_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	metrics, err := engine.NewMetrics(meter)
	require.NoError(t, err)

	registry, err := engine.NewRegistry(
		refactoring("ok", "one", "two"),
		&stubProvider{id: "no", trigger: engine.RefactoringTrigger(), err: engine.ErrNoCandidate},
		&stubProvider{id: "bad", trigger: engine.RefactoringTrigger(), panics: true},
	)
	require.NoError(t, err)

	eng := engine.New(registry, engine.WithMetrics(metrics))

	_, err = eng.ListActions(context.Background(), document(), engine.Request{}, engine.DefaultConfig())
	require.NoError(t, err)

	var collected metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &collected))

	sums := map[string]int64{}

	for _, scope := range collected.ScopeMetrics {
		for _, m := range scope.Metrics {
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}

			for _, point := range data.DataPoints {
				sums[m.Name] += point.Value
			}
		}
	}

	assert.Equal(t, int64(2), sums["codefix.provider.actions.total"])
	assert.Equal(t, int64(1), sums["codefix.provider.declines.total"])
	assert.Equal(t, int64(1), sums["codefix.provider.faults.total"])
}

func TestAction_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		compute engine.ComputeFunc
		cancel  bool
		wantErr error
	}{
		{
			name:    "missing node passes through",
			compute: func(context.Context) (*rewrite.Result, error) { return nil, rewrite.ErrMissingNode },
			wantErr: rewrite.ErrMissingNode,
		},
		{
			name:    "panic",
			compute: func(context.Context) (*rewrite.Result, error) { panic("bad rewrite") },
			wantErr: engine.ErrProviderFault,
		},
		{
			name:    "canceled",
			compute: func(context.Context) (*rewrite.Result, error) { return &rewrite.Result{}, nil },
			cancel:  true,
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider := &computeProvider{compute: tt.compute}
			eng := newEngine(t, provider)

			result, err := eng.ListActions(context.Background(), document(), engine.Request{}, engine.DefaultConfig())
			require.NoError(t, err)
			require.Len(t, result.Actions, 1)

			ctx, cancel := context.WithCancel(context.Background())
			if tt.cancel {
				cancel()
			} else {
				defer cancel()
			}

			applied, err := result.Actions[0].Apply(ctx)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, applied)
		})
	}
}

type computeProvider struct {
	compute engine.ComputeFunc
}

func (p *computeProvider) ID() string { return "compute" }

func (p *computeProvider) Trigger() engine.Trigger { return engine.RefactoringTrigger() }

func (p *computeProvider) ComputeActions(_ context.Context, pc *engine.Context) error {
	pc.Register("Compute", "", p.compute)

	return nil
}

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := engine.NewRegistry(refactoring("a"), refactoring("a"))
	require.ErrorIs(t, err, engine.ErrDuplicateProvider)

	registry, err := engine.NewRegistry(refactoring("a"), refactoring("b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, registry.IDs())

	_, ok := registry.Provider("b")
	assert.True(t, ok)
}
