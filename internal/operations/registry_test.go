package operations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offgascli/internal/operations"
	"offgascli/internal/operations/testutil"
)

func stepIDs(steps []operations.Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID()
	}
	return ids
}

func TestRegistryRegister(t *testing.T) {
	r := operations.NewRegistry()

	require.NoError(t, r.Register(testutil.CreateSuccessfulStage("a")))
	assert.True(t, r.Has("a"))
	assert.Equal(t, 1, r.Count())

	err := r.Register(testutil.CreateSuccessfulStage("a"))
	assert.ErrorContains(t, err, "already registered")

	assert.ErrorContains(t, r.Register(nil), "cannot register nil step")
	assert.ErrorContains(t, r.Register(testutil.CreateSuccessfulStage("")), "step ID cannot be empty")

	step, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", step.ID())

	_, err = r.Get("missing")
	assert.Error(t, err)

	require.NoError(t, r.Unregister("a"))
	assert.False(t, r.Has("a"))
	assert.Error(t, r.Unregister("a"))
}

func TestRegistryDependencyOrder(t *testing.T) {
	tests := []struct {
		name    string
		steps   []*testutil.MockStage
		want    []string
		wantErr string
	}{
		{
			name: "chain registered backwards",
			steps: []*testutil.MockStage{
				testutil.CreateSuccessfulStage("c", "b"),
				testutil.CreateSuccessfulStage("b", "a"),
				testutil.CreateSuccessfulStage("a"),
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "independent steps keep registration order",
			steps: []*testutil.MockStage{
				testutil.CreateSuccessfulStage("z"),
				testutil.CreateSuccessfulStage("y"),
				testutil.CreateSuccessfulStage("x", "z"),
			},
			want: []string{"z", "y", "x"},
		},
		{
			name: "diamond",
			steps: []*testutil.MockStage{
				testutil.CreateSuccessfulStage("root"),
				testutil.CreateSuccessfulStage("left", "root"),
				testutil.CreateSuccessfulStage("right", "root"),
				testutil.CreateSuccessfulStage("join", "left", "right"),
			},
			want: []string{"root", "left", "right", "join"},
		},
		{
			name: "cycle",
			steps: []*testutil.MockStage{
				testutil.CreateSuccessfulStage("a", "b"),
				testutil.CreateSuccessfulStage("b", "a"),
			},
			wantErr: "dependency cycle detected",
		},
		{
			name: "missing dependency",
			steps: []*testutil.MockStage{
				testutil.CreateSuccessfulStage("a", "ghost"),
			},
			wantErr: "depends on non-existent step ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := operations.NewRegistry()
			for _, s := range tt.steps {
				require.NoError(t, r.Register(s))
			}

			order, err := r.GetDependencyOrder()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Error(t, r.ValidateDependencies())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, stepIDs(order))
		})
	}
}

func TestRegistryDependents(t *testing.T) {
	r := operations.NewRegistry()
	require.NoError(t, r.Register(testutil.CreateSuccessfulStage("a")))
	require.NoError(t, r.Register(testutil.CreateSuccessfulStage("b", "a")))
	require.NoError(t, r.Register(testutil.CreateSuccessfulStage("c", "a")))
	require.NoError(t, r.Register(testutil.CreateSuccessfulStage("d", "b")))

	assert.Equal(t, []string{"b", "c"}, stepIDs(r.GetDependents("a")))
	assert.Empty(t, r.GetDependents("d"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, r.ListIDs())
}
