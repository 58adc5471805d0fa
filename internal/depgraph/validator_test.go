package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDiamondOrder(t *testing.T) {
	specs := []TaskSpec{
		{TempID: "t1", Title: "Design schema"},
		{TempID: "t2", Title: "Write migrations", Dependencies: []string{"t1"}},
		{TempID: "t3", Title: "Write queries", Dependencies: []string{"t1"}},
		{TempID: "t4", Title: "Integration test", Dependencies: []string{"t2", "t3"}},
	}

	res := Validate(specs)
	require.True(t, res.IsSuccess())
	order := res.DataMap()["order"].([]string)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4"}, order)
}

func TestValidateKeepsInputOrderForIndependentTasks(t *testing.T) {
	specs := []TaskSpec{
		{TempID: "b", Title: "Second"},
		{TempID: "a", Title: "First"},
		{TempID: "c", Title: "Third", Dependencies: []string{"b"}},
	}

	res := Validate(specs)
	require.True(t, res.IsSuccess())
	assert.Equal(t, []string{"b", "a", "c"}, res.DataMap()["order"].([]string))
}

func TestValidateMissingTempID(t *testing.T) {
	specs := []TaskSpec{
		{TempID: "t1", Title: "Ok"},
		{Title: "Nameless"},
	}

	res := Validate(specs)
	require.True(t, res.IsFailure())
	assert.Equal(t, "Invalid task temp_ids", res.Message)
	errs := res.Details["errors"].([]string)
	require.Len(t, errs, 1)
	assert.Equal(t, "Task at index 1 ('Nameless') missing required 'temp_id'", errs[0])
}

func TestValidateDuplicateTempID(t *testing.T) {
	specs := []TaskSpec{
		{TempID: "t1", Title: "One"},
		{TempID: "t1", Title: "Two"},
	}

	res := Validate(specs)
	require.True(t, res.IsFailure())
	assert.Equal(t, "Invalid task temp_ids", res.Message)
	assert.Contains(t, res.Details["errors"].([]string), "Duplicate temp_id: 't1'")
}

func TestValidateUnknownReference(t *testing.T) {
	specs := []TaskSpec{
		{TempID: "t1", Title: "Build", Dependencies: []string{"t9"}},
		{TempID: "t2", Title: "Ship"},
	}

	res := Validate(specs)
	require.True(t, res.IsFailure())
	assert.Equal(t, "Dependency validation failed", res.Message)
	errs := res.Details["errors"].([]string)
	require.Len(t, errs, 1)
	assert.Equal(t,
		"Task 't1' ('Build') depends on 't9' which doesn't exist. Available temp_ids: ['t1', 't2']",
		errs[0])
}

func TestValidateCollectsAllBadReferences(t *testing.T) {
	specs := []TaskSpec{
		{TempID: "t1", Title: "A", Dependencies: []string{"x"}},
		{TempID: "t2", Title: "B", Dependencies: []string{"y"}},
	}

	res := Validate(specs)
	require.True(t, res.IsFailure())
	assert.Len(t, res.Details["errors"].([]string), 2)
}

func TestValidateCycle(t *testing.T) {
	specs := []TaskSpec{
		{TempID: "t1", Title: "A", Dependencies: []string{"t3"}},
		{TempID: "t2", Title: "B", Dependencies: []string{"t1"}},
		{TempID: "t3", Title: "C", Dependencies: []string{"t2"}},
	}

	res := Validate(specs)
	require.True(t, res.IsFailure())
	assert.Equal(t, "Dependency validation failed", res.Message)
	errs := res.Details["errors"].([]string)
	require.Len(t, errs, 1)
	assert.Equal(t,
		"Circular dependency detected: t1 ('A') -> t3 ('C') -> t2 ('B') -> t1 ('A')",
		errs[0])
}

func TestValidateSelfDependency(t *testing.T) {
	specs := []TaskSpec{
		{TempID: "t1", Title: "Loop", Dependencies: []string{"t1"}},
	}

	res := Validate(specs)
	require.True(t, res.IsFailure())
	errs := res.Details["errors"].([]string)
	require.Len(t, errs, 1)
	assert.Equal(t, "Circular dependency detected: t1 ('Loop') -> t1 ('Loop')", errs[0])
}

func TestValidateReportsOnlyFirstCycle(t *testing.T) {
	specs := []TaskSpec{
		{TempID: "a", Title: "A", Dependencies: []string{"b"}},
		{TempID: "b", Title: "B", Dependencies: []string{"a"}},
		{TempID: "c", Title: "C", Dependencies: []string{"d"}},
		{TempID: "d", Title: "D", Dependencies: []string{"c"}},
	}

	res := Validate(specs)
	require.True(t, res.IsFailure())
	assert.Len(t, res.Details["errors"].([]string), 1)
}

func TestValidateEmptyBatch(t *testing.T) {
	res := Validate(nil)
	require.True(t, res.IsSuccess())
	assert.Empty(t, res.DataMap()["order"])
}
