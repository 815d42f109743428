package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chatflow-backend/domain/config"
	"chatflow-backend/domain/core/aggregates"
	"chatflow-backend/domain/core/entities"
	"chatflow-backend/domain/core/valueobjects"
	"chatflow-backend/pkg/clock"
)

type clipboardFixture struct {
	workflow  *aggregates.Workflow
	flow      *FlowService
	clipboard *ClipboardService
}

func newClipboardFixture(t *testing.T) clipboardFixture {
	t.Helper()
	cfg := config.DefaultDomainConfig()
	workflow := aggregates.NewWorkflow("wf-1", "Test Workflow", cfg)
	clk := clock.NewFake(time.Unix(1700000000, 0))
	scheduler := NewValidationScheduler(workflow, cfg.DebounceWindow, clk, zap.NewNop())
	flow := NewFlowService(workflow, scheduler, zap.NewNop())
	return clipboardFixture{
		workflow:  workflow,
		flow:      flow,
		clipboard: NewClipboardService(flow, cfg, zap.NewNop()),
	}
}

func TestCopyRequiresSingleSelection(t *testing.T) {
	f := newClipboardFixture(t)

	t.Run("nothing selected", func(t *testing.T) {
		assert.False(t, f.clipboard.Copy())
		assert.False(t, f.clipboard.HasContent())
	})

	a, err := f.flow.InsertNode(entities.NodeTypeMenu, nil)
	require.NoError(t, err)
	b, err := f.flow.InsertNode(entities.NodeTypeTags, nil)
	require.NoError(t, err)

	t.Run("multiple selected", func(t *testing.T) {
		f.flow.SelectNode(a.ID)
		f.flow.ToggleNodeSelection(b.ID)
		assert.False(t, f.clipboard.Copy())
	})

	t.Run("exactly one selected", func(t *testing.T) {
		f.flow.SelectNode(a.ID)
		assert.True(t, f.clipboard.Copy())
		assert.True(t, f.clipboard.HasContent())
	})
}

func TestCopyIsSnapshot(t *testing.T) {
	f := newClipboardFixture(t)
	node, err := f.flow.InsertNode(entities.NodeTypeTextMessage, nil)
	require.NoError(t, err)
	require.NoError(t, f.flow.UpdateNodeData(node.ID, entities.DataPatch{"message": "original"}))

	f.flow.SelectNode(node.ID)
	require.True(t, f.clipboard.Copy())

	// Edits after copy do not leak into the clipboard.
	require.NoError(t, f.flow.UpdateNodeData(node.ID, entities.DataPatch{"message": "edited"}))

	pasted, err := f.clipboard.PasteAt(valueobjects.NewPosition(400, 400))
	require.NoError(t, err)
	data, ok := pasted.Data.(entities.TextMessageData)
	require.True(t, ok)
	assert.Equal(t, "original", data.Message)
}

func TestDuplicateOffsetsAndSelects(t *testing.T) {
	f := newClipboardFixture(t)
	pos := valueobjects.NewPosition(120, 80)
	node, err := f.flow.InsertNode(entities.NodeTypeDelay, &pos)
	require.NoError(t, err)
	require.NoError(t, f.flow.UpdateNodeData(node.ID, entities.DataPatch{"duration": 5, "unit": "minutes"}))
	f.flow.SelectNode(node.ID)

	dup, err := f.clipboard.Duplicate()
	require.NoError(t, err)
	require.NotNil(t, dup)

	assert.NotEqual(t, node.ID, dup.ID)
	assert.True(t, valueobjects.NewPosition(220, 180).Equals(dup.Position))

	data, ok := dup.Data.(entities.DelayData)
	require.True(t, ok)
	assert.Equal(t, float64(5), data.Duration)
	assert.Equal(t, entities.TimeUnitMinutes, data.Unit)

	// The duplicate takes over the selection.
	selected := f.workflow.SelectedNodes()
	require.Len(t, selected, 1)
	assert.Equal(t, dup.ID, selected[0].ID)

	// Duplicating does not touch the clipboard slot.
	assert.False(t, f.clipboard.HasContent())
}

func TestDuplicateWithoutSelection(t *testing.T) {
	f := newClipboardFixture(t)
	_, err := f.flow.InsertNode(entities.NodeTypeMenu, nil)
	require.NoError(t, err)
	f.flow.DeselectAll()

	dup, err := f.clipboard.Duplicate()

	require.NoError(t, err)
	assert.Nil(t, dup)
}

func TestPasteUsesPositionResolution(t *testing.T) {
	f := newClipboardFixture(t)
	f.workflow.SetPositionFallback(func() valueobjects.Position {
		return valueobjects.NewPosition(640, 360)
	})

	node, err := f.flow.InsertNode(entities.NodeTypeTags, nil)
	require.NoError(t, err)
	f.flow.SelectNode(node.ID)
	require.True(t, f.clipboard.Copy())

	t.Run("pending position wins", func(t *testing.T) {
		pending := valueobjects.NewPosition(50, 60)
		f.flow.SetPendingPosition(&pending)

		pasted, err := f.clipboard.Paste()
		require.NoError(t, err)
		assert.True(t, pending.Equals(pasted.Position))
	})

	t.Run("fallback when nothing staged", func(t *testing.T) {
		pasted, err := f.clipboard.Paste()
		require.NoError(t, err)
		assert.True(t, valueobjects.NewPosition(640, 360).Equals(pasted.Position))
	})
}

func TestPasteEmptyClipboard(t *testing.T) {
	f := newClipboardFixture(t)

	pasted, err := f.clipboard.Paste()

	require.NoError(t, err)
	assert.Nil(t, pasted)
	assert.Equal(t, 0, f.workflow.NodeCount())
}

func TestPasteRepeatedly(t *testing.T) {
	f := newClipboardFixture(t)
	node, err := f.flow.InsertNode(entities.NodeTypeTextMessage, nil)
	require.NoError(t, err)
	f.flow.SelectNode(node.ID)
	require.True(t, f.clipboard.Copy())

	first, err := f.clipboard.PasteAt(valueobjects.NewPosition(10, 10))
	require.NoError(t, err)
	second, err := f.clipboard.PasteAt(valueobjects.NewPosition(20, 20))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 3, f.workflow.NodeCount())
}
