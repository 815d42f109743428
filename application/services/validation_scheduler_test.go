package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chatflow-backend/domain/core/aggregates"
	"chatflow-backend/domain/core/entities"
	"chatflow-backend/pkg/clock"
)

const testWindow = 300 * time.Millisecond

type schedulerFixture struct {
	workflow  *aggregates.Workflow
	scheduler *ValidationScheduler
	flow      *FlowService
	clk       *clock.Fake
	runs      *int
}

func newSchedulerFixture(t *testing.T) schedulerFixture {
	t.Helper()
	workflow := aggregates.NewWorkflow("wf-1", "Test Workflow", nil)
	clk := clock.NewFake(time.Unix(1700000000, 0))
	scheduler := NewValidationScheduler(workflow, testWindow, clk, zap.NewNop())
	flow := NewFlowService(workflow, scheduler, zap.NewNop())

	runs := 0
	scheduler.SetOnValidated(func(aggregates.ValidationState) { runs++ })

	return schedulerFixture{workflow: workflow, scheduler: scheduler, flow: flow, clk: clk, runs: &runs}
}

func TestSchedulerDebouncesBurstToOneRun(t *testing.T) {
	f := newSchedulerFixture(t)

	start, err := f.flow.InsertNode(entities.NodeTypeStart, nil)
	require.NoError(t, err)
	f.clk.Advance(testWindow / 2)

	end, err := f.flow.InsertNode(entities.NodeTypeEnd, nil)
	require.NoError(t, err)
	f.clk.Advance(testWindow / 2)

	_, err = f.flow.Connect(entities.Connection{Source: start.ID, Target: end.ID})
	require.NoError(t, err)

	// Each mutation landed inside the previous window, so nothing ran yet.
	assert.Equal(t, 0, *f.runs)
	assert.True(t, f.scheduler.Pending())

	f.clk.Advance(testWindow)

	assert.Equal(t, 1, *f.runs, "a burst collapses to one run")
	assert.False(t, f.scheduler.Pending())

	// The run saw the snapshot as of the last mutation: start and end are
	// connected, so the workflow is valid.
	state := f.workflow.Validation()
	assert.True(t, state.IsValid)
	assert.Empty(t, state.Errors)
	require.NotNil(t, state.LastValidated)
	assert.Equal(t, f.clk.Now().UnixMilli(), *state.LastValidated)
}

func TestSchedulerRunsSeparatedMutationsSeparately(t *testing.T) {
	f := newSchedulerFixture(t)

	_, err := f.flow.InsertNode(entities.NodeTypeStart, nil)
	require.NoError(t, err)
	f.clk.Advance(testWindow)
	assert.Equal(t, 1, *f.runs)

	_, err = f.flow.InsertNode(entities.NodeTypeEnd, nil)
	require.NoError(t, err)
	f.clk.Advance(testWindow)
	assert.Equal(t, 2, *f.runs)
}

func TestSchedulerFirstRunFindsErrors(t *testing.T) {
	f := newSchedulerFixture(t)

	_, err := f.flow.InsertNode(entities.NodeTypeStart, nil)
	require.NoError(t, err)
	f.clk.Advance(testWindow)

	state := f.workflow.Validation()
	assert.False(t, state.IsValid)
	assert.NotEmpty(t, state.Errors)
}

func TestFlushNowCancelsPendingRun(t *testing.T) {
	f := newSchedulerFixture(t)

	_, err := f.flow.InsertNode(entities.NodeTypeStart, nil)
	require.NoError(t, err)
	require.True(t, f.scheduler.Pending())

	state := f.flow.ValidateNow()

	assert.Equal(t, 1, *f.runs)
	assert.False(t, f.scheduler.Pending())
	assert.False(t, state.IsValid)

	// The window lapsing afterwards must not produce a second run.
	f.clk.Advance(2 * testWindow)
	assert.Equal(t, 1, *f.runs)
}

func TestCancelDropsPendingRun(t *testing.T) {
	f := newSchedulerFixture(t)

	_, err := f.flow.InsertNode(entities.NodeTypeMenu, nil)
	require.NoError(t, err)
	f.scheduler.Cancel()

	f.clk.Advance(2 * testWindow)

	assert.Equal(t, 0, *f.runs)
	assert.Nil(t, f.workflow.Validation().LastValidated)
}

func TestCloseSilencesScheduler(t *testing.T) {
	f := newSchedulerFixture(t)

	_, err := f.flow.InsertNode(entities.NodeTypeMenu, nil)
	require.NoError(t, err)
	f.flow.Close()

	f.clk.Advance(2 * testWindow)
	f.scheduler.Arm()
	f.clk.Advance(2 * testWindow)

	assert.Equal(t, 0, *f.runs)
	assert.False(t, f.scheduler.Pending())
}

func TestSchedulerNotifyDefersRunToConsumer(t *testing.T) {
	f := newSchedulerFixture(t)
	ready := f.scheduler.Notify()

	_, err := f.flow.InsertNode(entities.NodeTypeStart, nil)
	require.NoError(t, err)
	f.clk.Advance(testWindow)

	// The timer only signaled; no validation ran yet.
	assert.Equal(t, 0, *f.runs)
	assert.Nil(t, f.workflow.Validation().LastValidated)
	select {
	case <-ready:
	default:
		t.Fatal("expected a ready signal after the window elapsed")
	}

	f.flow.ValidateNow()
	assert.Equal(t, 1, *f.runs)
	assert.NotNil(t, f.workflow.Validation().LastValidated)
}

func TestSchedulerNotifyCoalescesSignals(t *testing.T) {
	f := newSchedulerFixture(t)
	ready := f.scheduler.Notify()

	for i := 0; i < 3; i++ {
		_, err := f.flow.InsertNode(entities.NodeTypeMenu, nil)
		require.NoError(t, err)
		f.clk.Advance(testWindow)
	}

	// Three elapsed windows collapse into the channel's single slot.
	<-ready
	select {
	case <-ready:
		t.Fatal("expected at most one buffered signal")
	default:
	}
}

func TestSchedulerRealClockSingleConsumer(t *testing.T) {
	// Mirrors the watch wiring: a real clock, one goroutine owning every
	// workflow access, the timer reduced to a channel signal. The graph
	// keeps being replaced while windows elapse; run with -race.
	workflow := aggregates.NewWorkflow("wf-1", "Test Workflow", nil)
	scheduler := NewValidationScheduler(workflow, time.Millisecond, clock.NewReal(), zap.NewNop())
	defer scheduler.Close()
	ready := scheduler.Notify()
	flow := NewFlowService(workflow, scheduler, zap.NewNop())

	for i := 0; i < 200; i++ {
		require.NoError(t, flow.ReplaceGraph(nil, nil))
		if i%20 == 0 {
			time.Sleep(2 * time.Millisecond)
		}
		select {
		case <-ready:
			flow.ValidateNow()
		default:
		}
	}

	state := flow.ValidateNow()
	assert.NotNil(t, state.LastValidated)
}

func TestEveryMutationArmsScheduler(t *testing.T) {
	f := newSchedulerFixture(t)

	node, err := f.flow.InsertNode(entities.NodeTypeTextMessage, nil)
	require.NoError(t, err)
	f.clk.Advance(testWindow)

	mutations := []struct {
		name string
		do   func() error
	}{
		{"update data", func() error {
			return f.flow.UpdateNodeData(node.ID, entities.DataPatch{"message": "hi"})
		}},
		{"connect", func() error {
			_, err := f.flow.Connect(entities.Connection{Source: node.ID, Target: node.ID})
			return err
		}},
		{"apply node changes", func() error {
			return f.flow.ApplyNodeChanges([]entities.NodeChange{
				entities.SelectNodeChange{ID: node.ID, Selected: true},
			})
		}},
		{"delete selection", func() error {
			f.flow.DeleteSelection()
			return nil
		}},
	}

	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			require.NoError(t, m.do())
			assert.True(t, f.scheduler.Pending())
			f.clk.Advance(testWindow)
			assert.False(t, f.scheduler.Pending())
		})
	}
}
