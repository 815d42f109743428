package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chatflow-backend/application/services"
	"chatflow-backend/domain/core/aggregates"
	"chatflow-backend/domain/core/entities"
	"chatflow-backend/pkg/clock"
)

func TestValidationPrinterReportsEachRunOnce(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	workflow := aggregates.NewWorkflow("wf-1", "Test Workflow", nil)
	_, err := workflow.InsertNode(entities.NodeTypeStart, nil)
	require.NoError(t, err)

	scheduler := services.NewValidationScheduler(workflow, time.Millisecond, clock.NewReal(), zap.NewNop())
	defer scheduler.Close()
	scheduler.SetOnValidated(validationPrinter(cmd, workflow))
	flow := services.NewFlowService(workflow, scheduler, zap.NewNop())

	state := flow.ValidateNow()
	require.False(t, state.IsValid)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// One line per diagnostic plus the summary, nothing doubled.
	assert.Len(t, lines, len(state.Errors)+1)
	assert.Equal(t, "workflow wf-1 is not executable", lines[len(lines)-1])

	seen := make(map[string]int)
	for _, line := range lines[:len(lines)-1] {
		seen[line]++
	}
	for line, count := range seen {
		assert.Equal(t, 1, count, "diagnostic printed more than once: %s", line)
	}
}

func TestValidationPrinterValidSummary(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	workflow := aggregates.NewWorkflow("wf-2", "Test Workflow", nil)
	start, err := workflow.InsertNode(entities.NodeTypeStart, nil)
	require.NoError(t, err)
	end, err := workflow.InsertNode(entities.NodeTypeEnd, nil)
	require.NoError(t, err)
	_, err = workflow.Connect(entities.Connection{Source: start.ID, Target: end.ID})
	require.NoError(t, err)

	scheduler := services.NewValidationScheduler(workflow, time.Millisecond, clock.NewReal(), zap.NewNop())
	defer scheduler.Close()
	scheduler.SetOnValidated(validationPrinter(cmd, workflow))
	flow := services.NewFlowService(workflow, scheduler, zap.NewNop())

	state := flow.ValidateNow()
	require.True(t, state.IsValid)

	assert.Equal(t, "workflow wf-2 is valid\n", buf.String())
}
