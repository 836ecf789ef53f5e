package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJob = Job{
	Application: "Linear",
	Description: "Create a new issue in Linear",
	StartURL:    "https://linear.app/",
	MaxSteps:    15,
}

func TestSucceeded(t *testing.T) {
	o := Succeeded(testJob, "captured_states/create_issue/manifest.json")

	assert.Equal(t, StatusSuccess, o.Status)
	assert.Equal(t, "Create a new issue in Linear", o.Task)
	assert.Equal(t, "Linear", o.App)
	assert.Equal(t, "captured_states/create_issue/manifest.json", o.Manifest)
	assert.Empty(t, o.Error)
}

func TestFailed(t *testing.T) {
	o := Failed(testJob, errors.New("navigation timeout"))

	assert.Equal(t, StatusFailed, o.Status)
	assert.Equal(t, "navigation timeout", o.Error)
	assert.Empty(t, o.Manifest)

	o = Failed(testJob, nil)
	assert.Equal(t, "unknown error", o.Error)
}

func TestJobOutcome_JSONShape(t *testing.T) {
	data, err := json.Marshal(Succeeded(testJob, "m.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"task":"Create a new issue in Linear","app":"Linear","status":"success","manifest":"m.json"}`, string(data))

	data, err = json.Marshal(Failed(testJob, errors.New("boom")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"task":"Create a new issue in Linear","app":"Linear","status":"failed","error":"boom"}`, string(data))
}

func TestErrors(t *testing.T) {
	cause := errors.New("browser not found")

	initErr := &SessionInitError{Err: cause}
	assert.ErrorIs(t, initErr, cause)
	assert.Contains(t, initErr.Error(), "browser not found")

	taskErr := &TaskExecutionError{Message: "task failed", Err: cause}
	assert.Equal(t, "task failed: browser not found", taskErr.Error())
	assert.Equal(t, "browser not found", (&TaskExecutionError{Err: cause}).Error())
	assert.Equal(t, "only message", (&TaskExecutionError{Message: "only message"}).Error())

	sel := &InvalidSelectionError{Index: 5, Size: 5}
	assert.Equal(t, "invalid task index 5. Available tasks: 0-4", sel.Error())

	persist := &ReportPersistError{Path: "dataset_summary.json", Err: cause}
	assert.ErrorIs(t, persist, cause)
}
