package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_MissingConfigExitsOne(t *testing.T) {
	t.Setenv("GREENLINK_MONGO_URI", "")
	t.Setenv("GREENLINK_MONGO_DATABASE", "")

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"check-logs"}, &out, &errOut)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "configuration error")
}

func TestRun_HelpListsEveryTask(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--help"}, &out, &errOut)

	assert.Equal(t, 0, code)
	for _, tk := range tasks() {
		assert.True(t, strings.Contains(out.String(), tk.use), "help should list %q", tk.use)
	}
}

func TestRun_OtherErrorsExitZero(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"no-such-task"}, &out, &errOut)

	assert.Equal(t, 0, code)
	assert.Contains(t, errOut.String(), "command failed")
}

func TestRun_TaskRejectsArguments(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"seed", "extra"}, &out, &errOut)

	assert.Equal(t, 0, code)
	assert.Contains(t, errOut.String(), "command failed")
}
