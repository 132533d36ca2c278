package main

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRestartReportsMissingExecutable(t *testing.T) {
	boom := errors.New("no executable")
	err := restart(func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

func TestRestartReportsStartFailure(t *testing.T) {
	err := restart(func() (string, error) { return "/nonexistent/murphy-app", nil })
	assert.Error(t, err)
}
