package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/expertlog/internal/replica"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(ReconcileResult{replica.DrainReport{Applied: 2, Skipped: 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":{"applied":2,"skipped":1}}`, buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(CodeStore, "failed to open primary store", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E002", resp.Error.Code)
	assert.Equal(t, "failed to open primary store", resp.Error.Message)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
		want string
	}{
		{"single store", SchemaResult{Primary: "sqlite"}, "schema ready: primary (sqlite)\n"},
		{"two stores", SchemaResult{Primary: "sqlite", Secondary: "postgres"}, "schema ready: primary (sqlite), secondary (postgres)\n"},
		{"reconcile", ReconcileResult{replica.DrainReport{Applied: 3}}, "reconciled: 3 applied, 0 already present\n"},
		{"plain value", "done", "done\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf}
			require.NoError(t, formatter.Success(tt.data))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error(CodeConfig, "invalid configuration", map[string]string{"key": "port"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]: invalid configuration")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error(CodeReconcile, "outbox entry 3 failed", ReconcileResult{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E003]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("x"), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "bad"), ExitCommandError},
		{"wrapped", fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "bad", errors.New("cause"))), ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapExitError(ExitCommandError, "failed to open primary store", cause)
	assert.Equal(t, "failed to open primary store: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
}
