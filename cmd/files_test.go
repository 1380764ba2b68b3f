package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/cristianoliveira/sendpanel/internal/app"
	"github.com/cristianoliveira/sendpanel/internal/contacts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFilesClient struct {
	validated string
}

func (s *stubFilesClient) ListFiles(context.Context) ([]contacts.RemoteFile, error) {
	return []contacts.RemoteFile{{Name: "lista.csv", ContactCount: 12}}, nil
}

func (s *stubFilesClient) Validate(_ context.Context, name string) (contacts.Validation, error) {
	s.validated = name
	return contacts.Validation{TotalContacts: 12, ValidPhones: 11, InvalidPhones: 1}, nil
}

func (s *stubFilesClient) Preview(context.Context, string) (contacts.Preview, error) {
	return contacts.Preview{TotalContacts: 12}, nil
}

func (s *stubFilesClient) Health(context.Context) (contacts.Health, error) {
	return contacts.Health{Status: "healthy", Service: "file-parser"}, nil
}

func useFilesClient(t *testing.T) *stubFilesClient {
	t.Helper()
	stub := &stubFilesClient{}
	orig := filesClientFunc
	filesClientFunc = func() app.FilesClient { return stub }
	t.Cleanup(func() { filesClientFunc = orig })
	return stub
}

func TestFilesCommand(t *testing.T) {
	useFilesClient(t)

	var buf bytes.Buffer
	cmd := NewFilesCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "lista.csv")
}

func TestValidateCommand(t *testing.T) {
	stub := useFilesClient(t)

	var buf bytes.Buffer
	cmd := NewValidateCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"lista.csv"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "lista.csv", stub.validated)
	assert.Contains(t, buf.String(), "Invalid:  1")
}

func TestValidateCommandRequiresName(t *testing.T) {
	useFilesClient(t)

	cmd := NewValidateCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{})

	assert.Error(t, cmd.Execute())
}

func TestHealthCommandJSON(t *testing.T) {
	useFilesClient(t)

	var buf bytes.Buffer
	cmd := NewHealthCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--format", "json"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), `"status": "healthy"`)
}

func TestFilesCommandRejectsBadPattern(t *testing.T) {
	useFilesClient(t)

	cmd := NewFilesCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{"--search", "(", "--regex"})

	assert.Error(t, cmd.Execute())
}
