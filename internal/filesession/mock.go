package filesession

import (
	"context"
	"io"

	"github.com/cristianoliveira/sendpanel/internal/contacts"
	"github.com/stretchr/testify/mock"
)

// MockUploader is a testify/mock implementation of Uploader.
//
//	up := new(MockUploader)
//	up.On("Upload", mock.Anything, "a.csv", mock.Anything).
//	    Return(contacts.UploadResult{Filename: "a.csv", ContactCount: 3}, nil)
type MockUploader struct {
	mock.Mock
}

// Upload returns the configured result.
func (m *MockUploader) Upload(ctx context.Context, name string, content io.Reader) (contacts.UploadResult, error) {
	args := m.Called(ctx, name, content)
	return args.Get(0).(contacts.UploadResult), args.Error(1)
}

// ListFiles returns the configured file list.
func (m *MockUploader) ListFiles(ctx context.Context) ([]contacts.RemoteFile, error) {
	args := m.Called(ctx)
	files, _ := args.Get(0).([]contacts.RemoteFile)
	return files, args.Error(1)
}
