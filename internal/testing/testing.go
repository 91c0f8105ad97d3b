// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/likesync/internal/services"
)

// MockService is a configurable test double for [services.Service].
type MockService struct {
	Liked     []services.LikedVideo
	LikedErr  error
	CreateErr error
	InsertErr error
	DeleteErr error

	// Ops records each remote call as "verb:args" in invocation order.
	Ops []string

	playlistSeq int
	itemSeq     int
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) LikedVideos(ctx context.Context) ([]services.LikedVideo, error) {
	if m.LikedErr != nil {
		return nil, m.LikedErr
	}
	return m.Liked, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, title string) (*services.PlaylistResource, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.playlistSeq++
	id := fmt.Sprintf("PL-%d", m.playlistSeq)
	m.Ops = append(m.Ops, "create:"+id)
	return &services.PlaylistResource{ID: id, Etag: "etag-" + id, Title: title}, nil
}

func (m *MockService) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) (string, error) {
	if m.InsertErr != nil {
		return "", m.InsertErr
	}
	m.itemSeq++
	m.Ops = append(m.Ops, fmt.Sprintf("insert:%s:%s", playlistID, videoID))
	return fmt.Sprintf("item-%d", m.itemSeq), nil
}

func (m *MockService) DeletePlaylistItem(ctx context.Context, itemID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Ops = append(m.Ops, "delete:"+itemID)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
