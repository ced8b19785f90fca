// Package dataset moves training data between the local filesystem and the
// backend: multipart upload of a prepared dataset file, and download of the
// current server-side dataset to a timestamped local file.
package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inboxpilot/internal/api"
	"inboxpilot/internal/domain"
)

type Manager struct {
	client      *api.Client
	downloadDir string
}

func New(client *api.Client, downloadDir string) *Manager {
	return &Manager{client: client, downloadDir: strings.TrimSpace(downloadDir)}
}

// Upload posts a local dataset file for the given user.
func (m *Manager) Upload(ctx context.Context, username, path string) (domain.DatasetResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.DatasetResult{}, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	return m.client.UploadDataset(ctx, username, filepath.Base(path), f)
}

// Download fetches the current dataset and writes it next to the user's
// other downloads. It returns the written path.
func (m *Manager) Download(ctx context.Context, username string) (string, error) {
	data, err := m.client.DownloadDataset(ctx, username)
	if err != nil {
		return "", err
	}

	dir, err := m.outputDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	path := filepath.Join(dir, fileName(username, time.Now()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write dataset file: %w", err)
	}
	return path, nil
}

func (m *Manager) outputDir() (string, error) {
	if m.downloadDir != "" {
		if filepath.IsAbs(m.downloadDir) {
			return m.downloadDir, nil
		}
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve cwd: %w", err)
		}
		return filepath.Join(cwd, m.downloadDir), nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		downloads := filepath.Join(home, "Downloads")
		if st, statErr := os.Stat(downloads); statErr == nil && st.IsDir() {
			return downloads, nil
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve cwd: %w", err)
	}
	return cwd, nil
}

func fileName(username string, now time.Time) string {
	user := strings.TrimSpace(username)
	if user == "" {
		user = "dataset"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return replacer.Replace(user) + "_dataset_" + now.Format("20060102_150405") + ".json"
}
