package main

import (
	"fmt"
	"os"

	"inboxpilot/internal/api"
	"inboxpilot/internal/config"
	"inboxpilot/internal/dataset"
	"inboxpilot/internal/session"
	"inboxpilot/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "inboxpilot:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	if cfg.DebugLog != "" {
		f, err := tea.LogToFile(cfg.DebugLog, "debug")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
	}

	sess, err := session.Open(cfg.SessionDB)
	if err != nil {
		return err
	}
	defer sess.Close()

	// A stable per-install id, minted on first run and kept across logouts
	// of the same install (Clear wipes it; a fresh one is minted next run).
	if _, ok := sess.Get(session.KeyClientID); !ok {
		if err := sess.Set(session.KeyClientID, uuid.NewString()); err != nil {
			return err
		}
	}

	client := api.NewClient(cfg.ServerURL, sess)
	datasets := dataset.New(client, cfg.DownloadDir)

	p := tea.NewProgram(
		ui.NewModel(cfg, client, sess, datasets),
		tea.WithAltScreen(),
	)

	// A failed token refresh anywhere in the gateway routes back to login.
	client.OnAuthExpired = func() {
		p.Send(ui.AuthExpiredMsg{})
	}

	_, err = p.Run()
	return err
}
