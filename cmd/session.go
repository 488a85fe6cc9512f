package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/marcus/rolo/internal/config"
	"github.com/marcus/rolo/internal/controller"
	"github.com/marcus/rolo/internal/storeclient"
)

// loadSettings resolves the client settings, letting --server win over the
// config file and environment.
func loadSettings() (config.Settings, error) {
	dir, err := config.Dir()
	if err != nil {
		return config.Settings{}, err
	}
	s, err := config.LoadSettings(dir)
	if err != nil {
		return config.Settings{}, &configError{err: err}
	}
	if serverURL != "" {
		s.ServerURL = serverURL
	}
	return s, nil
}

// newController builds a controller wired to the configured store. It does
// not fetch.
func newController(s config.Settings) *controller.Controller {
	client := storeclient.New(s.ServerURL, s.Timeout)
	return controller.New(client,
		controller.WithLogger(slog.Default()),
		controller.WithCollation(s.Collation),
		controller.WithActivityWindow(s.ActivityWindow),
	)
}

// openController loads settings, builds a controller and performs the
// initial fetch of contacts and activity. Only a failed contacts fetch is
// fatal; without the activity feed the command runs with an empty feed.
func openController(ctx context.Context) (*controller.Controller, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	ctrl := newController(s)
	if err := ctrl.Refresh(ctx); err != nil {
		var rerr *controller.RefreshError
		if !errors.As(err, &rerr) || rerr.Contacts != nil {
			return nil, err
		}
		slog.Warn("activity feed unavailable", "err", rerr.Activity)
	}
	return ctrl, nil
}
