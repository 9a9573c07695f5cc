package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/toplist/internal/shared"
	"github.com/desertthunder/toplist/internal/ui"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration to --config.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("%s %s\n", ui.Styles.OK("✓"), "Configuration written to "+path)
	r.writePlain("%s\n", ui.Styles.Help("Set spotify.client_id and spotify.client_secret, or export SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET."))
	return nil
}

// ConfigCheck validates the configuration the server would start with.
func (r *Runner) ConfigCheck(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		r.writePlain("%s %v\n", ui.Styles.Err("✗"), err)
		return err
	}

	authHost := config.Spotify.AuthURL
	if u, err := url.Parse(config.Spotify.AuthURL); err == nil && u.Host != "" {
		authHost = u.Host
	}

	r.writePlain("%s Configuration is valid\n", ui.Styles.OK("✓"))
	r.writePlain("  Authorize at: %s\n", authHost)
	r.writePlain("  Redirect URI: %s\n", config.Spotify.RedirectURI)
	r.writePlain("  Showing:      top %d, %s\n", config.Spotify.TopLimit, config.Spotify.TimeRange)
	r.writePlain("  Sessions:     %s\n", describeStore(config))
	return nil
}

func describeStore(config *shared.Config) string {
	if config.Session.Store == "memory" {
		return "memory"
	}
	return fmt.Sprintf("%s (%s)", config.Session.Store, config.Session.Path)
}
