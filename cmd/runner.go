package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"musebox/internal/engine"
	"musebox/internal/formatter"
	"musebox/internal/models"
	"musebox/internal/providers"
	"musebox/internal/repositories"
	"musebox/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// openDatabase opens and configures the library database from config.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

// Setup initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("init-config") {
		path := cmd.String("config")
		if err := shared.CreateConfigFile(path); err != nil {
			return err
		}
		r.logger.Info("config file created", "path", path)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.logger.Info("database ready", "path", r.config.Database.Path)
	return nil
}

// Sync runs one provider sync to completion, streaming statuses to the output.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	args, err := startArgsFromFlags(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	reporter := engine.NewChannelReporter(64)
	coordinator := engine.NewCoordinator(engine.CoordinatorOpts{
		Factory:  providers.NewRegistry(r.config.Providers),
		Library:  engine.NewSQLStore(db),
		Reporter: reporter,
		Logger:   r.logger,
		Sync:     r.config.Sync,
	})

	coordinator.RequestSync(args, cmd.Bool("force"))

	for {
		select {
		case event := <-reporter.Events():
			fmt.Fprintln(r.output, formatter.Status(event.ProviderID, event.Status))
			if terminalStatus(event.Status) {
				return nil
			}
		case <-ctx.Done():
			coordinator.RequestStop(args.Provider().ID)
			return ctx.Err()
		}
	}
}

// Browse lists the root folders of a file provider, for picking a sync root.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	providerID := cmd.String("provider")
	if providerID == "" {
		return fmt.Errorf("%w: --provider", shared.ErrMissingArgument)
	}

	info := models.ProviderInfo{ID: providerID, Name: providerID}
	auth := models.Auth{Token: oauth2.Token{AccessToken: cmd.String("token"), Expiry: time.Now().Add(time.Hour)}}

	registry := providers.NewRegistry(r.config.Providers)
	provider, err := registry.FileProvider(ctx, info, auth)
	if err != nil {
		return err
	}

	folders, err := provider.ListRoot(ctx)
	if err != nil {
		return err
	}

	_, err = r.output.Write(formatter.FoldersToText(folders))
	return err
}

// Library lists synced albums, optionally as a CSV track export.
func (r *Runner) Library(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Bool("csv") {
		tracks, err := repositories.NewTrackRepository(db).Filtered(ctx, map[string]any{}, 0)
		if err != nil {
			return err
		}
		data, err := formatter.TracksToCSV(tracks)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	criteria := map[string]any{}
	if providerID := cmd.String("provider"); providerID != "" {
		criteria["provider_id"] = providerID
	}

	albums, err := repositories.NewAlbumRepository(db).Filtered(ctx, criteria, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	_, err = r.output.Write(formatter.AlbumsToText(albums))
	return err
}

// terminalStatus reports whether a status ends the wait for a sync outcome.
func terminalStatus(status models.Status) bool {
	switch status.(type) {
	case models.Synced, models.SyncSkipped, models.Errored, models.Stopped:
		return true
	default:
		return false
	}
}

// startArgsFromFlags builds the session StartArgs from CLI flags.
func startArgsFromFlags(cmd *cli.Command) (models.StartArgs, error) {
	providerID := cmd.String("provider")
	if providerID == "" {
		return nil, fmt.Errorf("%w: --provider", shared.ErrMissingArgument)
	}

	info := models.ProviderInfo{ID: providerID, Name: cmd.String("name")}
	if info.Name == "" {
		info.Name = providerID
	}

	expiry := time.Now().Add(time.Hour)
	if raw := cmd.String("token-expiry"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: --token-expiry: %v", shared.ErrInvalidInput, err)
		}
		expiry = parsed
	}
	auth := models.Auth{Token: oauth2.Token{AccessToken: cmd.String("token"), Expiry: expiry}}

	var lastSynced *time.Time
	if raw := cmd.String("last-synced"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: --last-synced: %v", shared.ErrInvalidInput, err)
		}
		lastSynced = &parsed
	}

	switch kind := cmd.String("kind"); kind {
	case "file":
		root := cmd.String("root-folder")
		if root == "" {
			return nil, fmt.Errorf("%w: --root-folder", shared.ErrMissingArgument)
		}
		return models.FileStartArgs{
			Info:       info,
			Auth:       auth,
			RootFolder: models.Folder{ID: root, Name: "root"},
			LastSynced: lastSynced,
		}, nil
	case "api":
		return models.APIStartArgs{Info: info, Auth: auth, LastSynced: lastSynced}, nil
	default:
		return nil, fmt.Errorf("%w: --kind must be file or api, got %q", shared.ErrInvalidInput, kind)
	}
}
