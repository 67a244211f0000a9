package commands

import (
	"context"
	"fmt"

	"github.com/bnrubin/discord-logbot/internal/app"
	configinfra "github.com/bnrubin/discord-logbot/internal/infrastructure/config"
)

// Deps builds the container on first use so that commands which only read
// configuration never open the record store.
type Deps struct {
	Options   app.Options
	container *app.Container
}

// Container returns the shared container, building it if needed.
func (d *Deps) Container(ctx context.Context) (*app.Container, error) {
	if d.container != nil {
		return d.container, nil
	}
	container, err := app.BuildContainer(ctx, d.Options)
	if err != nil {
		return nil, err
	}
	d.container = container
	return container, nil
}

// ConfigLoader returns a loader honouring the --config and --env-file flags.
func (d *Deps) ConfigLoader() *configinfra.FileLoader {
	if d.container != nil && d.container.ConfigLoader != nil {
		return d.container.ConfigLoader
	}
	return configinfra.NewFileLoader(d.Options.ConfigPath, d.Options.EnvFile)
}

// Close releases whatever the container opened.
func (d *Deps) Close() error {
	if d.container == nil {
		return nil
	}
	if err := d.container.Close(); err != nil {
		return fmt.Errorf("close container: %w", err)
	}
	d.container = nil
	return nil
}
