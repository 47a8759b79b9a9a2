package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/handiism/vinyl-vault/internal/config"
)

func runConfig(_ context.Context, e *env, args []string) error {
	if len(args) == 0 || args[0] != "init" {
		return usagef("the only config subcommand is `config init`")
	}

	fs := newFlagSet(e, "config init", "[-force] [-api url]")
	force := fs.Bool("force", false, "Overwrite an existing file")
	api := fs.String("api", "", "API base URL to write")
	if _, err := parse(fs, args[1:]); err != nil {
		return err
	}

	path := e.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists, use -force to overwrite", path)
	}

	settings := config.DefaultSettings()
	if *api != "" {
		settings.APIURL = *api
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := settings.Save(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	e.printf("✅ Wrote %s\n", path)
	return nil
}
