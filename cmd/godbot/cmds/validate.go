package cmds

import (
	"context"

	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/go-go-golems/godbot/pkg/bot"
	"github.com/pkg/errors"
)

type ValidateConfigSettings struct {
	Files []string `glazed.parameter:"files"`
}

type ValidateConfigCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = (*ValidateConfigCommand)(nil)

func NewValidateConfigCommand() (*ValidateConfigCommand, error) {
	glazedParameterLayer, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, errors.Wrap(err, "could not create glazed parameter layer")
	}

	return &ValidateConfigCommand{
		CommandDescription: cmds.NewCommandDescription(
			"validate",
			cmds.WithShort("Check that bot config files parse (default: --bot-config)"),
			cmds.WithArguments(
				parameters.NewParameterDefinition(
					"files",
					parameters.ParameterTypeStringList,
					parameters.WithHelp("Bot config files to check"),
				),
			),
			cmds.WithLayersList(glazedParameterLayer),
		),
	}, nil
}

func (c *ValidateConfigCommand) RunIntoGlazeProcessor(
	ctx context.Context,
	parsedLayers *layers.ParsedLayers,
	gp middlewares.Processor,
) error {
	s := &ValidateConfigSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, s); err != nil {
		return err
	}

	files := s.Files
	if len(files) == 0 {
		path, err := botConfigPath(nil)
		if err != nil {
			return err
		}
		files = []string{path}
	}

	rows, failed := validateConfigFiles(files)
	for _, row := range rows {
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}

	if failed > 0 {
		return errors.Errorf("%d of %d bot configs are invalid", failed, len(files))
	}
	return nil
}

// validateConfigFiles returns one row per file and the number of files that
// failed to load.
func validateConfigFiles(paths []string) ([]types.Row, int) {
	ret := make([]types.Row, 0, len(paths))
	failed := 0
	for _, path := range paths {
		cfg, err := bot.LoadConfigFile(path)
		if err != nil {
			failed++
			ret = append(ret, types.NewRow(
				types.MRP("file", path),
				types.MRP("valid", false),
				types.MRP("botname", ""),
				types.MRP("seed_turns", 0),
				types.MRP("error", err.Error()),
			))
			continue
		}
		ret = append(ret, types.NewRow(
			types.MRP("file", path),
			types.MRP("valid", true),
			types.MRP("botname", cfg.Botname),
			types.MRP("seed_turns", cfg.Seed.Len()),
			types.MRP("error", ""),
		))
	}
	return ret, failed
}
