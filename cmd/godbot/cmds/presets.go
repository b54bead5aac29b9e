package cmds

import (
	"context"

	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/go-go-golems/godbot/pkg/bot"
)

type PresetsCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = (*PresetsCommand)(nil)

func NewPresetsCommand() (*PresetsCommand, error) {
	glazedParameterLayer, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	return &PresetsCommand{
		CommandDescription: cmds.NewCommandDescription(
			"presets",
			cmds.WithShort("List the built-in personas"),
			cmds.WithLayersList(glazedParameterLayer),
		),
	}, nil
}

func (c *PresetsCommand) RunIntoGlazeProcessor(
	ctx context.Context,
	parsedLayers *layers.ParsedLayers,
	gp middlewares.Processor,
) error {
	rows, err := presetRows()
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func presetRows() ([]types.Row, error) {
	ret := []types.Row{}
	for _, name := range bot.PresetNames() {
		cfg, err := bot.Preset(name)
		if err != nil {
			return nil, err
		}
		ret = append(ret, types.NewRow(
			types.MRP("preset", name),
			types.MRP("botname", cfg.Botname),
			types.MRP("seed_turns", cfg.Seed.Len()),
			types.MRP("context", cfg.Context),
		))
	}
	return ret, nil
}
