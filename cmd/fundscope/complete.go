package main

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/ternarybob/fundscope/internal/report"
)

// completion describes the command tree for shell completion.
// Enable with: complete -C fundscope fundscope
func completion() *complete.Command {
	configFlags := map[string]complete.Predictor{
		"config": predict.Files("*.toml"),
		"c":      predict.Files("*.toml"),
	}

	withConfig := func(extra map[string]complete.Predictor) map[string]complete.Predictor {
		flags := make(map[string]complete.Predictor, len(configFlags)+len(extra))
		for k, v := range configFlags {
			flags[k] = v
		}
		for k, v := range extra {
			flags[k] = v
		}
		return flags
	}

	return &complete.Command{
		Sub: map[string]*complete.Command{
			"serve": {
				Flags: withConfig(map[string]complete.Predictor{
					"port": predict.Nothing,
					"p":    predict.Nothing,
					"host": predict.Nothing,
				}),
			},
			"analyze": {
				Flags: withConfig(map[string]complete.Predictor{
					"format": predict.Set(report.Formats()),
					"o":      predict.Files("*"),
					"v":      predict.Nothing,
				}),
			},
			"normalize": {
				Flags: withConfig(map[string]complete.Predictor{
					"v": predict.Nothing,
				}),
			},
			"version": {
				Flags: map[string]complete.Predictor{
					"full": predict.Nothing,
				},
			},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}
