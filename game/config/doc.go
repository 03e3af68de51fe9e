// Package config loads Decodoku puzzle presets.
//
// A preset is a JSON file in the configs directory naming the error
// probability p, the modulus k and the lattice size L:
//
//	{
//	  "name": "classic",
//	  "description": "Qubit puzzle on a 10x10 lattice",
//	  "p": 0.1,
//	  "k": 2,
//	  "l": 10
//	}
//
// An optional "seed" makes every episode of sessions using the preset
// reproducible. The file name without extension is the config ID used when
// creating sessions.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	preset, err := manager.LoadConfig("qudit")
//	configs, err := manager.ListConfigs()
//
// The default preset is classic when present, otherwise the first valid file,
// otherwise a built-in qubit preset.
package config
