// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"fmt"
	"os"

	"github.com/z5labs/confstack"
)

type httpConfig struct {
	Host string `config:"host"`
	Port int    `config:"port"`
}

type config struct {
	Http httpConfig `config:"http"`
}

func main() {
	m, err := confstack.Read(
		confstack.Map{
			"http": map[string]any{
				"host": "localhost",
				"port": 8080,
			},
		},
		confstack.Optional(confstack.FromYaml(
			confstack.NewFileReader(os.DirFS("."), "config.yaml"),
		)),
		confstack.FromEnv(confstack.EnvPrefix("SIMPLE_YAML_")),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var cfg config
	err = m.Unmarshal(&cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("listening on %s:%d\n", cfg.Http.Host, cfg.Http.Port)
}
