// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package confstack

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/z5labs/confstack/merge"
	"github.com/z5labs/confstack/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceFunc func() (map[string]any, error)

func (f sourceFunc) Load() (map[string]any, error) {
	return f()
}

type readFunc func([]byte) (int, error)

func (f readFunc) Read(b []byte) (int, error) {
	return f(b)
}

func TestRead(t *testing.T) {
	t.Run("will return a Manager", func(t *testing.T) {
		t.Run("if no sources are given", func(t *testing.T) {
			m, err := Read()
			if !assert.Nil(t, err) {
				return
			}
			if !assert.NotNil(t, m) {
				return
			}
			assert.Empty(t, m.store)
		})

		t.Run("if later sources override earlier sources", func(t *testing.T) {
			m, err := Read(
				Map{
					"http": map[string]any{
						"host": "example.com",
						"port": 8080,
					},
				},
				Map{
					"http": map[string]any{
						"port": 9090,
					},
				},
			)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, map[string]any{
				"http": map[string]any{
					"host": "example.com",
					"port": 9090,
				},
			}, m.store)
		})

		t.Run("if sources contribute sequences under the same key", func(t *testing.T) {
			m, err := Read(
				Map{"hosts": []any{"a"}},
				Map{"hosts": []any{"b", "c"}},
			)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, map[string]any{
				"hosts": []any{"a", "b", "c"},
			}, m.store)
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if a source fails to load", func(t *testing.T) {
			loadErr := errors.New("failed to load")
			src := sourceFunc(func() (map[string]any, error) {
				return nil, loadErr
			})

			_, err := Read(src)
			if !assert.ErrorIs(t, err, loadErr) {
				return
			}
		})

		t.Run("if two sources conflict on value class", func(t *testing.T) {
			_, err := Read(
				Map{"a": 1},
				Map{"a": []any{1, 2}},
			)

			var cerr merge.TypeConflictError
			if !assert.ErrorAs(t, err, &cerr) {
				return
			}
			assert.Equal(t, "a", cerr.Path)
			assert.Equal(t, value.Scalar, cerr.Target)
			assert.Equal(t, value.Sequence, cerr.Source)
		})
	})
}

func TestManager_Unmarshal(t *testing.T) {
	t.Run("will unmarshal the merged config", func(t *testing.T) {
		t.Run("if the target fields match via the config tag", func(t *testing.T) {
			type httpConfig struct {
				Host string `config:"host"`
				Port int    `config:"port"`
			}
			type appConfig struct {
				Http httpConfig `config:"http"`
			}

			m, err := Read(
				Map{
					"http": map[string]any{
						"host": "example.com",
						"port": 8080,
					},
				},
			)
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, "example.com", cfg.Http.Host)
			assert.Equal(t, 8080, cfg.Http.Port)
		})

		t.Run("if a string value targets a numeric field", func(t *testing.T) {
			type appConfig struct {
				Port int `config:"port"`
			}

			m, err := Read(Map{"port": "8080"})
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, 8080, cfg.Port)
		})

		t.Run("if a string value targets a time.Duration field", func(t *testing.T) {
			type appConfig struct {
				Timeout time.Duration `config:"timeout"`
			}

			m, err := Read(Map{"timeout": "5s"})
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, 5*time.Second, cfg.Timeout)
		})

		t.Run("if a string value targets a encoding.TextUnmarshaler field", func(t *testing.T) {
			type appConfig struct {
				Level slog.Level `config:"level"`
			}

			m, err := Read(Map{"level": "WARN"})
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, slog.LevelWarn, cfg.Level)
		})
	})
}

func TestManager_LogValue(t *testing.T) {
	t.Run("will render the config as flattened attributes", func(t *testing.T) {
		m, err := Read(
			Map{
				"http": map[string]any{
					"host": "example.com",
					"port": 8080,
				},
				"debug": true,
			},
		)
		require.Nil(t, err)

		var buf bytes.Buffer
		log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.MessageKey {
					return slog.Attr{}
				}
				return a
			},
		}))
		log.Info("loaded config", slog.Any("config", m))

		var record map[string]any
		require.Nil(t, json.Unmarshal(buf.Bytes(), &record))
		require.Equal(t, map[string]any{
			"config": map[string]any{
				"debug":     true,
				"http.host": "example.com",
				"http.port": float64(8080),
			},
		}, record)
	})
}

func TestMap_Load(t *testing.T) {
	t.Run("will return the underlying mapping", func(t *testing.T) {
		m := Map{"a": 1}

		loaded, err := m.Load()
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, map[string]any{"a": 1}, loaded)
	})
}

func TestPrecedenceFold(t *testing.T) {
	t.Run("will layer defaults, file, env and flags in order", func(t *testing.T) {
		env := Env{
			environ: func() []string {
				return []string{
					"MYAPP_HTTP__PORT=9090",
					"MYAPP_LOG__LEVEL=info",
					"UNRELATED=x",
				}
			},
			prefix:    "MYAPP_",
			delimiter: "__",
		}

		m, err := Read(
			Map{
				"http": map[string]any{
					"host": "localhost",
					"port": 8080,
				},
				"log": map[string]any{"level": "error"},
			},
			FromYaml(strings.NewReader("http:\n  host: example.com\n")),
			env,
		)
		require.Nil(t, err)
		require.Equal(t, map[string]any{
			"http": map[string]any{
				"host": "example.com",
				"port": "9090",
			},
			"log": map[string]any{"level": "info"},
		}, m.store)
	})
}
