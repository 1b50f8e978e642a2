// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package confstack

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToml_Load(t *testing.T) {
	t.Run("will return a nested mapping", func(t *testing.T) {
		t.Run("if the io.Reader contains valid TOML", func(t *testing.T) {
			src := FromToml(strings.NewReader(`
[http]
host = "example.com"
port = 8080
`))

			m, err := src.Load()
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, map[string]any{
				"http": map[string]any{
					"host": "example.com",
					"port": int64(8080),
				},
			}, m)
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying io.Reader fails", func(t *testing.T) {
			readErr := errors.New("failed to read")
			r := readFunc(func(b []byte) (int, error) {
				return 0, readErr
			})

			src := FromToml(r)
			_, err := src.Load()
			if !assert.ErrorIs(t, err, readErr) {
				return
			}
		})

		t.Run("if the io.Reader contains invalid TOML", func(t *testing.T) {
			src := FromToml(strings.NewReader(`[http`))

			_, err := src.Load()

			var ierr InvalidTomlError
			if !assert.ErrorAs(t, err, &ierr) {
				return
			}
			if !assert.NotEmpty(t, ierr.Error()) {
				return
			}
			if !assert.NotNil(t, ierr.Unwrap()) {
				return
			}
		})
	})
}
