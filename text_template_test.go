// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package confstack

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextTemplateRenderer_Read(t *testing.T) {
	t.Run("will render the template", func(t *testing.T) {
		t.Run("if template functions are registered", func(t *testing.T) {
			r := strings.NewReader(`host: {{ env "HOST" }}`)

			ttr := RenderTextTemplate(
				r,
				TemplateFunc("env", func(key string) string {
					return "example.com"
				}),
			)

			b, err := io.ReadAll(ttr)
			require.Nil(t, err)
			require.Equal(t, "host: example.com", string(b))
		})

		t.Run("if custom action delimiters are configured", func(t *testing.T) {
			r := strings.NewReader(`host: [[ hello ]]`)

			ttr := RenderTextTemplate(
				r,
				TemplateDelims("[[", "]]"),
				TemplateFunc("hello", func() string {
					return "world"
				}),
			)

			b, err := io.ReadAll(ttr)
			require.Nil(t, err)
			require.Equal(t, "host: world", string(b))
		})

		t.Run("if the rendered template is read as a format source", func(t *testing.T) {
			r := strings.NewReader(`port: {{ port }}`)

			src := FromYaml(RenderTextTemplate(
				r,
				TemplateFunc("port", func() int {
					return 8080
				}),
			))

			m, err := src.Load()
			require.Nil(t, err)
			require.Equal(t, map[string]any{"port": 8080}, m)
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying io.Reader fails", func(t *testing.T) {
			readErr := errors.New("failed to read")
			r := readFunc(func(b []byte) (int, error) {
				return 0, readErr
			})

			ttr := RenderTextTemplate(r)
			_, err := io.ReadAll(ttr)
			if !assert.ErrorIs(t, err, readErr) {
				return
			}
		})

		t.Run("if the underlying io.Reader contains an invalid text/template", func(t *testing.T) {
			r := strings.NewReader(`{{ hello`)

			ttr := RenderTextTemplate(r)
			_, err := io.ReadAll(ttr)

			var ierr TextTemplateParseError
			if !assert.ErrorAs(t, err, &ierr) {
				return
			}
			if !assert.NotEmpty(t, ierr.Error()) {
				return
			}
			if !assert.Error(t, ierr.Unwrap()) {
				return
			}
		})

		t.Run("if the parsed text/template fails to execute", func(t *testing.T) {
			r := strings.NewReader(`{{ fail }}`)

			ttr := RenderTextTemplate(
				r,
				TemplateFunc("fail", func() (string, error) {
					return "", errors.New("ahhhh")
				}),
			)
			_, err := io.ReadAll(ttr)

			var ierr TextTemplateExecError
			if !assert.ErrorAs(t, err, &ierr) {
				return
			}
			if !assert.NotEmpty(t, ierr.Error()) {
				return
			}
			if !assert.Error(t, ierr.Unwrap()) {
				return
			}
		})
	})
}
