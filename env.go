// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package confstack

import (
	"os"
	"strings"

	"github.com/z5labs/confstack/nest"
)

// defaultEnvDelimiter is chosen so ordinary identifier characters,
// including single underscores, remain literal in variable names.
const defaultEnvDelimiter = "__"

// EnvOption represents options for configuring the Env source.
type EnvOption func(*Env)

// EnvPrefix filters environment variables to those whose name begins
// with prefix. The prefix is stripped from the resulting keys.
func EnvPrefix(prefix string) EnvOption {
	return func(src *Env) {
		src.prefix = prefix
	}
}

// EnvDelimiter overrides the delimiter used for decoding nesting
// from variable names. The default is "__".
func EnvDelimiter(delimiter string) EnvOption {
	return func(src *Env) {
		src.delimiter = delimiter
	}
}

// Env represents a Source where its underlying values
// are extracted from environment variables.
type Env struct {
	environ   func() []string
	prefix    string
	delimiter string
}

// FromEnv returns a Source which will load its config from the
// environment variables available to the current process. Variable
// names are lowercased after prefix stripping and nesting is decoded
// from delimiter occurrences, so with the prefix "MYAPP_" the variable
// MYAPP_DATABASE__HOST sets the value at database.host.
func FromEnv(opts ...EnvOption) Env {
	src := Env{
		environ:   os.Environ,
		delimiter: defaultEnvDelimiter,
	}
	for _, opt := range opts {
		opt(&src)
	}
	return src
}

// Load implements the [Source] interface.
func (src Env) Load() (map[string]any, error) {
	flat := make(map[string]any)
	for _, pair := range src.environ() {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if !strings.HasPrefix(k, src.prefix) {
			continue
		}

		k = strings.ToLower(strings.TrimPrefix(k, src.prefix))
		flat[k] = v
	}
	return nest.Nest(flat, src.delimiter)
}
