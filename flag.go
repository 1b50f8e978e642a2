// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package confstack

import (
	"github.com/z5labs/confstack/nest"

	"github.com/spf13/pflag"
)

// defaultFlagDelimiter matches the conventional dotted naming of
// nested flags, e.g. --database.host.
const defaultFlagDelimiter = "."

// FlagOption represents options for configuring the FlagSet source.
type FlagOption func(*FlagSet)

// FlagDelimiter overrides the delimiter used for decoding nesting
// from flag names. The default is ".".
func FlagDelimiter(delimiter string) FlagOption {
	return func(src *FlagSet) {
		src.delimiter = delimiter
	}
}

// FlagSet represents a Source where its underlying values are
// extracted from command line flags.
type FlagSet struct {
	flags     *pflag.FlagSet
	delimiter string
}

// FromFlags returns a Source which will load its config from the flags
// which were explicitly set on the given flag set. Unset flags do not
// contribute values, so their defaults never shadow lower precedence
// sources. Flag values are carried as strings; typed conversion is
// deferred to [Manager.Unmarshal].
func FromFlags(flags *pflag.FlagSet, opts ...FlagOption) FlagSet {
	src := FlagSet{
		flags:     flags,
		delimiter: defaultFlagDelimiter,
	}
	for _, opt := range opts {
		opt(&src)
	}
	return src
}

// Load implements the [Source] interface.
func (src FlagSet) Load() (map[string]any, error) {
	flat := make(map[string]any)
	src.flags.Visit(func(f *pflag.Flag) {
		flat[f.Name] = f.Value.String()
	})
	return nest.Nest(flat, src.delimiter)
}
