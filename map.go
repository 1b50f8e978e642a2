// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package confstack

// Map is an ordinary map[string]any but implements the Source
// interface. It is most useful for defining in code defaults which
// lower precedence than every other source.
type Map map[string]any

// Load implements the [Source] interface.
func (m Map) Load() (map[string]any, error) {
	return m, nil
}
