// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package confstack

import (
	"log/slog"
)

// OptionalOption represents options for configuring the Optional source.
type OptionalOption func(*OptionalSource)

// OptionalLogHandler overrides the slog.Handler used for reporting
// skipped sources. The default is the handler of slog.Default.
func OptionalLogHandler(h slog.Handler) OptionalOption {
	return func(src *OptionalSource) {
		src.log = slog.New(h)
	}
}

// OptionalSource wraps a Source whose absence is tolerable, e.g. a
// config file which may not exist on every host.
type OptionalSource struct {
	src Source
	log *slog.Logger
}

// Optional returns a Source which loads its config from src but, if
// src fails, logs a warning and contributes an empty mapping instead
// of failing the whole [Read]. The caller keeps the policy decision of
// which sources are allowed to be missing.
func Optional(src Source, opts ...OptionalOption) OptionalSource {
	osrc := OptionalSource{
		src: src,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(&osrc)
	}
	return osrc
}

// Load implements the [Source] interface.
func (src OptionalSource) Load() (map[string]any, error) {
	m, err := src.src.Load()
	if err != nil {
		src.log.Warn(
			"skipping config source",
			slog.String("error", err.Error()),
		)
		return map[string]any{}, nil
	}
	return m, nil
}
