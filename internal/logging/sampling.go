// internal/logging/sampling.go
package logging

import (
	"sort"

	"go.uber.org/zap/zapcore"
)

// newSampledCore applies cfg.Levels: each listed level below Error gets its
// own sampler, other levels pass through untouched. Error and above are never
// sampled, so a failing store is always visible.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled || len(cfg.Levels) == 0 {
		return core
	}

	levels := make([]zapcore.Level, 0, len(cfg.Levels))
	for lvl := range cfg.Levels {
		if lvl < zapcore.ErrorLevel {
			levels = append(levels, lvl)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	sampled := make(map[zapcore.Level]bool, len(levels))
	cores := make([]zapcore.Core, 0, len(levels)+1)
	for _, lvl := range levels {
		rate := cfg.Levels[lvl]
		sampled[lvl] = true
		cores = append(cores, zapcore.NewSamplerWithOptions(
			onlyLevels(core, lvl),
			cfg.Tick.Duration(),
			rate.Initial,
			rate.Thereafter,
		))
	}
	cores = append(cores, &levelSetCore{
		Core:  core,
		allow: func(l zapcore.Level) bool { return !sampled[l] },
	})

	return zapcore.NewTee(cores...)
}

// onlyLevels restricts core to the given levels.
func onlyLevels(core zapcore.Core, levels ...zapcore.Level) zapcore.Core {
	return &levelSetCore{
		Core: core,
		allow: func(l zapcore.Level) bool {
			for _, want := range levels {
				if l == want {
					return true
				}
			}
			return false
		},
	}
}

// levelSetCore drops entries whose level allow rejects.
type levelSetCore struct {
	zapcore.Core
	allow func(zapcore.Level) bool
}

func (c *levelSetCore) Enabled(lvl zapcore.Level) bool {
	return c.allow(lvl) && c.Core.Enabled(lvl)
}

func (c *levelSetCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c *levelSetCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelSetCore{Core: c.Core.With(fields), allow: c.allow}
}
