package registry

import (
	"memfmt/internal/dbg"
	"memfmt/internal/summary"
)

// init runs on package load to register the standard summaries.
func init() {
	reg := GetSummaryRegister()
	_ = reg.RegisterSummaryTypeByName(dbg.BuiltinSumVolume, func(v dbg.Value, ctx *summary.Context) summary.Provider {
		return summary.NewVolumeProvider(v, ctx)
	})
	_ = reg.RegisterSummaryTypeByName(dbg.BuiltinSumString, func(v dbg.Value, ctx *summary.Context) summary.Provider {
		return summary.NewStringProvider(v, ctx)
	})
	_ = reg.RegisterSummaryTypeByName(dbg.BuiltinSumStringBuilder, func(v dbg.Value, ctx *summary.Context) summary.Provider {
		return summary.NewStringBuilderProvider(v, ctx)
	})
}
