package registry

import (
	"maps"
	"slices"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
	"memfmt/internal/summary"
)

// SummaryRegister maps target type names to summary factories.
type SummaryRegister struct {
	factories map[string]summary.Factory
}

var defaultRegister = NewSummaryRegister()

// GetSummaryRegister returns the global register holding the builtin summaries.
func GetSummaryRegister() *SummaryRegister {
	return defaultRegister
}

// NewSummaryRegister creates an empty register.
func NewSummaryRegister() *SummaryRegister {
	return &SummaryRegister{
		factories: make(map[string]summary.Factory),
	}
}

// RegisterSummaryTypeByName registers a factory for values of the named type.
// Qualified forms such as "struct string *" register the bare name.
func (r *SummaryRegister) RegisterSummaryTypeByName(name string, factory summary.Factory) dbg.Err {
	name = dbg.CanonicalTypeName(name)
	if factory == nil || name == "" {
		return dbg.ErrInvalidParamVal
	}
	if _, exists := r.factories[name]; exists {
		return dbg.ErrSumregNameRepeat
	}
	r.factories[name] = factory
	return dbg.OK
}

// GetFactoryByName retrieves the factory registered for a type name.
func (r *SummaryRegister) GetFactoryByName(name string) (summary.Factory, dbg.Err) {
	if f, exists := r.factories[dbg.CanonicalTypeName(name)]; exists {
		return f, dbg.OK
	}
	return nil, dbg.ErrSumregNameUnknown
}

// Names lists the registered type names in sorted order.
func (r *SummaryRegister) Names() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// NewProvider builds the provider for v chosen by its type name.
func (r *SummaryRegister) NewProvider(v dbg.Value, ctx *summary.Context) (summary.Provider, error) {
	if v == nil {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrInvalidParamVal, "nil value")
	}
	f, code := r.GetFactoryByName(v.TypeName())
	if code != dbg.OK {
		return nil, common.NewErrorMsg(dbg.ErrSevError, code, "no summary for type "+v.TypeName())
	}
	return f(v, ctx), nil
}
