package summary

import (
	"fmt"

	"memfmt/internal/dbg"
)

// StringBuilderSummary renders a string_builder from its length and the
// bytes of the string its outBuffer points to.
func StringBuilderSummary(v dbg.Value, ctx *Context) (out string) {
	ctx = orDefault(ctx)
	defer recoverTo(ctx, dbg.BuiltinSumStringBuilder, &out, ErrorReadingMemory)

	length := dbg.UnsignedOr(v, "length", 0)
	buffer := outBufferValue(v)

	if length == 0 || buffer == 0 {
		return EmptyBuilder
	}

	text, err := ctx.readText(v.Process(), dbg.Addr(buffer), length)
	if err != nil {
		ctx.logger().Debug("string_builder read failed", "name", v.Name(), "addr", dbg.Addr(buffer), "length", length, "err", err)
		return ErrorReadingMemory
	}
	return fmt.Sprintf("length: %d \"%s\"", length, text)
}

// outBufferValue is outBuffer->value, or 0 when outBuffer is null or unreadable.
func outBufferValue(v dbg.Value) uint64 {
	if v == nil {
		return 0
	}
	out, err := v.Child("outBuffer")
	if err != nil || out == nil {
		return 0
	}
	return dbg.UnsignedOr(out, "value", 0)
}

// StringBuilderProvider adapts StringBuilderSummary to the provider protocol.
type StringBuilderProvider struct {
	value dbg.Value
	ctx   *Context
}

// NewStringBuilderProvider wraps v. A nil ctx uses NewContext defaults.
func NewStringBuilderProvider(v dbg.Value, ctx *Context) *StringBuilderProvider {
	return &StringBuilderProvider{value: v, ctx: orDefault(ctx)}
}

// Update does nothing; the builder is read when rendered.
func (p *StringBuilderProvider) Update() {}

// Summary reads and renders the builder.
func (p *StringBuilderProvider) Summary() string {
	return StringBuilderSummary(p.value, p.ctx)
}
