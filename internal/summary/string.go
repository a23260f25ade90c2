package summary

import (
	"fmt"

	"memfmt/internal/dbg"
)

// StringSummary renders a string value from its value and length members.
// Each call reads the target afresh.
func StringSummary(v dbg.Value, ctx *Context) (out string) {
	ctx = orDefault(ctx)
	defer recoverTo(ctx, dbg.BuiltinSumString, &out, ErrorReadingMemory)

	value := dbg.UnsignedOr(v, "value", 0)
	length := dbg.UnsignedOr(v, "length", 0)

	if value == 0 {
		return NullString
	}
	if length == 0 {
		return EmptyString
	}

	text, err := ctx.readText(v.Process(), dbg.Addr(value), length)
	if err != nil {
		ctx.logger().Debug("string read failed", "name", v.Name(), "addr", dbg.Addr(value), "length", length, "err", err)
		return ErrorReadingMemory
	}
	return fmt.Sprintf("(length: %d) \"%s\"", length, text)
}

// StringProvider adapts StringSummary to the provider protocol.
type StringProvider struct {
	value dbg.Value
	ctx   *Context
}

// NewStringProvider wraps v. A nil ctx uses NewContext defaults.
func NewStringProvider(v dbg.Value, ctx *Context) *StringProvider {
	return &StringProvider{value: v, ctx: orDefault(ctx)}
}

// Update does nothing; strings are read when rendered.
func (p *StringProvider) Update() {}

// Summary reads and renders the string.
func (p *StringProvider) Summary() string {
	return StringSummary(p.value, p.ctx)
}
