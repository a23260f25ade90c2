package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
	"memfmt/internal/summary"
)

type namedValue struct {
	dbg.Value
	typeName string
}

func (v namedValue) TypeName() string {
	return v.typeName
}

func TestBuiltins(t *testing.T) {
	reg := GetSummaryRegister()
	want := []string{"string", "string_builder", "volume"}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Errorf("builtin names mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		typeName string
		check    func(summary.Provider) bool
	}{
		{"volume", func(p summary.Provider) bool { _, ok := p.(*summary.VolumeProvider); return ok }},
		{"struct string", func(p summary.Provider) bool { _, ok := p.(*summary.StringProvider); return ok }},
		{"string_builder *", func(p summary.Provider) bool { _, ok := p.(*summary.StringBuilderProvider); return ok }},
	}
	for _, tt := range tests {
		p, err := reg.NewProvider(namedValue{typeName: tt.typeName}, nil)
		if err != nil {
			t.Fatalf("NewProvider(%q): %v", tt.typeName, err)
		}
		if !tt.check(p) {
			t.Errorf("NewProvider(%q) returned %T", tt.typeName, p)
		}
	}

	if _, ok := any(&summary.VolumeProvider{}).(summary.ChildProvider); !ok {
		t.Error("volume provider should expose children")
	}
}

func TestRegisterErrors(t *testing.T) {
	reg := NewSummaryRegister()
	f := func(v dbg.Value, ctx *summary.Context) summary.Provider {
		return summary.NewStringProvider(v, ctx)
	}

	if code := reg.RegisterSummaryTypeByName("const struct text *", f); code != dbg.OK {
		t.Fatalf("register: %v", code)
	}
	if code := reg.RegisterSummaryTypeByName("text", f); code != dbg.ErrSumregNameRepeat {
		t.Errorf("repeat register = %v, want ErrSumregNameRepeat", code)
	}
	if code := reg.RegisterSummaryTypeByName("other", nil); code != dbg.ErrInvalidParamVal {
		t.Errorf("nil factory = %v, want ErrInvalidParamVal", code)
	}
	if code := reg.RegisterSummaryTypeByName(" * ", f); code != dbg.ErrInvalidParamVal {
		t.Errorf("empty name = %v, want ErrInvalidParamVal", code)
	}

	if _, code := reg.GetFactoryByName("struct text"); code != dbg.OK {
		t.Errorf("lookup by qualified name = %v", code)
	}
	if _, code := reg.GetFactoryByName("volume"); code != dbg.ErrSumregNameUnknown {
		t.Errorf("unknown lookup = %v, want ErrSumregNameUnknown", code)
	}

	if _, err := reg.NewProvider(namedValue{typeName: "entity"}, nil); common.ErrCode(err) != dbg.ErrSumregNameUnknown {
		t.Errorf("NewProvider unknown type error = %v", err)
	}
	if _, err := reg.NewProvider(nil, nil); common.ErrCode(err) != dbg.ErrInvalidParamVal {
		t.Errorf("NewProvider(nil) error = %v", err)
	}
}
