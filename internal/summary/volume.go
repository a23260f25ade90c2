package summary

import (
	"fmt"
	"math"
	"strconv"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
	"memfmt/internal/target"
)

// shape is the decoded payload of one volume kind.
type shape interface {
	summary() string
	children() []Child
}

type circle struct {
	radius float32
}

func (c circle) summary() string {
	return fmt.Sprintf("CIRCLE { radius = %s }", formatFloat(c.radius))
}

func (c circle) children() []Child {
	return []Child{{Name: "radius", Value: formatFloat(c.radius)}}
}

type polygon struct {
	vertexCount uint64
	verticies   dbg.Addr
}

func (p polygon) summary() string {
	return fmt.Sprintf("POLYGON { vertexCount = %d }", p.vertexCount)
}

func (p polygon) children() []Child {
	return []Child{
		{Name: "vertexCount", Value: strconv.FormatUint(p.vertexCount, 10)},
		{Name: "verticies", Value: fmt.Sprintf("0x%x", uint64(p.verticies))},
	}
}

type box struct {
	width, height float32
}

func (b box) summary() string {
	return fmt.Sprintf("BOX { width = %s, height = %s }", formatFloat(b.width), formatFloat(b.height))
}

func (b box) children() []Child {
	return []Child{
		{Name: "width", Value: formatFloat(b.width)},
		{Name: "height", Value: formatFloat(b.height)},
	}
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

var payloadTypes = map[Shape]string{
	ShapeCircle:  target.TypeVolumeCircle,
	ShapePolygon: target.TypeVolumePolygon,
	ShapeBox:     target.TypeVolumeBox,
}

// VolumeProvider summarizes a volume. Update reads the tag and the payload
// of that kind only; Summary renders what the last Update found.
type VolumeProvider struct {
	value dbg.Value
	ctx   *Context

	code  uint64
	shape shape // nil until a payload is decoded
}

// NewVolumeProvider wraps v. A nil ctx uses NewContext defaults.
func NewVolumeProvider(v dbg.Value, ctx *Context) *VolumeProvider {
	return &VolumeProvider{value: v, ctx: orDefault(ctx)}
}

// Code returns the discriminant seen by the last Update.
func (p *VolumeProvider) Code() uint64 {
	return p.code
}

// Update rereads the tag and the matching payload. Any failure leaves the
// volume unknown.
func (p *VolumeProvider) Update() {
	p.code = 0
	p.shape = nil
	defer func() {
		if r := recover(); r != nil {
			p.shape = nil
			p.ctx.logger().Warning("summary recovered from panic", "summary", dbg.BuiltinSumVolume, "panic", r)
		}
	}()

	code, err := dbg.ChildUnsigned(p.value, "type")
	if err != nil {
		p.ctx.logger().Debug("volume type unreadable", "err", err)
		return
	}
	p.code = code
	kind := p.ctx.Encoding.Shape(code)
	log := p.ctx.logger().With("name", p.value.Name(), "type", code, "kind", kind)

	typeName, ok := payloadTypes[kind]
	if !ok {
		log.Debug("volume kind not decoded")
		return
	}

	s, err := p.readShape(kind, typeName)
	if err != nil {
		log.Debug("volume payload unreadable", "err", err)
		return
	}
	p.shape = s
	log.Debug("volume updated")
}

func (p *VolumeProvider) readShape(kind Shape, typeName string) (shape, error) {
	layout := p.ctx.layout()
	t, ok := layout.Type(typeName)
	if !ok {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrInvalidParamType, "no layout for "+typeName)
	}

	addr, err := p.value.Address()
	if err != nil {
		return nil, err
	}
	header := p.value.ByteSize()
	if header == 0 {
		if vt, ok := layout.Type(target.TypeVolume); ok {
			header = vt.Size
		}
	}
	payload := addr + dbg.Addr(header)

	reader := p.value.Process()
	if reader == nil {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrNotInit, "value has no process")
	}
	b, err := reader.ReadMemory(payload, t.Size)
	if err != nil {
		return nil, err
	}
	if uint64(len(b)) != t.Size {
		return nil, common.NewErrorWithAddrMsg(dbg.ErrSevError, dbg.ErrMemNacc, payload, "short read")
	}

	fields := fieldReader{t: t, b: b, layout: layout}
	switch kind {
	case ShapeCircle:
		c := circle{radius: fields.float("radius")}
		return c, fields.err
	case ShapePolygon:
		pg := polygon{
			vertexCount: fields.unsigned("vertexCount"),
			verticies:   dbg.Addr(fields.unsigned("verticies")),
		}
		return pg, fields.err
	case ShapeBox:
		bx := box{width: fields.float("width"), height: fields.float("height")}
		return bx, fields.err
	}
	return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrInvalidParamVal, "kind "+kind.String())
}

// fieldReader decodes members out of one struct image, keeping the first error.
type fieldReader struct {
	t      *target.Type
	b      []byte
	layout *target.Layout
	err    error
}

func (r *fieldReader) bytes(name string) []byte {
	if r.err != nil {
		return nil
	}
	f, ok := r.t.Field(name)
	if !ok || f.Offset+f.Size > uint64(len(r.b)) {
		r.err = common.NewErrorMsg(dbg.ErrSevError, dbg.ErrFieldUnknown, r.t.Name+"."+name)
		return nil
	}
	return r.b[f.Offset : f.Offset+f.Size]
}

func (r *fieldReader) unsigned(name string) uint64 {
	b := r.bytes(name)
	if b == nil {
		return 0
	}
	u, err := target.DecodeUnsigned(r.layout.ByteOrder, b)
	if err != nil {
		r.err = err
	}
	return u
}

func (r *fieldReader) float(name string) float32 {
	b := r.bytes(name)
	switch len(b) {
	case 4:
		return math.Float32frombits(r.layout.ByteOrder.Uint32(b))
	case 8:
		return float32(math.Float64frombits(r.layout.ByteOrder.Uint64(b)))
	case 0:
		return 0
	}
	r.err = common.NewErrorMsg(dbg.ErrSevError, dbg.ErrInvalidParamType, fmt.Sprintf("%s.%s is %d bytes", r.t.Name, name, len(b)))
	return 0
}

// Summary renders the state found by the last Update.
func (p *VolumeProvider) Summary() (out string) {
	defer recoverTo(p.ctx, dbg.BuiltinSumVolume, &out, UnknownVolume)
	if p.shape == nil {
		return UnknownVolume
	}
	return p.shape.summary()
}

func (p *VolumeProvider) children() []Child {
	if p.shape == nil {
		return nil
	}
	return p.shape.children()
}

// NumChildren is the number of fields of the current kind.
func (p *VolumeProvider) NumChildren() int {
	return len(p.children())
}

// ChildAtIndex returns the i'th field of the current kind.
func (p *VolumeProvider) ChildAtIndex(i int) (Child, bool) {
	c := p.children()
	if i < 0 || i >= len(c) {
		return Child{}, false
	}
	return c[i], true
}

// ChildIndex returns the index of the named field, or -1.
func (p *VolumeProvider) ChildIndex(name string) int {
	for i, c := range p.children() {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Child returns the named field of the current kind.
func (p *VolumeProvider) Child(name string) (Child, bool) {
	i := p.ChildIndex(name)
	if i < 0 {
		return Child{}, false
	}
	return p.children()[i], true
}
