// Package convert holds the Converter capability and the built-in converters that
// recognise common Go container shapes.
package convert

// Converter recognises one value shape and turns it into its canonical form,
// usually a canonical.Host. Implementations must be immutable and safe for
// concurrent use.
type Converter interface {
	// Name identifies the converter in logs and listings.
	Name() string
	// Priority orders converters in a registry; higher runs first.
	Priority() int
	Accept(v any) bool
	Convert(v any) any
}

type funcConverter struct {
	name     string
	priority int
	accept   func(any) bool
	convert  func(any) any
}

func (c funcConverter) Name() string { return c.name }
func (c funcConverter) Priority() int { return c.priority }
func (c funcConverter) Accept(v any) bool { return c.accept(v) }
func (c funcConverter) Convert(v any) any { return c.convert(v) }

// Func builds a Converter from plain functions.
func Func(name string, priority int, accept func(any) bool, convert func(any) any) Converter {
	if accept == nil || convert == nil {
		panic("anym.convert.Func: accept and convert cannot be nil")
	}
	return funcConverter{name: name, priority: priority, accept: accept, convert: convert}
}

// Builtin returns the built-in converters in declaration order.
func Builtin() []Converter {
	return []Converter{
		Text(),
		Reader(),
		Chan(),
		Supplier(),
		Pointer(),
		Slice(),
		IterSeq(),
	}
}
