package convert

import (
	"bufio"
	"io"
	"iter"
	"reflect"
	"sync"

	"golang.org/x/text/unicode/norm"

	"anym/anymerr"
	"anym/canonical"
)

const (
	PriorityText     = 30
	PriorityReader   = 25
	PriorityAsync    = 20
	PriorityOptional = 10
	PriorityDefault  = 0
)

var (
	errorType  = reflect.TypeFor[error]()
	boolType   = reflect.TypeFor[bool]()
	runeType   = reflect.TypeFor[rune]()
	stringType = reflect.TypeFor[string]()
)

// Text exposes a string as the finite sequence of its runes after NFC normalisation,
// so composed and decomposed spellings of the same text yield the same runes.
func Text() Converter {
	return Func("text", PriorityText,
		func(v any) bool {
			_, ok := v.(string)
			return ok
		},
		func(v any) any {
			runes := []rune(norm.NFC.String(v.(string)))
			return canonical.Host{
				Kind: canonical.KindFinite,
				Elem: runeType,
				Items: func(yield func(any) bool) {
					for _, r := range runes {
						if !yield(r) {
							return
						}
					}
				},
				Raw: v,
			}
		})
}

// Reader treats an io.Reader, such as an *os.File, as a lazy sequence of its lines
// without line terminators. Traversal consumes the reader and can happen once. A
// read error is raised as an upstream failure after the lines read before it.
func Reader() Converter {
	return Func("reader", PriorityReader,
		func(v any) bool {
			_, ok := v.(io.Reader)
			return ok
		},
		func(v any) any {
			r := v.(io.Reader)
			return canonical.Host{
				Kind: canonical.KindLazy,
				Elem: stringType,
				Items: func(yield func(any) bool) {
					sc := bufio.NewScanner(r)
					for sc.Scan() {
						if !yield(sc.Text()) {
							return
						}
					}
					if err := sc.Err(); err != nil {
						panic(anymerr.Upstream("convert.Reader", err))
					}
				},
				Raw: v,
			}
		})
}

// Chan treats a receivable channel as a lazy producer. Traversal drains the channel
// until it is closed and can happen once.
func Chan() Converter {
	return Func("chan", PriorityAsync,
		func(v any) bool {
			t := reflect.TypeOf(v)
			return t != nil && t.Kind() == reflect.Chan && t.ChanDir()&reflect.RecvDir != 0
		},
		func(v any) any {
			rv := reflect.ValueOf(v)
			return canonical.Host{
				Kind: canonical.KindLazy,
				Elem: rv.Type().Elem(),
				Items: func(yield func(any) bool) {
					if rv.IsNil() {
						return
					}
					for {
						x, ok := rv.Recv()
						if !ok || !yield(x.Interface()) {
							return
						}
					}
				},
				Raw: v,
			}
		})
}

// Supplier treats func() X and func() (X, error) as a future: the function runs once,
// on first traversal, and its result is shared by later traversals. A non-nil error
// is raised as an upstream failure when the value is materialised, and the terminal
// operation returns it.
func Supplier() Converter {
	return Func("supplier", PriorityAsync, isSupplier, func(v any) any {
		rv := reflect.ValueOf(v)
		result := sync.OnceValue(func() []reflect.Value { return rv.Call(nil) })
		return canonical.Host{
			Kind: canonical.KindSingle,
			Elem: rv.Type().Out(0),
			Items: func(yield func(any) bool) {
				out := result()
				if len(out) == 2 && !out[1].IsNil() {
					panic(anymerr.Upstream("convert.Supplier", out[1].Interface().(error)))
				}
				yield(out[0].Interface())
			},
			Raw: v,
		}
	})
}

func isSupplier(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Func || t.NumIn() != 0 || reflect.ValueOf(v).IsNil() {
		return false
	}
	switch t.NumOut() {
	case 1:
		return true
	case 2:
		return t.Out(1) == errorType
	}
	return false
}

// Pointer treats *X as an optional X; a nil pointer is the empty optional.
func Pointer() Converter {
	return Func("pointer", PriorityOptional,
		func(v any) bool {
			t := reflect.TypeOf(v)
			return t != nil && t.Kind() == reflect.Pointer
		},
		func(v any) any {
			rv := reflect.ValueOf(v)
			return canonical.Host{
				Kind: canonical.KindSingle,
				Elem: rv.Type().Elem(),
				Items: func(yield func(any) bool) {
					if !rv.IsNil() {
						yield(rv.Elem().Interface())
					}
				},
				Raw: v,
			}
		})
}

// Slice treats any slice or array as a finite collection.
func Slice() Converter {
	return Func("slice", PriorityDefault,
		func(v any) bool {
			t := reflect.TypeOf(v)
			return t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array)
		},
		func(v any) any {
			rv := reflect.ValueOf(v)
			return canonical.Host{
				Kind:  canonical.KindFinite,
				Elem:  rv.Type().Elem(),
				Items: indexed(rv),
				Raw:   v,
			}
		})
}

func indexed(rv reflect.Value) iter.Seq[any] {
	return func(yield func(any) bool) {
		for i := range rv.Len() {
			if !yield(rv.Index(i).Interface()) {
				return
			}
		}
	}
}

// IterSeq treats any func(func(X) bool) as a lazy sequence.
func IterSeq() Converter {
	return Func("iter-seq", PriorityDefault, isIterSeq, func(v any) any {
		rv := reflect.ValueOf(v)
		yieldType := rv.Type().In(0)
		return canonical.Host{
			Kind: canonical.KindLazy,
			Elem: yieldType.In(0),
			Items: func(yield func(any) bool) {
				fn := reflect.MakeFunc(yieldType, func(args []reflect.Value) []reflect.Value {
					return []reflect.Value{reflect.ValueOf(yield(args[0].Interface()))}
				})
				rv.Call([]reflect.Value{fn})
			},
			Raw: v,
		}
	})
}

func isIterSeq(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return false
	}
	y := t.In(0)
	return y.Kind() == reflect.Func && y.NumIn() == 1 && y.NumOut() == 1 && y.Out(0) == boolType
}
