package attrmap

import (
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Cty converts v into its cty equivalent. Arrays become lists.
func (v Value) Cty() cty.Value {
	switch v.typ {
	case Bool:
		return cty.BoolVal(v.b)
	case Int:
		return cty.NumberIntVal(int64(v.i))
	case Float:
		return cty.NumberFloatVal(v.f)
	case String:
		return cty.StringVal(v.s)
	case BoolArray:
		return listOf(cty.Bool, v.bs, cty.BoolVal)
	case IntArray:
		return listOf(cty.Number, v.is, func(i int32) cty.Value { return cty.NumberIntVal(int64(i)) })
	case FloatArray:
		return listOf(cty.Number, v.fs, cty.NumberFloatVal)
	case StringArray:
		return listOf(cty.String, v.ss, cty.StringVal)
	default:
		return cty.NullVal(cty.DynamicPseudoType)
	}
}

func listOf[T any](elem cty.Type, s []T, f func(T) cty.Value) cty.Value {
	if len(s) == 0 {
		return cty.ListValEmpty(elem)
	}
	vals := make([]cty.Value, len(s))
	for i, e := range s {
		vals[i] = f(e)
	}
	return cty.ListVal(vals)
}

// CtyType returns the cty type that t converts to.
func (t PrimitiveType) CtyType() cty.Type {
	switch t {
	case Bool:
		return cty.Bool
	case Int, Float:
		return cty.Number
	case String:
		return cty.String
	case BoolArray:
		return cty.List(cty.Bool)
	case IntArray, FloatArray:
		return cty.List(cty.Number)
	case StringArray:
		return cty.List(cty.String)
	default:
		return cty.DynamicPseudoType
	}
}

// ImpliedType picks the primitive type for a cty value. Numbers become
// Float; sequences become the array type of their first element.
func ImpliedType(v cty.Value) (PrimitiveType, error) {
	ty := v.Type()
	switch {
	case ty == cty.Bool:
		return Bool, nil
	case ty == cty.Number:
		return Float, nil
	case ty == cty.String:
		return String, nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		if !v.IsKnown() || v.IsNull() || v.LengthInt() == 0 {
			return Undefined, fmt.Errorf("cannot infer element type of empty sequence %s", ty.FriendlyName())
		}
		first := v.ElementIterator()
		first.Next()
		_, ev := first.Element()
		et, err := ImpliedType(ev)
		if err != nil {
			return Undefined, err
		}
		if et.IsArray() {
			return Undefined, fmt.Errorf("nested sequences are not supported")
		}
		return et - Bool + BoolArray, nil
	default:
		return Undefined, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}

// FromCty converts a cty value into a Value of type want. If want is
// Undefined the type is inferred with ImpliedType.
func FromCty(v cty.Value, want PrimitiveType) (Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return Value{}, fmt.Errorf("value is null or unknown")
	}
	if want == Undefined {
		t, err := ImpliedType(v)
		if err != nil {
			return Value{}, err
		}
		want = t
	}

	conv, err := convert.Convert(v, want.CtyType())
	if err != nil {
		return Value{}, fmt.Errorf("cannot convert %s to %s: %w", v.Type().FriendlyName(), want, err)
	}

	switch want {
	case Bool:
		var b bool
		err = gocty.FromCtyValue(conv, &b)
		return BoolValue(b), err
	case Int:
		i, err := toInt32(conv)
		return IntValue(i), err
	case Float:
		var f float64
		err = gocty.FromCtyValue(conv, &f)
		return FloatValue(f), err
	case String:
		var s string
		err = gocty.FromCtyValue(conv, &s)
		return StringValue(s), err
	case BoolArray:
		var bs []bool
		err = gocty.FromCtyValue(conv, &bs)
		return BoolArrayValue(bs), err
	case IntArray:
		is := make([]int32, 0, conv.LengthInt())
		for it := conv.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			i, err := toInt32(ev)
			if err != nil {
				return Value{}, err
			}
			is = append(is, i)
		}
		return IntArrayValue(is), nil
	case FloatArray:
		var fs []float64
		err = gocty.FromCtyValue(conv, &fs)
		return FloatArrayValue(fs), err
	case StringArray:
		var ss []string
		err = gocty.FromCtyValue(conv, &ss)
		return StringArrayValue(ss), err
	default:
		return Value{}, fmt.Errorf("unsupported attribute type %s", want)
	}
}

func toInt32(v cty.Value) (int32, error) {
	var i int64
	if err := gocty.FromCtyValue(v, &i); err != nil {
		return 0, err
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, fmt.Errorf("value %d overflows int32", i)
	}
	return int32(i), nil
}
