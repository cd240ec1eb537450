package env

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/golobby/cast"
	"github.com/mitchellh/mapstructure"
)

var durationType = reflect.TypeFor[time.Duration]()

// Convert turns a raw property value into T. Scalar strings go through
// golobby/cast; everything else, including maps bound to structs, is
// decoded with weakly typed mapstructure.
func Convert[T any](raw any) (T, error) {
	var out T
	if v, ok := raw.(T); ok {
		return v, nil
	}
	if raw == nil {
		return out, fmt.Errorf("%w: nil value", ErrConversion)
	}

	target := reflect.TypeFor[T]()
	if s, ok := raw.(string); ok && isScalar(target) {
		v, err := cast.FromType(s, target)
		if err != nil {
			return out, fmt.Errorf("%w: %q to %s: %v", ErrConversion, s, target, err)
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().ConvertibleTo(target) {
			return out, fmt.Errorf("%w: %q to %s", ErrConversion, s, target)
		}
		return rv.Convert(target).Interface().(T), nil
	}

	if err := checkRange(raw, target); err != nil {
		return out, err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	if err := dec.Decode(raw); err != nil {
		return out, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return out, nil
}

func isScalar(t reflect.Type) bool {
	if t == durationType {
		return false
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// checkRange rejects numbers that do not fit an integer target. Weakly
// typed decoding would wrap them silently.
func checkRange(raw any, target reflect.Type) error {
	rv := reflect.ValueOf(raw)
	limit := reflect.New(target).Elem()
	overflow := false

	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			overflow = limit.OverflowInt(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			u := rv.Uint()
			overflow = u > math.MaxInt64 || limit.OverflowInt(int64(u))
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			overflow = f < math.MinInt64 || f >= math.MaxInt64 || limit.OverflowInt(int64(f))
		default:
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i := rv.Int()
			overflow = i < 0 || limit.OverflowUint(uint64(i))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			overflow = limit.OverflowUint(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			overflow = f < 0 || f >= math.MaxUint64 || limit.OverflowUint(uint64(f))
		default:
			return nil
		}
	default:
		return nil
	}

	if overflow {
		return fmt.Errorf("%w: %v overflows %s", ErrConversion, raw, target)
	}
	return nil
}
