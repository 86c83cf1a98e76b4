package field

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"
)

// readFirst reads the first 1-D variable of names present in nc.
func readFirst(nc netcdf.Dataset, names []string) ([]float64, error) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if v, err := nc.Var(name); err == nil {
			if data, err := readAll(v); err == nil {
				return data, nil
			}
		}
	}
	return nil, fmt.Errorf("tried: %v", names)
}

// readAll reads every element of v as float64, whatever its shape.
func readAll(v netcdf.Var) ([]float64, error) {
	length, err := v.Len()
	if err != nil {
		return nil, fmt.Errorf("failed to get length: %w", err)
	}

	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, length)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, length)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		return widen(tmp), nil
	case netcdf.INT:
		tmp := make([]int32, length)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		return widen(tmp), nil
	case netcdf.SHORT:
		tmp := make([]int16, length)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		return widen(tmp), nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}

func widen[T float32 | int32 | int16](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func getFillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		if fv, ok := attrFloat(v, name); ok {
			return fv, true
		}
	}
	return 0, false
}

// attrFloat reads the first element of a numeric attribute.
func attrFloat(v netcdf.Var, name string) (float64, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	t, err := a.Type()
	if err != nil {
		return 0, false
	}
	switch t {
	case netcdf.DOUBLE:
		buf := make([]float64, n)
		if err := a.ReadFloat64s(buf); err == nil {
			return buf[0], true
		}
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if err := a.ReadFloat32s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.INT:
		buf := make([]int32, n)
		if err := a.ReadInt32s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.SHORT:
		buf := make([]int16, n)
		if err := a.ReadInt16s(buf); err == nil {
			return float64(buf[0]), true
		}
	}
	return 0, false
}

// transpose turns a rows x cols flat array into cols x rows.
func transpose(values []float64, rows, cols int) []float64 {
	out := make([]float64, len(values))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[j*rows+i] = values[i*cols+j]
		}
	}
	return out
}

func reversed(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
