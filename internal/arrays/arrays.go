// Package arrays converts numeric slices and gonum matrices to the
// little-endian byte layout used by the container file.
package arrays

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Float64sToBytes converts []float64 to []byte
func Float64sToBytes(data []float64) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(data) * 8)
	_ = binary.Write(buf, binary.LittleEndian, data)
	return buf.Bytes()
}

// BytesToFloat64s converts []byte to []float64
func BytesToFloat64s(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("float64 payload has %d bytes, not a multiple of 8", len(data))
	}
	result := make([]float64, len(data)/8)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Int64sToBytes converts []int64 to []byte
func Int64sToBytes(data []int64) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(data) * 8)
	_ = binary.Write(buf, binary.LittleEndian, data)
	return buf.Bytes()
}

// BytesToInt64s converts []byte to []int64
func BytesToInt64s(data []byte) ([]int64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("int64 payload has %d bytes, not a multiple of 8", len(data))
	}
	result := make([]int64, len(data)/8)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Ints converts []int to []int64.
func Ints(v []int) []int64 {
	out := make([]int64, len(v))
	for i := range v {
		out[i] = int64(v[i])
	}
	return out
}

// ToInts converts []int64 to []int.
func ToInts(v []int64) []int {
	out := make([]int, len(v))
	for i := range v {
		out[i] = int(v[i])
	}
	return out
}

// Size returns the number of elements described by shape.
// A scalar (empty shape) has one element.
func Size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Flatten returns the row-major values of m and its shape.
func Flatten(m mat.Matrix) ([]float64, []int) {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := range r {
		for j := range c {
			out = append(out, m.At(i, j))
		}
	}
	return out, []int{r, c}
}

// Dense rebuilds a matrix from row-major values.
func Dense(data []float64, shape []int) (*mat.Dense, error) {
	if len(shape) != 2 {
		return nil, fmt.Errorf("matrix needs 2 dimensions, got %d", len(shape))
	}
	if shape[0] < 1 || shape[1] < 1 {
		return nil, fmt.Errorf("matrix dimensions must be positive, got %v", shape)
	}
	if n := shape[0] * shape[1]; n != len(data) {
		return nil, fmt.Errorf("shape %v needs %d values, got %d", shape, n, len(data))
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return mat.NewDense(shape[0], shape[1], buf), nil
}

// StringsToBytes converts []string to []byte, each value prefixed by its
// uvarint length.
func StringsToBytes(data []string) []byte {
	var out []byte
	for _, s := range data {
		out = binary.AppendUvarint(out, uint64(len(s)))
		out = append(out, s...)
	}
	return out
}

// BytesToStrings converts []byte written by StringsToBytes back to []string.
func BytesToStrings(data []byte) ([]string, error) {
	var out []string
	for len(data) > 0 {
		n, w := binary.Uvarint(data)
		if w <= 0 {
			return nil, fmt.Errorf("malformed string length prefix")
		}
		data = data[w:]
		if uint64(len(data)) < n {
			return nil, fmt.Errorf("string of %d bytes exceeds remaining %d", n, len(data))
		}
		out = append(out, string(data[:n]))
		data = data[n:]
	}
	return out, nil
}
