package stl

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrEmptyStream is returned when there is nothing to export
	ErrEmptyStream = errors.New("empty triangle stream")
	// ErrWrite is returned when the destination cannot be written
	ErrWrite = errors.New("write error")
)

// Format selects the STL flavor
type Format string

const (
	Binary Format = "binary"
	ASCII  Format = "ascii"
)

const (
	headerSize = 80
	recordSize = 50
	solidName  = "lithophane"
)

// Size returns the size in bytes of a binary STL with the given triangle count
func Size(triangles int) int64 {
	return headerSize + 4 + int64(triangles)*recordSize
}

// Encode writes the triangles in vertices to w. Every three consecutive
// vertices form one triangle; normals are written as zero.
func Encode(w io.Writer, vertices []r3.Vec, format Format) error {
	if err := checkStream(vertices); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	var err error
	switch format {
	case ASCII:
		err = encodeASCII(bw, vertices)
	case Binary, "":
		err = encodeBinary(bw, vertices)
	default:
		return fmt.Errorf("unknown STL format %q", format)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// WriteFile encodes vertices to path through WriteAtomic. Nothing is
// created when the stream is empty.
func WriteFile(path string, vertices []r3.Vec, format Format) error {
	if err := checkStream(vertices); err != nil {
		return err
	}
	return WriteAtomic(path, func(w io.Writer) error {
		return Encode(w, vertices, format)
	})
}

// WriteAtomic writes a file through write into a temporary file next to path
// and renames it into place, so path is only ever replaced by a complete
// file. Errors from write are returned unchanged; all others wrap ErrWrite.
func WriteAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	steps := []func() error{
		tmp.Close,
		func() error { return os.Chmod(tmpName, 0o644) },
		func() error { return os.Rename(tmpName, path) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			os.Remove(tmpName)
			return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
		}
	}
	return nil
}

func checkStream(vertices []r3.Vec) error {
	if len(vertices) == 0 {
		return ErrEmptyStream
	}
	if len(vertices)%3 != 0 {
		return fmt.Errorf("%w: %d vertices do not form whole triangles", ErrEmptyStream, len(vertices))
	}
	return nil
}

func encodeBinary(w io.Writer, vertices []r3.Vec) error {
	var header [headerSize]byte
	copy(header[:], solidName)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	count := len(vertices) / 3
	if uint64(count) > math.MaxUint32 {
		return fmt.Errorf("%d triangles exceed the binary STL limit", count)
	}
	var buf [recordSize]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(count))
	if _, err := w.Write(buf[:4]); err != nil {
		return err
	}

	for i := 0; i < len(vertices); i += 3 {
		// normal stays zero
		clear(buf[:])
		off := 12
		for _, v := range vertices[i : i+3] {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v.X)))
			binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(float32(v.Y)))
			binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(float32(v.Z)))
			off += 12
		}
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

func encodeASCII(w *bufio.Writer, vertices []r3.Vec) error {
	w.WriteString("solid " + solidName + "\n")
	num := make([]byte, 0, 32)
	for i := 0; i < len(vertices); i += 3 {
		w.WriteString("\tfacet normal 0.0 0.0 0.0\n\t\touter loop\n")
		for _, v := range vertices[i : i+3] {
			w.WriteString("\t\t\tvertex")
			for _, c := range [3]float64{v.X, v.Y, v.Z} {
				num = strconv.AppendFloat(num[:0], c, 'g', -1, 64)
				w.WriteByte(' ')
				w.Write(num)
			}
			w.WriteByte('\n')
		}
		w.WriteString("\t\tendloop\n\tendfacet\n")
	}
	_, err := w.WriteString("endsolid " + solidName + "\n")
	return err
}
