package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vector3 represents a 3D vector as stored in an STL file
type Vector3 struct {
	X, Y, Z float32
}

// Triangle represents a triangle in 3D space
type Triangle struct {
	Normal     Vector3
	V1, V2, V3 Vector3
}

// Mesh represents an STL mesh
type Mesh struct {
	Name      string
	Binary    bool
	Triangles []Triangle
}

// Vertices flattens the mesh into three vertices per triangle
func (m *Mesh) Vertices() []r3.Vec {
	vertices := make([]r3.Vec, 0, len(m.Triangles)*3)
	for _, t := range m.Triangles {
		vertices = append(vertices, t.V1.vec(), t.V2.vec(), t.V3.vec())
	}
	return vertices
}

// NonFinite counts the triangles with a NaN or infinite coordinate
func (m *Mesh) NonFinite() int {
	count := 0
	for _, t := range m.Triangles {
		if !t.V1.finite() || !t.V2.finite() || !t.V3.finite() {
			count++
		}
	}
	return count
}

func (v Vector3) vec() r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func (v Vector3) finite() bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Parser parses STL files
type Parser struct{}

// NewParser creates a new STL parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads an STL file and returns the mesh data
func (p *Parser) Parse(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	defer file.Close()

	mesh, err := p.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	if mesh.Name == "" {
		mesh.Name = filepath.Base(filename)
	}
	return mesh, nil
}

// Decode reads a binary or ASCII STL stream. A stream whose size matches the
// triangle count in its binary header is binary even if it starts with "solid".
func (p *Parser) Decode(r io.Reader) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading STL: %w", err)
	}

	if len(data) >= headerSize+4 {
		count := binary.LittleEndian.Uint32(data[headerSize:])
		if int64(len(data)) == Size(int(count)) {
			return p.parseBinary(data, count)
		}
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")) {
		return p.parseASCII(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("not an STL file (%d bytes)", len(data))
}

// parseASCII parses an ASCII STL file
func (p *Parser) parseASCII(reader io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(reader)
	mesh := &Mesh{
		Triangles: []Triangle{},
	}

	var current Triangle
	var vertexCount int
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				mesh.Name = strings.Join(fields[1:], " ")
			}
		case "facet":
			if len(fields) >= 5 && fields[1] == "normal" {
				n, err := parseVector(fields[2:5])
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid normal: %w", line, err)
				}
				current.Normal = n
			}
			vertexCount = 0
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs three coordinates", line)
			}
			v, err := parseVector(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid vertex: %w", line, err)
			}
			switch vertexCount {
			case 0:
				current.V1 = v
			case 1:
				current.V2 = v
			case 2:
				current.V3 = v
			default:
				return nil, fmt.Errorf("line %d: facet has more than three vertices", line)
			}
			vertexCount++
		case "endfacet":
			if vertexCount != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices", line, vertexCount)
			}
			mesh.Triangles = append(mesh.Triangles, current)
			current = Triangle{}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return mesh, nil
}

func parseVector(fields []string) (Vector3, error) {
	var c [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return Vector3{}, err
		}
		c[i] = float32(v)
	}
	return Vector3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// parseBinary parses a binary STL file
func (p *Parser) parseBinary(data []byte, count uint32) (*Mesh, error) {
	mesh := &Mesh{
		Name:      strings.TrimSpace(string(bytes.TrimRight(data[:headerSize], "\x00"))),
		Binary:    true,
		Triangles: make([]Triangle, count),
	}

	off := headerSize + 4
	for i := range mesh.Triangles {
		record := data[off : off+recordSize]
		mesh.Triangles[i] = Triangle{
			Normal: readVector(record[0:]),
			V1:     readVector(record[12:]),
			V2:     readVector(record[24:]),
			V3:     readVector(record[36:]),
		}
		// the trailing attribute byte count is ignored
		off += recordSize
	}

	return mesh, nil
}

func readVector(b []byte) Vector3 {
	return Vector3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}
