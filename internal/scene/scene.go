// Package scene reads and writes details as YAML scene files.
package scene

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cogentcore.org/core/math32"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"gopkg.in/yaml.v3"
)

type document struct {
	Points     [][]float32    `yaml:"points,flow"`
	Primitives []primitiveDoc `yaml:"primitives"`
	Attributes attributesDoc  `yaml:"attributes,omitempty"`
	Groups     []groupDoc     `yaml:"groups,omitempty"`
}

type primitiveDoc struct {
	Type   string `yaml:"type,omitempty"`
	Points []int  `yaml:"points,flow"`
}

type attributesDoc struct {
	Primitive []attributeDoc `yaml:"primitive,omitempty"`
	Vertex    []attributeDoc `yaml:"vertex,omitempty"`
}

// attributeDoc holds one tuple per element in the list matching Storage.
type attributeDoc struct {
	Name    string      `yaml:"name"`
	Storage string      `yaml:"storage"`
	Size    int         `yaml:"size,omitempty"`
	Ints    [][]int32   `yaml:"ints,omitempty,flow"`
	Floats  [][]float32 `yaml:"floats,omitempty,flow"`
	Strings [][]string  `yaml:"strings,omitempty,flow"`
}

type groupDoc struct {
	Name    string       `yaml:"name"`
	Members []geo.Offset `yaml:"members,flow"`
}

var primTypes = map[string]geo.PrimType{
	"poly":     geo.PrimPoly,
	"polysoup": geo.PrimPolySoup,
	"curve":    geo.PrimCurve,
}

var storages = map[string]geo.Storage{
	geo.StorageInt8.String():    geo.StorageInt8,
	geo.StorageInt32.String():   geo.StorageInt32,
	geo.StorageFloat32.String(): geo.StorageFloat32,
	geo.StorageString.String():  geo.StorageString,
}

// Load reads the scene file at path.
func Load(path string) (*geo.Detail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return d, nil
}

// Save writes d to path, creating parent directories.
func Save(path string, d *geo.Detail) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, d); err != nil {
		f.Close()
		return fmt.Errorf("scene %s: %w", path, err)
	}
	return f.Close()
}

// Read decodes a scene. Unknown fields are rejected.
func Read(r io.Reader) (*geo.Detail, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return geo.NewDetail(), nil
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.detail()
}

func (doc *document) detail() (*geo.Detail, error) {
	d := geo.NewDetail()
	for i, p := range doc.Points {
		if len(p) != 3 {
			return nil, fmt.Errorf("point %d: expected 3 coordinates, got %d", i, len(p))
		}
		d.AddPoint(math32.Vec3(p[0], p[1], p[2]))
	}
	for i, p := range doc.Primitives {
		typ := geo.PrimPoly
		if p.Type != "" {
			t, ok := primTypes[strings.ToLower(p.Type)]
			if !ok {
				return nil, fmt.Errorf("primitive %d: unknown type %q", i, p.Type)
			}
			typ = t
		}
		if _, err := d.AddPrimitive(typ, p.Points...); err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
	}
	for _, a := range doc.Attributes.Primitive {
		if err := a.apply(d, geo.OwnerPrimitive, d.NumPrimitives()); err != nil {
			return nil, err
		}
	}
	for _, a := range doc.Attributes.Vertex {
		if err := a.apply(d, geo.OwnerVertex, d.NumVertices()); err != nil {
			return nil, err
		}
	}
	for _, g := range doc.Groups {
		grp := d.NewPrimitiveGroup(g.Name)
		for _, off := range g.Members {
			if off < 0 || int(off) >= d.NumPrimitives() {
				return nil, fmt.Errorf("group %q: primitive %d out of range", g.Name, off)
			}
			grp.AddRange(off, 1)
		}
	}
	return d, nil
}

func (a attributeDoc) apply(d *geo.Detail, owner geo.Owner, n int) error {
	storage, ok := storages[a.Storage]
	if !ok {
		return fmt.Errorf("%s attribute %q: unknown storage %q", owner, a.Name, a.Storage)
	}
	size := a.Size
	if size <= 0 {
		size = 1
	}
	check := func(rows int) error {
		if rows > n {
			return fmt.Errorf("%s attribute %q: %d values for %d elements", owner, a.Name, rows, n)
		}
		return nil
	}

	switch storage.Class() {
	case geo.ClassInt:
		if err := check(len(a.Ints)); err != nil {
			return err
		}
		attr := d.AddIntTuple(owner, a.Name, size, storage)
		for off, row := range a.Ints {
			for c, v := range row[:min(len(row), size)] {
				attr.SetInt(geo.Offset(off), c, v)
			}
		}
	case geo.ClassFloat:
		if err := check(len(a.Floats)); err != nil {
			return err
		}
		attr := d.AddFloatTuple(owner, a.Name, size)
		for off, row := range a.Floats {
			for c, v := range row[:min(len(row), size)] {
				attr.SetFloat(geo.Offset(off), c, v)
			}
		}
	default:
		if err := check(len(a.Strings)); err != nil {
			return err
		}
		attr := d.AddStringTuple(owner, a.Name, size)
		for off, row := range a.Strings {
			for c, v := range row[:min(len(row), size)] {
				attr.SetString(geo.Offset(off), c, v)
			}
		}
	}
	return nil
}

// Write encodes d as a scene.
func Write(w io.Writer, d *geo.Detail) error {
	doc := document{}
	for _, p := range d.Points() {
		doc.Points = append(doc.Points, []float32{p.X, p.Y, p.Z})
	}
	for _, p := range d.Primitives() {
		pd := primitiveDoc{Type: strings.ToLower(p.Type().String())}
		for i := range p.VertexCount() {
			pd.Points = append(pd.Points, d.PointIndex(p, i))
		}
		doc.Primitives = append(doc.Primitives, pd)
	}
	for _, a := range d.PrimitiveAttributes() {
		doc.Attributes.Primitive = append(doc.Attributes.Primitive, toDoc(a))
	}
	for _, a := range d.VertexAttributes() {
		doc.Attributes.Vertex = append(doc.Attributes.Vertex, toDoc(a))
	}
	for _, g := range d.PrimitiveGroups() {
		doc.Groups = append(doc.Groups, groupDoc{Name: g.Name(), Members: g.Members()})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

func toDoc(a *geo.Attribute) attributeDoc {
	ad := attributeDoc{Name: a.Name(), Storage: a.Storage().String()}
	if a.TupleSize() != 1 {
		ad.Size = a.TupleSize()
	}
	for off := range a.Len() {
		o := geo.Offset(off)
		switch a.Class() {
		case geo.ClassInt:
			row := make([]int32, a.TupleSize())
			for c := range row {
				row[c] = a.Int(o, c)
			}
			ad.Ints = append(ad.Ints, row)
		case geo.ClassFloat:
			row := make([]float32, a.TupleSize())
			for c := range row {
				row[c] = float32(a.Float(o, c))
			}
			ad.Floats = append(ad.Floats, row)
		default:
			row := make([]string, a.TupleSize())
			for c := range row {
				row[c] = a.String(o, c)
			}
			ad.Strings = append(ad.Strings, row)
		}
	}
	return ad
}
