package models

import "encoding/xml"

// Namespaces and content types of a core 3MF package
const (
	CoreNamespace         = "http://schemas.microsoft.com/3dmanufacturing/core/2015/02"
	ContentTypesNamespace = "http://schemas.openxmlformats.org/package/2006/content-types"
	RelsNamespace         = "http://schemas.openxmlformats.org/package/2006/relationships"
	ModelRelType          = "http://schemas.microsoft.com/3dmanufacturing/2013/01/3dmodel"
	ModelContentType      = "application/vnd.ms-package.3dmanufacturing-3dmodel+xml"
	RelsContentType       = "application/vnd.openxmlformats-package.relationships+xml"
)

// Model represents a 3MF model structure
type Model struct {
	XMLName   xml.Name   `xml:"model"`
	Xmlns     string     `xml:"xmlns,attr"`
	Unit      string     `xml:"unit,attr"`
	Lang      string     `xml:"xml:lang,attr,omitempty"`
	Metadata  []Metadata `xml:"metadata"`
	Resources Resources  `xml:"resources"`
	Build     Build      `xml:"build"`
}

type Metadata struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type Resources struct {
	Objects []Object `xml:"object"`
}

type Object struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr,omitempty"`
	Type string `xml:"type,attr"`
	Mesh *Mesh  `xml:"mesh"`
}

type Mesh struct {
	Vertices  Vertices  `xml:"vertices"`
	Triangles Triangles `xml:"triangles"`
}

type Vertices struct {
	Vertex []Vertex `xml:"vertex"`
}

type Vertex struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
	Z float64 `xml:"z,attr"`
}

type Triangles struct {
	Triangle []Triangle `xml:"triangle"`
}

type Triangle struct {
	V1 int `xml:"v1,attr"`
	V2 int `xml:"v2,attr"`
	V3 int `xml:"v3,attr"`
}

type Build struct {
	Items []Item `xml:"item"`
}

type Item struct {
	ObjectID  string `xml:"objectid,attr"`
	Transform string `xml:"transform,attr,omitempty"`
}

// ContentTypes is the [Content_Types].xml part of a 3MF package
type ContentTypes struct {
	XMLName  xml.Name      `xml:"Types"`
	Xmlns    string        `xml:"xmlns,attr"`
	Defaults []ContentType `xml:"Default"`
}

type ContentType struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Relationships is the _rels/.rels part of a 3MF package
type Relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Xmlns         string         `xml:"xmlns,attr"`
	Relationships []Relationship `xml:"Relationship"`
}

type Relationship struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
	Type   string `xml:"Type,attr"`
}
