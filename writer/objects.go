package writer

// Minimal PDF object model: just enough vocabulary to serialize the
// documents the synthesizer emits.

// Name is a PDF name object, serialized with a leading slash.
type Name string

// Ref is an indirect object reference.
type Ref struct {
	Num, Gen int
}

// Dict is a PDF dictionary. Keys serialize in sorted order so output is
// deterministic.
type Dict map[Name]interface{}

// Array is a PDF array.
type Array []interface{}

// Stream pairs a dictionary with raw stream data. Length is filled in
// during serialization.
type Stream struct {
	Dict Dict
	Data []byte
}
