package db

import (
	"errors"
	"strconv"
)

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is a tag field.
	IndexFieldTag
	// IndexFieldVector is a vector field.
	IndexFieldVector
)

// IndexField describes a single field in an FT index schema. Vector fields
// use HNSW with cosine distance; relevance is derived as 1 - distance.
type IndexField struct {
	Name string
	Type IndexFieldType

	// VECTOR options
	VectorDim         int
	VectorM           int // HNSW M: max edges per node (default 16)
	VectorEFConstruct int // HNSW EF_CONSTRUCTION (default 200)
}

// IndexDefinition is a complete FT index definition used by FT.CREATE over
// hash records.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// BuildCreateArgs renders the FT.CREATE argument list for the definition.
func (idx *IndexDefinition) BuildCreateArgs() ([]string, error) {
	if idx.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	args := []string{idx.Name, "ON", "HASH"}

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return nil, errors.New("field name is required")
		}
		args = append(args, f.Name)

		switch f.Type {
		case IndexFieldNumeric:
			args = append(args, "NUMERIC")
		case IndexFieldTag:
			args = append(args, "TAG")
		case IndexFieldVector:
			if f.VectorDim <= 0 {
				return nil, errors.New("vector dimension is required")
			}
			m := f.VectorM
			if m <= 0 {
				m = 16
			}
			ef := f.VectorEFConstruct
			if ef <= 0 {
				ef = 200
			}
			args = append(args,
				"VECTOR", "HNSW", "10",
				"TYPE", "FLOAT32",
				"DIM", strconv.Itoa(f.VectorDim),
				"DISTANCE_METRIC", "COSINE",
				"M", strconv.Itoa(m),
				"EF_CONSTRUCTION", strconv.Itoa(ef),
			)
		default:
			return nil, errors.New("unknown field type")
		}
	}

	return args, nil
}
