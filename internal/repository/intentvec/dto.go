package intentvec

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/ainative-studio/publicfounders/internal/domain/intent"
)

// buildHashFields converts an intent vector into a flat map for HSET.
func buildHashFields(v *intent.Vector) map[string]string {
	md := v.Metadata()
	return map[string]string{
		"owner":      v.OwnerID(),
		"kind":       string(v.Kind()),
		"goal_type":  md.GoalType,
		"industry":   md.Industry,
		"stage":      md.Stage,
		"urgency":    md.Urgency,
		"created_at": strconv.FormatInt(md.CreatedAt.UnixMilli(), 10),
		"vector":     vectorToBlob(v.Values()),
	}
}

// parseHashFields converts a flat hash map back into an intent vector.
func parseHashFields(id string, m map[string]string) intent.Vector {
	kind, _ := intent.ParseSourceKind(m["kind"])
	return intent.Reconstruct(id, m["owner"], kind, blobToVector(m["vector"]), intent.Metadata{
		GoalType:  m["goal_type"],
		Industry:  m["industry"],
		Stage:     m["stage"],
		Urgency:   m["urgency"],
		CreatedAt: parseUnixMilli(m["created_at"]),
	})
}

// vectorToBlob serializes []float32 to a binary string (4 bytes per float,
// little-endian), the layout FT vector fields index.
func vectorToBlob(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// blobToVector deserializes a binary string back to []float32.
func blobToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
