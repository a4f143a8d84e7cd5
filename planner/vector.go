package planner

import (
	"strconv"
	"strings"
)

// vectorToJSON renders a float32 slice as a JSON array literal for
// vectorlite's vector_from_json(). The Rust original serializes via
// "{:?}" Debug formatting of Vec<f32>; here we emit plain JSON number
// tokens, which vector_from_json parses identically and which avoids
// depending on a Debug-format quirk (e.g. "1.0" vs "1") that carries
// no semantic weight for a JSON consumer.
func vectorToJSON(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
