package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"

	"github.com/specialistvlad/beamgridgo/internal/ulc"
)

// JSON writes each result as one line: {"source": ..., "result": {...}}.
// Keys keep container order. JSON has no literal for NaN or infinities, so
// a result holding one is rejected. It is safe for concurrent use.
type JSON struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJSON creates a JSON writer on w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w}
}

func (j *JSON) Write(_ context.Context, r Result) error {
	var buf bytes.Buffer
	buf.WriteString(`{"source":`)
	writeString(&buf, r.Source)
	buf.WriteString(`,"result":`)

	var err error
	if len(r.Groups) > 0 {
		buf.WriteByte('{')
		for i, g := range r.Groups {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(&buf, g.Name)
			buf.WriteByte(':')
			if err = writeContainer(&buf, g.Values); err != nil {
				break
			}
		}
		buf.WriteByte('}')
	} else {
		err = writeContainer(&buf, r.Values)
	}
	if err != nil {
		return fmt.Errorf("failed to encode result of %s: %w", r.Source, err)
	}
	buf.WriteString("}\n")

	j.mu.Lock()
	defer j.mu.Unlock()
	_, err = j.w.Write(buf.Bytes())
	return err
}

func writeContainer(buf *bytes.Buffer, c *ulc.Container) error {
	buf.WriteByte('{')
	if c != nil {
		for i, k := range c.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, k)
			buf.WriteByte(':')
			v, _ := c.Get(k)
			if err := writeValue(buf, v); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeValue(buf *bytes.Buffer, v ulc.Value) error {
	switch {
	case v.IsScalar():
		return writeFloat(buf, v.Float())
	case v.IsList():
		buf.WriteByte('[')
		for i, f := range v.Floats() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeFloat(buf, f); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		buf.WriteString("null")
	}
	return nil
}

func writeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%v has no JSON representation", f)
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	// Marshalling a string cannot fail.
	b, _ := json.Marshal(s)
	buf.Write(b)
}
