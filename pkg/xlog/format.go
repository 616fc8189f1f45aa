package xlog

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp layout shared by every sink.
const TimeLayout = "2006-01-02 15:04:05"

const metadataKey = "metadata"

var bufferPool = buffer.NewPool()

// lineFormat renders "<timestamp> [<version>] [<level>]: <message> <metadata>".
type lineFormat struct {
	version string
	scale   Scale
}

func (f lineFormat) render(ent zapcore.Entry, fields []zapcore.Field, colored bool) string {
	level := levelFromZap(ent.Level)
	name := level.String()
	if colored {
		name = f.scale.Paint(level)
	}

	var b strings.Builder
	b.WriteString(ent.Time.Format(TimeLayout))
	b.WriteString(" [")
	b.WriteString(f.version)
	b.WriteString("] [")
	b.WriteString(name)
	b.WriteString("]: ")
	b.WriteString(ent.Message)
	if meta := encodeMetadata(fields); meta != "" {
		b.WriteByte(' ')
		b.WriteString(meta)
	}
	return b.String()
}

// encodeMetadata flattens the record fields into a compact JSON object, or
// returns "" when there are none. Keys are sorted. NaN and ±Inf encode as null
// and <, >, & are written as is. A value that still fails to encode is
// replaced by its error text, the other keys are kept.
func encodeMetadata(fields []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Type == zapcore.NamespaceType {
			continue
		}
		f.AddTo(enc)
	}
	if len(enc.Fields) == 0 {
		return ""
	}

	buf := bufferPool.Get()
	defer buf.Free()

	buf.AppendByte('{')
	for i, k := range Fields(enc.Fields).keys() {
		if i > 0 {
			buf.AppendByte(',')
		}
		appendJSON(buf, k)
		buf.AppendByte(':')
		if err := appendJSON(buf, finite(enc.Fields[k])); err != nil {
			appendJSON(buf, "!ERROR: "+err.Error())
		}
	}
	buf.AppendByte('}')
	return buf.String()
}

// appendJSON writes v without HTML escaping and without the encoder's
// trailing newline. Nothing is written when encoding fails.
func appendJSON(buf *buffer.Buffer, v any) error {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(b.Bytes(), []byte("\n")))
	return nil
}

// finite replaces non-finite floats with nil, descending into maps keyed by
// strings and into slices.
func finite(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case float32:
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return x
	case json.Marshaler:
		return v
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = finite(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		// []byte 保持 base64 编码
		if rv.Type().Elem().Kind() == reflect.Uint8 || (rv.Kind() == reflect.Slice && rv.IsNil()) {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = finite(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(levelFromZap(l).String())
}

func fileEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevel,
		EncodeTime:     zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// fileEncoder is zap's JSON encoder plus the package version and the
// uncolored rendered line on every record.
type fileEncoder struct {
	zapcore.Encoder
	format lineFormat
}

func newFileEncoder(format lineFormat) zapcore.Encoder {
	return &fileEncoder{
		Encoder: zapcore.NewJSONEncoder(fileEncoderConfig()),
		format:  format,
	}
}

func (e *fileEncoder) Clone() zapcore.Encoder {
	return &fileEncoder{Encoder: e.Encoder.Clone(), format: e.format}
}

func (e *fileEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	all := make([]zapcore.Field, 0, len(fields)+2)
	all = append(all,
		zap.String("version", e.format.version),
		zap.String("line", e.format.render(ent, fields, false)),
	)
	all = append(all, fields...)
	return e.Encoder.EncodeEntry(ent, all)
}

// consoleEncoder writes the rendered line only. The embedded JSON encoder
// satisfies zapcore.ObjectEncoder for fields attached with zap's With.
type consoleEncoder struct {
	zapcore.Encoder
	format  lineFormat
	colored bool
}

func newConsoleEncoder(format lineFormat, colored bool) zapcore.Encoder {
	return &consoleEncoder{
		Encoder: zapcore.NewJSONEncoder(fileEncoderConfig()),
		format:  format,
		colored: colored,
	}
}

func (e *consoleEncoder) Clone() zapcore.Encoder {
	return &consoleEncoder{Encoder: e.Encoder.Clone(), format: e.format, colored: e.colored}
}

func (e *consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := bufferPool.Get()
	buf.AppendString(e.format.render(ent, fields, e.colored))
	buf.AppendString(zapcore.DefaultLineEnding)
	return buf, nil
}

// metadataFields merges the maps left to right and returns them as zap
// fields nested under "metadata", keys sorted.
func metadataFields(meta []Fields) []zap.Field {
	merged := Fields{}
	for _, m := range meta {
		for k, v := range m {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return nil
	}

	keys := merged.keys()
	fields := make([]zap.Field, 0, len(keys)+1)
	fields = append(fields, zap.Namespace(metadataKey))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, merged[k]))
	}
	return fields
}
