package logging

import (
	"context"
	"testing"
	"time"

	"github.com/fyrsmithlabs/notedraft/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSecretField(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := &Logger{zap: zap.New(core), config: NewDefaultConfig()}

	logger.Info(context.Background(), "connecting", Secret("token", config.Secret("abc123")))

	logs := observed.All()
	require.Len(t, logs, 1)
	field := logs[0].Context[0]
	marshaler, ok := field.Interface.(zapcore.ObjectMarshaler)
	require.True(t, ok)

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, marshaler.MarshalLogObject(enc))
	assert.Equal(t, "[REDACTED:6]", enc.Fields["token"])
}

func TestRedactedString(t *testing.T) {
	field := RedactedString("draft", "hello world")
	assert.Equal(t, "[REDACTED:11]", field.String)
}

func TestContent(t *testing.T) {
	field := Content("content", "hello")
	assert.Equal(t, "content_bytes", field.Key)
	assert.Equal(t, int64(5), field.Integer)
}

func TestRedactingEncoder_EntryFields(t *testing.T) {
	base := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	enc, err := NewRedactingEncoder(base, NewDefaultConfig().Redaction)
	require.NoError(t, err)

	buf, err := enc.EncodeEntry(
		zapcore.Entry{Level: zapcore.InfoLevel, Time: time.Unix(0, 0), Message: "saved"},
		[]zapcore.Field{
			zap.String("content", "dear diary"),
			zap.String("Draft", "second secret"),
			zap.String("header", "Bearer abc.def"),
			zap.String("field", "notes"),
		},
	)
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, `"content":"[REDACTED]"`)
	assert.Contains(t, out, `"Draft":"[REDACTED]"`)
	assert.Contains(t, out, `"header":"[REDACTED:pattern]"`)
	assert.Contains(t, out, `"field":"notes"`)
	assert.NotContains(t, out, "dear diary")
	assert.NotContains(t, out, "second secret")
}

func TestRedactingEncoder_WithFields(t *testing.T) {
	base := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	enc, err := NewRedactingEncoder(base, NewDefaultConfig().Redaction)
	require.NoError(t, err)

	enc.AddString("value", "typed text")
	enc.AddString("origin", "default")
	buf, err := enc.EncodeEntry(zapcore.Entry{Message: "x"}, nil)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"value":"[REDACTED]"`)
	assert.Contains(t, buf.String(), `"origin":"default"`)
}

func TestRedactingEncoder_Disabled(t *testing.T) {
	base := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	enc, err := NewRedactingEncoder(base, RedactionConfig{Enabled: false})
	require.NoError(t, err)

	buf, err := enc.EncodeEntry(zapcore.Entry{Message: "x"}, []zapcore.Field{zap.String("content", "visible")})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "visible")
}

func TestRedactingEncoder_InvalidPattern(t *testing.T) {
	base := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	_, err := NewRedactingEncoder(base, RedactionConfig{Enabled: true, Patterns: []string{"[unclosed"}})
	require.Error(t, err)
}
