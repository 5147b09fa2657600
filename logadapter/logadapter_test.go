package logadapter

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bstore"
)

func TestLogrusSatisfiesLoggerAndLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := logrus.New()
	base.Out = &buf
	base.SetFormatter(&logrus.TextFormatter{DisableColors: true})

	var l bstore.Logger = NewLogrus(base)

	l.Info("commit", "readPath", "/tmp/store.db")
	l.Warn("minimumDegree ignored on reopen", "requested", 64, "actual", 128)
	l.Error("unable to rename write-side file into place", "error", "permission denied")

	out := buf.String()
	assert.Contains(t, out, "commit")
	assert.Contains(t, out, "readPath=/tmp/store.db")
	assert.Contains(t, out, "minimumDegree ignored on reopen")
	assert.Contains(t, out, "unable to rename write-side file into place")
}

func TestZapSatisfiesLoggerAndLogs(t *testing.T) {
	t.Parallel()

	var buf zaptest
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)
	base := zap.New(core)

	var l bstore.Logger = NewZap(base)

	l.Info("commit", "readPath", "/tmp/store.db")
	l.Warn("minimumDegree ignored on reopen", "requested", 64, "actual", 128)

	require.NoError(t, base.Sync())
	out := buf.String()
	assert.Contains(t, out, `"msg":"commit"`)
	assert.Contains(t, out, `"readPath":"/tmp/store.db"`)
	assert.Contains(t, out, `"msg":"minimumDegree ignored on reopen"`)
}

// zaptest is a minimal io.Writer+Sync buffer, since zapcore.WriteSyncer
// needs a Sync method that bytes.Buffer doesn't provide.
type zaptest struct {
	bytes.Buffer
}

func (z *zaptest) Sync() error { return nil }
