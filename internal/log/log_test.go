package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactionEmailField(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "email", "OTSIGroupe@gmail.com")
	require.Equal(t, "[REDACTED]", out["email"])
}

func TestRedactionPhoneField(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "phone", "+241 01 23 45 67")
	require.Equal(t, "[REDACTED]", out["phone"])
}

func TestRedactionAddressField(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "Address", "Libreville")
	require.Equal(t, "[REDACTED]", out["Address"])
}

func TestRedactionTokenField(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "token", "abc.token.xyz")
	require.Equal(t, "[REDACTED]", out["token"])
}

func TestRedactionPasswordField(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "password", "not-safe")
	require.Equal(t, "[REDACTED]", out["password"])
}

func TestRedactionNestedGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewRedactingHandler(base))
	logger.Info("user", slog.Group("user", slog.String("email", "a@b.c"), slog.String("role", "client")))

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out))
	user := out["user"].(map[string]any)
	require.Equal(t, "[REDACTED]", user["email"])
	require.Equal(t, "client", user["role"])
}

func TestRedactionAppliesToWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewRedactingHandler(base)).With("phone", "+241 00")
	logger.Info("bound")

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out))
	require.Equal(t, "[REDACTED]", out["phone"])
}

func TestNonSensitiveFieldsPassThrough(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "reference", "BAM1234ABCDE")
	require.Equal(t, "BAM1234ABCDE", out["reference"])
}

func TestNewWritesToFallbackAndHonoursLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer func() { require.NoError(t, closer.Close()) }()

	logger.Info("dropped")
	logger.Warn("kept", "email", "x@y.z")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(lines[0], &out))
	require.Equal(t, "kept", out["msg"])
	require.Equal(t, "[REDACTED]", out["email"])
}

func TestNewWritesToRotatingFile(t *testing.T) {
	t.Parallel()

	logPath := filepath.Join(t.TempDir(), "logs", "bamboo.log")
	logger, closer, err := New(Options{Level: "info", File: logPath}, nil)
	require.NoError(t, err)

	logger.Info("transaction posted", "reference", "BAM1")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "transaction posted")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, _, err := New(Options{Level: "chatty"}, nil)
	require.Error(t, err)
}

func TestLogRotationCreatesNewFileAfterTenMiB(t *testing.T) {
	logDir := t.TempDir()
	logPath := filepath.Join(logDir, "bamboo.log")

	writer, err := NewRotatingWriter(RotationConfig{
		File:      logPath,
		MaxSizeMB: 10,
		MaxFiles:  5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	chunk := bytes.Repeat([]byte("a"), 1024*1024)
	for i := 0; i < 11; i++ {
		_, err = writer.Write(chunk)
		require.NoError(t, err)
	}

	files, err := filepath.Glob(filepath.Join(logDir, "bamboo*"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(files), 2)
}

func TestLogRotationRetainsMaxFiveFiles(t *testing.T) {
	logDir := t.TempDir()
	logPath := filepath.Join(logDir, "bamboo.log")

	writer, err := NewRotatingWriter(RotationConfig{
		File:      logPath,
		MaxSizeMB: 10,
		MaxFiles:  5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	chunk := bytes.Repeat([]byte("b"), 1024*1024)
	for i := 0; i < 80; i++ {
		_, err := writer.Write(chunk)
		require.NoError(t, err)
	}

	files, err := filepath.Glob(filepath.Join(logDir, "bamboo*"))
	require.NoError(t, err)

	backupCount := 0
	for _, f := range files {
		if f == logPath {
			continue
		}
		backupCount++
	}
	require.LessOrEqual(t, backupCount, 5)
}

func TestRotatingWriterCreatesOwnerOnlyFile(t *testing.T) {
	t.Parallel()

	logPath := filepath.Join(t.TempDir(), "nested", "bamboo.log")
	writer, err := NewRotatingWriter(RotationConfig{File: logPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	require.Equal(t, 10, writer.MaxSize)
	require.Equal(t, 5, writer.MaxBackups)

	info, err := os.Stat(logPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRotatingWriterRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewRotatingWriter(RotationConfig{})
	require.Error(t, err)
}

func logSingleField(t *testing.T, key, value string) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewRedactingHandler(base))
	logger.Info("test", key, value)

	line := bytes.TrimSpace(buf.Bytes())
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(line, &out))
	return out
}
