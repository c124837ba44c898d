package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/YuminosukeSato/datakit/pkg/errors"
)

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", ColumnKey, "age")
	testLogger.Error("error message", fmt.Errorf("boom"), ErrorCodeKey, ErrorEmptyData)

	if buffer.Len() == 0 {
		t.Fatal("Expected log output, got empty buffer")
	}
	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}
	if !testLogger.ContainsField("key1", "value1") {
		t.Error("Expected field key1=value1 not found")
	}
	if !testLogger.ContainsField("number", 42.0) {
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField("error", "boom") {
		t.Error("leading error should be logged under the error key")
	}

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Errorf("Expected 4 entries, got %d", len(entries))
	}

	testLogger.Clear()
	if buffer.Len() != 0 {
		t.Errorf("Expected empty buffer after Clear, got %d bytes", buffer.Len())
	}
	if testLogger.ContainsMessage("info message") {
		t.Error("Clear should drop captured entries")
	}
	testLogger.Info("after clear")
	entries, err = testLogger.GetLogEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry after Clear, got %d", len(entries))
	}
}

func TestTestLoggerLevels(t *testing.T) {
	tests := []struct {
		level Level
		want  int
	}{
		{LevelDebug, 4},
		{LevelInfo, 3},
		{LevelWarn, 2},
		{LevelError, 1},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			logger, _ := NewTestLogger(tt.level)
			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")
			entries, err := logger.GetLogEntries()
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != tt.want {
				t.Errorf("got %d entries, want %d", len(entries), tt.want)
			}
			if !logger.Enabled(context.Background(), LevelError) {
				t.Error("error level should always be enabled")
			}
		})
	}
}

func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)
	contextLogger := testLogger.With(ModelNameKey, "StandardScaler", PhaseKey, PhasePreprocessing)
	contextLogger.Info("fit", OperationKey, OperationFit)

	if !testLogger.ContainsField(ModelNameKey, "StandardScaler") {
		t.Error("model name context not found")
	}
	if !testLogger.ContainsField(PhaseKey, PhasePreprocessing) {
		t.Error("phase context not found")
	}
}

func TestZerologProvider(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(&buf, LevelInfo)

	logger := provider.GetLoggerWithName("DataPreprocessor")
	logger.Debug("hidden")
	logger.Info("fit completed", SamplesKey, 100, FeaturesKey, 5)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry[ComponentKey] != "DataPreprocessor" {
		t.Errorf("component = %v", entry[ComponentKey])
	}
	if entry[SamplesKey] != 100.0 {
		t.Errorf("samples = %v", entry[SamplesKey])
	}
	if entry["message"] != "fit completed" {
		t.Errorf("message = %v", entry["message"])
	}

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
	provider.SetLevel(LevelDebug)
	if !provider.GetLogger().Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be enabled after SetLevel")
	}
}

func TestZerologProviderErrorStack(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologProviderWithWriter(&buf, LevelDebug).GetLogger()

	err := errors.NewDimensionError("Transform", 3, 2, 1)
	logger.Error("transform failed", err, OperationKey, OperationTransform)

	out := buf.String()
	for _, want := range []string{`"error":`, StacktraceKey, ErrorDimensionMismatch, `"ml.operation":"transform"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestInstallWarningHook(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(&buf, LevelDebug)
	provider.InstallWarningHook()
	defer errors.SetZerologWarnFunc(nil)

	errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true samples", 0))
	if !strings.Contains(buf.String(), `"type":"UndefinedMetricWarning"`) {
		t.Errorf("warning not logged as structured object: %s", buf.String())
	}
}

func TestGlobalProvider(t *testing.T) {
	prev := GetProvider()
	defer SetProvider(prev)

	provider, _ := NewTestLoggerProvider(LevelInfo)
	SetProvider(provider)
	GetLoggerWithName("eda").Info("summary ready")

	if !provider.logger.ContainsField(ComponentKey, "eda") {
		t.Error("named logger should carry the component field")
	}
}

func TestToLogLevel(t *testing.T) {
	tests := map[string]Level{"debug": LevelDebug, "INFO": LevelInfo, "warn": LevelWarn, "error": LevelError}
	for in, want := range tests {
		if got := ToLogLevel(in); got != want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid level")
		}
	}()
	ToLogLevel("verbose")
}

func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			testLogger.With("worker", id).Info("scored feature", ColumnKey, fmt.Sprintf("f%d", id))
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 10 {
		t.Errorf("expected 10 entries, got %d", len(entries))
	}
}
