package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

// TestConfig represents a test configuration structure.
type TestConfig struct {
	Config string `help:"Config file path"`

	// Basic types
	StringField   string        `toml:"test.string_field" env:"STRING_FIELD"`
	BoolField     bool          `toml:"test.bool_field" env:"BOOL_FIELD"`
	IntField      int           `toml:"test.int_field" env:"INT_FIELD"`
	SliceField    []string      `toml:"test.slice_field" env:"SLICE_FIELD"`
	DurationField time.Duration `toml:"test.duration_field" env:"DURATION_FIELD"`

	// Nested config
	NestedString string `toml:"nested.value" env:"NESTED_VALUE"`
}

func TestLoadConfigFromTOML(t *testing.T) {
	// Create a temporary TOML file
	tomlContent := `
[test]
string_field = "hello world"
bool_field = true
int_field = 42
slice_field = ["item1", "item2", "item3"]
duration_field = "750ms"

[nested]
value = "nested value"
`

	tmpFile, err := os.CreateTemp("", "test_config_*.toml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, writeErr := tmpFile.WriteString(tomlContent); writeErr != nil {
		t.Fatalf("Failed to write to temp file: %v", writeErr)
	}
	tmpFile.Close()

	// Test loading config
	config := &TestConfig{
		Config: tmpFile.Name(),
	}

	err = LoadConfig(config, nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// Verify values
	if config.StringField != "hello world" {
		t.Errorf("Expected StringField to be 'hello world', got '%s'", config.StringField)
	}

	if !config.BoolField {
		t.Errorf("Expected BoolField to be true, got %v", config.BoolField)
	}

	if config.IntField != 42 {
		t.Errorf("Expected IntField to be 42, got %d", config.IntField)
	}

	expectedSlice := []string{"item1", "item2", "item3"}
	if !reflect.DeepEqual(config.SliceField, expectedSlice) {
		t.Errorf("Expected SliceField to be %v, got %v", expectedSlice, config.SliceField)
	}

	if config.DurationField != 750*time.Millisecond {
		t.Errorf("Expected DurationField to be 750ms, got %v", config.DurationField)
	}

	if config.NestedString != "nested value" {
		t.Errorf("Expected NestedString to be 'nested value', got '%s'", config.NestedString)
	}
}

func TestLoadConfigFromEnvVars(t *testing.T) {
	// Set environment variables
	os.Setenv("MOLT_STRING_FIELD", "env string")
	os.Setenv("MOLT_BOOL_FIELD", "false")
	os.Setenv("MOLT_INT_FIELD", "123")
	os.Setenv("MOLT_SLICE_FIELD", "a,b,c")
	os.Setenv("MOLT_DURATION_FIELD", "2s")
	os.Setenv("MOLT_NESTED_VALUE", "env nested")

	defer func() {
		os.Unsetenv("MOLT_STRING_FIELD")
		os.Unsetenv("MOLT_BOOL_FIELD")
		os.Unsetenv("MOLT_INT_FIELD")
		os.Unsetenv("MOLT_SLICE_FIELD")
		os.Unsetenv("MOLT_DURATION_FIELD")
		os.Unsetenv("MOLT_NESTED_VALUE")
	}()

	config := &TestConfig{}

	err := LoadConfig(config, nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// Verify values
	if config.StringField != "env string" {
		t.Errorf("Expected StringField to be 'env string', got '%s'", config.StringField)
	}

	if config.BoolField {
		t.Errorf("Expected BoolField to be false, got %v", config.BoolField)
	}

	if config.IntField != 123 {
		t.Errorf("Expected IntField to be 123, got %d", config.IntField)
	}

	expectedSlice := []string{"a", "b", "c"}
	if !reflect.DeepEqual(config.SliceField, expectedSlice) {
		t.Errorf("Expected SliceField to be %v, got %v", expectedSlice, config.SliceField)
	}

	if config.DurationField != 2*time.Second {
		t.Errorf("Expected DurationField to be 2s, got %v", config.DurationField)
	}

	if config.NestedString != "env nested" {
		t.Errorf("Expected NestedString to be 'env nested', got '%s'", config.NestedString)
	}
}

func TestLoadConfigEnvOverridesToml(t *testing.T) {
	// Create a temporary TOML file
	tomlContent := `
[test]
string_field = "toml value"
bool_field = true
int_field = 100
slice_field = ["toml1", "toml2"]
`

	tmpFile, err := os.CreateTemp("", "test_config_*.toml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, writeErr := tmpFile.WriteString(tomlContent); writeErr != nil {
		t.Fatalf("Failed to write to temp file: %v", writeErr)
	}
	tmpFile.Close()

	// Set environment variables that should override TOML
	os.Setenv("MOLT_STRING_FIELD", "env override")
	os.Setenv("MOLT_BOOL_FIELD", "false")

	defer func() {
		os.Unsetenv("MOLT_STRING_FIELD")
		os.Unsetenv("MOLT_BOOL_FIELD")
	}()

	config := &TestConfig{
		Config: tmpFile.Name(),
	}

	err = LoadConfig(config, nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// Verify env vars override TOML values
	if config.StringField != "env override" {
		t.Errorf("Expected StringField to be 'env override', got '%s'", config.StringField)
	}

	if config.BoolField {
		t.Errorf("Expected BoolField to be false (env override), got %v", config.BoolField)
	}

	// Verify TOML values are used when no env override
	if config.IntField != 100 {
		t.Errorf("Expected IntField to be 100 (from TOML), got %d", config.IntField)
	}

	expectedSlice := []string{"toml1", "toml2"}
	if !reflect.DeepEqual(config.SliceField, expectedSlice) {
		t.Errorf("Expected SliceField to be %v (from TOML), got %v", expectedSlice, config.SliceField)
	}
}

func TestGetNestedValue(t *testing.T) {
	data := map[string]any{
		"level1": map[string]any{
			"level2": map[string]any{
				"value": "nested_value",
			},
			"simple": "simple_value",
		},
		"root": "root_value",
	}

	tests := []struct {
		path     string
		expected any
	}{
		{"root", "root_value"},
		{"level1.simple", "simple_value"},
		{"level1.level2.value", "nested_value"},
		{"nonexistent", nil},
		{"level1.nonexistent", nil},
	}

	for _, test := range tests {
		result := getNestedValue(data, test.path)
		if result != test.expected {
			t.Errorf("getNestedValue(%q) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

func TestSetFieldValue(t *testing.T) {
	type TestStruct struct {
		StringField   string
		BoolField     bool
		IntField      int
		SliceField    []string
		DurationField time.Duration
	}

	s := &TestStruct{}
	v := reflect.ValueOf(s).Elem()

	// Test string field
	setFieldValue(v.FieldByName("StringField"), "test string")
	if s.StringField != "test string" {
		t.Errorf("Expected StringField to be 'test string', got '%s'", s.StringField)
	}

	// Test bool field
	setFieldValue(v.FieldByName("BoolField"), true)
	if !s.BoolField {
		t.Errorf("Expected BoolField to be true, got %v", s.BoolField)
	}

	// Test int field
	setFieldValue(v.FieldByName("IntField"), int64(42))
	if s.IntField != 42 {
		t.Errorf("Expected IntField to be 42, got %d", s.IntField)
	}

	// Test slice field
	sliceValue := []any{"a", "b", "c"}
	setFieldValue(v.FieldByName("SliceField"), sliceValue)
	expectedSlice := []string{"a", "b", "c"}
	if !reflect.DeepEqual(s.SliceField, expectedSlice) {
		t.Errorf("Expected SliceField to be %v, got %v", expectedSlice, s.SliceField)
	}

	// Test duration field from TOML string
	setFieldValue(v.FieldByName("DurationField"), "1500ms")
	if s.DurationField != 1500*time.Millisecond {
		t.Errorf("Expected DurationField to be 1.5s, got %v", s.DurationField)
	}

	// Bare TOML integers are taken as milliseconds
	setFieldValue(v.FieldByName("DurationField"), int64(250))
	if s.DurationField != 250*time.Millisecond {
		t.Errorf("Expected DurationField to be 250ms, got %v", s.DurationField)
	}
}

func TestSetFieldValueFromString(t *testing.T) {
	type TestStruct struct {
		StringField   string
		BoolField     bool
		IntField      int
		SliceField    []string
		DurationField time.Duration
	}

	s := &TestStruct{}
	v := reflect.ValueOf(s).Elem()

	// Test string field
	setFieldValueFromString(v.FieldByName("StringField"), "test string")
	if s.StringField != "test string" {
		t.Errorf("Expected StringField to be 'test string', got '%s'", s.StringField)
	}

	// Test bool field
	setFieldValueFromString(v.FieldByName("BoolField"), "true")
	if !s.BoolField {
		t.Errorf("Expected BoolField to be true, got %v", s.BoolField)
	}

	// Test int field
	setFieldValueFromString(v.FieldByName("IntField"), "123")
	if s.IntField != 123 {
		t.Errorf("Expected IntField to be 123, got %d", s.IntField)
	}

	// Test slice field (comma-separated)
	setFieldValueFromString(v.FieldByName("SliceField"), "x,y,z")
	expectedSlice := []string{"x", "y", "z"}
	if !reflect.DeepEqual(s.SliceField, expectedSlice) {
		t.Errorf("Expected SliceField to be %v, got %v", expectedSlice, s.SliceField)
	}

	// Test slice field with spaces
	setFieldValueFromString(v.FieldByName("SliceField"), " a , b , c ")
	expectedSliceWithSpaces := []string{"a", "b", "c"}
	if !reflect.DeepEqual(s.SliceField, expectedSliceWithSpaces) {
		t.Errorf("Expected SliceField to be %v, got %v", expectedSliceWithSpaces, s.SliceField)
	}

	// Test duration field
	setFieldValueFromString(v.FieldByName("DurationField"), "5s")
	if s.DurationField != 5*time.Second {
		t.Errorf("Expected DurationField to be 5s, got %v", s.DurationField)
	}

	// Invalid duration leaves the field untouched
	setFieldValueFromString(v.FieldByName("DurationField"), "soon")
	if s.DurationField != 5*time.Second {
		t.Errorf("Expected DurationField to stay 5s, got %v", s.DurationField)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	config := &TestConfig{
		Config: "nonexistent_file.toml",
	}

	// Should not fail when file doesn't exist
	err := LoadConfig(config, nil)
	if err != nil {
		t.Fatalf("LoadConfig should not fail for missing file: %v", err)
	}
}

// ReloadConfig matches the watcher and process fields in the root command options.
type ReloadConfig struct {
	Config          string        `help:"Config file path"`
	Glob            []string      `toml:"watch.globs" env:"WATCH_GLOBS"`
	Interval        time.Duration `toml:"watch.interval" env:"WATCH_INTERVAL"`
	GracefulTimeout time.Duration `toml:"process.graceful_timeout" env:"PROCESS_GRACEFUL_TIMEOUT"`
	Command         string        `toml:"process.command" env:"PROCESS_COMMAND"`
}

func TestLoadReloadConfig(t *testing.T) {
	tomlContent := `
[watch]
globs = ["web/**", "templates/*.html"]
interval = "250ms"

[process]
command = "python app.py"
graceful_timeout = "10s"
`

	tmpFile, err := os.CreateTemp("", "reload_config_*.toml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, writeErr := tmpFile.WriteString(tomlContent); writeErr != nil {
		t.Fatalf("Failed to write to temp file: %v", writeErr)
	}
	tmpFile.Close()

	config := &ReloadConfig{
		Config:          tmpFile.Name(),
		Interval:        500 * time.Millisecond, // defaults
		GracefulTimeout: 5 * time.Second,
	}

	err = LoadConfig(config, nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	expectedGlobs := []string{"web/**", "templates/*.html"}
	if !reflect.DeepEqual(config.Glob, expectedGlobs) {
		t.Errorf("Glob = %v, want %v", config.Glob, expectedGlobs)
	}
	if config.Interval != 250*time.Millisecond {
		t.Errorf("Interval = %v, want 250ms", config.Interval)
	}
	if config.GracefulTimeout != 10*time.Second {
		t.Errorf("GracefulTimeout = %v, want 10s", config.GracefulTimeout)
	}
	if config.Command != "python app.py" {
		t.Errorf("Command = %q, want 'python app.py'", config.Command)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	// Create a temporary file with invalid TOML
	invalidToml := `
[test
invalid toml syntax
`

	tmpFile, err := os.CreateTemp("", "invalid_config_*.toml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, writeErr := tmpFile.WriteString(invalidToml); writeErr != nil {
		t.Fatalf("Failed to write to temp file: %v", writeErr)
	}
	tmpFile.Close()

	config := &TestConfig{
		Config: tmpFile.Name(),
	}

	// Should fail with invalid TOML
	err = LoadConfig(config, nil)
	if err == nil {
		t.Fatalf("LoadConfig should fail for invalid TOML")
	}
}

func TestLoadLogConfig(t *testing.T) {
	tomlContent := `
[log]
level = "debug"
format = "json"

[log.modules]
watch = "debug"
api = "warn"
`

	tmpFile, err := os.CreateTemp("", "log_config_*.toml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, writeErr := tmpFile.WriteString(tomlContent); writeErr != nil {
		t.Fatalf("Failed to write to temp file: %v", writeErr)
	}
	tmpFile.Close()

	cfg := LoadLogConfig(tmpFile.Name())

	if cfg.Level != "debug" {
		t.Errorf("Level = %q, want 'debug'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want 'json'", cfg.Format)
	}
	if cfg.Modules["watch"] != "debug" {
		t.Errorf("Modules[watch] = %q, want 'debug'", cfg.Modules["watch"])
	}
	if cfg.Modules["api"] != "warn" {
		t.Errorf("Modules[api] = %q, want 'warn'", cfg.Modules["api"])
	}
}

func TestLoadLogConfigDefaults(t *testing.T) {
	cfg := LoadLogConfig("nonexistent_file.toml")

	if cfg.Level != "info" {
		t.Errorf("Level = %q, want 'info'", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("Format = %q, want 'console'", cfg.Format)
	}
	if len(cfg.Modules) != 0 {
		t.Errorf("Modules = %v, want empty", cfg.Modules)
	}
}
