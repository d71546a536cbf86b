package core

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/SSSOC-CAN/flux/preferences"
	e "github.com/pkg/errors"
)

// TestInitConfigNoYAML ensures that if no config.yaml is found, a default config is produced
func TestInitConfigNoYAML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "flux")
	config, err := InitConfig(dir)
	if err != nil {
		t.Fatalf("Could not initialize config: %v", err)
	}
	if !reflect.DeepEqual(config, default_config(dir)) {
		t.Errorf("InitConfig did not produce a default config when config.yaml was not present")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Data directory was not created: %v", err)
	}
}

// TestInitConfigFromYAML ensures that InitConfig reads config files and fills the blanks with defaults
func TestInitConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`DefaultLogDir: false
LogFileDir: /var/log/flux
ConsoleOutput: true
LogLevel: debug
Concurrency: 8
Preferences:
  Columns:
    campaigns: [name, spend]
`)
	if err := os.WriteFile(filepath.Join(dir, config_file_name), data, 0600); err != nil {
		t.Fatalf("Could not write config file: %v", err)
	}
	config, err := InitConfig(dir)
	if err != nil {
		t.Fatalf("Could not initialize config: %v", err)
	}
	if config.DefaultLogDir || config.LogFileDir != "/var/log/flux" || !config.ConsoleOutput {
		t.Errorf("Logging fields not read from config.yaml: %+v", config)
	}
	if config.LogLevel != "DEBUG" {
		t.Errorf("Expected DEBUG log level, received %s", config.LogLevel)
	}
	if config.Concurrency != 8 {
		t.Errorf("Expected concurrency of 8, received %v", config.Concurrency)
	}
	if config.MaxLogFileSize != default_log_file_size {
		t.Errorf("MaxLogFileSize not defaulted: %v", config.MaxLogFileSize)
	}
	if config.DBPath != filepath.Join(dir, db_file_name) || config.HierarchyFile != filepath.Join(dir, hierarchy_file_name) {
		t.Errorf("Data paths not defaulted: %s %s", config.DBPath, config.HierarchyFile)
	}
	if !reflect.DeepEqual(config.Preferences.Columns, map[string][]string{"campaigns": {"name", "spend"}}) {
		t.Errorf("Unexpected column defaults: %v", config.Preferences.Columns)
	}
	if config.Preferences.Metrics["campaigns"] != (preferences.MetricSelection{Primary: "clicks", Secondary: "spend"}) {
		t.Errorf("Metric defaults not filled in: %v", config.Preferences.Metrics)
	}
}

// TestInitConfigDataDir ensures the database and hierarchy default into a configured data directory
func TestInitConfigDataDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config_file_name), []byte("DataDir: /srv/flux\n"), 0600); err != nil {
		t.Fatalf("Could not write config file: %v", err)
	}
	config, err := InitConfig(dir)
	if err != nil {
		t.Fatalf("Could not initialize config: %v", err)
	}
	if config.DBPath != filepath.Join("/srv/flux", db_file_name) {
		t.Errorf("Unexpected database path: %s", config.DBPath)
	}
	if !config.DefaultLogDir || config.LogFileDir != dir {
		t.Errorf("Log directory not defaulted: %+v", config)
	}
}

// TestInitConfigErrors ensures malformed config files are reported
func TestInitConfigErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		data string
		err  error
	}{
		{"bad level", "LogLevel: loud\n", ErrUnknownLogLevel},
		{"bad yaml", "LogLevel: [\n", nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, config_file_name), []byte(tc.data), 0600); err != nil {
				t.Fatalf("Could not write config file: %v", err)
			}
			_, err := InitConfig(dir)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tc.err != nil && !e.Is(err, tc.err) {
				t.Errorf("Expected %v, received %v", tc.err, err)
			}
		})
	}
}

// TestChangeFieldTypeMismatch ensures change_field refuses values of the wrong type
func TestChangeFieldTypeMismatch(t *testing.T) {
	config := Config{}
	v := reflect.ValueOf(&config).Elem()
	if err := change_field(v.FieldByName("LogFileDir"), int64(3)); !e.Is(err, ErrFieldType) {
		t.Errorf("Expected ErrFieldType, received %v", err)
	}
	if err := change_field(v.FieldByName("MaxLogFiles"), int64(3)); err != nil || config.MaxLogFiles != 3 {
		t.Errorf("Could not set MaxLogFiles: %v", err)
	}
}
