package core

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/SSSOC-CAN/flux/preferences"
	"github.com/SSSOC-CAN/flux/utils"
	bg "github.com/SSSOCPaulCote/blunderguard"
	e "github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const (
	ErrUnknownLogLevel = bg.Error("unknown log level")
	ErrFieldType       = bg.Error("value does not match the type of the field")
)

// Config is the object which will hold all of the config parameters
type Config struct {
	DefaultLogDir  bool                 `yaml:"DefaultLogDir"`
	LogFileDir     string               `yaml:"LogFileDir"`
	MaxLogFiles    int64                `yaml:"MaxLogFiles"`
	MaxLogFileSize int64                `yaml:"MaxLogFileSize"`
	ConsoleOutput  bool                 `yaml:"ConsoleOutput"`
	LogLevel       string               `yaml:"LogLevel"`
	DataDir        string               `yaml:"DataDir"`
	DBPath         string               `yaml:"DBPath"`
	HierarchyFile  string               `yaml:"HierarchyFile"`
	Concurrency    int64                `yaml:"Concurrency"`
	Preferences    preferences.Defaults `yaml:"Preferences"`
}

var (
	config_file_name             = "config.yaml"
	db_file_name                 = "flux.db"
	hierarchy_file_name          = "hierarchy.yaml"
	default_log_file_size int64  = 10
	default_max_log_files int64  = 0
	default_concurrency   int64  = 4
	default_log_level     string = "INFO"
	default_data_dir             = func() string {
		return utils.AppDataDir("flux", false)
	}
	default_preferences = func() preferences.Defaults {
		return preferences.Defaults{
			Columns: map[string][]string{
				"accounts":  {"name", "impressions", "clicks", "spend"},
				"campaigns": {"name", "status", "impressions", "clicks", "spend"},
				"adgroups":  {"name", "status", "clicks", "ctr", "spend"},
			},
			Metrics: map[string]preferences.MetricSelection{
				"accounts":  {Primary: "spend"},
				"campaigns": {Primary: "clicks", Secondary: "spend"},
				"adgroups":  {Primary: "clicks", Secondary: "ctr"},
			},
		}
	}
	default_config = func(dir string) Config {
		return Config{
			DefaultLogDir:  true,
			LogFileDir:     dir,
			MaxLogFiles:    default_max_log_files,
			MaxLogFileSize: default_log_file_size,
			ConsoleOutput:  false,
			LogLevel:       default_log_level,
			DataDir:        dir,
			DBPath:         filepath.Join(dir, db_file_name),
			HierarchyFile:  filepath.Join(dir, hierarchy_file_name),
			Concurrency:    default_concurrency,
			Preferences:    default_preferences(),
		}
	}
)

// InitConfig returns the `Config` struct with either default values or values specified in `config.yaml` found in dir.
// An empty dir uses the application data directory
func InitConfig(dir string) (Config, error) {
	if dir == "" {
		dir = default_data_dir()
	}
	if !utils.FileExists(dir) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return Config{}, e.Wrapf(err, "could not create data directory %s", dir)
		}
	}
	config := default_config(dir)
	config_path := filepath.Join(dir, config_file_name)
	if !utils.FileExists(config_path) {
		return config, nil
	}
	config_file, err := os.ReadFile(config_path)
	if err != nil {
		return Config{}, e.Wrapf(err, "could not read %s", config_path)
	}
	// blank fields left by a partial config.yaml are filled in below
	config = Config{}
	if err = yaml.Unmarshal(config_file, &config); err != nil {
		return Config{}, e.Wrapf(err, "could not parse %s", config_path)
	}
	config, err = check_yaml_config(config, dir)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// change_field changes the value of a specified field from the config struct
func change_field(field reflect.Value, new_value interface{}) error {
	if !field.IsValid() || !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		if v, ok := new_value.(string); ok {
			field.SetString(v)
			return nil
		}
	case reflect.Bool:
		if v, ok := new_value.(bool); ok {
			field.SetBool(v)
			return nil
		}
	case reflect.Int64:
		if v, ok := new_value.(int64); ok {
			field.SetInt(v)
			return nil
		}
	default:
		return nil
	}
	return e.Wrap(ErrFieldType, fmt.Sprintf("%v (%T) for %v field", new_value, new_value, field.Kind()))
}

// check_yaml_config iterates over the Config struct fields and changes blank fields to default values
func check_yaml_config(config Config, dir string) (Config, error) {
	defaults := default_config(dir)
	pv := reflect.ValueOf(&config)
	v := pv.Elem()
	field_names := v.Type()
	for i := 0; i < v.NumField(); i++ {
		var err error
		f := v.Field(i)
		switch field_names.Field(i).Name {
		case "LogFileDir":
			if f.String() == "" {
				err = change_field(f, defaults.LogFileDir)
				if err == nil {
					err = change_field(v.FieldByName("DefaultLogDir"), true)
				}
			}
		case "MaxLogFileSize":
			if f.Int() == 0 {
				err = change_field(f, defaults.MaxLogFileSize)
			}
		case "LogLevel":
			if f.String() == "" {
				err = change_field(f, defaults.LogLevel)
			} else if _, ok := log_level[strings.ToUpper(f.String())]; !ok {
				return Config{}, e.Wrap(ErrUnknownLogLevel, f.String())
			} else {
				err = change_field(f, strings.ToUpper(f.String()))
			}
		case "DataDir":
			if f.String() == "" {
				err = change_field(f, defaults.DataDir)
			}
		case "DBPath":
			if f.String() == "" {
				err = change_field(f, filepath.Join(v.FieldByName("DataDir").String(), db_file_name))
			}
		case "HierarchyFile":
			if f.String() == "" {
				err = change_field(f, filepath.Join(v.FieldByName("DataDir").String(), hierarchy_file_name))
			}
		case "Concurrency":
			if f.Int() <= 0 {
				err = change_field(f, defaults.Concurrency)
			}
		case "Preferences":
			if config.Preferences.Columns == nil {
				config.Preferences.Columns = defaults.Preferences.Columns
			}
			if config.Preferences.Metrics == nil {
				config.Preferences.Metrics = defaults.Preferences.Metrics
			}
		default:
			continue
		}
		if err != nil {
			return Config{}, err
		}
	}
	return config, nil
}
