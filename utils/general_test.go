package utils

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
)

var (
	testFileName      = "test.csv"
	expectedFileNames = map[int]string{
		1:  "test (1).csv",
		4:  "test (4).csv",
		11: "test (11).csv",
	}
)

// TestUniqueFileName tests the function UniqueFileName against a series of cases
func TestUniqueFileName(t *testing.T) {
	tmp_dir := t.TempDir()
	file_name := filepath.Join(tmp_dir, testFileName)
	for i := 0; i < 12; i++ {
		new_file_name := UniqueFileName(file_name)
		f, err := os.Create(new_file_name)
		if err != nil {
			t.Fatalf("Could not create file at %v: %v", new_file_name, err)
		}
		f.Close()
		if expected, ok := expectedFileNames[i]; ok {
			if new_file_name != filepath.Join(tmp_dir, expected) {
				t.Errorf("Expected: %s, recieved: %s", filepath.Join(tmp_dir, expected), new_file_name)
			}
		}
	}
}

// TestFileExists tests the FileExists function
func TestFileExists(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := path.Join(tempDir, "flux.db")
	f, err := os.OpenFile(dbPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0775)
	if err != nil {
		t.Fatalf("Could not open/create file: %v", err)
	}
	f.Close()
	if !FileExists(dbPath) {
		t.Fatal("File doesn't exist when it should")
	}
	if FileExists(path.Join(tempDir, "config.yaml")) {
		t.Fatal("File exists when it shouldn't")
	}
}

// TestAppDataDir ensures each platform gets its conventional directory name
func TestAppDataDir(t *testing.T) {
	if dir := appDataDir("linux", "flux", false); !strings.HasSuffix(dir, string(filepath.Separator)+".flux") && dir != "." {
		t.Errorf("Unexpected linux data directory: %s", dir)
	}
	if dir := appDataDir("darwin", ".flux", false); !strings.HasSuffix(dir, filepath.Join("Application Support", "Flux")) && dir != "." {
		t.Errorf("Unexpected darwin data directory: %s", dir)
	}
	t.Setenv("LOCALAPPDATA", filepath.Join("C:", "Local"))
	t.Setenv("APPDATA", filepath.Join("C:", "Roaming"))
	if dir := appDataDir("windows", "flux", false); dir != filepath.Join("C:", "Local", "Flux") {
		t.Errorf("Unexpected windows data directory: %s", dir)
	}
	if dir := appDataDir("windows", "flux", true); dir != filepath.Join("C:", "Roaming", "Flux") {
		t.Errorf("Unexpected roaming data directory: %s", dir)
	}
	if dir := AppDataDir("", false); dir != "." {
		t.Errorf("Expected . for an empty application name, received %s", dir)
	}
}
