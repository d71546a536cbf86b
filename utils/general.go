package utils

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"unicode"
)

// FileExists reports whether the named file or directory exists.
// This function is taken from https://github.com/lightningnetwork/lnd
func FileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// UniqueFileName creates a unique file name if the provided one exists
func UniqueFileName(path string) string {
	counter := 1
	for FileExists(path) {
		ext := filepath.Ext(path)
		if counter > 1 && counter < 11 {
			path = path[:len(path)-len(ext)-4] + " (" + strconv.Itoa(counter) + ")" + ext
		} else if counter >= 11 {
			path = path[:len(path)-len(ext)-5] + " (" + strconv.Itoa(counter) + ")" + ext
		} else {
			path = path[:len(path)-len(ext)] + " (" + strconv.Itoa(counter) + ")" + ext
		}
		counter++
	}
	return path
}

// AppDataDir returns an operating system specific directory to be used for
// storing application data for an application. On POSIX systems this is
// ~/.appname, on macOS ~/Library/Application Support/Appname and on Windows
// the local or roaming AppData folder.
// This function is adapted from https://github.com/btcsuite/btcutil
func AppDataDir(appName string, roaming bool) string {
	return appDataDir(runtime.GOOS, appName, roaming)
}

func appDataDir(goos, appName string, roaming bool) string {
	if appName == "" || appName == "." {
		return "."
	}
	appName = strings.TrimPrefix(appName, ".")
	appNameUpper := string(unicode.ToUpper(rune(appName[0]))) + appName[1:]
	appNameLower := string(unicode.ToLower(rune(appName[0]))) + appName[1:]
	var homeDir string
	if usr, err := user.Current(); err == nil {
		homeDir = usr.HomeDir
	}
	if homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	switch goos {
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if roaming || appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData != "" {
			return filepath.Join(appData, appNameUpper)
		}
	case "darwin":
		if homeDir != "" {
			return filepath.Join(homeDir, "Library", "Application Support", appNameUpper)
		}
	case "plan9":
		if homeDir != "" {
			return filepath.Join(homeDir, appNameLower)
		}
	default:
		if homeDir != "" {
			return filepath.Join(homeDir, "."+appNameLower)
		}
	}
	return "."
}
