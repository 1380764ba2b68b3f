package logging

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// rotate removes the oldest sendpanel_*.log files in dir so that at most
// maxFiles remain, leaving room for the file about to be created.
func rotate(dir string, maxFiles int) error {
	if maxFiles <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	type logFile struct {
		path string
		mod  int64
	}
	var logFiles []logFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, logFileSuffix) {
			continue
		}
		var mod int64
		if info, err := entry.Info(); err == nil {
			mod = info.ModTime().UnixNano()
		}
		logFiles = append(logFiles, logFile{path: filepath.Join(dir, name), mod: mod})
	}
	if len(logFiles) < maxFiles {
		return nil
	}
	sort.Slice(logFiles, func(i, j int) bool {
		if logFiles[i].mod == logFiles[j].mod {
			return logFiles[i].path < logFiles[j].path
		}
		return logFiles[i].mod < logFiles[j].mod
	})
	for i := 0; i <= len(logFiles)-maxFiles; i++ {
		os.Remove(logFiles[i].path) // ignore errors
	}
	return nil
}
