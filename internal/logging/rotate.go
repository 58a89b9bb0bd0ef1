package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// rotateFiles shifts coverflow.N.log to N+1, drops anything past
// maxBackups and moves the live file to .1.
func rotateFiles(basePath string, maxBackups int) error {
	dir := filepath.Dir(basePath)
	base := filepath.Base(basePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	backups, err := findBackups(dir, name, ext)
	if err != nil {
		return err
	}
	slices.Sort(backups)
	slices.Reverse(backups)

	backup := func(n int) string {
		return filepath.Join(dir, name+"."+strconv.Itoa(n)+ext)
	}

	for _, n := range backups {
		if n >= maxBackups {
			os.Remove(backup(n))
			continue
		}
		if err := os.Rename(backup(n), backup(n+1)); err != nil {
			return fmt.Errorf("failed to rotate backup %d: %w", n, err)
		}
	}

	if _, err := os.Stat(basePath); err == nil {
		if err := os.Rename(basePath, backup(1)); err != nil {
			return fmt.Errorf("failed to rotate current log: %w", err)
		}
	}
	return nil
}

func findBackups(dir, name, ext string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var backups []int
	prefix := name + "."
	for _, entry := range entries {
		fname := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(fname, prefix) || !strings.HasSuffix(fname, ext) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(fname, prefix), ext))
		if err != nil || n < 1 {
			continue
		}
		backups = append(backups, n)
	}
	return backups, nil
}
