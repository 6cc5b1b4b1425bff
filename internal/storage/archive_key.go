package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// buildArchiveKey names a backup archive under a dated directory, e.g.
// backups/2026/08/31/backup-1756600000000000000.json.
func buildArchiveKey() string {
	now := time.Now().UTC()
	datedir := fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day())
	filename := fmt.Sprintf("backup-%d.json", now.UnixNano())
	return path.Join("backups", datedir, filename)
}

// validArchiveKey rejects keys that escape the backups prefix. Restore
// takes the key from a request body, so traversal must be blocked here.
func validArchiveKey(key string) bool {
	cleaned := path.Clean(strings.TrimLeft(key, "/"))
	if cleaned != strings.TrimLeft(key, "/") {
		return false
	}
	if strings.Contains(cleaned, "..") {
		return false
	}
	return strings.HasPrefix(cleaned, "backups/")
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}
