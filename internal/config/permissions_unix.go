//go:build unix

package config

import (
	"fmt"
	"os"
)

// checkFilePermissions describes the problem when the config file can be
// read by group or others, "" otherwise.
func checkFilePermissions(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return fmt.Sprintf("Config file '%s' has insecure permissions (%04o); other users may be able to read database credentials. Run: chmod 600 %s",
			path, mode, path)
	}
	return ""
}
