//go:build windows

package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ACL entries that grant access beyond the file owner.
var broadPrincipals = []string{
	"everyone",
	"authenticated users",
	"builtin\\users",
	"users",
}

// checkFilePermissions describes the problem when icacls shows the config
// file shared with broad principals, "" otherwise.
func checkFilePermissions(path string) string {
	if _, err := os.Stat(path); err != nil {
		return ""
	}

	output, err := exec.Command("icacls", path).Output()
	if err != nil {
		return ""
	}

	acl := strings.ToLower(string(output))
	for _, principal := range broadPrincipals {
		if strings.Contains(acl, principal) {
			return fmt.Sprintf("Config file '%s' may be readable by %s; database credentials could leak. Secure it with: icacls \"%s\" /inheritance:r /grant:r \"%%USERNAME%%:F\"",
				path, principal, path)
		}
	}
	return ""
}
