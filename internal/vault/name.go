package vault

import (
	"fmt"
	"strings"
)

// checkName rejects snapshot names that could escape the vault's namespace.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".tmp-") {
		return fmt.Errorf("invalid snapshot name: %q", name)
	}
	return nil
}
