package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash derives a content identity from parts concatenated in the given order.
// The result is the lowercase hex SHA-256 digest of the concatenation, so
// callers must always pass fields in the same order for the same entity kind.
func Hash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(sum[:])
}

// ProjectHash returns the identity of a project: hash(logo, name).
func ProjectHash(logo, name string) string {
	return Hash(logo, name)
}

// FolderHash returns the identity of a folder: hash(projectID, folderName).
func FolderHash(projectID, folderName string) string {
	return Hash(projectID, folderName)
}

// SubFolderHash returns the identity of a sub-folder: hash(folderID, subFolderName).
func SubFolderHash(folderID, subFolderName string) string {
	return Hash(folderID, subFolderName)
}
