// Package idgen provides short, URL-safe unique comment ID generation
// backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefix is prepended to every generated ID.
const Prefix = "cmt-"

// alphabet is the character set for the random portion of the ID.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// length is the number of random characters (excluding the prefix).
const length = 12

// NewCommentID returns a new unique comment ID.
func NewCommentID() (string, error) {
	id, err := nanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return Prefix + id, nil
}
