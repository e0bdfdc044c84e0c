// Package models defines the core data structures for documents and users.
package models

import "path/filepath"

// Kind is the content kind of a document, derived from its file extension.
type Kind int

const (
	// PlainText is served verbatim as text/plain (".txt").
	PlainText Kind = iota + 1
	// Markdown is rendered to HTML before it is served (".md").
	Markdown
)

// String returns the file extension that identifies the kind.
func (k Kind) String() string {
	switch k {
	case PlainText:
		return ".txt"
	case Markdown:
		return ".md"
	default:
		return "unknown"
	}
}

// KindOf derives the document kind from a file name.
// The second result is false for any extension other than .txt and .md.
func KindOf(name string) (Kind, bool) {
	switch filepath.Ext(name) {
	case ".txt":
		return PlainText, true
	case ".md":
		return Markdown, true
	default:
		return 0, false
	}
}

// Document is a single stored file managed by the document store.
type Document struct {
	// Name is the file name inside the document root, e.g. "about.md".
	Name string
	// Content is the raw file content.
	Content []byte
	// Kind is derived from the extension of Name.
	Kind Kind
}

// User represents an application user with credentials.
type User struct {
	// Username is the login name chosen by the user.
	Username string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
}
