// Package search provides a unified search abstraction for filtering
// contacts and stored files. It supports substring and regex strategies
// through a common Provider interface.
package search

import (
	"github.com/cristianoliveira/sendpanel/internal/contacts"
	"github.com/cristianoliveira/sendpanel/internal/domain"
)

// Searchable fields.
const (
	FieldName  = "name"
	FieldPhone = "phone"
)

// Record is the set of named fields an item exposes to search.
type Record map[string]string

// ContactRecord exposes a contact's name and phone.
func ContactRecord(c domain.Contact) Record {
	return Record{FieldName: c.Name, FieldPhone: c.Phone}
}

// FileRecord exposes a stored file's name.
func FileRecord(f contacts.RemoteFile) Record {
	return Record{FieldName: f.Name}
}

// Provider defines the interface for search providers.
type Provider interface {
	// Match returns true if the record matches the search query.
	Match(r Record, query string) bool

	// Name returns the provider name for identification and debugging.
	Name() string
}

// Options holds configuration options for creating search providers.
type Options struct {
	CaseInsensitive bool     // If true, searches ignore case sensitivity
	Fields          []string // Fields to search in
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		CaseInsensitive: true,
		Fields:          []string{FieldName, FieldPhone},
	}
}

// Option is a function that modifies search options.
type Option func(*Options)

// WithCaseInsensitive sets case-insensitive search.
func WithCaseInsensitive(enabled bool) Option {
	return func(o *Options) {
		o.CaseInsensitive = enabled
	}
}

// WithFields sets the fields to search in.
func WithFields(fields ...string) Option {
	return func(o *Options) {
		o.Fields = fields
	}
}

// applyOptions applies the given options to the options struct.
func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the regex provider when regex is set, the substring one otherwise.
func New(regex bool, opts ...Option) Provider {
	if regex {
		return NewRegexProvider(opts...)
	}
	return NewSubstringProvider(opts...)
}

// Contacts returns the contacts matching query.
func Contacts(p Provider, list []domain.Contact, query string) []domain.Contact {
	out := make([]domain.Contact, 0, len(list))
	for _, c := range list {
		if p.Match(ContactRecord(c), query) {
			out = append(out, c)
		}
	}
	return out
}

// Files returns the stored files matching query.
func Files(p Provider, list []contacts.RemoteFile, query string) []contacts.RemoteFile {
	out := make([]contacts.RemoteFile, 0, len(list))
	for _, f := range list {
		if p.Match(FileRecord(f), query) {
			out = append(out, f)
		}
	}
	return out
}
