package cmd

import (
	"io"
	"os"

	"github.com/cristianoliveira/sendpanel/internal/contacts"
	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/cristianoliveira/sendpanel/internal/prefs"
	"github.com/cristianoliveira/sendpanel/internal/session"
	"github.com/cristianoliveira/sendpanel/internal/storage"
)

// Dependencies are built lazily, after bootstrap has loaded the config.
// Tests replace these functions.
var (
	openSessionFunc = func(logger logging.Logger) (*session.Session, session.Resources, error) {
		return session.NewFromConfig(logger)
	}

	contactsClientFunc = func(logger logging.Logger) *contacts.Client {
		return contacts.NewFromConfig(logger)
	}

	prefsStoreFunc = func(logger logging.Logger) (*prefs.Store, func() error) {
		store := storage.NewFromConfig()
		p := prefs.New(store, logger)
		p.Load()
		return p, store.Close
	}

	openFileFunc = func(path string) (io.ReadCloser, error) {
		return os.Open(path)
	}
)
