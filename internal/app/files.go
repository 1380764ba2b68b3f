package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cristianoliveira/sendpanel/internal/contacts"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/search"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// OutputOptions controls how file command results are printed.
type OutputOptions struct {
	Format string
	// Search filters rows by name or phone. Empty keeps every row.
	Search string
	Regex  bool
	// Provider overrides the provider selected by Regex.
	Provider search.Provider
}

func (o OutputOptions) provider() search.Provider {
	if o.Provider != nil {
		return o.Provider
	}
	return search.New(o.Regex)
}

// FilesClient defines the worker operations the file commands need.
type FilesClient interface {
	ListFiles(ctx context.Context) ([]contacts.RemoteFile, error)
	Validate(ctx context.Context, name string) (contacts.Validation, error)
	Preview(ctx context.Context, name string) (contacts.Preview, error)
	Health(ctx context.Context) (contacts.Health, error)
}

// FilesUseCase coordinates the worker file commands.
type FilesUseCase struct {
	client FilesClient
}

// NewFilesUseCase creates a new files use-case.
func NewFilesUseCase(client FilesClient) *FilesUseCase {
	if client == nil {
		panic("NewFilesUseCase: client dependency cannot be nil")
	}
	return &FilesUseCase{client: client}
}

// List prints the contacts files stored on the worker.
func (u *FilesUseCase) List(ctx context.Context, w io.Writer, opts OutputOptions) error {
	files, err := u.client.ListFiles(ctx)
	if err != nil {
		return err
	}
	files = search.Files(opts.provider(), files, opts.Search)
	if opts.Format == FormatJSON {
		return writeJSON(w, files)
	}
	if len(files) == 0 {
		_, err := fmt.Fprintln(w, "No matching files on the worker")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCONTACTS\tSIZE\tMODIFIED")
	for _, f := range files {
		count := fmt.Sprintf("%d", f.ContactCount)
		if f.Unreadable {
			count = "unreadable"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", f.Name, count, f.Size, f.ModifiedAt().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// Validate prints the phone validation summary of a stored file.
func (u *FilesUseCase) Validate(ctx context.Context, name string, w io.Writer, opts OutputOptions) error {
	v, err := u.client.Validate(ctx, name)
	if err != nil {
		return err
	}
	v.Sample = search.Contacts(opts.provider(), v.Sample, opts.Search)
	if opts.Format == FormatJSON {
		return writeJSON(w, v)
	}
	fmt.Fprintf(w, "File:     %s\n", name)
	fmt.Fprintf(w, "Contacts: %d\n", v.TotalContacts)
	fmt.Fprintf(w, "Valid:    %d\n", v.ValidPhones)
	fmt.Fprintf(w, "Invalid:  %d\n", v.InvalidPhones)
	if len(v.Sample) > 0 {
		fmt.Fprintln(w)
		writeContacts(w, v.Sample)
	}
	return nil
}

// Preview prints the first contacts of a stored file.
func (u *FilesUseCase) Preview(ctx context.Context, name string, w io.Writer, opts OutputOptions) error {
	p, err := u.client.Preview(ctx, name)
	if err != nil {
		return err
	}
	p.Contacts = search.Contacts(opts.provider(), p.Contacts, opts.Search)
	if opts.Format == FormatJSON {
		return writeJSON(w, p)
	}
	fmt.Fprintf(w, "%s: %d contacts\n\n", name, p.TotalContacts)
	writeContacts(w, p.Contacts)
	return nil
}

// Health prints the worker health status.
func (u *FilesUseCase) Health(ctx context.Context, w io.Writer, format string) error {
	h, err := u.client.Health(ctx)
	if err != nil {
		return err
	}
	if format == FormatJSON {
		return writeJSON(w, h)
	}
	_, err = fmt.Fprintf(w, "%s: %s\n", h.Service, h.Status)
	return err
}

func writeContacts(w io.Writer, list []domain.Contact) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPHONE")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\n", strings.TrimSpace(c.Name), c.Phone)
	}
	_ = tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
