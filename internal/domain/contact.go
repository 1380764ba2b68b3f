package domain

import (
	"encoding/json"
	"fmt"
)

// PreviewWindow is the maximum number of contacts kept for preview.
const PreviewWindow = 5

// Contact is a single recipient as reported by the parsing service.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// UnmarshalJSON accepts both the worker's keys (nombre/telefono) and the
// english ones (name/phone).
func (c *Contact) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Nombre   string `json:"nombre"`
		Telefono any    `json:"telefono"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Name = raw.Name
	if c.Name == "" {
		c.Name = raw.Nombre
	}
	c.Phone = raw.Phone
	if c.Phone == "" && raw.Telefono != nil {
		switch v := raw.Telefono.(type) {
		case string:
			c.Phone = v
		case float64:
			c.Phone = fmt.Sprintf("%.0f", v)
		default:
			c.Phone = fmt.Sprint(v)
		}
	}
	return nil
}

// ContactFile is the contact list currently selected for a run.
type ContactFile struct {
	// ID is the server-side filename, used as the run's source file.
	ID           string
	DisplayName  string
	ContactCount int
	Preview      []Contact
}

// NewContactFile builds a ContactFile, trimming the preview to PreviewWindow.
func NewContactFile(id, displayName string, count int, preview []Contact) (ContactFile, error) {
	if id == "" {
		return ContactFile{}, fmt.Errorf("contact file identifier cannot be empty")
	}
	if count < 0 {
		return ContactFile{}, fmt.Errorf("invalid contact count: %d", count)
	}
	if displayName == "" {
		displayName = id
	}
	n := len(preview)
	if n > PreviewWindow {
		n = PreviewWindow
	}
	p := make([]Contact, n)
	copy(p, preview[:n])
	return ContactFile{
		ID:           id,
		DisplayName:  displayName,
		ContactCount: count,
		Preview:      p,
	}, nil
}
