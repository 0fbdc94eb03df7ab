// Package firmware holds the firmware upload form, the firmware history and
// the local store that firmware artifacts are uploaded to.
package firmware

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// File is a candidate firmware file on disk.
type File struct {
	Name string
	Path string
	Size int64
}

// FileFromPath stats path and describes it as a File.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat firmware file: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("firmware file %s is a directory", path)
	}
	return File{Name: filepath.Base(path), Path: path, Size: info.Size()}, nil
}

// Upload is a validated form submission.
type Upload struct {
	File        File
	Name        string
	Description string
}

// Firmware is one stored firmware artifact.
type Firmware struct {
	ID           string    `db:"id"`
	DefinitionID string    `db:"definition_id"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	CreatedAt    time.Time `db:"created_at"`
	Hash         string    `db:"hash"`
	Filename     string    `db:"filename"`
	Size         int64     `db:"size"`
}

// HashLabel renders the content hash for display.
func (fw Firmware) HashLabel() string {
	return "SHA256: " + fw.Hash
}

// Form is the pending upload: a file plus its name and description.
type Form struct {
	file        *File
	name        string
	description string
	dragging    bool
}

// DragOver marks a drag hovering the drop zone.
func (f *Form) DragOver() {
	f.dragging = true
}

// DragLeave clears the hover mark.
func (f *Form) DragLeave() {
	f.dragging = false
}

// Dragging reports whether a drag hovers the drop zone.
func (f *Form) Dragging() bool {
	return f.dragging
}

// Drop takes the dropped file if exactly one was dropped. Other drops are
// ignored. It reports whether the file was taken.
func (f *Form) Drop(files []File) bool {
	f.dragging = false
	if len(files) != 1 {
		return false
	}
	f.SetFile(files[0])
	return true
}

// SetFile selects the file to upload.
func (f *Form) SetFile(file File) {
	f.file = &file
}

// File returns the selected file.
func (f *Form) File() (File, bool) {
	if f.file == nil {
		return File{}, false
	}
	return *f.file, true
}

// SetName sets the firmware name.
func (f *Form) SetName(name string) {
	f.name = name
}

// Name returns the firmware name.
func (f *Form) Name() string {
	return f.name
}

// SetDescription sets the firmware description.
func (f *Form) SetDescription(description string) {
	f.description = description
}

// Description returns the firmware description.
func (f *Form) Description() string {
	return f.description
}

// Clear resets the file, name and description.
func (f *Form) Clear() {
	f.file = nil
	f.name = ""
	f.description = ""
}

// CanUpload reports whether every field is filled in.
func (f *Form) CanUpload() bool {
	return f.file != nil && f.name != "" && f.description != ""
}

// Submit returns the upload when the form is complete. An incomplete form
// yields false and nothing else happens.
func (f *Form) Submit() (Upload, bool) {
	if !f.CanUpload() {
		return Upload{}, false
	}
	return Upload{File: *f.file, Name: f.name, Description: f.description}, true
}

// FileInfo describes the selected file, or "" when none.
func (f *Form) FileInfo() string {
	if f.file == nil {
		return ""
	}
	return fmt.Sprintf("%s - %d bytes", f.file.Name, f.file.Size)
}

// SortedHistory returns list ordered newest first. The input is not
// modified.
func SortedHistory(list []Firmware) []Firmware {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b Firmware) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
