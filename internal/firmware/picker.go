package firmware

import (
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
)

// ErrPickCancelled is returned when the file dialog is dismissed.
var ErrPickCancelled = errors.New("file selection cancelled")

// Patterns lists the firmware file types offered by the picker.
var Patterns = []string{"*.hex", "*.bin", "*.uf2"}

// selectFile is replaced in tests.
var selectFile = zenity.SelectFile

// PickFile opens the native file dialog and describes the chosen file.
func PickFile(title string) (File, error) {
	path, err := selectFile(
		zenity.Title(title),
		zenity.FileFilter{Name: "Firmware", Patterns: Patterns},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return File{}, ErrPickCancelled
	}
	if err != nil {
		return File{}, fmt.Errorf("pick firmware file: %w", err)
	}
	return FileFromPath(path)
}
