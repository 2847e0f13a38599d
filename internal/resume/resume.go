package resume

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Load reads the PDF at path and returns its plain text, page texts joined
// with a newline.
func Load(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening resume %q: %w", path, err)
	}
	defer file.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extracting text from page %d of %q: %w", i, path, err)
		}

		pages = append(pages, text)
	}

	text := Normalize(strings.Join(pages, "\n"))
	if text == "" {
		return "", fmt.Errorf("resume %q contains no extractable text", path)
	}

	return text, nil
}

// Normalize collapses doubled newlines and trims surrounding whitespace.
func Normalize(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n\n", "\n"))
}
