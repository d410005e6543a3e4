package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// Save writes the package to w. Parsed parts are serialised from their
// current trees; every other entry, including parts that failed to parse,
// is copied byte for byte. Entry order is preserved.
func (d *Document) Save(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, f := range d.zipReader.File {
		tree, ok := d.trees[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return fmt.Errorf("creating %s: %w", f.Name, err)
		}
		if _, err := tree.WriteTo(fw); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing package: %w", err)
	}
	return nil
}

// Bytes serialises the package into a new buffer.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
