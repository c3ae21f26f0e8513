package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const NodeTotalFile = "nodetotal.txt"

// Writer stores the node list of a cycle under <dir>/YYYYMMDD/ and
// refreshes the copy at <dir>/.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "result"
	}
	return &Writer{dir: dir}
}

func (w *Writer) Write(nodes []string, at time.Time) error {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	data := []byte(b.String())

	for _, dir := range []string{filepath.Join(w.dir, at.Format("20060102")), w.dir} {
		if err := writeFile(filepath.Join(dir, NodeTotalFile), data); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create result dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
