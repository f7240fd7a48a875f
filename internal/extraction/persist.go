package extraction

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultXMLFilename is used when the service does not name the extracted file.
const DefaultXMLFilename = "extracted.xml"

// PersistIfPresent writes the extracted XML of a successful response into dir
// (the working directory when empty), replacing any existing file. It returns
// the written path and true, or false when the response carries nothing to save.
func PersistIfPresent(resp APIResponse, dir string) (string, bool, error) {
	res, ok := resp.Extraction()
	if !ok {
		return "", false, nil
	}

	name := filepath.Base(res.XMLFilename)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		name = DefaultXMLFilename
	}

	path := name
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", false, fmt.Errorf("create output directory: %w", err)
		}
		path = filepath.Join(dir, name)
	}

	if err := os.WriteFile(path, []byte(res.XMLContent), 0o644); err != nil {
		return "", false, err
	}
	return path, true, nil
}
