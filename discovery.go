package flexconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListFiles returns the absolute paths of files under root whose name ends
// with "."+postfix, sorted lexicographically. An empty postfix keeps every
// file. Entries are resolved with os.Stat so symlinks are followed; an entry
// that is neither a regular file nor a directory is a *DiscoveryError.
func ListFiles(root, postfix string, recursive bool) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &DiscoveryError{Path: root, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &DiscoveryError{Path: abs, Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Path: abs, Err: errors.New("not a directory")}
	}

	suffix := ""
	if postfix != "" {
		suffix = "." + strings.TrimPrefix(postfix, ".")
	}

	var files []string
	if err := walkDir(abs, suffix, recursive, &files); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func walkDir(dir, suffix string, recursive bool, files *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &DiscoveryError{Path: dir, Err: err}
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			return &DiscoveryError{Path: path, Err: err}
		}
		switch {
		case info.IsDir():
			if !recursive {
				continue
			}
			if err := walkDir(path, suffix, recursive, files); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if suffix == "" || strings.HasSuffix(entry.Name(), suffix) {
				*files = append(*files, path)
			}
		default:
			return &DiscoveryError{Path: path, Err: fmt.Errorf("unsupported file mode %s", info.Mode().Type())}
		}
	}
	return nil
}
