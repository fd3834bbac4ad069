// Package util - Filesystem helpers for feeding recorded footage into the
// pipeline.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FrameFile is one still image of a dumped video sequence: its path, raw
// encoded bytes, and the frame number parsed from the file name.
type FrameFile struct {
	Path  string
	Data  []byte
	Index int
}

// frameIndex extracts the trailing run of digits from a file name stem, so
// "frame-0042", "cam2_17", and "000010" all yield their frame number.
func frameIndex(stem string) (int, error) {
	end := len(stem)
	start := end
	for start > 0 && stem[start-1] >= '0' && stem[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, errors.Errorf("no frame number in %q", stem)
	}
	return strconv.Atoi(stem[start:end])
}

// LoadFrameFiles reads every still image in dir and returns them sorted by
// the frame number embedded in each file name.
//
// Arguments:
// - dir: Directory containing .jpg, .jpeg, .png, or .bmp files whose names
//   end in a frame number, such as frame-0001.png.
//
// Returns:
// - []FrameFile: The sequence in ascending frame order.
// - error: An error if the directory cannot be read, a file cannot be read,
//   or an image file name carries no frame number.
func LoadFrameFiles(dir string) ([]FrameFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sequence directory %s", dir)
	}

	var seq []FrameFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".bmp":
		default:
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		index, err := frameIndex(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", entry.Name())
		}
		seq = append(seq, FrameFile{Path: path, Data: data, Index: index})
	}

	sort.Slice(seq, func(i, j int) bool {
		return seq[i].Index < seq[j].Index
	})
	return seq, nil
}
