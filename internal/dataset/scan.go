package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/seglab/segfeed/internal/domain"
)

// imageExts lists the file extensions considered decodable. Keep in sync
// with the codecs registered by internal/decode.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Scan enumerates image/target pairs by matching file stems between
// imageDir and targetDir. A pair exists when a file in imageDir has a file
// with the same stem (any decodable extension) in targetDir. The result is
// sorted by image path so enumeration order is stable across runs.
//
// Returns domain.ErrDataset if either directory is unreadable or no pair is
// found. Images without a matching target are skipped; the caller may log
// the count difference via the returned pair count.
func Scan(imageDir, targetDir string) ([]domain.SampleRef, error) {
	images, err := listImages(imageDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataset, err)
	}

	targets, err := listImages(targetDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataset, err)
	}

	byStem := make(map[string]string, len(targets))
	for _, t := range targets {
		byStem[stem(t)] = t
	}

	refs := make([]domain.SampleRef, 0, len(images))
	for _, img := range images {
		target, ok := byStem[stem(img)]
		if !ok {
			continue
		}
		refs = append(refs, domain.SampleRef{
			ImagePath:  filepath.Join(imageDir, img),
			TargetPath: filepath.Join(targetDir, target),
		})
	}

	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no image/target pairs under %s and %s",
			domain.ErrDataset, imageDir, targetDir)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].ImagePath < refs[j].ImagePath })
	return refs, nil
}

// listImages returns the decodable file names directly under dir, sorted.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
