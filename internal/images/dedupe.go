package images

import (
	"image"
	"log/slog"
	"os"

	"github.com/corona10/goimagehash"
	"github.com/modaworks/curator/internal/classify"
)

// dedupeThreshold is the maximum Hamming distance between two dHash values
// below which images are considered perceptually identical.
const dedupeThreshold = 10

// Dedupe drops images that are perceptually identical to an earlier one in
// the list. Crawled detail pages often repeat the same shot at different
// crops or compressions; skipping them saves classification calls. Any image
// that cannot be decoded or hashed is kept (graceful degradation).
func Dedupe(refs []classify.ImageRef) []classify.ImageRef {
	var kept []classify.ImageRef
	var hashes []*goimagehash.ImageHash

	for _, ref := range refs {
		hash, err := hashFile(ref.FilePath)
		if err != nil {
			kept = append(kept, ref)
			continue
		}

		duplicate := false
		for _, h := range hashes {
			if dist, err := hash.Distance(h); err == nil && dist < dedupeThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			slog.Debug("Dropping near-duplicate image", "file", ref.FileName)
			continue
		}

		hashes = append(hashes, hash)
		kept = append(kept, ref)
	}
	return kept
}

func hashFile(path string) (*goimagehash.ImageHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return goimagehash.DifferenceHash(img)
}
