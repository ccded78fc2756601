package placeholder

import (
	"fmt"

	"github.com/alexander-bruun/placeholders/utils/files"
)

// SearchResult is the outcome of a quality search.
type SearchResult struct {
	Quality  int
	Size     int
	Attempts int
	// Reached is false when the search stopped at the quality cap without
	// producing minBytes.
	Reached bool
}

// SearchQuality encodes b in its own format starting at quality 0 and raises
// the quality by step until the output is at least minBytes or maxQuality is
// hit. The last step is clamped so the returned quality never exceeds
// maxQuality. Formats that ignore quality are encoded once: a short result
// goes straight to maxQuality.
func SearchQuality(b *Backend, minBytes float64, step, maxQuality int) (SearchResult, error) {
	if step < 1 {
		return SearchResult{}, fmt.Errorf("quality step must be at least 1, got %d", step)
	}

	quality := 0
	data, err := b.EncodeAs(b.Format(), quality)
	if err != nil {
		return SearchResult{}, fmt.Errorf("encode at quality %d: %w", quality, err)
	}
	result := SearchResult{Size: len(data), Attempts: 1}

	if !files.IsLossy(OutputFormat(b.Format())) {
		if float64(result.Size) < minBytes {
			quality = maxQuality
		}
		result.Quality = quality
		result.Reached = float64(result.Size) >= minBytes
		return result, nil
	}

	for float64(result.Size) < minBytes && quality < maxQuality {
		quality = min(quality+step, maxQuality)
		data, err = b.EncodeAs(b.Format(), quality)
		if err != nil {
			return SearchResult{}, fmt.Errorf("encode at quality %d: %w", quality, err)
		}
		result.Size = len(data)
		result.Attempts++
	}

	result.Quality = quality
	result.Reached = float64(result.Size) >= minBytes
	return result, nil
}
