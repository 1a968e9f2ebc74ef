// Package chunker splits a page-tagged text stream into overlapping
// character chunks, preserving page attribution (spec §4.3). The sliding
// character window is grounded on the teacher corpus's own PDF-ingestion
// chunker (niski84-the-hive/internal/pdf/processor.go ChunkText), widened
// here to reset the window at every page boundary and to carry the page
// number through to each emitted chunk.
package chunker

// Page is one (page_number, page_text) pair as produced by TextExtractor
// or OcrRouter.
type Page struct {
	Number int
	Text   string
}

// Chunk is a single emitted window: at most Size runes, tagged with the
// page it came from.
type Chunk struct {
	PageNumber int
	Text       string
}

// Chunker splits page-tagged text into overlapping chunks of Size runes
// with Overlap runes shared between adjacent windows on the same page.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. Overlap must be smaller than size; config.Load
// already enforces this for the values sourced from CHUNK_SIZE/
// CHUNK_OVERLAP, but defend here too since Chunker is also usable
// standalone (e.g. from tests): an out-of-range overlap falls back to
// 200, or to 0 when size is 200 or less.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 200
		if overlap >= size {
			overlap = 0
		}
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits an ordered sequence of pages into an ordered sequence of
// chunks. Pages never bleed into one another: a page boundary always
// resets the sliding window, even if the previous page's tail was
// shorter than size. Within a page, the window advances by
// (size - overlap) runes until the tail, which is emitted if non-empty
// even when shorter than size. Character counts are Unicode scalar
// counts (runes), not bytes.
func (c *Chunker) Chunk(pages []Page) []Chunk {
	var out []Chunk
	stride := c.size - c.overlap

	for _, page := range pages {
		runes := []rune(page.Text)
		n := len(runes)
		if n == 0 {
			continue
		}

		for start := 0; start < n; start += stride {
			end := start + c.size
			if end > n {
				end = n
			}
			text := string(runes[start:end])
			if text != "" {
				out = append(out, Chunk{PageNumber: page.Number, Text: text})
			}
			if end == n {
				break
			}
		}
	}

	return out
}
