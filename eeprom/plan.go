package eeprom

// Chunk is one page write. Data aliases the buffer passed to Plan.
type Chunk struct {
	Offset uint32
	Data   []byte
}

func (c Chunk) End() uint32 {
	return c.Offset + uint32(len(c.Data))
}

// Plan splits a write into chunks that never cross a page boundary and
// never exceed the profile's write chunk size. Chunks are ordered by offset
// and must be written in that order.
func Plan(offset uint32, data []byte, p Profile) ([]Chunk, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := checkRange(offset, len(data), p.Capacity); err != nil {
		return nil, err
	}

	page := uint32(p.PageSize)
	end := offset + uint32(len(data))

	chunks := make([]Chunk, 0, len(data)/int(p.MaxWriteChunk)+2)
	for cursor := offset; cursor < end; {
		/* The device wraps within a page, so a chunk ends at the page end at the latest */
		chunkEnd := (cursor/page + 1) * page
		if limit := cursor + uint32(p.MaxWriteChunk); limit < chunkEnd {
			chunkEnd = limit
		}
		if end < chunkEnd {
			chunkEnd = end
		}

		chunks = append(chunks, Chunk{
			Offset: cursor,
			Data:   data[cursor-offset : chunkEnd-offset],
		})
		cursor = chunkEnd
	}

	return chunks, nil
}
