package engine

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const compressionLevel = 3

var encoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			panic("failed to create zstd encoder: " + err.Error())
		}
		return encoder
	},
}

var decoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			panic("failed to create zstd decoder: " + err.Error())
		}
		return decoder
	},
}

func compress(data []byte) []byte {
	encoder := encoderPool.Get().(*zstd.Encoder)
	defer encoderPool.Put(encoder)

	return encoder.EncodeAll(data, make([]byte, 0, len(data)))
}

func decompress(data []byte) ([]byte, error) {
	decoder := decoderPool.Get().(*zstd.Decoder)
	defer decoderPool.Put(decoder)

	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress cache value: %w", err)
	}
	return out, nil
}
