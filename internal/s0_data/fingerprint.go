package s0_data

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

// Fingerprint hashes the dataset content in input order.
// Used with the strategy hash as the panel cache key.
func Fingerprint(raw *contracts.RawDataset) string {
	h := sha256.New()
	var buf [8]byte

	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	writeTime := func(unix int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(unix))
		h.Write(buf[:])
	}

	h.Write([]byte("prices"))
	for _, o := range raw.Prices {
		writeTime(o.Date.Unix())
		h.Write([]byte(o.Ticker))
		h.Write([]byte{0})
		writeFloat(o.Price)
	}
	h.Write([]byte("benchmark"))
	for _, b := range raw.Benchmark {
		writeTime(b.Date.Unix())
		writeFloat(b.AdjClose)
	}

	return hex.EncodeToString(h.Sum(nil))
}
