package buckindex

import "github.com/cespare/xxhash/v2"

// HintKind selects the advisory probe position a bucket lookup starts
// scanning from. All hint modes are advisory only: correctness never
// depends on the hint being right, only on the bucket's full scan.
type HintKind uint8

const (
	// HintNone always starts scanning at slot 0.
	HintNone HintKind = iota
	// HintKeyMod uses key % capacity.
	HintKeyMod
	// HintXxhashMod mixes the key through xxhash before reducing modulo
	// capacity. The source treats its "clhash" mixer as an opaque 64-bit
	// hash; xxhash fills that role here (see DESIGN.md).
	HintXxhashMod
	// HintMurmurMod is a second, differently-seeded xxhash mix, standing
	// in for the source's "murmur" mixer. Kept as a distinct mode (rather
	// than collapsing into HintXxhashMod) because the source's
	// configuration table exposes clhash-mod and murmur-mod as separate,
	// independently selectable switches.
	HintMurmurMod
	// HintModel predicts the in-bucket offset from a linear model fit
	// over the bucket's own key range.
	HintModel
)

// String implements fmt.Stringer for readable config dumps.
func (h HintKind) String() string {
	switch h {
	case HintNone:
		return "none"
	case HintKeyMod:
		return "key-mod"
	case HintXxhashMod:
		return "clhash-mod"
	case HintMurmurMod:
		return "murmur-mod"
	case HintModel:
		return "model"
	default:
		return "unknown"
	}
}

// murmurSeed differentiates HintMurmurMod's mix from HintXxhashMod's
// despite both being implemented atop xxhash (see HintMurmurMod doc).
const murmurSeed uint64 = 0x9e3779b97f4a7c15

func xxhashMod(k uint64, capacity int) int {
	var buf [8]byte
	putUint64(buf[:], k)

	return int(xxhash.Sum64(buf[:]) % uint64(capacity))
}

func murmurModStandIn(k uint64, capacity int) int {
	var buf [8]byte
	putUint64(buf[:], k^murmurSeed)

	return int(xxhash.Sum64(buf[:]) % uint64(capacity))
}

func putUint64(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}

// computeHint derives the advisory probe slot for k in a bucket of the
// given capacity, spanning [loKey, hiKey) for HintModel.
func computeHint(kind HintKind, k uint64, capacity int, loKey, hiKey uint64) int {
	if capacity <= 0 {
		return 0
	}

	switch kind {
	case HintKeyMod:
		return int(k % uint64(capacity))
	case HintXxhashMod:
		return xxhashMod(k, capacity)
	case HintMurmurMod:
		return murmurModStandIn(k, capacity)
	case HintModel:
		if hiKey <= loKey {
			return 0
		}

		m := EndpointsModel([]uint64{loKey, hiKey}).Expand(float64(capacity))
		pos := m.Predict(k)
		if pos >= uint64(capacity) {
			pos = uint64(capacity - 1)
		}

		return int(pos)
	case HintNone:
		fallthrough
	default:
		return 0
	}
}
