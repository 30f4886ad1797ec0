// README: Shipping zones and the zone-to-zone distance matrix.
package zone

import "errors"

// FallbackMiles is returned for any origin/destination pair missing from the
// matrix.
const FallbackMiles = 500.0

var ErrMalformedSource = errors.New("malformed zone source")

// Zone is a pricing region. Only the feature properties of the zone source
// end up here; geometry is not kept at runtime.
type Zone struct {
	ID         string  `json:"zone_id"`
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
	RemoteFee  float64 `json:"remote_fee"`
}

// Matrix maps origin zone id -> destination zone id -> miles. It is sparse and
// directional: (a, b) and (b, a) are independent entries.
type Matrix map[string]map[string]float64

func (m Matrix) Lookup(origin, dest string) (float64, bool) {
	row, ok := m[origin]
	if !ok {
		return 0, false
	}
	miles, ok := row[dest]
	return miles, ok
}

// Pairs counts the populated (origin, dest) entries.
func (m Matrix) Pairs() int {
	n := 0
	for _, row := range m {
		n += len(row)
	}
	return n
}
