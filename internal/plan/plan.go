// Package plan holds the subscription tiers and their limits. Billing is
// handled elsewhere; the API only reports the active tier.
package plan

// Key identifies a subscription tier.
type Key string

const (
	Free  Key = "free"
	Lite  Key = "lite"
	Elite Key = "elite"
)

// MaxKids is the per-plan child limit.
var MaxKids = map[Key]int{
	Free:  1,
	Lite:  2,
	Elite: 5,
}

// LiveCheckCap is the per-plan daily cap on quick video check-ins.
var LiveCheckCap = map[Key]int{
	Free:  5,
	Lite:  10,
	Elite: 15,
}

func (k Key) Valid() bool {
	_, ok := MaxKids[k]
	return ok
}

// Normalize falls back to the most permissive tier for unknown values,
// mirroring the dev backend's generous default.
func Normalize(s string) Key {
	k := Key(s)
	if !k.Valid() {
		return Elite
	}
	return k
}

// Info is the GET /api/plan response body.
type Info struct {
	Plan    Key `json:"plan"`
	MaxKids int `json:"maxKids"`
}

func InfoFor(k Key) Info {
	return Info{Plan: k, MaxKids: MaxKids[k]}
}
