package quiz

import "math/rand"

// Interstitial is a non-question screen shown between questions at the mode's
// checkpoint cadence. The engine only names the content; rendering is the
// caller's concern.
type Interstitial string

const (
	InterstitialAdBreak Interstitial = "ad-break"
	InterstitialUpgrade Interstitial = "upgrade-prompt"
	InterstitialReview  Interstitial = "review-prompt"
)

var interstitials = []Interstitial{
	InterstitialAdBreak,
	InterstitialUpgrade,
	InterstitialReview,
}

// PickInterstitial chooses from the fixed list deterministically for a given
// seed, so checkpoint content is reproducible in tests.
func PickInterstitial(seed int64) Interstitial {
	r := rand.New(rand.NewSource(seed))
	return interstitials[r.Intn(len(interstitials))]
}
