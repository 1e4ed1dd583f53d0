// Package contact finds ball-impact frames by forward search from detected
// backswing tops.
package contact

import (
	"github.com/mgreen/swinglab/internal/domain/signal"
	"github.com/mgreen/swinglab/internal/domain/swing"
)

// Detect finds contact-point frames. For each backswing top it searches a
// tightly smoothed copy of the combined signal between ContactSearchMin and
// ContactSearchMax frames forward for the maximum, the moment the hands are
// fully extended at impact. Backswings whose window starts past the end of
// the signal are skipped. Returns the contact frames and the
// contact-smoothed signal.
func Detect(backswings []int, combined []float64, p swing.Params) ([]int, []float64, error) {
	smoothed, err := signal.SavitzkyGolay(combined, p.ContactSavgolWindow, p.ContactSavgolPoly)
	if err != nil {
		return nil, nil, err
	}
	n := len(smoothed)
	contacts := make([]int, 0, len(backswings))
	for _, bf := range backswings {
		s := bf + p.ContactSearchMin
		if s >= n {
			continue
		}
		e := bf + p.ContactSearchMax
		if e > n-1 {
			e = n - 1
		}
		best := s
		for i := s + 1; i <= e; i++ {
			if smoothed[i] > smoothed[best] {
				best = i
			}
		}
		contacts = append(contacts, best)
	}
	return contacts, smoothed, nil
}
