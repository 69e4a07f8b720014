// Package receipt builds receipt numbers, the receipt view shown after a
// distribution and its PDF export.
package receipt

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	numberPrefix = "REC"
	suffixMin    = 100
	suffixMax    = 999
)

// Synthesizer produces receipt numbers of the form REC-YYYYMMDD-NNN. Numbers
// are not unique; two calls on the same day can collide.
type Synthesizer struct {
	Now  func() time.Time
	Intn func(n int) int
}

// NewSynthesizer returns a Synthesizer on the wall clock and the global
// random source.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{Now: time.Now, Intn: rand.Intn}
}

// Next returns a receipt number for the current date.
func (s *Synthesizer) Next() string {
	now, intn := time.Now, rand.Intn
	if s != nil && s.Now != nil {
		now = s.Now
	}
	if s != nil && s.Intn != nil {
		intn = s.Intn
	}
	suffix := suffixMin + intn(suffixMax-suffixMin+1)
	return fmt.Sprintf("%s-%s-%03d", numberPrefix, now().Format("20060102"), suffix)
}
