package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newReference builds a human-readable document number such as
// REC-20260831-4F7A2C. The suffix is random, not sequential, so
// references never leak volume.
func newReference(prefix string, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), suffix)
}

// formatCents renders an amount in cents as a decimal string.
func formatCents(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}
