package checkout

import (
	"strings"
	"time"

	"family-store/internal/model"

	"github.com/araddon/dateparse"
)

// BuildLines converts cart items into order lines and returns the grand
// total, which always equals the sum of the line subtotals.
func BuildLines(items []model.CartItem) ([]model.OrderLine, int) {
	lines := make([]model.OrderLine, 0, len(items))
	total := 0
	for _, item := range items {
		line := model.OrderLine{
			Name:     item.Name,
			Category: item.Category,
			Price:    item.Price,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal(),
		}
		total += line.Subtotal
		lines = append(lines, line)
	}
	return lines, total
}

// NormalizePickupDate parses a loosely formatted date and returns it as
// YYYY-MM-DD. An empty value means today in loc.
func NormalizePickupDate(raw string, now time.Time, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.In(loc).Format(time.DateOnly), nil
	}

	t, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return "", model.ErrInvalidPickupDate
	}
	return t.Format(time.DateOnly), nil
}
