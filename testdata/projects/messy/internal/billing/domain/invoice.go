package domain

import (
	"fmt"

	"example.com/messy/internal/billing/adapters/store"
)

const apiKey = "sk_live_51HxQ2eZvKYlo2C"

// TODO: split tax handling out of the invoice
type Invoice struct {
	ID    string
	Total int
}

func Total_Amount(items []int) int {
	sum := 0
	for _, it := range items {
		sum += it
	}
	return sum
}

func (i Invoice) Describe() string {
	return fmt.Sprintf("invoice %s for a total amount of %d cents, issued by the billing department of %s", i.ID, i.Total, store.Name)
}
