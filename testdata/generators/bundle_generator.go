// Command bundle_generator produces record bundle JSON files for
// offline audit runs (auditor audit --input-bundle). Generation is
// seeded so datasets are reproducible.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

type registryEntry struct {
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type debitEntry struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

type creditEntry struct {
	AccountRef     string          `json:"accountRef"`
	UserID         string          `json:"userId,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	TransactionRef string          `json:"transactionRef"`
}

type bundle struct {
	Registry []registryEntry `json:"registry"`
	Debits   []debitEntry    `json:"debits"`
	Credits  []creditEntry   `json:"credits"`
}

var firstNames = []string{"Amina", "Bashir", "Caaliya", "Daauud", "Ebyan", "Farah", "Geedi", "Hodan", "Idil", "Jamaal"}
var lastNames = []string{"Omar", "Warsame", "Hassan", "Cali", "Yusuf", "Maxamed", "Axmed", "Ismaaciil"}

func main() {
	var (
		output       = flag.String("output", "generated_bundle.json", "Output JSON file path")
		users        = flag.Int("users", 25, "Number of registry users")
		date         = flag.String("date", "2026-08-29", "Statement date (YYYY-MM-DD)")
		missingRate  = flag.Float64("missing-rate", 0.2, "Fraction of users with no payment")
		lateRate     = flag.Float64("late-rate", 0.15, "Fraction of payments after 20:00")
		unknownCount = flag.Int("unknown", 2, "Number of credits from unknown accounts")
		seed         = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
	)
	flag.Parse()

	if _, err := time.Parse("2006-01-02", *date); err != nil {
		log.Fatalf("Invalid date: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	b := generate(rng, *users, *date, *missingRate, *lateRate, *unknownCount)

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode bundle: %v", err)
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		log.Fatalf("Failed to write bundle: %v", err)
	}

	fmt.Printf("Generated bundle with %d users, %d debits, %d credits in %s\n",
		len(b.Registry), len(b.Debits), len(b.Credits), *output)
	fmt.Printf("Seed used: %d\n", *seed)
}

func generate(rng *rand.Rand, users int, date string, missingRate, lateRate float64, unknownCount int) *bundle {
	b := &bundle{}

	for i := 0; i < users; i++ {
		userID := fmt.Sprintf("U%04d", i+1)
		name := fmt.Sprintf("%s %s", firstNames[rng.Intn(len(firstNames))], lastNames[rng.Intn(len(lastNames))])

		b.Registry = append(b.Registry, registryEntry{
			UserID:      userID,
			UserName:    name,
			PhoneNumber: fmt.Sprintf("+2526%08d", rng.Intn(100000000)),
		})

		owed := decimal.NewFromInt(int64(10 + rng.Intn(490)))
		b.Debits = append(b.Debits, debitEntry{UserID: userID, Amount: owed})

		if rng.Float64() < missingRate {
			continue
		}

		// Most payers settle in one transfer, some split in two.
		parts := 1
		if rng.Float64() < 0.25 {
			parts = 2
		}
		remaining := owed
		for p := 0; p < parts; p++ {
			amount := remaining
			if p < parts-1 {
				amount = remaining.Div(decimal.NewFromInt(2)).Round(2)
			}
			remaining = remaining.Sub(amount)

			b.Credits = append(b.Credits, creditEntry{
				AccountRef:     userID,
				Amount:         amount,
				Date:           date,
				Time:           paymentTime(rng, lateRate),
				TransactionRef: fmt.Sprintf("TX-%06d", len(b.Credits)+1),
			})
		}
	}

	for i := 0; i < unknownCount; i++ {
		b.Credits = append(b.Credits, creditEntry{
			AccountRef:     fmt.Sprintf("EXT-%05d", rng.Intn(100000)),
			Amount:         decimal.NewFromInt(int64(5 + rng.Intn(200))),
			Date:           date,
			Time:           paymentTime(rng, lateRate),
			TransactionRef: fmt.Sprintf("TX-%06d", len(b.Credits)+1),
		})
	}

	return b
}

// paymentTime returns an HH:mm time, after 20:00 at roughly lateRate
func paymentTime(rng *rand.Rand, lateRate float64) string {
	if rng.Float64() < lateRate {
		return fmt.Sprintf("%02d:%02d", 20+rng.Intn(4), rng.Intn(60))
	}
	return fmt.Sprintf("%02d:%02d", 8+rng.Intn(12), rng.Intn(60))
}
