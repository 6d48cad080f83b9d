package engine

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// GachaItem is one row of the weighted draw table. A Jackpot item grants an
// extra random money bonus on top of the item itself.
type GachaItem struct {
	Label   string
	Weight  int
	Jackpot bool
}

// DefaultGachaTable mirrors the product's stock item list. Weights sum to
// 100 but any positive total works.
func DefaultGachaTable() []GachaItem {
	return []GachaItem{
		{Label: "Bread", Weight: 30},
		{Label: "Energy Potion", Weight: 25},
		{Label: "Small Gem", Weight: 20},
		{Label: "Mystery Box", Weight: 15},
		{Label: "Infinite Ammo", Weight: 8},
		{Label: "Cash Card", Weight: 2, Jackpot: true},
	}
}

// ParseGachaTable reads a "label:weight" CSV, e.g.
// "Bread:30,Small Gem:20,Cash Card:2*". A trailing '*' on the weight marks
// the jackpot item. An empty spec yields the default table.
func ParseGachaTable(spec string) ([]GachaItem, error) {
	if strings.TrimSpace(spec) == "" {
		return DefaultGachaTable(), nil
	}

	var table []GachaItem
	for _, part := range strings.Split(spec, ",") {
		label, weight, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("gacha table entry %q: want label:weight", part)
		}
		jackpot := strings.HasSuffix(weight, "*")
		weight = strings.TrimSuffix(weight, "*")
		w, err := strconv.Atoi(weight)
		if err != nil || w <= 0 {
			return nil, fmt.Errorf("gacha table entry %q: weight must be a positive integer", part)
		}
		table = append(table, GachaItem{Label: strings.TrimSpace(label), Weight: w, Jackpot: jackpot})
	}
	return table, nil
}

func totalWeight(table []GachaItem) int {
	total := 0
	for _, it := range table {
		total += it.Weight
	}
	return total
}

// pickWeighted walks the table accumulating weights and returns the first
// entry whose cumulative weight reaches r. r must be in [1, totalWeight];
// ties at bucket boundaries resolve to the earlier entry, preserving table
// order.
func pickWeighted(r int, table []GachaItem) GachaItem {
	cumulative := 0
	for _, it := range table {
		cumulative += it.Weight
		if r <= cumulative {
			return it
		}
	}
	return table[len(table)-1]
}

func drawItem(rng *rand.Rand, table []GachaItem) GachaItem {
	return pickWeighted(rng.Intn(totalWeight(table))+1, table)
}
