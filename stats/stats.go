// Package stats computes the admin dashboard figures from stored payments
// and menu items.
package stats

import (
	"math"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/api/models"
)

// Revenue sums the price of every payment.
func Revenue(payments []models.Payment) float64 {
	var sum float64
	for _, p := range payments {
		sum += p.Price
	}
	return sum
}

// Join resolves each payment's menu item ids against menu. A payment yields
// one row per distinct menu item it references; ids with no matching menu
// item are dropped.
func Join(payments []models.Payment, menu []models.MenuItem) []models.MenuItem {
	byID := make(map[primitive.ObjectID]models.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	var rows []models.MenuItem
	for _, p := range payments {
		seen := make(map[primitive.ObjectID]bool, len(p.MenuItems))
		for _, id := range p.MenuItems {
			m, ok := byID[id]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			rows = append(rows, m)
		}
	}
	return rows
}

// ByCategory groups ordered items by category, counting rows and summing
// prices. Totals are rounded to two decimals. The result is sorted by
// category name.
func ByCategory(rows []models.MenuItem) []models.CategoryStat {
	idx := make(map[string]int)
	out := []models.CategoryStat{}
	for _, r := range rows {
		i, ok := idx[r.Category]
		if !ok {
			i = len(out)
			idx[r.Category] = i
			out = append(out, models.CategoryStat{Category: r.Category})
		}
		out[i].Count++
		out[i].Total += r.Price
	}

	for i := range out {
		out[i].Total = Round2(out[i].Total)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Category < out[b].Category })
	return out
}

// Round2 rounds to two decimal places, sending exact ties to the even digit
// the way MongoDB's $round does.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
