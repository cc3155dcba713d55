package repository

import (
	"sort"

	"github.com/brickvest/brickvest/internal/pkg/models"
)

// Collections are returned oldest-first regardless of backend ordering.

func sortCardsByCreatedAt(cards []models.CreditCard) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
}

func sortBanksByCreatedAt(accounts []models.BankAccount) {
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
}

func sortTxnsByCreatedAt(txns []models.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].CreatedAt.Before(txns[j].CreatedAt)
	})
}
