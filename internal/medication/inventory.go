package medication

import (
	"context"
	"fmt"
	"log"
	"time"

	apperrors "github.com/LohithR22/DoseWise/internal/shared/errors"
)

// DefaultLowStockThreshold is the canonical threshold applied when an
// inventory item carries none of its own. It is shared with the observer.
const DefaultLowStockThreshold = 10

// Stock status labels
const (
	StatusOutOfStock  = "out_of_stock"
	StatusLowStock    = "low_stock"
	StatusAdequate    = "adequate"
	StatusWellStocked = "well_stocked"
)

// InventoryItem tracks stock for one medication. Name is the canonical
// key (foreign key to Medication.Name).
type InventoryItem struct {
	Name              string     `json:"name"`
	Quantity          int        `json:"quantity"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	LastUpdated       *time.Time `json:"last_updated,omitempty"`
	LastRefilled      *time.Time `json:"last_refilled,omitempty"`
}

// IsLow reports whether the item is at or below its threshold (inclusive)
func (i InventoryItem) IsLow() bool {
	return i.Quantity <= i.EffectiveThreshold()
}

// EffectiveThreshold returns the item threshold, or the canonical default
// when unset.
func (i InventoryItem) EffectiveThreshold() int {
	if i.LowStockThreshold <= 0 {
		return DefaultLowStockThreshold
	}
	return i.LowStockThreshold
}

// StatusLabel returns a human-readable stock status
func (i InventoryItem) StatusLabel() string {
	threshold := i.EffectiveThreshold()
	switch {
	case i.Quantity == 0:
		return StatusOutOfStock
	case i.Quantity <= threshold:
		return StatusLowStock
	case i.Quantity <= threshold*2:
		return StatusAdequate
	default:
		return StatusWellStocked
	}
}

// LowStockNotifier receives an alert when a decrement crosses the
// low-stock threshold. Implemented by the notification service.
type LowStockNotifier interface {
	SendLowInventoryAlert(ctx context.Context, medication string, quantity, threshold int) error
}

// Transaction records an inventory change for the audit trail
type Transaction struct {
	Timestamp   time.Time `json:"timestamp"`
	Name        string    `json:"name"`
	Action      string    `json:"action"`
	OldQuantity int       `json:"old_quantity"`
	NewQuantity int       `json:"new_quantity"`
	Note        string    `json:"note"`
}

// InventoryManager manages medication stock levels. A nil notifier
// disables low-stock alerts.
type InventoryManager struct {
	items            map[string]*InventoryItem
	order            []string
	defaultThreshold int
	notifier         LowStockNotifier
	transactions     []Transaction
}

// NewInventoryManager creates an empty inventory manager
func NewInventoryManager(defaultThreshold int, notifier LowStockNotifier) *InventoryManager {
	if defaultThreshold <= 0 {
		defaultThreshold = DefaultLowStockThreshold
	}
	return &InventoryManager{
		items:            make(map[string]*InventoryItem),
		defaultThreshold: defaultThreshold,
		notifier:         notifier,
	}
}

// HydrateInventory builds an inventory manager from an existing item list
func HydrateInventory(items []InventoryItem, notifier LowStockNotifier) *InventoryManager {
	m := NewInventoryManager(DefaultLowStockThreshold, notifier)
	for i := range items {
		item := items[i]
		if _, exists := m.items[item.Name]; exists {
			continue
		}
		if item.LowStockThreshold <= 0 {
			item.LowStockThreshold = m.defaultThreshold
		}
		m.items[item.Name] = &item
		m.order = append(m.order, item.Name)
	}
	return m
}

// Add registers a medication in inventory
func (m *InventoryManager) Add(name string, initialQuantity int, threshold int) (*InventoryItem, error) {
	if _, exists := m.items[name]; exists {
		return nil, apperrors.Conflict(fmt.Sprintf("medication '%s' already in inventory", name))
	}
	if initialQuantity < 0 {
		return nil, apperrors.Validation("initial quantity cannot be negative", nil)
	}
	if threshold <= 0 {
		threshold = m.defaultThreshold
	}

	now := time.Now()
	item := &InventoryItem{
		Name:              name,
		Quantity:          initialQuantity,
		LowStockThreshold: threshold,
		LastUpdated:       &now,
	}
	if initialQuantity > 0 {
		item.LastRefilled = &now
	}

	m.items[name] = item
	m.order = append(m.order, name)
	m.logTransaction(name, "add", 0, initialQuantity, "Initial stock")
	return item, nil
}

// Decrement reduces stock after a dose is taken. Fails explicitly when
// the medication is unknown or stock is insufficient.
func (m *InventoryManager) Decrement(ctx context.Context, name string, amount int) (int, error) {
	item, exists := m.items[name]
	if !exists {
		return 0, apperrors.NotFound("inventory item", name)
	}
	if amount <= 0 {
		return 0, apperrors.Validation("decrement amount must be positive", nil)
	}
	if item.Quantity < amount {
		return 0, apperrors.InsufficientStock(name, item.Quantity, amount)
	}

	old := item.Quantity
	item.Quantity -= amount
	now := time.Now()
	item.LastUpdated = &now
	m.logTransaction(name, "decrement", old, item.Quantity, fmt.Sprintf("Dose taken (-%d)", amount))

	// Alert the caregiver when this decrement crosses the threshold.
	// Delivery failure never fails the decrement.
	if m.notifier != nil && item.Quantity <= item.LowStockThreshold && old > item.LowStockThreshold {
		if err := m.notifier.SendLowInventoryAlert(ctx, name, item.Quantity, item.LowStockThreshold); err != nil {
			log.Printf("inventory: low stock alert for %s failed: %v", name, err)
		}
	}

	return item.Quantity, nil
}

// Increment adds stock after a refill
func (m *InventoryManager) Increment(name string, amount int) (int, error) {
	item, exists := m.items[name]
	if !exists {
		return 0, apperrors.NotFound("inventory item", name)
	}
	if amount <= 0 {
		return 0, apperrors.Validation("increment amount must be positive", nil)
	}

	old := item.Quantity
	item.Quantity += amount
	now := time.Now()
	item.LastUpdated = &now
	item.LastRefilled = &now
	m.logTransaction(name, "increment", old, item.Quantity, fmt.Sprintf("Refilled (+%d)", amount))
	return item.Quantity, nil
}

// SetQuantity sets the absolute quantity (setup/manual edit)
func (m *InventoryManager) SetQuantity(name string, quantity int) (int, error) {
	item, exists := m.items[name]
	if !exists {
		return 0, apperrors.NotFound("inventory item", name)
	}
	if quantity < 0 {
		return 0, apperrors.Validation("quantity cannot be negative", nil)
	}

	old := item.Quantity
	item.Quantity = quantity
	now := time.Now()
	item.LastUpdated = &now
	if quantity > old {
		item.LastRefilled = &now
	}
	m.logTransaction(name, "set", old, quantity, "Manual update/Setup")
	return quantity, nil
}

// SetThreshold updates the low-stock threshold for a medication
func (m *InventoryManager) SetThreshold(name string, threshold int) error {
	item, exists := m.items[name]
	if !exists {
		return apperrors.NotFound("inventory item", name)
	}
	if threshold < 0 {
		return apperrors.Validation("threshold cannot be negative", nil)
	}
	item.LowStockThreshold = threshold
	now := time.Now()
	item.LastUpdated = &now
	return nil
}

// Get returns inventory details for a medication
func (m *InventoryManager) Get(name string) (*InventoryItem, bool) {
	item, ok := m.items[name]
	return item, ok
}

// All returns all inventory items in insertion order
func (m *InventoryManager) All() []InventoryItem {
	out := make([]InventoryItem, 0, len(m.items))
	for _, name := range m.order {
		out = append(out, *m.items[name])
	}
	return out
}

// LowStock returns all items at or below their threshold
func (m *InventoryManager) LowStock() []InventoryItem {
	var out []InventoryItem
	for _, name := range m.order {
		if m.items[name].IsLow() {
			out = append(out, *m.items[name])
		}
	}
	return out
}

// EstimateDaysRemaining estimates days until stock runs out, or -1 when
// it cannot be estimated.
func (m *InventoryManager) EstimateDaysRemaining(name string, dailyConsumption int) int {
	item, exists := m.items[name]
	if !exists || dailyConsumption <= 0 {
		return -1
	}
	return item.Quantity / dailyConsumption
}

// Transactions returns the transaction history, optionally filtered by name
func (m *InventoryManager) Transactions(name string) []Transaction {
	if name == "" {
		return append([]Transaction(nil), m.transactions...)
	}
	var out []Transaction
	for _, t := range m.transactions {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

func (m *InventoryManager) logTransaction(name, action string, oldQuantity, newQuantity int, note string) {
	m.transactions = append(m.transactions, Transaction{
		Timestamp:   time.Now(),
		Name:        name,
		Action:      action,
		OldQuantity: oldQuantity,
		NewQuantity: newQuantity,
		Note:        note,
	})
}
