package medication

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/LohithR22/DoseWise/internal/shared/errors"
)

// FoodRelation describes when a medication is taken relative to food
type FoodRelation string

const (
	FoodBefore  FoodRelation = "before"
	FoodAfter   FoodRelation = "after"
	FoodAnytime FoodRelation = "anytime"
)

// DefaultTiming is substituted for missing or malformed dose timings
const DefaultTiming = "08:00"

// Medication is the canonical medication record. Name is the unique key.
type Medication struct {
	Name         string       `json:"name"`
	Dosage       string       `json:"dosage"`
	Timings      []string     `json:"timings"` // sorted HH:MM, 24h
	FoodRelation FoodRelation `json:"before_after_food"`
	PillImage    string       `json:"pill_image,omitempty"`
	LastTakenAt  *time.Time   `json:"last_taken_at,omitempty"`
	NextDoseAt   *time.Time   `json:"next_dose_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Registry manages the medication list. Pure business logic, no persistence.
type Registry struct {
	medications map[string]*Medication
	order       []string
}

// NewRegistry creates an empty medication registry
func NewRegistry() *Registry {
	return &Registry{medications: make(map[string]*Medication)}
}

// Hydrate builds a registry from an existing medication list, preserving order
func Hydrate(meds []Medication) *Registry {
	r := NewRegistry()
	for i := range meds {
		m := meds[i]
		if _, exists := r.medications[m.Name]; exists {
			continue
		}
		r.medications[m.Name] = &m
		r.order = append(r.order, m.Name)
	}
	return r
}

// Add registers a new medication
func (r *Registry) Add(name, dosage string, timings []string, food FoodRelation) (*Medication, error) {
	if _, exists := r.medications[name]; exists {
		return nil, apperrors.Conflict(fmt.Sprintf("medication '%s' already exists", name))
	}
	if name == "" || dosage == "" || len(timings) == 0 {
		return nil, apperrors.Validation("name, dosage, and timings are required", nil)
	}
	if food != FoodBefore && food != FoodAfter && food != FoodAnytime {
		return nil, apperrors.Validation("before_after_food must be 'before', 'after', or 'anytime'", nil)
	}
	for _, timing := range timings {
		if err := ValidateTiming(timing); err != nil {
			return nil, err
		}
	}

	sorted := append([]string(nil), timings...)
	sort.Strings(sorted)

	now := time.Now()
	med := &Medication{
		Name:         name,
		Dosage:       dosage,
		Timings:      sorted,
		FoodRelation: food,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.medications[name] = med
	r.order = append(r.order, name)
	return med, nil
}

// Update modifies an existing medication; nil/empty fields are left unchanged
func (r *Registry) Update(name string, dosage string, timings []string, food FoodRelation) (*Medication, error) {
	med, exists := r.medications[name]
	if !exists {
		return nil, apperrors.NotFound("medication", name)
	}

	if dosage != "" {
		med.Dosage = dosage
	}
	if len(timings) > 0 {
		for _, timing := range timings {
			if err := ValidateTiming(timing); err != nil {
				return nil, err
			}
		}
		sorted := append([]string(nil), timings...)
		sort.Strings(sorted)
		med.Timings = sorted
	}
	if food != "" {
		if food != FoodBefore && food != FoodAfter && food != FoodAnytime {
			return nil, apperrors.Validation("before_after_food must be 'before', 'after', or 'anytime'", nil)
		}
		med.FoodRelation = food
	}

	med.UpdatedAt = time.Now()
	return med, nil
}

// Get returns a medication by name
func (r *Registry) Get(name string) (*Medication, bool) {
	med, ok := r.medications[name]
	return med, ok
}

// All returns all medications in insertion order
func (r *Registry) All() []Medication {
	out := make([]Medication, 0, len(r.medications))
	for _, name := range r.order {
		out = append(out, *r.medications[name])
	}
	return out
}

// Delete removes a medication from the registry
func (r *Registry) Delete(name string) bool {
	if _, ok := r.medications[name]; !ok {
		return false
	}
	delete(r.medications, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// ValidateTiming checks that a timing string is HH:MM, 24-hour
func ValidateTiming(timing string) error {
	if _, _, ok := ParseTiming(timing); !ok {
		return apperrors.Validation(
			fmt.Sprintf("invalid time format: '%s', expected HH:MM (24-hour)", timing), nil)
	}
	return nil
}

// ParseTiming parses an HH:MM timing string into hour and minute
func ParseTiming(timing string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(timing), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
