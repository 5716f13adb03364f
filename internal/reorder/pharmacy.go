package reorder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver

	"github.com/LohithR22/DoseWise/internal/shared/config"
	"github.com/LohithR22/DoseWise/internal/shared/errors"
)

// Pharmacy is one dispensing location known to the directory
type Pharmacy struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// Availability reports whether a pharmacy can fill a medication
type Availability struct {
	Pharmacy   Pharmacy `json:"pharmacy"`
	Medication string   `json:"medication"`
	InStock    bool     `json:"in_stock"`
	Quantity   int      `json:"quantity"`
}

// Directory locates pharmacies that can fill a refill request
type Directory interface {
	FindPharmacy(ctx context.Context, medication string) (*Pharmacy, error)
	CheckAvailability(ctx context.Context, pharmacyID, medication string) (*Availability, error)
	Health(ctx context.Context) error
}

// --- SQL Server directory ---

// SQLDirectory reads pharmacy and stock data from the legacy pharmacy
// system over SQL Server.
type SQLDirectory struct {
	db *sql.DB
}

// NewSQLDirectory connects to the legacy pharmacy database
func NewSQLDirectory(ctx context.Context, cfg config.PharmacyConfig) (*SQLDirectory, error) {
	db, err := sql.Open("sqlserver", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open pharmacy database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping pharmacy database: %w", err)
	}

	return &SQLDirectory{db: db}, nil
}

// FindPharmacy returns the pharmacy with the most stock of the medication
func (d *SQLDirectory) FindPharmacy(ctx context.Context, medication string) (*Pharmacy, error) {
	query := `
		SELECT TOP 1
			ph.PharmacyID,
			ph.Name,
			ph.Phone,
			ph.Email,
			ph.Address
		FROM dbo.Pharmacies ph
		INNER JOIN dbo.Stock s ON s.PharmacyID = ph.PharmacyID
		WHERE s.MedicationName = @medication AND s.Quantity > 0
		ORDER BY s.Quantity DESC`

	row := d.db.QueryRowContext(ctx, query, sql.Named("medication", medication))

	var p Pharmacy
	var phone, email, address sql.NullString
	err := row.Scan(&p.ID, &p.Name, &phone, &email, &address)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("pharmacy stocking", medication)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query pharmacies")
	}

	if phone.Valid {
		p.Phone = phone.String
	}
	if email.Valid {
		p.Email = email.String
	}
	if address.Valid {
		p.Address = address.String
	}
	return &p, nil
}

// CheckAvailability reports a pharmacy's stock of a medication
func (d *SQLDirectory) CheckAvailability(ctx context.Context, pharmacyID, medication string) (*Availability, error) {
	query := `
		SELECT
			ph.PharmacyID,
			ph.Name,
			s.Quantity
		FROM dbo.Pharmacies ph
		INNER JOIN dbo.Stock s ON s.PharmacyID = ph.PharmacyID
		WHERE ph.PharmacyID = @pharmacy AND s.MedicationName = @medication`

	row := d.db.QueryRowContext(ctx, query,
		sql.Named("pharmacy", pharmacyID),
		sql.Named("medication", medication),
	)

	av := &Availability{Medication: medication}
	err := row.Scan(&av.Pharmacy.ID, &av.Pharmacy.Name, &av.Quantity)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("pharmacy stock", medication)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to check availability")
	}

	av.InStock = av.Quantity > 0
	return av, nil
}

// Health checks database connectivity
func (d *SQLDirectory) Health(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the database connection
func (d *SQLDirectory) Close() error {
	return d.db.Close()
}

// --- static directory ---

// StaticDirectory is an in-memory directory used when the legacy
// pharmacy system is not configured.
type StaticDirectory struct {
	pharmacies []Pharmacy
}

// NewStaticDirectory creates a directory with one default pharmacy
func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		pharmacies: []Pharmacy{
			{ID: "default", Name: "Community Pharmacy", Phone: "555-0100"},
		},
	}
}

// FindPharmacy returns the first configured pharmacy
func (d *StaticDirectory) FindPharmacy(ctx context.Context, medication string) (*Pharmacy, error) {
	if len(d.pharmacies) == 0 {
		return nil, errors.NotFound("pharmacy", "any")
	}
	p := d.pharmacies[0]
	return &p, nil
}

// CheckAvailability always reports in stock
func (d *StaticDirectory) CheckAvailability(ctx context.Context, pharmacyID, medication string) (*Availability, error) {
	for _, p := range d.pharmacies {
		if p.ID == pharmacyID {
			return &Availability{Pharmacy: p, Medication: medication, InStock: true, Quantity: 100}, nil
		}
	}
	return nil, errors.NotFound("pharmacy", pharmacyID)
}

// Health always succeeds
func (d *StaticDirectory) Health(ctx context.Context) error {
	return nil
}

var _ Directory = (*SQLDirectory)(nil)
var _ Directory = (*StaticDirectory)(nil)
