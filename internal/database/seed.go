package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Seed populates the database with a small sample catalog for development:
// a category tree a few levels deep and a handful of stocked parts. It is
// a no-op when any category already exists.
func Seed(db *sql.DB) error {
	// Check if the catalog is already populated.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	category := func(name, path, description string, parentID *uuid.UUID) (uuid.UUID, error) {
		var id uuid.UUID
		err := db.QueryRow(`
			INSERT INTO categories (name, path, description, parent_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, name, path, description, parentID).Scan(&id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("seed category %q: %w", name, err)
		}
		return id, nil
	}
	part := func(name, number, description string, categoryID uuid.UUID, stock, minStock int) error {
		_, err := db.Exec(`
			INSERT INTO parts (name, part_number, description, category_id, stock_level, min_stock_level)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, name, number, description, categoryID, stock, minStock)
		if err != nil {
			return fmt.Errorf("seed part %q: %w", name, err)
		}
		return nil
	}

	// Paths are spelled out literally; they must stay consistent with what
	// label.Sanitize produces for each name.
	resistors, err := category("Resistors", "resistors", "Fixed and variable resistors", nil)
	if err != nil {
		return err
	}
	throughHole, err := category("Through Hole", "resistors.through_hole", "Axial leaded resistors", &resistors)
	if err != nil {
		return err
	}
	smd, err := category("SMD", "resistors.smd", "Surface mount chip resistors", &resistors)
	if err != nil {
		return err
	}

	capacitors, err := category("Capacitors", "capacitors", "", nil)
	if err != nil {
		return err
	}
	electrolytic, err := category("Electrolytic", "capacitors.electrolytic", "Aluminium electrolytic capacitors", &capacitors)
	if err != nil {
		return err
	}
	ceramic, err := category("Ceramic", "capacitors.ceramic", "MLCC and disc capacitors", &capacitors)
	if err != nil {
		return err
	}

	ics, err := category("Integrated Circuits", "integrated_circuits", "", nil)
	if err != nil {
		return err
	}
	logic, err := category("Logic", "integrated_circuits.logic", "Gates, flip-flops, counters", &ics)
	if err != nil {
		return err
	}
	analog, err := category("Analog", "integrated_circuits.analog", "Op-amps, timers, references", &ics)
	if err != nil {
		return err
	}

	if err := part("10k 1/4W Carbon Film", "CF14-10K", "5% tolerance, axial", throughHole, 250, 50); err != nil {
		return err
	}
	if err := part("0603 10k 1%", "RC0603FR-0710KL", "Thick film chip resistor", smd, 4000, 500); err != nil {
		return err
	}
	if err := part("100uF 25V Radial", "ECA-1EM101", "", electrolytic, 80, 20); err != nil {
		return err
	}
	if err := part("100nF X7R 0805", "CC0805KRX7R9BB104", "Decoupling capacitor", ceramic, 1200, 200); err != nil {
		return err
	}
	if err := part("NE555 Timer", "NE555P", "Classic bipolar timer, DIP-8", analog, 35, 10); err != nil {
		return err
	}
	if err := part("74HC00 Quad NAND", "SN74HC00N", "", logic, 60, 10); err != nil {
		return err
	}

	// A sample custom field document so the fields endpoint has something
	// to show out of the box.
	_, err = db.Exec(`
		INSERT INTO category_custom_fields (category_id, fields)
		VALUES ($1, '{"dielectric": "X7R", "voltage_rating": "50V"}'::jsonb)
	`, ceramic)
	if err != nil {
		return fmt.Errorf("seed custom fields: %w", err)
	}

	slog.Info("database seeded with sample catalog",
		"categories", 9,
		"parts", 6,
	)

	return nil
}
