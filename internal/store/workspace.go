package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// Canvas returns the singleton canvas row, or (zero, false, nil) when it
// has never been saved.
func (s *Store) Canvas(ctx context.Context) (CanvasState, bool, error) {
	var (
		c     CanvasState
		items string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, items FROM canvas WHERE id = ?", CanvasID).
		Scan(&c.ID, &c.Name, &items)
	if errors.Is(err, sql.ErrNoRows) {
		return CanvasState{}, false, nil
	}
	if err != nil {
		return CanvasState{}, false, s.fail("canvas.get", err)
	}
	if err := json.Unmarshal([]byte(items), &c.Items); err != nil {
		return CanvasState{}, false, s.fail("canvas.get", err)
	}
	return c, true, nil
}

// SaveCanvas fully replaces the singleton canvas row. The reserved id is
// forced so a save can never create a second row.
func (s *Store) SaveCanvas(ctx context.Context, c CanvasState) error {
	c.ID = CanvasID
	items, err := json.Marshal(c.Items)
	if err != nil {
		return s.fail("canvas.save", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO canvas (id, name, items) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, items = excluded.items`,
		c.ID, c.Name, string(items))
	if err != nil {
		return s.fail("canvas.save", err)
	}
	return nil
}

// ClearCanvas removes the canvas row.
func (s *Store) ClearCanvas(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM canvas"); err != nil {
		return s.fail("canvas.clear", err)
	}
	return nil
}

// FinancialModel returns the singleton financial-model row, or
// (zero, false, nil) when it has never been saved.
func (s *Store) FinancialModel(ctx context.Context) (FinancialModelState, bool, error) {
	var (
		f      FinancialModelState
		inputs string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, inputs FROM financial_models WHERE id = ?", FinancialModelID).
		Scan(&f.ID, &inputs)
	if errors.Is(err, sql.ErrNoRows) {
		return FinancialModelState{}, false, nil
	}
	if err != nil {
		return FinancialModelState{}, false, s.fail("financial.get", err)
	}
	if err := json.Unmarshal([]byte(inputs), &f.Inputs); err != nil {
		return FinancialModelState{}, false, s.fail("financial.get", err)
	}
	return f, true, nil
}

// SaveFinancialModel fully replaces the singleton financial-model row.
func (s *Store) SaveFinancialModel(ctx context.Context, f FinancialModelState) error {
	f.ID = FinancialModelID
	inputs, err := json.Marshal(f.Inputs)
	if err != nil {
		return s.fail("financial.save", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO financial_models (id, inputs) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET inputs = excluded.inputs`,
		f.ID, string(inputs))
	if err != nil {
		return s.fail("financial.save", err)
	}
	return nil
}

// ClearFinancialModel removes the financial-model row.
func (s *Store) ClearFinancialModel(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM financial_models"); err != nil {
		return s.fail("financial.clear", err)
	}
	return nil
}
