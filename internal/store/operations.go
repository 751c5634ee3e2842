package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/yyyoichi/facemap_motionsvd/internal/arrays"
)

const nodeColumns = "id, path, parent, kind, dtype, shape, data"

// CreateGroup inserts a group and its attributes. The parent group must
// already exist, except for the root "/".
func (t *Tx) CreateGroup(ctx context.Context, p string, attrs ...Attribute) (int64, error) {
	return t.insert(ctx, Node{Path: p, Kind: GroupKind}, attrs)
}

// CreateDataset inserts a dataset and its attributes under an existing group.
func (t *Tx) CreateDataset(ctx context.Context, n Node, attrs ...Attribute) (int64, error) {
	if n.Kind != DatasetKind {
		return 0, fmt.Errorf("%w: %s is a %s", ErrType, n.Path, n.Kind)
	}
	if n.DType == "" {
		return 0, fmt.Errorf("%w: dataset %s has no dtype", ErrType, n.Path)
	}
	return t.insert(ctx, n, attrs)
}

func (t *Tx) insert(ctx context.Context, n Node, attrs []Attribute) (int64, error) {
	p, parent, err := splitPath(n.Path)
	if err != nil {
		return 0, err
	}
	if parent != "" {
		var kind Kind
		err := t.tx.QueryRowContext(ctx, "SELECT kind FROM objects WHERE path = ?", parent).Scan(&kind)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: parent %s of %s", ErrNotFound, parent, p)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to query parent: %w", err)
		}
		if kind != GroupKind {
			return 0, fmt.Errorf("%w: parent %s of %s is a %s", ErrType, parent, p, kind)
		}
	}

	var exists int
	err = t.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM objects WHERE path = ?", p).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to query object: %w", err)
	}
	if exists > 0 {
		return 0, fmt.Errorf("%w: %s", ErrExists, p)
	}

	result, err := t.tx.ExecContext(ctx,
		"INSERT INTO objects (path, parent, kind, dtype, shape, data) VALUES (?, ?, ?, ?, ?, ?)",
		p, parent, string(n.Kind), string(n.DType), encodeShape(n.Shape), n.Data,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s: %w", p, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, a := range attrs {
		if err := t.setAttribute(ctx, id, a); err != nil {
			return 0, fmt.Errorf("failed to set attribute %s on %s: %w", a.Name, p, err)
		}
	}
	return id, nil
}

func (t *Tx) setAttribute(ctx context.Context, objectID int64, a Attribute) error {
	if a.Name == "" {
		return errors.New("attribute name is empty")
	}
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO attributes (object_id, name, dtype, shape, data) VALUES (?, ?, ?, ?, ?)",
		objectID, a.Name, string(a.DType), encodeShape(a.Shape), a.Data,
	)
	return err
}

// Get retrieves an object by path
func (d *DB) Get(ctx context.Context, p string) (*Node, error) {
	row := d.db.QueryRowContext(ctx, "SELECT "+nodeColumns+" FROM objects WHERE path = ?", p)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", p, err)
	}
	return n, nil
}

// Children retrieves the direct children of a group in insertion order
func (d *DB) Children(ctx context.Context, p string) ([]*Node, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+nodeColumns+" FROM objects WHERE parent = ? ORDER BY id", p)
	if err != nil {
		return nil, fmt.Errorf("failed to query children of %s: %w", p, err)
	}
	defer rows.Close()

	var nodes []*Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child of %s: %w", p, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// Attributes retrieves every attribute of an object keyed by name
func (d *DB) Attributes(ctx context.Context, objectID int64) (map[string]Attribute, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT name, dtype, shape, data FROM attributes WHERE object_id = ? ORDER BY id", objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attributes: %w", err)
	}
	defer rows.Close()

	attrs := make(map[string]Attribute)
	for rows.Next() {
		var (
			a     Attribute
			dtype string
			shape []byte
		)
		if err := rows.Scan(&a.Name, &dtype, &shape, &a.Data); err != nil {
			return nil, fmt.Errorf("failed to scan attribute: %w", err)
		}
		a.DType = DType(dtype)
		if a.Shape, err = decodeShape(shape); err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
		}
		attrs[a.Name] = a
	}
	return attrs, rows.Err()
}

// CountObjects counts groups and datasets
func (d *DB) CountObjects(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM objects").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count objects: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(s scanner) (*Node, error) {
	var (
		n           Node
		kind, dtype string
		shape       []byte
	)
	if err := s.Scan(&n.ID, &n.Path, &n.Parent, &kind, &dtype, &shape, &n.Data); err != nil {
		return nil, err
	}
	n.Kind, n.DType = Kind(kind), DType(dtype)
	var err error
	if n.Shape, err = decodeShape(shape); err != nil {
		return nil, fmt.Errorf("%s: %w", n.Path, err)
	}
	return &n, nil
}

// splitPath cleans an absolute path and returns it with its parent.
func splitPath(p string) (string, string, error) {
	if !strings.HasPrefix(p, "/") {
		return "", "", fmt.Errorf("path %q is not absolute", p)
	}
	p = path.Clean(p)
	if p == "/" {
		return p, "", nil
	}
	return p, path.Dir(p), nil
}

func encodeShape(shape []int) []byte {
	if len(shape) == 0 {
		return nil
	}
	return arrays.Int64sToBytes(arrays.Ints(shape))
}

func decodeShape(b []byte) ([]int, error) {
	if len(b) == 0 {
		return nil, nil
	}
	v, err := arrays.BytesToInt64s(b)
	if err != nil {
		return nil, fmt.Errorf("malformed shape: %w", err)
	}
	return arrays.ToInts(v), nil
}
