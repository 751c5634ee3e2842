package motionsvd

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/yyyoichi/facemap_motionsvd/internal/arrays"
	"github.com/yyyoichi/facemap_motionsvd/internal/store"
	"github.com/yyyoichi/facemap_motionsvd/spec"
)

// Read loads a file written by Write.
//
// The specification documents cached in the file must match Extensions and
// the namespace version of this package, otherwise ErrCompatibility is
// returned. Regions resolve to the very *MotionSVDMasks read from the same
// file.
func Read(ctx context.Context, filePath string, opts ...IOOption) (*File, error) {
	cfg := newIOConfig(opts...)
	db, err := store.OpenExisting(filePath)
	if err != nil {
		if errors.Is(err, store.ErrNotContainer) {
			return nil, fmt.Errorf("%w: %w", ErrCompatibility, err)
		}
		return nil, err
	}
	defer db.Close()

	r := reader{db: db, cfg: cfg}
	if err := r.checkSpecifications(ctx); err != nil {
		return nil, err
	}
	f, err := r.readFile(ctx)
	if err != nil {
		return nil, err
	}
	objects, err := db.CountObjects(ctx)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("read file", "path", filePath, "identifier", f.identifier, "modules", len(f.modules), "objects", objects)
	return f, nil
}

type reader struct {
	db  *store.DB
	cfg ioConfig
}

func (r *reader) checkSpecifications(ctx context.Context) error {
	nsPath := path.Join(specPath, NamespaceName)
	versions, err := r.db.Children(ctx, nsPath)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return fmt.Errorf("%w: file does not cache namespace %s", ErrCompatibility, NamespaceName)
	}
	builder, err := NewNamespaceBuilder()
	if err != nil {
		return err
	}
	var found []string
	for _, v := range versions {
		found = append(found, path.Base(v.Path))
	}
	versionPath := path.Join(nsPath, builder.Version())
	nsDoc, err := r.text(ctx, path.Join(versionPath, "namespace"))
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: file caches %s versions %v, want %s", ErrCompatibility, NamespaceName, found, builder.Version())
	}
	if err != nil {
		return err
	}
	extDoc, err := r.text(ctx, path.Join(versionPath, "extensions"))
	if err != nil {
		return err
	}

	ns, err := spec.ParseNamespace([]byte(nsDoc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompatibility, err)
	}
	if err := spec.CompareNamespace(builder.Namespace(), ns); err != nil {
		return fmt.Errorf("%w: %w", ErrCompatibility, err)
	}
	types, err := spec.ParseExtensions([]byte(extDoc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompatibility, err)
	}
	if err := spec.CompareTypes(Extensions(), types); err != nil {
		return fmt.Errorf("%w: %w", ErrCompatibility, err)
	}
	return nil
}

// text reads a single-valued text dataset.
func (r *reader) text(ctx context.Context, p string) (string, error) {
	n, err := r.db.Get(ctx, p)
	if err != nil {
		return "", err
	}
	v, err := n.Texts()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompatibility, err)
	}
	if len(v) != 1 {
		return "", fmt.Errorf("%w: %s holds %d values, want 1", ErrCompatibility, p, len(v))
	}
	return v[0], nil
}

func (r *reader) readFile(ctx context.Context) (*File, error) {
	root, err := r.db.Get(ctx, "/")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompatibility, err)
	}
	a, err := r.attrs(ctx, root)
	if err != nil {
		return nil, err
	}
	a.expectType("NWBFile", coreNamespace)
	f := &File{
		identifier:         a.text("identifier"),
		sessionDescription: a.text("session_description"),
		objectID:           a.text("object_id"),
	}
	start := a.text("session_start_time")
	if a.err != nil {
		return nil, a.err
	}
	if f.sessionStartTime, err = time.Parse(time.RFC3339Nano, start); err != nil {
		return nil, fmt.Errorf("%w: session start time: %w", ErrCompatibility, err)
	}

	moduleNodes, err := r.db.Children(ctx, processingPath)
	if err != nil {
		return nil, err
	}
	type pending struct {
		module *ProcessingModule
		node   *store.Node
		attrs  *attrReader
	}
	var series []pending
	tables := make(map[string]*MotionSVDMasks)

	// Tables are read before any series so that regions can resolve them,
	// whichever module they live in. Container order is restored afterwards.
	order := make(map[*ProcessingModule][]*store.Node)
	for _, mn := range moduleNodes {
		ma, err := r.attrs(ctx, mn)
		if err != nil {
			return nil, err
		}
		ma.expectType("ProcessingModule", coreNamespace)
		m := &ProcessingModule{
			name:        path.Base(mn.Path),
			description: ma.text("description"),
			objectID:    ma.text("object_id"),
		}
		if ma.err != nil {
			return nil, ma.err
		}
		f.modules = append(f.modules, m)

		nodes, err := r.db.Children(ctx, mn.Path)
		if err != nil {
			return nil, err
		}
		order[m] = nodes
		for _, n := range nodes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			ca, err := r.attrs(ctx, n)
			if err != nil {
				return nil, err
			}
			switch t := ca.text("neurodata_type"); {
			case ca.err != nil:
				return nil, ca.err
			case t == MasksType:
				masks, err := r.readMasks(ctx, n, ca)
				if err != nil {
					return nil, err
				}
				tables[n.Path] = masks
			case t == SeriesType:
				series = append(series, pending{m, n, ca})
			default:
				return nil, fmt.Errorf("%w: %s has unsupported type %s", ErrCompatibility, n.Path, t)
			}
		}
	}

	read := make(map[string]Container, len(tables)+len(series))
	for p, t := range tables {
		read[p] = t
	}
	for _, s := range series {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := r.readSeries(ctx, s.node, s.attrs, tables)
		if err != nil {
			return nil, err
		}
		read[s.node.Path] = v
	}
	for _, m := range f.modules {
		for _, n := range order[m] {
			if err := m.Add(read[n.Path]); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCompatibility, err)
			}
			r.cfg.logger.Debug("read container", "path", n.Path, "type", read[n.Path].NeurodataType())
		}
	}
	return f, nil
}

func (r *reader) readMasks(ctx context.Context, n *store.Node, a *attrReader) (*MotionSVDMasks, error) {
	a.expectType(MasksType, NamespaceName)
	var (
		description = a.text("description")
		objectID    = a.text("object_id")
		factor      = a.float("downsampling_factor")
		coords      = a.floats("mask_coordinates")
		dims        = a.floats("processed_frame_dimension")
	)
	if a.err != nil {
		return nil, a.err
	}
	masks, err := NewMotionSVDMasks(path.Base(n.Path), description, factor, coords, dims)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompatibility, n.Path, err)
	}
	masks.objectID = objectID

	children, err := r.children(ctx, n.Path)
	if err != nil {
		return nil, err
	}
	ids, err := int64s(children, n.Path, "id")
	if err != nil {
		return nil, err
	}
	values, err := float64s(children, n.Path, "image_mask")
	if err != nil {
		return nil, err
	}
	index, err := int64s(children, n.Path, "image_mask_index")
	if err != nil {
		return nil, err
	}
	shapes, err := int64s(children, n.Path, "image_mask_shape")
	if err != nil {
		return nil, err
	}
	if len(index) != len(ids) || len(shapes) != 2*len(ids) {
		return nil, fmt.Errorf("%w: %s has %d ids, %d index entries and %d shape values",
			ErrCompatibility, n.Path, len(ids), len(index), len(shapes))
	}

	var start int64
	for i, id := range ids {
		if id != int64(i) {
			return nil, fmt.Errorf("%w: %s row %d has id %d", ErrCompatibility, n.Path, i, id)
		}
		end := index[i]
		if end < start || end > int64(len(values)) {
			return nil, fmt.Errorf("%w: %s row %d index %d out of order", ErrCompatibility, n.Path, i, end)
		}
		mask, err := arrays.Dense(values[start:end], arrays.ToInts(shapes[2*i:2*i+2]))
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %w", ErrCompatibility, n.Path, i, err)
		}
		if _, err := masks.AddRow(mask); err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %w", ErrCompatibility, n.Path, i, err)
		}
		start = end
	}
	return masks, nil
}

func (r *reader) readSeries(ctx context.Context, n *store.Node, a *attrReader, tables map[string]*MotionSVDMasks) (*MotionSVDSeries, error) {
	a.expectType(SeriesType, NamespaceName)
	var (
		description = a.text("description")
		comments    = a.text("comments")
		objectID    = a.text("object_id")
	)
	if a.err != nil {
		return nil, a.err
	}
	children, err := r.children(ctx, n.Path)
	if err != nil {
		return nil, err
	}

	dataNode, ok := children["data"]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no data", ErrCompatibility, n.Path)
	}
	values, err := dataNode.Float64s()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompatibility, err)
	}
	data, err := arrays.Dense(values, dataNode.Shape)
	if err != nil {
		return nil, fmt.Errorf("%w: %s data: %w", ErrCompatibility, n.Path, err)
	}
	da, err := r.attrs(ctx, dataNode)
	if err != nil {
		return nil, err
	}
	unit := da.text("unit")
	opts := []SeriesOption{
		WithComments(comments),
		WithResolution(da.float("resolution")),
		WithConversion(da.float("conversion")),
		WithOffset(da.float("offset")),
	}
	if da.err != nil {
		return nil, da.err
	}

	if ts, ok := children["timestamps"]; ok {
		timestamps, err := ts.Float64s()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompatibility, err)
		}
		opts = append(opts, WithTimestamps(timestamps))
	}
	if st, ok := children["starting_time"]; ok {
		start, err := st.Float64s()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompatibility, err)
		}
		if len(start) != 1 {
			return nil, fmt.Errorf("%w: %s starting_time holds %d values", ErrCompatibility, n.Path, len(start))
		}
		sa, err := r.attrs(ctx, st)
		if err != nil {
			return nil, err
		}
		rate := sa.float("rate")
		if sa.err != nil {
			return nil, sa.err
		}
		opts = append(opts, WithRate(rate), WithStartingTime(start[0]))
	}
	var (
		control            []uint8
		controlDescription []string
	)
	if c, ok := children["control"]; ok {
		if control, err = c.Uint8s(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompatibility, err)
		}
	}
	if cd, ok := children["control_description"]; ok {
		if controlDescription, err = cd.Texts(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompatibility, err)
		}
	}
	if control != nil || controlDescription != nil {
		opts = append(opts, WithControl(control, controlDescription))
	}

	region, err := r.readRegion(ctx, children, n.Path, tables)
	if err != nil {
		return nil, err
	}
	s, err := NewMotionSVDSeries(path.Base(n.Path), description, data, region, unit, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompatibility, n.Path, err)
	}
	s.objectID = objectID
	return s, nil
}

func (r *reader) readRegion(ctx context.Context, children map[string]*store.Node, parent string, tables map[string]*MotionSVDMasks) (*Region, error) {
	rows, err := int64s(children, parent, RegionName)
	if err != nil {
		return nil, err
	}
	a, err := r.attrs(ctx, children[RegionName])
	if err != nil {
		return nil, err
	}
	a.expectType("DynamicTableRegion", commonNamespace)
	var (
		description = a.text("description")
		target      = a.ref("table")
	)
	if a.err != nil {
		return nil, a.err
	}
	table, ok := tables[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s references %s which is not a %s",
			ErrReference, parent, RegionName, target, MasksType)
	}
	return NewRegion(table, arrays.ToInts(rows), description)
}

func (r *reader) children(ctx context.Context, p string) (map[string]*store.Node, error) {
	nodes, err := r.db.Children(ctx, p)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*store.Node, len(nodes))
	for _, n := range nodes {
		m[path.Base(n.Path)] = n
	}
	return m, nil
}

func (r *reader) attrs(ctx context.Context, n *store.Node) (*attrReader, error) {
	m, err := r.db.Attributes(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	return &attrReader{path: n.Path, attrs: m}, nil
}

func int64s(children map[string]*store.Node, parent, name string) ([]int64, error) {
	n, ok := children[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s", ErrCompatibility, parent, name)
	}
	v, err := n.Int64s()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompatibility, err)
	}
	return v, nil
}

func float64s(children map[string]*store.Node, parent, name string) ([]float64, error) {
	n, ok := children[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s", ErrCompatibility, parent, name)
	}
	v, err := n.Float64s()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompatibility, err)
	}
	return v, nil
}

// attrReader reads typed attributes and keeps the first error, so a group
// of reads is checked once.
type attrReader struct {
	path  string
	attrs map[string]store.Attribute
	err   error
}

func (a *attrReader) get(name string) (store.Attribute, bool) {
	if a.err != nil {
		return store.Attribute{}, false
	}
	v, ok := a.attrs[name]
	if !ok {
		a.err = fmt.Errorf("%w: %s has no attribute %s", ErrCompatibility, a.path, name)
	}
	return v, ok
}

func (a *attrReader) fail(err error) {
	if err != nil && a.err == nil {
		a.err = fmt.Errorf("%w: %s: %w", ErrCompatibility, a.path, err)
	}
}

func (a *attrReader) text(name string) string {
	v, ok := a.get(name)
	if !ok {
		return ""
	}
	s, err := v.Text()
	a.fail(err)
	return s
}

func (a *attrReader) ref(name string) string {
	v, ok := a.get(name)
	if !ok {
		return ""
	}
	s, err := v.Ref()
	a.fail(err)
	return s
}

func (a *attrReader) float(name string) float64 {
	v, ok := a.get(name)
	if !ok {
		return 0
	}
	f, err := v.Float()
	a.fail(err)
	return f
}

func (a *attrReader) floats(name string) []float64 {
	v, ok := a.get(name)
	if !ok {
		return nil
	}
	f, err := v.Floats()
	a.fail(err)
	return f
}

func (a *attrReader) expectType(neurodataType, namespace string) {
	if t := a.text("neurodata_type"); a.err == nil && t != neurodataType {
		a.err = fmt.Errorf("%w: %s is a %s, want %s", ErrCompatibility, a.path, t, neurodataType)
	}
	if ns := a.text("namespace"); a.err == nil && ns != namespace {
		a.err = fmt.Errorf("%w: %s belongs to namespace %s, want %s", ErrCompatibility, a.path, ns, namespace)
	}
}
