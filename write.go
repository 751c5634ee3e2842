package motionsvd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/yyyoichi/facemap_motionsvd/internal/arrays"
	"github.com/yyyoichi/facemap_motionsvd/internal/store"
	"golang.org/x/sync/errgroup"
)

const (
	nwbVersion     = "2.7.0"
	processingPath = "/processing"
	specPath       = "/specifications"
)

// entry is one group or dataset ready to be inserted.
type entry struct {
	node  store.Node
	attrs []store.Attribute
}

// Write persists f to filePath, replacing any existing file.
//
// Every region must reference a MotionSVDMasks that is itself stored in f.
// The file is written to a temporary sibling and renamed into place, so a
// failed write leaves filePath untouched.
func Write(ctx context.Context, filePath string, f *File, opts ...IOOption) (err error) {
	cfg := newIOConfig(opts...)
	if f == nil {
		return fmt.Errorf("%w: file is nil", ErrConfig)
	}
	tables, err := tablePaths(f)
	if err != nil {
		return err
	}

	builder, err := NewNamespaceBuilder()
	if err != nil {
		return err
	}
	nsDoc, extDoc, err := builder.Documents(Extensions())
	if err != nil {
		return err
	}

	// Encoding copies every array into its byte layout; containers are
	// independent so they are encoded concurrently.
	var (
		modules = f.ProcessingModules()
		encoded = make([][][]entry, len(modules))
	)
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range modules {
		containers := m.Containers()
		encoded[i] = make([][]entry, len(containers))
		for j, c := range containers {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				p := containerPath(m.Name(), c.Name())
				var err error
				switch c := c.(type) {
				case *MotionSVDMasks:
					encoded[i][j] = encodeMasks(p, c)
				case *MotionSVDSeries:
					encoded[i][j], err = encodeSeries(p, c, tables)
				default:
					err = fmt.Errorf("%w: cannot write %s of type %T", ErrConfig, p, c)
				}
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()
	if err := tmp.Close(); err != nil {
		return err
	}

	db, err := store.Open(tmpPath)
	if err != nil {
		return err
	}
	if err := writeAll(ctx, db, f, builder.Name(), builder.Version(), nsDoc, extDoc, modules, encoded, cfg); err != nil {
		_ = db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	cfg.logger.Debug("wrote file", "path", filePath, "identifier", f.identifier, "modules", len(modules))
	return nil
}

func writeAll(ctx context.Context, db *store.DB, f *File, ns, version string, nsDoc, extDoc []byte, modules []*ProcessingModule, encoded [][][]entry, cfg ioConfig) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	header := []entry{
		{store.Node{Path: "/", Kind: store.GroupKind}, []store.Attribute{
			store.TextAttr("neurodata_type", "NWBFile"),
			store.TextAttr("namespace", coreNamespace),
			store.TextAttr("object_id", f.objectID),
			store.TextAttr("nwb_version", nwbVersion),
			store.TextAttr("identifier", f.identifier),
			store.TextAttr("session_description", f.sessionDescription),
			store.TextAttr("session_start_time", f.sessionStartTime.Format(time.RFC3339Nano)),
		}},
		{store.Node{Path: specPath, Kind: store.GroupKind}, nil},
		{store.Node{Path: path.Join(specPath, ns), Kind: store.GroupKind}, nil},
		{store.Node{Path: path.Join(specPath, ns, version), Kind: store.GroupKind}, nil},
		{store.TextDataset(path.Join(specPath, ns, version, "namespace"), []string{string(nsDoc)}), nil},
		{store.TextDataset(path.Join(specPath, ns, version, "extensions"), []string{string(extDoc)}), nil},
		{store.Node{Path: processingPath, Kind: store.GroupKind}, nil},
	}
	if err := insertAll(ctx, tx, header); err != nil {
		return err
	}

	for i, m := range modules {
		err := insertAll(ctx, tx, []entry{{
			store.Node{Path: path.Join(processingPath, m.name), Kind: store.GroupKind},
			[]store.Attribute{
				store.TextAttr("neurodata_type", "ProcessingModule"),
				store.TextAttr("namespace", coreNamespace),
				store.TextAttr("object_id", m.objectID),
				store.TextAttr("description", m.description),
			},
		}})
		if err != nil {
			return err
		}
		for _, entries := range encoded[i] {
			if err := insertAll(ctx, tx, entries); err != nil {
				return err
			}
			cfg.logger.Debug("wrote container", "path", entries[0].node.Path, "objects", len(entries))
		}
	}
	return tx.Commit()
}

func insertAll(ctx context.Context, tx *store.Tx, entries []entry) error {
	for _, e := range entries {
		var err error
		if e.node.Kind == store.GroupKind {
			_, err = tx.CreateGroup(ctx, e.node.Path, e.attrs...)
		} else {
			_, err = tx.CreateDataset(ctx, e.node, e.attrs...)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// tablePaths locates every MotionSVDMasks of f and checks that each region
// references one of them.
func tablePaths(f *File) (map[*MotionSVDMasks]string, error) {
	tables := make(map[*MotionSVDMasks]string)
	for _, m := range f.modules {
		for _, c := range m.containers {
			if t, ok := c.(*MotionSVDMasks); ok {
				tables[t] = containerPath(m.name, t.name)
			}
		}
	}
	for _, m := range f.modules {
		for _, c := range m.containers {
			s, ok := c.(*MotionSVDSeries)
			if !ok {
				continue
			}
			if _, ok := tables[s.motionMasks.table]; !ok {
				return nil, fmt.Errorf("%w: %s references table %s which is not part of the file",
					ErrReference, containerPath(m.name, s.name), s.motionMasks.table.name)
			}
		}
	}
	return tables, nil
}

func containerPath(module, name string) string {
	return path.Join(processingPath, module, name)
}

func typeAttrs(neurodataType, namespace, objectID string) []store.Attribute {
	attrs := []store.Attribute{
		store.TextAttr("neurodata_type", neurodataType),
		store.TextAttr("namespace", namespace),
	}
	if objectID != "" {
		attrs = append(attrs, store.TextAttr("object_id", objectID))
	}
	return attrs
}

func encodeMasks(p string, m *MotionSVDMasks) []entry {
	var (
		n      = len(m.masks)
		values []float64
		index  = make([]int64, n)
		shapes = make([]int64, 0, n*2)
	)
	for i, mask := range m.masks {
		data, shape := arrays.Flatten(mask)
		values = append(values, data...)
		index[i] = int64(len(values))
		shapes = append(shapes, int64(shape[0]), int64(shape[1]))
	}
	maskPath := path.Join(p, "image_mask")
	return []entry{
		{store.Node{Path: p, Kind: store.GroupKind}, append(typeAttrs(MasksType, NamespaceName, m.objectID),
			store.TextAttr("description", m.description),
			store.TextsAttr("colnames", []string{"image_mask"}),
			store.FloatAttr("downsampling_factor", m.downsamplingFactor),
			store.FloatsAttr("mask_coordinates", m.maskCoordinates[:]),
			store.FloatsAttr("processed_frame_dimension", m.processedFrameDimension[:]),
		)},
		{store.Int64Dataset(path.Join(p, "id"), arrays.Ints(m.IDs()), []int{n}),
			typeAttrs("ElementIdentifiers", commonNamespace, "")},
		{store.Float64Dataset(maskPath, values, []int{len(values)}), append(typeAttrs("VectorData", commonNamespace, ""),
			store.TextAttr("description", "Motion SVD mask."),
		)},
		{store.Int64Dataset(path.Join(p, "image_mask_index"), index, []int{n}), append(typeAttrs("VectorIndex", commonNamespace, ""),
			store.RefAttr("target", maskPath),
		)},
		{store.Int64Dataset(path.Join(p, "image_mask_shape"), shapes, []int{n, 2}), nil},
	}
}

func encodeSeries(p string, s *MotionSVDSeries, tables map[*MotionSVDMasks]string) ([]entry, error) {
	tablePath, ok := tables[s.motionMasks.table]
	if !ok {
		return nil, fmt.Errorf("%w: %s references a table outside the file", ErrReference, p)
	}
	data, shape := arrays.Flatten(s.data)
	entries := []entry{
		{store.Node{Path: p, Kind: store.GroupKind}, append(typeAttrs(SeriesType, NamespaceName, s.objectID),
			store.TextAttr("description", s.description),
			store.TextAttr("comments", s.comments),
		)},
		{store.Float64Dataset(path.Join(p, "data"), data, shape), []store.Attribute{
			store.TextAttr("unit", s.unit),
			store.FloatAttr("resolution", s.resolution),
			store.FloatAttr("conversion", s.conversion),
			store.FloatAttr("offset", s.offset),
		}},
	}
	if s.hasTimestamps {
		entries = append(entries, entry{
			store.Float64Dataset(path.Join(p, "timestamps"), s.timestamps, []int{len(s.timestamps)}),
			[]store.Attribute{store.IntAttr("interval", 1), store.TextAttr("unit", "seconds")},
		})
	} else {
		entries = append(entries, entry{
			store.Float64Dataset(path.Join(p, "starting_time"), []float64{s.startingTime}, nil),
			[]store.Attribute{store.FloatAttr("rate", s.rate), store.TextAttr("unit", "seconds")},
		})
	}
	if s.control != nil {
		entries = append(entries, entry{store.Uint8Dataset(path.Join(p, "control"), s.control), nil})
	}
	if s.controlDescription != nil {
		entries = append(entries, entry{store.TextDataset(path.Join(p, "control_description"), s.controlDescription), nil})
	}
	region := s.motionMasks
	entries = append(entries, entry{
		store.Int64Dataset(path.Join(p, RegionName), arrays.Ints(region.rows), []int{len(region.rows)}),
		append(typeAttrs("DynamicTableRegion", commonNamespace, ""),
			store.TextAttr("description", region.description),
			store.RefAttr("table", tablePath),
		),
	})
	return entries, nil
}
