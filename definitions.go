package motionsvd

import "github.com/yyyoichi/facemap_motionsvd/spec"

// NewNamespaceBuilder describes the ndx-facemap-motionsvd namespace.
func NewNamespaceBuilder() (*spec.NamespaceBuilder, error) {
	return spec.NewNamespaceBuilder(NamespaceName, NamespaceVersion,
		"extension to store the motion SVD output from FaceMap software",
		spec.WithAuthor("Alessandra Trapani"),
		spec.WithContact("alessandra.trapani@catalystneuro.com"),
		spec.WithInclude(coreNamespace),
	)
}

// Extensions returns the definitions of MotionSVDSeries and MotionSVDMasks.
// They describe the layout Write produces and Read expects.
func Extensions() []spec.GroupSpec {
	return []spec.GroupSpec{
		{
			NeurodataTypeDef: SeriesType,
			NeurodataTypeInc: "TimeSeries",
			Doc:              "An extension of TimeSeries to include the motion SVD components.",
			Datasets: []spec.DatasetSpec{
				{
					Name:  "data",
					Doc:   "Motion SVD temporal components. The first dimension is time, the second the component index.",
					DType: "float",
					Dims:  []string{"num_times", "num_components"},
					Shape: spec.Shape{spec.Any, spec.Any},
				},
				{
					Name:             RegionName,
					NeurodataTypeInc: "DynamicTableRegion",
					Doc:              "References the rows of MotionSVDMasks matching the columns of data, in order.",
				},
			},
		},
		{
			NeurodataTypeDef: MasksType,
			NeurodataTypeInc: "DynamicTable",
			DefaultName:      DefaultMasksName,
			Doc:              "An extension of DynamicTable to include the motion SVD masks.",
			Attributes: []spec.AttributeSpec{
				{
					Name:  "downsampling_factor",
					Doc:   "Downsampling factor used to process the behavioural video.",
					DType: "float",
				},
				{
					Name:  "mask_coordinates",
					Doc:   "Mask location in downsampled frame reference (top, right, bottom, left).",
					DType: "float",
					Dims:  []string{"top_right_bottom_left"},
					Shape: spec.Shape{spec.Dim(4)},
				},
				{
					Name:  "processed_frame_dimension",
					Doc:   "The dimension of the processed frame (width, height).",
					DType: "float",
					Dims:  []string{"width_height"},
					Shape: spec.Shape{spec.Dim(2)},
				},
			},
			Datasets: []spec.DatasetSpec{
				{
					Name:             "image_mask",
					NeurodataTypeInc: "VectorData",
					Doc:              "Motion SVD mask, one 2-D array per row.",
					DType:            "float",
				},
				{
					Name:             "image_mask_index",
					NeurodataTypeInc: "VectorIndex",
					Doc:              "Index into image_mask marking where each row's mask ends.",
				},
				{
					Name:  "image_mask_shape",
					Doc:   "Height and width of each row's mask.",
					DType: "int",
					Dims:  []string{"num_rows", "height_width"},
					Shape: spec.Shape{spec.Any, spec.Dim(2)},
				},
			},
		},
	}
}
