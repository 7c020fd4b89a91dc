package rfq

// Column names of the two input tables. The RFQ side uses snake_case
// headers, the reference side keeps the human-readable property names of
// the source sheet.

const (
	ColumnID    = "id"
	ColumnGrade = "grade"

	// ReferenceGradeColumn is the required grade column of the reference table.
	ReferenceGradeColumn = "Grade/Material"
)

// DimensionColumns lists every numeric min/max column the RFQ loader accepts.
func DimensionColumns() []string {
	return []string{
		"thickness_min", "thickness_max",
		"width_min", "width_max",
		"length_min", "length_max",
		"height_min", "height_max",
		"weight_min", "weight_max",
		"inner_diameter_min", "inner_diameter_max",
		"outer_diameter_min", "outer_diameter_max",
		"yield_strength_min", "yield_strength_max",
		"tensile_strength_min", "tensile_strength_max",
	}
}

// CategoricalColumns lists the categorical RFQ attributes used for exact
// match scoring.
func CategoricalColumns() []string {
	return []string{"coating", "finish", "form", "surface_type", "surface_protection"}
}

// ChemicalProperties lists the chemical composition columns of the
// reference table, in scoring order.
func ChemicalProperties() []string {
	return []string{
		"Carbon (C)", "Manganese (Mn)", "Silicon (Si)", "Sulfur (S)",
		"Phosphorus (P)", "Chromium (Cr)", "Nickel (Ni)", "Molybdenum (Mo)",
		"Vanadium (V)", "Copper (Cu)", "Aluminum (Al)", "Titanium (Ti)",
		"Niobium (Nb)", "Boron (B)", "Nitrogen (N)",
	}
}

// MechanicalProperties lists the mechanical property columns of the
// reference table.
func MechanicalProperties() []string {
	return []string{
		"Tensile strength (Rm)", "Yield strength (Re or Rp0.2)", "Elongation (A%)",
	}
}

// PropertyColumns returns all parseable reference property columns.
func PropertyColumns() []string {
	return append(ChemicalProperties(), MechanicalProperties()...)
}

// dimensionPair describes one (min, max) column pair that is folded into a
// named interval feature. Length carries only a lower bound in the source
// data, so its pair is degenerate on purpose.
type dimensionPair struct {
	Name   string
	MinCol string
	MaxCol string
}

func dimensionPairs() []dimensionPair {
	return []dimensionPair{
		{"thickness", "thickness_min", "thickness_max"},
		{"width", "width_min", "width_max"},
		{"length", "length_min", "length_min"},
		{"height", "height_min", "height_max"},
		{"weight", "weight_min", "weight_max"},
		{"inner_diameter", "inner_diameter_min", "inner_diameter_max"},
		{"outer_diameter", "outer_diameter_min", "outer_diameter_max"},
		{"yield_strength", "yield_strength_min", "yield_strength_max"},
		{"tensile_strength", "tensile_strength_min", "tensile_strength_max"},
	}
}

// engineDimensionFeatures lists the interval features the similarity engine
// scores, in a fixed order. Strength intervals are engineered but not
// scored here; they describe the grade rather than the requested product.
func engineDimensionFeatures() []string {
	return []string{"thickness", "width", "weight", "inner_diameter", "length", "height"}
}
