package domain

// ComputedTable derives its features from source tables and request fields.
// It is never stored. Either Transform names a registered function or
// Expressions maps each output feature to an expression over the inputs.
type ComputedTable struct {
	Name          string
	Features      []Field
	Sources       []Projection
	RequestFields []Field
	Transform     string
	Expressions   map[string]string
	Projection    Projection
}

func (t *ComputedTable) TableName() string      { return t.Name }
func (t *ComputedTable) FeatureFields() []Field { return t.Features }
func (t *ComputedTable) isTable()               {}

func (t *ComputedTable) GetProjection() Projection {
	if t.Projection.Name == "" {
		return defaultProjection(t.Name, t.Features)
	}
	return t.Projection
}

func (t *ComputedTable) HasFeature(name string) bool {
	return hasField(t.Features, name)
}

// RequestTable passes caller supplied fields through unchanged.
//
// Deprecated: declare RequestFields on a ComputedTable instead.
type RequestTable struct {
	Name       string
	Fields     []Field
	Projection Projection
}

func (t *RequestTable) TableName() string      { return t.Name }
func (t *RequestTable) FeatureFields() []Field { return t.Fields }
func (t *RequestTable) isTable()               {}

func (t *RequestTable) GetProjection() Projection {
	if t.Projection.Name == "" {
		return defaultProjection(t.Name, t.Fields)
	}
	return t.Projection
}

func (t *RequestTable) HasFeature(name string) bool {
	return hasField(t.Fields, name)
}
