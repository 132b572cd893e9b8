package labels

// Label keys set on member Jobs and on the pod template of every member.
const (
	// KeyName identifies the HotStandbyJob a member belongs to
	KeyName = "hsj.paia.tech/name"

	// KeyMember carries the member Job name, so pods map back to their member
	KeyMember = "hsj.paia.tech/member"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "app.kubernetes.io/managed-by"
)

// ManagedByOperator is the KeyManagedBy value for everything this operator creates.
const ManagedByOperator = "hsj-operator"

// LabelBuilder provides a fluent interface for building member labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the pool name pre-set.
func NewLabelBuilder(pool string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyName:      pool,
			KeyManagedBy: ManagedByOperator,
		},
	}
}

// WithMember adds the member label.
func (lb *LabelBuilder) WithMember(member string) *LabelBuilder {
	lb.labels[KeyMember] = member
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// BuildOver returns a copy of base with the builder's labels applied on top.
// User labels from a job template never shadow the bookkeeping keys.
func (lb *LabelBuilder) BuildOver(base map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(lb.labels))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// SelectorForPool returns the label set matching every member of a pool.
func SelectorForPool(pool string) map[string]string {
	return map[string]string{KeyName: pool}
}

// PoolOf returns the pool a labelled object belongs to.
func PoolOf(objLabels map[string]string) (string, bool) {
	pool, ok := objLabels[KeyName]
	return pool, ok && pool != ""
}
