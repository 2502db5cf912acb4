package cache

// Keyer builds cache keys. Implementations must produce different keys for
// any inputs that can produce different artifacts.
type Keyer interface {
	// RenderKey is the key for a rendered graph of the document with hash docHash.
	RenderKey(docHash string, opts RenderKeyOpts) string

	// PlanKey is the key for an export plan of the document with hash docHash.
	PlanKey(docHash string, opts PlanKeyOpts) string
}

// RenderKeyOpts are the render options that affect output.
type RenderKeyOpts struct {
	Format   string `json:"format"`   // dot, svg, pdf, or png
	Groups   bool   `json:"groups"`   // include node group contents
	Detailed bool   `json:"detailed"` // kinds and properties in labels
}

// PlanKeyOpts are the export options that affect a plan.
type PlanKeyOpts struct {
	Object   string `json:"object"`
	Settings string `json:"settings"` // hash of the export settings
}

// DefaultKeyer hashes key parts with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return hashKey("render", docHash, opts)
}

// PlanKey implements Keyer.
func (DefaultKeyer) PlanKey(docHash string, opts PlanKeyOpts) string {
	return hashKey("plan", docHash, opts)
}
