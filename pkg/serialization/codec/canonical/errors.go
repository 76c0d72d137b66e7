package canonical

const (
	ErrUnsupportedType   = "canonical: unsupported type %v"
	ErrUnsupportedMapKey = "canonical: unsupported map key type %v"
)
