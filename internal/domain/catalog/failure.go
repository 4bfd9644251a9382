package catalog

// FailureKind classifies where a failed catalog lookup originated.
type FailureKind uint8

const (
	// FailureServer: the remote endpoint was reachable but the fetch failed
	// (non-success status, transport error mid-flight, undecodable body).
	FailureServer FailureKind = iota + 1
	// FailureNetwork: the connectivity probe reported no network access and
	// no usable cached data existed.
	FailureNetwork
	// FailureCache: the local cache was empty, corrupt, or expired.
	FailureCache
)

// String returns a short lowercase name for the kind.
func (k FailureKind) String() string {
	switch k {
	case FailureServer:
		return "server"
	case FailureNetwork:
		return "network"
	case FailureCache:
		return "cache"
	default:
		return "unknown"
	}
}

// Failure is the single error type a catalog lookup surfaces. GetProducts
// never lets a raw transport or storage error escape: every failure path is
// translated into a *Failure carrying a human-readable message for the
// calling layer to render.
type Failure struct {
	Kind    FailureKind
	Message string
	// Cause is the underlying error, kept for logging. It never influences
	// the rendered message.
	Cause error
}

// NewFailure constructs a Failure of the given kind. cause may be nil.
func NewFailure(kind FailureKind, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, Cause: cause}
}

// ServerFailure constructs a FailureServer. cause may be nil.
func ServerFailure(message string, cause error) *Failure {
	return NewFailure(FailureServer, message, cause)
}

// NetworkFailure constructs a FailureNetwork. cause may be nil.
func NetworkFailure(message string, cause error) *Failure {
	return NewFailure(FailureNetwork, message, cause)
}

// CacheFailure constructs a FailureCache. cause may be nil.
func CacheFailure(message string, cause error) *Failure {
	return NewFailure(FailureCache, message, cause)
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Cause }

// Is reports kind equality, so errors.Is(err, &Failure{Kind: FailureCache})
// matches any cache failure regardless of message.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Kind == f.Kind && (t.Message == "" || t.Message == f.Message)
}
