package domain

// Origin says where a document's body lives.
type Origin string

const (
	// OriginResident means the body arrived with the request (pasted text,
	// inline attachment) and is already in memory.
	OriginResident Origin = "resident"
	// OriginRemote means the body must be fetched from object storage by
	// StorageKey before it can be used.
	OriginRemote Origin = "remote"
)

// Scope filters the corpus for an analysis run.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeShared   Scope = "shared"
	ScopePersonal Scope = "personal"
)

// ParseScope normalizes a dataset value from the API. Unknown values fall
// back to ScopeAll, matching the permissive behavior of the web client.
func ParseScope(s string) Scope {
	switch Scope(s) {
	case ScopeShared, ScopePersonal:
		return Scope(s)
	default:
		return ScopeAll
	}
}

// Document is one identified unit of corpus text. The identifier is stable
// for the process lifetime; the body is populated on first access and is
// never cached past the request that needed it.
type Document struct {
	ID         string
	Title      string
	Origin     Origin
	StorageKey string
	Size       int64
	Shared     bool

	// Body is empty until resolved. For OriginRemote documents it is
	// re-fetched per use.
	Body string
}

// InScope reports whether the document belongs to the requested dataset scope.
func (d *Document) InScope(scope Scope) bool {
	switch scope {
	case ScopeShared:
		return d.Shared
	case ScopePersonal:
		return !d.Shared
	default:
		return true
	}
}

// Locator returns the storage pointer a UI can use to deep-link back to the
// original object, or "" for resident documents.
func (d *Document) Locator() string {
	if d.Origin != OriginRemote || d.StorageKey == "" {
		return ""
	}
	return d.StorageKey
}
