package credential

// Module identifies the logical app target that owns a persisted record.
// Host app and extensions share the same secure-storage backing; partitioning
// by module keeps their session tables from colliding.
type Module uint8

const (
	// ModuleHostApp is the main application target.
	ModuleHostApp Module = iota
	// ModuleAutoFillExtension is the credential autofill extension target.
	ModuleAutoFillExtension
	// ModuleShareExtension is the share-sheet extension target.
	ModuleShareExtension
	// ModuleActionExtension is the action extension target.
	ModuleActionExtension
)

// AllModules lists every known module tag in declaration order.
func AllModules() []Module {
	return []Module{ModuleHostApp, ModuleAutoFillExtension, ModuleShareExtension, ModuleActionExtension}
}

// String returns the stable storage tag for the module. Tags are appended
// to the configured storage key, so renaming one orphans previously
// persisted tables.
func (m Module) String() string {
	switch m {
	case ModuleHostApp:
		return "hostApp"
	case ModuleAutoFillExtension:
		return "autoFillExtension"
	case ModuleShareExtension:
		return "shareExtension"
	case ModuleActionExtension:
		return "actionExtension"
	default:
		return "unknown"
	}
}

// Record is one authenticated or unauthenticated session's full credential
// state. SessionID is the primary key and never changes after creation;
// updates replace fields in place.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	SessionID string
	UserID    string

	AccessToken  string
	RefreshToken string
	UserName     string
	Scopes       []string

	// Locally derived secret material. Never sent over the wire; attached
	// after the additional-info exchange and preserved across token updates.
	MailboxPassword string
	PasswordKeySalt string
	PrivateKey      string

	// CredentialLess marks a session created before user login. Such a
	// session carries no user identity and is invisible to login state.
	CredentialLess bool

	Module Module
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.Scopes != nil {
		out.Scopes = make([]string, len(r.Scopes))
		copy(out.Scopes, r.Scopes)
	}
	return &out
}

// Authenticated reports whether the record belongs to a logged-in user.
func (r *Record) Authenticated() bool {
	return r != nil && r.UserID != "" && !r.CredentialLess
}
