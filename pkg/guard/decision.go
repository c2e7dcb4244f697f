package guard

// Decision is the outcome of an access check as seen by a caller that may not
// have the user's permissions yet.
type Decision int

const (
	// Pending means the permission set is still loading. It is neither an
	// allow nor a deny; callers render nothing or wait.
	Pending Decision = iota
	Allowed
	Denied
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	default:
		return "pending"
	}
}

// Allowed reports whether d is Allowed.
func (d Decision) Allowed() bool {
	return d == Allowed
}

func decide(ok bool) Decision {
	if ok {
		return Allowed
	}
	return Denied
}

// Choose returns the value matching d.
func Choose[T any](d Decision, allowed, denied, pending T) T {
	switch d {
	case Allowed:
		return allowed
	case Denied:
		return denied
	default:
		return pending
	}
}

// Run calls the branch matching d. Nil branches are skipped.
func Run(d Decision, allowed, denied, pending func()) {
	if fn := Choose(d, allowed, denied, pending); fn != nil {
		fn()
	}
}
