// Package guard is where access checks meet callers: views, handlers and
// routers.
//
// Decisions are tri-state. Pending means the principal's permission set has
// not arrived yet; it is neither allow nor deny, and only this package
// exposes it. Evaluate never blocks and may return Pending; Authorize waits
// for the set and answers Allowed or Denied.
//
//	g := guard.New(perms, guard.WithMatrix(rbac.DefaultMatrix()))
//
//	r.With(guard.RequirePermission(g,
//		rbac.NewCheck(rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionCreate),
//	)).Post("/appointments", createAppointment)
//
// Views use Fragment or Component to render one of several templ components
// depending on the decision, and FragmentHandler to patch a pending fragment
// once the set loads.
//
// Preview consults the static role matrix for UI hints only. It never
// authorizes.
package guard
